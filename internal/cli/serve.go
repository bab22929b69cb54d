package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/compilation-harvester/internal/logger"
	"github.com/pfrederiksen/compilation-harvester/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve compilations over HTTP",
		Long: `Start the HTTP endpoint. Each GET /compilations?from=mm/yyyy&to=mm/yyyy
request runs a fresh harvest; /health and /metrics report service state.`,
		Args: cobra.NoArgs,
		RunE: a.runServe,
	}

	cmd.Flags().String("addr", ":3001", "listen address")
	cmd.Flags().Int("workers", 1, "number of posts fetched concurrently per request")

	return cmd
}

func (a *app) runServe(cmd *cobra.Command, _ []string) error {
	h, err := a.newHarvester()
	if err != nil {
		return err
	}

	srv := server.New(h, server.Options{
		DefaultFrom: a.cfg.Server.DefaultFrom,
		DefaultTo:   a.cfg.Server.DefaultTo,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Starting server", logger.Fields{
		"addr":        a.cfg.Server.Addr,
		"listing_url": a.cfg.ListingURL,
		"workers":     a.cfg.Workers,
	})

	return srv.ListenAndServe(ctx, a.cfg.Server.Addr)
}

package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pfrederiksen/compilation-harvester/internal/config"
	"github.com/pfrederiksen/compilation-harvester/internal/fetcher"
	"github.com/pfrederiksen/compilation-harvester/internal/logger"
	"github.com/pfrederiksen/compilation-harvester/internal/scraper"
)

const (
	ExitSuccess         = 0
	ExitError           = 1
	ExitNewCompilations = 2
)

// errNewCompilations signals that a saved harvest found compilations missing
// from the previous snapshot
var errNewCompilations = errors.New("new compilations found")

// version is set at build time via ldflags
var version = "dev"

// app carries state shared by the subcommands of one root command
type app struct {
	v        *viper.Viper
	cfg      *config.Config
	cfgFile  string
	logLevel string
	logOut   io.Writer
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	a := &app{v: viper.New(), logOut: os.Stderr}

	cmd := &cobra.Command{
		Use:   "compilation-harvester",
		Short: "Harvest monthly compilation PDFs from a current-affairs listing",
		Long: `A tool that scans a current-affairs listing page for posts marked [COMPILATION],
reads each post's publication date and collects its compilation PDF links.
Results can be filtered to a month range, printed once, or served over HTTP.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	cmd.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default: ./compilation-harvester.yaml or ~/.config/compilation-harvester/config.yaml)")
	cmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn or error")

	cmd.AddCommand(newHarvestCmd(a), newServeCmd(a), newVersionCmd())

	return cmd
}

// flagKeys maps subcommand flags to the config keys they override
var flagKeys = map[string]string{
	"workers":     "workers",
	"skip-failed": "skip_failed_posts",
	"addr":        "server.addr",
}

// setup loads configuration and installs the default logger
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	for name, key := range flagKeys {
		if f := cmd.Flags().Lookup(name); f != nil {
			if err := a.v.BindPFlag(key, f); err != nil {
				return fmt.Errorf("binding --%s: %w", name, err)
			}
		}
	}
	if a.logLevel != "" {
		a.v.Set("log_level", a.logLevel)
	}

	used, err := config.Init(a.v, a.cfgFile)
	if err != nil {
		return err
	}

	cfg, err := config.Load(a.v)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	a.cfg = cfg

	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logger.SetDefault(logger.New(level, a.logOut))

	if used != "" {
		logger.Debug("Using config file", logger.Fields{"path": used})
	}
	return nil
}

// newHarvester wires a fetcher and a harvester from the loaded config
func (a *app) newHarvester() (*scraper.Harvester, error) {
	h, err := scraper.New(fetcher.New(a.cfg.FetcherOptions()), a.cfg.ScraperOptions())
	if err != nil {
		return nil, fmt.Errorf("initializing harvester: %w", err)
	}
	return h, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return nil
		},
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "compilation-harvester %s\n", version)
		},
	}
}

// Execute runs the CLI
func Execute() {
	err := NewRootCmd().Execute()
	switch {
	case err == nil:
		os.Exit(ExitSuccess)
	case errors.Is(err, errNewCompilations):
		os.Exit(ExitNewCompilations)
	default:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
}

package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/compilation-harvester/internal/compilation"
	"github.com/pfrederiksen/compilation-harvester/internal/logger"
	"github.com/pfrederiksen/compilation-harvester/internal/storage"
)

type harvestOptions struct {
	from    string
	to      string
	format  string
	sortBy  string
	save    bool
	verbose bool
}

func newHarvestCmd(a *app) *cobra.Command {
	opts := &harvestOptions{}

	cmd := &cobra.Command{
		Use:   "harvest",
		Short: "Run the harvest once and print the matching compilations",
		Long: `Fetch the listing page, visit every [COMPILATION] post, keep the posts
published inside --from/--to and print their download links.

Omitting --from or --to leaves that side of the range open.
With --save the results are stored as a snapshot; compilations absent from the
previous snapshot are marked NEW and the command exits with status 2.`,
		Example: `  compilation-harvester harvest --from 02/2025 --to 02/2025
  compilation-harvester harvest --from 1/2025 --format json
  compilation-harvester harvest --save --sort date`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runHarvest(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.from, "from", "", "first month to include (mm/yyyy)")
	cmd.Flags().StringVar(&opts.to, "to", "", "last month to include (mm/yyyy)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", string(FormatText), "output format: text, json or yaml")
	cmd.Flags().StringVar(&opts.sortBy, "sort", string(SortByDiscovery), "sort order: discovery, date or title")
	cmd.Flags().BoolVar(&opts.save, "save", false, "save a snapshot and mark compilations new since the last one")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "show post links and run details")
	cmd.Flags().Int("workers", 1, "number of posts fetched concurrently")
	cmd.Flags().Bool("skip-failed", false, "record posts that fail to load instead of aborting")

	return cmd
}

func (a *app) runHarvest(cmd *cobra.Command, opts *harvestOptions) error {
	format, err := ParseOutputFormat(opts.format)
	if err != nil {
		return err
	}
	order, err := ParseSortOrder(opts.sortBy)
	if err != nil {
		return err
	}

	r, err := compilation.RangeFromMonthYears(opts.from, opts.to)
	if err != nil {
		return err
	}

	h, err := a.newHarvester()
	if err != nil {
		return err
	}

	report, err := h.Harvest(cmd.Context(), r)
	if err != nil {
		return fmt.Errorf("harvesting: %w", err)
	}

	result := &OutputResult{
		CheckedAt: time.Now().UTC(),
		RunID:     report.RunID,
		Range:     r.String(),
		Count:     len(report.Items),
		Items:     append([]compilation.Result(nil), report.Items...),
		Failures:  report.Failures,
	}
	if result.Items == nil {
		result.Items = []compilation.Result{}
	}

	if opts.save {
		store, err := storage.New(a.cfg.DataDir)
		if err != nil {
			return fmt.Errorf("initializing storage: %w", err)
		}
		previous, err := store.Load(r)
		if err != nil {
			return fmt.Errorf("loading snapshot: %w", err)
		}
		result.NewItems = storage.NewSince(previous, report.Items)

		path, err := store.Save(report, r)
		if err != nil {
			return fmt.Errorf("saving snapshot: %w", err)
		}
		result.Snapshot = path
		result.Saved = true

		logger.Info("Saved snapshot", logger.Fields{
			"path":      path,
			"new_items": len(result.NewItems),
		})
	}

	sortResults(result.Items, order)

	if err := WriteOutput(cmd.OutOrStdout(), result, format, opts.verbose); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	if result.Saved && len(result.NewItems) > 0 {
		return errNewCompilations
	}
	return nil
}

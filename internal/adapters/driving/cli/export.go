package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/dify-migrate/internal/core/ports/driving"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export datasets and apps from the sources to disk",
	Long: `Exports every dataset and app from the configured sources into the
export directory without touching the target. The written units can be
imported later with "import", including against a target that is not
reachable from the sources.`,
	RunE: runExport,
}

var (
	flagExportDatasets      bool
	flagExportApps          bool
	flagExportIncludeSecret bool
	flagExportTo            string
)

func init() {
	exportCmd.Flags().BoolVar(&flagExportDatasets, "datasets", false, "export datasets only")
	exportCmd.Flags().BoolVar(&flagExportApps, "apps", false, "export apps only")
	exportCmd.Flags().BoolVar(&flagExportIncludeSecret, "include-secret", false, "carry secret environment variables in app DSL")
	exportCmd.Flags().StringVar(&flagExportTo, "export-dir", "", "directory to write export units to")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	if configStore == nil || newMigrator == nil || newExportStore == nil {
		return errors.New("migration service not configured")
	}

	cfg, err := configStore.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	if len(cfg.Sources) == 0 {
		return fmt.Errorf("no source instances configured (edit %s)", configStore.Path())
	}
	for i := range cfg.Sources {
		if err := cfg.Sources[i].Validate(); err != nil {
			return fmt.Errorf("source %d: %w", i+1, err)
		}
	}

	dir := cfg.Defaults.ExportDir
	if flagExportTo != "" {
		dir = flagExportTo
	}
	store, err := newExportStore(dir)
	if err != nil {
		return fmt.Errorf("open export store: %w", err)
	}

	opts := driving.Options{
		IncludeSecret: cfg.Defaults.IncludeSecret || flagExportIncludeSecret,
		Datasets:      flagExportDatasets,
		Apps:          flagExportApps,
	}

	report, err := newMigrator(cfg, store).ExportAll(cmd.Context(), opts)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	printReport(cmd, report, opts)
	return nil
}

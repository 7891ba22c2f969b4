package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/dify-migrate/internal/core/ports/driving"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import previously exported units into the target",
	Long: `Imports export units written by "export" (or a batch migration run)
from the export directory into the target instance. No source instance is
contacted.`,
	RunE: runImport,
}

var (
	flagImportDatasets     bool
	flagImportApps         bool
	flagImportFrom         string
	flagImportSkipExisting bool
	flagImportAutoCreate   bool
)

func init() {
	importCmd.Flags().BoolVar(&flagImportDatasets, "datasets", false, "import datasets only")
	importCmd.Flags().BoolVar(&flagImportApps, "apps", false, "import apps only")
	importCmd.Flags().StringVar(&flagImportFrom, "export-dir", "", "directory to read export units from")
	importCmd.Flags().BoolVar(&flagImportSkipExisting, "skip-existing", true, "skip objects whose name exists in the target")
	importCmd.Flags().BoolVar(&flagImportAutoCreate, "auto-create", true, "create datasets missing from the target")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, _ []string) error {
	if configStore == nil || newMigrator == nil || newExportStore == nil {
		return errors.New("migration service not configured")
	}

	cfg, err := configStore.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	if err := cfg.Target.Validate(); err != nil {
		return fmt.Errorf("target: %w (edit %s)", err, configStore.Path())
	}

	dir := cfg.Defaults.ExportDir
	if flagImportFrom != "" {
		dir = flagImportFrom
	}
	store, err := newExportStore(dir)
	if err != nil {
		return fmt.Errorf("open export store: %w", err)
	}

	opts := driving.Options{
		SkipExisting: cfg.Defaults.SkipExisting,
		AutoCreate:   cfg.Defaults.AutoCreate,
		Datasets:     flagImportDatasets,
		Apps:         flagImportApps,
	}
	flags := cmd.Flags()
	if flags.Changed("skip-existing") {
		opts.SkipExisting = flagImportSkipExisting
	}
	if flags.Changed("auto-create") {
		opts.AutoCreate = flagImportAutoCreate
	}

	report, err := newMigrator(cfg, store).ImportFromStore(cmd.Context(), opts)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	printReport(cmd, report, opts)
	if report.Failed() {
		return errors.New("import finished with pipeline failures")
	}
	return nil
}

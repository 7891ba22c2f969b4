package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/dify-migrate/internal/core/domain"
	"github.com/custodia-labs/dify-migrate/internal/core/ports/driving"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Migrate datasets and apps from the sources to the target",
	Long: `Runs a full migration from every configured source into the target.

By default both pipelines run in streaming mode: each object is exported
from its source and imported into the target in one pass. Objects whose
name already exists in the target are skipped. Use --batch to write every
export unit to the export directory before importing, and --parallel to
run the dataset and app pipelines concurrently.`,
	RunE: runMigrate,
}

var (
	flagDatasets      bool
	flagApps          bool
	flagBatch         bool
	flagParallel      bool
	flagSkipExisting  bool
	flagAutoCreate    bool
	flagIncludeSecret bool
	flagExportDir     string
)

func init() {
	migrateCmd.Flags().BoolVar(&flagDatasets, "datasets", false, "migrate datasets only")
	migrateCmd.Flags().BoolVar(&flagApps, "apps", false, "migrate apps only")
	migrateCmd.Flags().BoolVar(&flagBatch, "batch", false, "export everything to disk before importing")
	migrateCmd.Flags().BoolVar(&flagParallel, "parallel", false, "run dataset and app pipelines concurrently")
	migrateCmd.Flags().BoolVar(&flagSkipExisting, "skip-existing", true, "skip objects whose name exists in the target")
	migrateCmd.Flags().BoolVar(&flagAutoCreate, "auto-create", true, "create datasets missing from the target")
	migrateCmd.Flags().BoolVar(&flagIncludeSecret, "include-secret", false, "carry secret environment variables in app DSL")
	migrateCmd.Flags().StringVar(&flagExportDir, "export-dir", "", "directory for export units (batch mode)")
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, opts, err := loadRunConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration: %w (edit %s)", err, configStore.Path())
	}

	m, err := buildMigrator(cfg)
	if err != nil {
		return err
	}

	report, err := m.MigrateAll(cmd.Context(), opts)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	printReport(cmd, report, opts)
	if report.Failed() {
		return errors.New("migration finished with pipeline failures")
	}
	return nil
}

// loadRunConfig loads the stored configuration and merges run options:
// stored defaults first, then any flag the user set explicitly.
func loadRunConfig(cmd *cobra.Command) (domain.MigrationConfig, driving.Options, error) {
	if configStore == nil || newMigrator == nil || newExportStore == nil {
		return domain.MigrationConfig{}, driving.Options{}, errors.New("migration service not configured")
	}

	cfg, err := configStore.Load()
	if err != nil {
		return domain.MigrationConfig{}, driving.Options{}, fmt.Errorf("load configuration: %w", err)
	}
	if cfg.Defaults.Verbose {
		log.SetVerbose(true)
	}

	opts := driving.Options{
		SkipExisting:  cfg.Defaults.SkipExisting,
		AutoCreate:    cfg.Defaults.AutoCreate,
		IncludeSecret: cfg.Defaults.IncludeSecret,
		Batch:         cfg.Defaults.Batch,
		Parallel:      cfg.Defaults.Parallel,
		Datasets:      flagDatasets,
		Apps:          flagApps,
	}

	flags := cmd.Flags()
	if flags.Changed("skip-existing") {
		opts.SkipExisting = flagSkipExisting
	}
	if flags.Changed("auto-create") {
		opts.AutoCreate = flagAutoCreate
	}
	if flags.Changed("include-secret") {
		opts.IncludeSecret = flagIncludeSecret
	}
	if flags.Changed("batch") {
		opts.Batch = flagBatch
	}
	if flags.Changed("parallel") {
		opts.Parallel = flagParallel
	}

	return cfg, opts, nil
}

// buildMigrator assembles the orchestrator with the configured export store.
func buildMigrator(cfg domain.MigrationConfig) (driving.Migrator, error) {
	dir := cfg.Defaults.ExportDir
	if flagExportDir != "" {
		dir = flagExportDir
	}
	store, err := newExportStore(dir)
	if err != nil {
		return nil, fmt.Errorf("open export store: %w", err)
	}
	return newMigrator(cfg, store), nil
}

// printReport renders per-pipeline summaries and lists failed objects.
func printReport(cmd *cobra.Command, report *domain.RunReport, opts driving.Options) {
	cmd.Printf("Run %s\n", report.RunID)

	printPipeline := func(name string, rep domain.Report, fatal error) {
		if fatal != nil {
			cmd.Printf("%s: failed: %v\n", name, fatal)
			return
		}
		cmd.Printf("%s: %s\n", name, rep.Summary())
		for _, res := range rep.Results {
			if res.Status == domain.StatusFailed {
				cmd.Printf("  failed: %s: %v\n", res.Name, res.Err)
			}
		}
	}

	if opts.Datasets || (!opts.Datasets && !opts.Apps) {
		printPipeline("Datasets", report.Datasets, report.DatasetErr)
	}
	if opts.Apps || (!opts.Datasets && !opts.Apps) {
		printPipeline("Apps", report.Apps, report.AppErr)
	}
}

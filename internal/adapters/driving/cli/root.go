// Package cli implements the command-line driving adapter.
// Commands are thin: they load configuration, build run options and hand
// off to the core services through the driving ports.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/dify-migrate/internal/core/domain"
	"github.com/custodia-labs/dify-migrate/internal/core/ports/driven"
	"github.com/custodia-labs/dify-migrate/internal/core/ports/driving"
	"github.com/custodia-labs/dify-migrate/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Services wired by the bootstrap in main. Commands guard against nil so a
// partially wired binary fails with a message instead of a panic.
var (
	configStore   driven.ConfigStore
	clientFactory driven.ClientFactory

	// newConfigStore builds the config store for a directory; empty means
	// the store's default location. Resolved in the root pre-run so the
	// --config flag is honoured.
	newConfigStore func(dir string) (driven.ConfigStore, error)

	// newExportStore builds the export store for a directory; empty means
	// the store's default.
	newExportStore func(dir string) (driven.ExportStore, error)

	// newMigrator builds the orchestrator for a loaded configuration.
	newMigrator func(cfg domain.MigrationConfig, store driven.ExportStore) driving.Migrator

	log = logger.Default()
)

var (
	flagVerbose   bool
	flagConfigDir string
)

var rootCmd = &cobra.Command{
	Use:   "dify-migrate",
	Short: "Migrate knowledge bases and apps between Dify instances",
	Long: `dify-migrate moves datasets (knowledge bases) and apps from one or
more source Dify instances into a target instance.

Datasets travel through the content API: documents are exported segment by
segment, recombined and re-imported so the target re-chunks and re-indexes
them. Apps travel as DSL through the console API, with secret environment
variables redacted unless explicitly included.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		if flagVerbose {
			log.SetVerbose(true)
		}
		if newConfigStore != nil {
			cs, err := newConfigStore(flagConfigDir)
			if err != nil {
				return fmt.Errorf("open configuration store: %w", err)
			}
			configStore = cs
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config", "", "configuration directory (default ~/.dify-migrate)")
}

// Wire injects the adapters the commands run against. Called once from main.
func Wire(configs func(dir string) (driven.ConfigStore, error), factory driven.ClientFactory, stores func(dir string) (driven.ExportStore, error), migrators func(cfg domain.MigrationConfig, store driven.ExportStore) driving.Migrator, sink *logger.Sink) {
	newConfigStore = configs
	clientFactory = factory
	newExportStore = stores
	newMigrator = migrators
	if sink != nil {
		log = sink
	}
}

// SetVersion overrides the build version string.
func SetVersion(v string) { version = v }

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// Command dify-migrate migrates knowledge bases and apps between Dify
// instances.
package main

import (
	"fmt"
	"os"

	configfile "github.com/custodia-labs/dify-migrate/internal/adapters/driven/config/file"
	"github.com/custodia-labs/dify-migrate/internal/adapters/driven/dify"
	exportfile "github.com/custodia-labs/dify-migrate/internal/adapters/driven/export/file"
	"github.com/custodia-labs/dify-migrate/internal/adapters/driving/cli"
	"github.com/custodia-labs/dify-migrate/internal/core/domain"
	"github.com/custodia-labs/dify-migrate/internal/core/ports/driven"
	"github.com/custodia-labs/dify-migrate/internal/core/ports/driving"
	"github.com/custodia-labs/dify-migrate/internal/core/services"
	"github.com/custodia-labs/dify-migrate/internal/logger"
)

// version is overridden at build time via -ldflags.
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	sink := logger.Default()
	factory := dify.Factory{Log: sink}

	cli.SetVersion(version)
	cli.Wire(
		func(dir string) (driven.ConfigStore, error) {
			return configfile.NewConfigStore(dir)
		},
		factory,
		func(dir string) (driven.ExportStore, error) {
			return exportfile.NewStore(dir)
		},
		func(cfg domain.MigrationConfig, store driven.ExportStore) driving.Migrator {
			return services.NewMigrator(cfg.Sources, cfg.Target, factory, store, sink)
		},
		sink,
	)

	return cli.Execute()
}

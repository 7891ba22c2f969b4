package driving

import (
	"context"

	"github.com/custodia-labs/dify-migrate/internal/core/domain"
)

// Options are the per-run policy flags.
// The zero value is the safe default: streaming, sequential, skip existing,
// auto-create, secrets excluded.
type Options struct {
	// SkipExisting leaves target objects that match a source name untouched.
	SkipExisting bool

	// AutoCreate creates missing datasets in the target. When false, a
	// dataset absent from the target fails instead.
	AutoCreate bool

	// IncludeSecret carries secret environment variables inside exported
	// app DSL. When false they are redacted on the exporting side.
	IncludeSecret bool

	// Batch exports every object to the export store first, then imports.
	// Default (false) is streaming: export and import one object at a time.
	Batch bool

	// Parallel runs the dataset and app pipelines concurrently.
	Parallel bool

	// Datasets and Apps select which pipelines run.
	Datasets bool
	Apps     bool
}

// Migrator drives complete migration runs between configured instances.
type Migrator interface {
	// MigrateAll runs the selected pipelines and returns the run report.
	// Per-object failures are counted in the report; the returned error is
	// nil unless the run could not start at all.
	MigrateAll(ctx context.Context, opts Options) (*domain.RunReport, error)

	// ExportAll exports every object from every source to the export store
	// without touching the target.
	ExportAll(ctx context.Context, opts Options) (*domain.RunReport, error)

	// ImportFromStore imports previously exported units from the export
	// store into the target, never contacting a source.
	ImportFromStore(ctx context.Context, opts Options) (*domain.RunReport, error)
}

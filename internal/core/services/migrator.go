package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/dify-migrate/internal/core/domain"
	"github.com/custodia-labs/dify-migrate/internal/core/ports/driven"
	"github.com/custodia-labs/dify-migrate/internal/core/ports/driving"
	"github.com/custodia-labs/dify-migrate/internal/logger"
)

// Ensure Migrator implements the driving port.
var _ driving.Migrator = (*Migrator)(nil)

// DefaultIndexingWait is the pause after each document creation, giving the
// target time to start indexing before the next document arrives.
const DefaultIndexingWait = 3 * time.Second

// Migrator orchestrates migration runs from one or more source instances
// into a single target instance.
//
// The dataset and app pipelines never share mutable state: each one builds
// its own clients through the factory and keeps its own name set, so running
// them concurrently needs no coordination beyond the log sink.
type Migrator struct {
	sources []domain.InstanceConfig
	target  domain.InstanceConfig
	factory driven.ClientFactory
	store   driven.ExportStore
	log     *logger.Sink

	indexingWait time.Duration
}

// NewMigrator wires an orchestrator. log may be nil, in which case the
// default sink is used.
func NewMigrator(sources []domain.InstanceConfig, target domain.InstanceConfig, factory driven.ClientFactory, store driven.ExportStore, log *logger.Sink) *Migrator {
	if log == nil {
		log = logger.Default()
	}
	return &Migrator{
		sources:      sources,
		target:       target,
		factory:      factory,
		store:        store,
		log:          log,
		indexingWait: DefaultIndexingWait,
	}
}

// SetIndexingWait overrides the post-create pause. Zero disables it.
func (m *Migrator) SetIndexingWait(d time.Duration) { m.indexingWait = d }

// nameSet tracks object names already present in the target. Matching is
// exact and case sensitive.
type nameSet map[string]struct{}

func (s nameSet) has(name string) bool { _, ok := s[name]; return ok }
func (s nameSet) add(name string)      { s[name] = struct{}{} }

// MigrateAll runs the selected pipelines. With neither pipeline selected,
// both run. Per-object failures are counted in the report; only a pipeline
// that cannot start at all sets DatasetErr or AppErr.
func (m *Migrator) MigrateAll(ctx context.Context, opts driving.Options) (*domain.RunReport, error) {
	if !opts.Datasets && !opts.Apps {
		opts.Datasets = true
		opts.Apps = true
	}

	report := &domain.RunReport{RunID: uuid.NewString()}
	m.log.Info("migration run %s starting (batch=%t parallel=%t skip_existing=%t)",
		report.RunID, opts.Batch, opts.Parallel, opts.SkipExisting)

	runDatasets := func() {
		if !opts.Datasets {
			return
		}
		report.Datasets, report.DatasetErr = m.runDatasetPipeline(ctx, opts)
	}
	runApps := func() {
		if !opts.Apps {
			return
		}
		report.Apps, report.AppErr = m.runAppPipeline(ctx, opts)
	}

	if opts.Parallel && opts.Datasets && opts.Apps {
		var wg sync.WaitGroup
		wg.Add(2)
		go func() { defer wg.Done(); runDatasets() }()
		go func() { defer wg.Done(); runApps() }()
		wg.Wait()
	} else {
		runDatasets()
		runApps()
	}

	m.summarise(report, opts)
	return report, nil
}

// ExportAll exports every object from every source to the export store. The
// target is never contacted and no skip policy applies.
func (m *Migrator) ExportAll(ctx context.Context, opts driving.Options) (*domain.RunReport, error) {
	if !opts.Datasets && !opts.Apps {
		opts.Datasets = true
		opts.Apps = true
	}

	report := &domain.RunReport{RunID: uuid.NewString()}
	m.log.Info("export run %s starting", report.RunID)

	if opts.Datasets {
		report.Datasets = m.exportDatasets(ctx)
	}
	if opts.Apps {
		report.Apps = m.exportApps(ctx, opts)
	}

	m.summarise(report, opts)
	return report, nil
}

// ImportFromStore imports previously exported units into the target without
// contacting any source.
func (m *Migrator) ImportFromStore(ctx context.Context, opts driving.Options) (*domain.RunReport, error) {
	if !opts.Datasets && !opts.Apps {
		opts.Datasets = true
		opts.Apps = true
	}

	report := &domain.RunReport{RunID: uuid.NewString()}
	m.log.Info("import run %s starting", report.RunID)

	if opts.Datasets {
		report.Datasets, report.DatasetErr = m.importStoredDatasets(ctx, opts)
	}
	if opts.Apps {
		report.Apps, report.AppErr = m.importStoredApps(ctx, opts)
	}

	m.summarise(report, opts)
	return report, nil
}

func (m *Migrator) summarise(report *domain.RunReport, opts driving.Options) {
	m.log.Section("run %s finished", report.RunID)
	if opts.Datasets {
		if report.DatasetErr != nil {
			m.log.Error("datasets: pipeline failed: %v", report.DatasetErr)
		} else {
			m.log.Info("datasets: %s", report.Datasets.Summary())
		}
	}
	if opts.Apps {
		if report.AppErr != nil {
			m.log.Error("apps: pipeline failed: %v", report.AppErr)
		} else {
			m.log.Info("apps: %s", report.Apps.Summary())
		}
	}
}

// waitIndexing pauses after a document creation so the target can begin
// indexing before the next one.
func (m *Migrator) waitIndexing(ctx context.Context) error {
	if m.indexingWait <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(m.indexingWait):
		return nil
	}
}

package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/dify-migrate/internal/core/domain"
	"github.com/custodia-labs/dify-migrate/internal/core/ports/driven"
	"github.com/custodia-labs/dify-migrate/internal/core/ports/driving"
)

// Dataset pipeline. One result per source dataset; a failure of one dataset
// never stops the rest.

func (m *Migrator) runDatasetPipeline(ctx context.Context, opts driving.Options) (domain.Report, error) {
	tc := m.factory.New(m.target)
	existing, byName, err := m.targetDatasets(ctx, tc)
	if err != nil {
		return domain.Report{}, err
	}

	var report domain.Report
	var pending []domain.DatasetExport
	for _, src := range m.sources {
		sc := m.factory.New(src)
		datasets, err := sc.ListAllDatasets(ctx)
		if err != nil {
			m.log.Error("list datasets from %s: %v", src.BaseURL, err)
			continue
		}
		m.log.Info("migrating %d datasets from %s", len(datasets), src.BaseURL)

		if opts.Batch {
			pending = append(pending, m.stageDatasetExports(ctx, sc, existing, datasets, opts, &report)...)
			continue
		}
		for _, ds := range datasets {
			report.Record(m.migrateDatasetStreaming(ctx, sc, tc, existing, byName, ds, opts))
		}
	}

	// Batch mode: every source is drained before the first import.
	for _, export := range pending {
		report.Record(m.importDatasetExport(ctx, tc, existing, byName, export, opts))
	}
	return report, nil
}

// migrateDatasetStreaming exports one dataset from the source and imports it
// into the target in a single pass, nothing written to disk.
func (m *Migrator) migrateDatasetStreaming(ctx context.Context, sc, tc driven.InstanceClient, existing nameSet, byName map[string]domain.Dataset, ds domain.Dataset, opts driving.Options) domain.ObjectResult {
	if opts.SkipExisting && existing.has(ds.Name) {
		m.log.Info("dataset %q already present in target, skipping", ds.Name)
		return domain.ObjectResult{Name: ds.Name, Status: domain.StatusSkipped}
	}

	export, err := m.fetchDatasetExport(ctx, sc, ds)
	if err != nil {
		m.log.Error("export dataset %q: %v", ds.Name, err)
		return domain.ObjectResult{Name: ds.Name, Status: domain.StatusFailed, Err: err}
	}
	return m.importDatasetExport(ctx, tc, existing, byName, export, opts)
}

// stageDatasetExports writes one source's export units to the store and
// returns the ones that exported cleanly; importing is deferred until every
// source has been exported.
func (m *Migrator) stageDatasetExports(ctx context.Context, sc driven.InstanceClient, existing nameSet, datasets []domain.Dataset, opts driving.Options, report *domain.Report) []domain.DatasetExport {
	var pending []domain.DatasetExport
	for _, ds := range datasets {
		if opts.SkipExisting && existing.has(ds.Name) {
			m.log.Info("dataset %q already present in target, skipping", ds.Name)
			report.Record(domain.ObjectResult{Name: ds.Name, Status: domain.StatusSkipped})
			continue
		}

		export, err := m.fetchDatasetExport(ctx, sc, ds)
		if err != nil {
			m.log.Error("export dataset %q: %v", ds.Name, err)
			report.Record(domain.ObjectResult{Name: ds.Name, Status: domain.StatusFailed, Err: err})
			continue
		}
		if _, err := m.store.SaveDataset(ctx, export); err != nil {
			m.log.Error("save dataset %q: %v", ds.Name, err)
			report.Record(domain.ObjectResult{Name: ds.Name, Status: domain.StatusFailed, Err: err})
			continue
		}
		pending = append(pending, export)
	}
	return pending
}

// fetchDatasetExport pulls a dataset's documents and their segments from the
// source and assembles the export unit.
func (m *Migrator) fetchDatasetExport(ctx context.Context, sc driven.InstanceClient, ds domain.Dataset) (domain.DatasetExport, error) {
	docs, err := sc.ListAllDocuments(ctx, ds.ID)
	if err != nil {
		return domain.DatasetExport{}, fmt.Errorf("list documents: %w", err)
	}

	exports := make([]domain.DocumentExport, 0, len(docs))
	for _, doc := range docs {
		segments, err := sc.ListSegments(ctx, ds.ID, doc.ID)
		if err != nil {
			return domain.DatasetExport{}, fmt.Errorf("segments of document %q: %w", doc.Name, err)
		}
		exports = append(exports, domain.DocumentExport{Document: doc, Segments: segments})
	}
	return BuildDatasetExport(ds, exports)
}

// importDatasetExport lands one export unit in the target. Documents with no
// content are counted as skipped content; a document-level failure marks the
// dataset failed but the remaining documents are still attempted.
func (m *Migrator) importDatasetExport(ctx context.Context, tc driven.InstanceClient, existing nameSet, byName map[string]domain.Dataset, export domain.DatasetExport, opts driving.Options) domain.ObjectResult {
	name := export.Dataset.Name
	if opts.SkipExisting && existing.has(name) {
		m.log.Info("dataset %q already present in target, skipping", name)
		return domain.ObjectResult{Name: name, Status: domain.StatusSkipped}
	}

	target, ok := byName[name]
	if !ok {
		if !opts.AutoCreate {
			err := fmt.Errorf("dataset %q: %w", name, domain.ErrAutoCreateDisabled)
			m.log.Error("%v", err)
			return domain.ObjectResult{Name: name, Status: domain.StatusFailed, Err: err}
		}
		created, err := tc.CreateDataset(ctx, name, export.Dataset.Description)
		if err != nil {
			m.log.Error("create dataset %q: %v", name, err)
			return domain.ObjectResult{Name: name, Status: domain.StatusFailed, Err: err}
		}
		m.log.Info("created dataset %q in target (%s)", name, created.ID)
		target = created
		byName[name] = created
	}

	res := domain.ObjectResult{Name: name}
	var firstErr error
	for _, doc := range export.Documents {
		text, err := CombineSegments(doc)
		if err != nil {
			if errors.Is(err, domain.ErrEmptyContent) {
				m.log.Warn("document %q in %q has no content, skipping", doc.Document.Name, name)
				res.DocumentsSkipped++
				continue
			}
			if firstErr == nil {
				firstErr = err
			}
			continue
		}

		if _, err := tc.CreateDocumentByText(ctx, target.ID, doc.Document.Name, text); err != nil {
			m.log.Error("import document %q into %q: %v", doc.Document.Name, name, err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		res.DocumentsImported++

		if err := m.waitIndexing(ctx); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			break
		}
	}

	if firstErr != nil {
		res.Status = domain.StatusFailed
		res.Err = firstErr
		return res
	}

	res.Status = domain.StatusSuccess
	existing.add(name)
	m.log.Info("dataset %q migrated (%d documents imported, %d skipped)",
		name, res.DocumentsImported, res.DocumentsSkipped)
	return res
}

// exportDatasets writes every source dataset to the export store.
func (m *Migrator) exportDatasets(ctx context.Context) domain.Report {
	var report domain.Report
	for _, src := range m.sources {
		sc := m.factory.New(src)
		datasets, err := sc.ListAllDatasets(ctx)
		if err != nil {
			m.log.Error("list datasets from %s: %v", src.BaseURL, err)
			continue
		}

		for _, ds := range datasets {
			export, err := m.fetchDatasetExport(ctx, sc, ds)
			if err != nil {
				m.log.Error("export dataset %q: %v", ds.Name, err)
				report.Record(domain.ObjectResult{Name: ds.Name, Status: domain.StatusFailed, Err: err})
				continue
			}
			path, err := m.store.SaveDataset(ctx, export)
			if err != nil {
				m.log.Error("save dataset %q: %v", ds.Name, err)
				report.Record(domain.ObjectResult{Name: ds.Name, Status: domain.StatusFailed, Err: err})
				continue
			}
			m.log.Info("exported dataset %q to %s", ds.Name, path)
			report.Record(domain.ObjectResult{Name: ds.Name, Status: domain.StatusSuccess})
		}
	}
	return report
}

// importStoredDatasets replays stored export units into the target.
func (m *Migrator) importStoredDatasets(ctx context.Context, opts driving.Options) (domain.Report, error) {
	exports, err := m.store.LoadDatasets(ctx)
	if err != nil {
		return domain.Report{}, fmt.Errorf("load stored datasets: %w", err)
	}

	tc := m.factory.New(m.target)
	existing, byName, err := m.targetDatasets(ctx, tc)
	if err != nil {
		return domain.Report{}, err
	}

	var report domain.Report
	for _, export := range exports {
		report.Record(m.importDatasetExport(ctx, tc, existing, byName, export, opts))
	}
	return report, nil
}

// targetDatasets seeds the target-side name set once per pipeline run.
func (m *Migrator) targetDatasets(ctx context.Context, tc driven.InstanceClient) (nameSet, map[string]domain.Dataset, error) {
	list, err := tc.ListAllDatasets(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list target datasets: %w", err)
	}

	existing := nameSet{}
	byName := make(map[string]domain.Dataset, len(list))
	for _, ds := range list {
		existing.add(ds.Name)
		byName[ds.Name] = ds
	}
	return existing, byName, nil
}

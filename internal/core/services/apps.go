package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/dify-migrate/internal/core/domain"
	"github.com/custodia-labs/dify-migrate/internal/core/ports/driven"
	"github.com/custodia-labs/dify-migrate/internal/core/ports/driving"
)

// App pipeline. Apps move as serialized DSL text through the console API;
// secrets are redacted on the exporting side unless explicitly included.

func (m *Migrator) runAppPipeline(ctx context.Context, opts driving.Options) (domain.Report, error) {
	tc := m.factory.New(m.target)
	existing, err := m.targetApps(ctx, tc)
	if err != nil {
		return domain.Report{}, err
	}

	var report domain.Report
	var pending []domain.AppExport
	for _, src := range m.sources {
		sc := m.factory.New(src)
		apps, err := sc.ListAllApps(ctx)
		if err != nil {
			m.log.Error("list apps from %s: %v", src.BaseURL, err)
			continue
		}
		m.log.Info("migrating %d apps from %s", len(apps), src.BaseURL)

		if opts.Batch {
			pending = append(pending, m.stageAppExports(ctx, sc, existing, apps, opts, &report)...)
			continue
		}
		for _, app := range apps {
			report.Record(m.migrateAppStreaming(ctx, sc, tc, existing, app, opts))
		}
	}

	// Batch mode: every source is drained before the first import.
	for _, export := range pending {
		report.Record(m.importAppExport(ctx, tc, existing, export, opts))
	}
	return report, nil
}

func (m *Migrator) migrateAppStreaming(ctx context.Context, sc, tc driven.InstanceClient, existing nameSet, app domain.App, opts driving.Options) domain.ObjectResult {
	if opts.SkipExisting && existing.has(app.Name) {
		m.log.Info("app %q already present in target, skipping", app.Name)
		return domain.ObjectResult{Name: app.Name, Status: domain.StatusSkipped}
	}

	export, err := m.exportAppUnit(ctx, sc, app, opts)
	if err != nil {
		m.log.Error("export app %q: %v", app.Name, err)
		return domain.ObjectResult{Name: app.Name, Status: domain.StatusFailed, Err: err}
	}
	return m.importAppExport(ctx, tc, existing, export, opts)
}

// stageAppExports writes one source's DSL exports to the store and returns
// the ones that exported cleanly; importing is deferred until every source
// has been exported.
func (m *Migrator) stageAppExports(ctx context.Context, sc driven.InstanceClient, existing nameSet, apps []domain.App, opts driving.Options, report *domain.Report) []domain.AppExport {
	var pending []domain.AppExport
	for _, app := range apps {
		if opts.SkipExisting && existing.has(app.Name) {
			m.log.Info("app %q already present in target, skipping", app.Name)
			report.Record(domain.ObjectResult{Name: app.Name, Status: domain.StatusSkipped})
			continue
		}

		export, err := m.exportAppUnit(ctx, sc, app, opts)
		if err != nil {
			m.log.Error("export app %q: %v", app.Name, err)
			report.Record(domain.ObjectResult{Name: app.Name, Status: domain.StatusFailed, Err: err})
			continue
		}
		if _, err := m.store.SaveApp(ctx, export); err != nil {
			m.log.Error("save app %q: %v", app.Name, err)
			report.Record(domain.ObjectResult{Name: app.Name, Status: domain.StatusFailed, Err: err})
			continue
		}
		pending = append(pending, export)
	}
	return pending
}

// exportAppUnit fetches an app's DSL and redacts secrets unless the run
// explicitly carries them.
func (m *Migrator) exportAppUnit(ctx context.Context, sc driven.InstanceClient, app domain.App, opts driving.Options) (domain.AppExport, error) {
	dsl, err := sc.ExportAppDSL(ctx, app.ID, opts.IncludeSecret)
	if err != nil {
		return domain.AppExport{}, err
	}
	if !opts.IncludeSecret {
		dsl, err = RedactSecrets(dsl)
		if err != nil {
			return domain.AppExport{}, fmt.Errorf("redact secrets: %w", err)
		}
	}
	return domain.AppExport{App: app, DSL: dsl}, nil
}

func (m *Migrator) importAppExport(ctx context.Context, tc driven.InstanceClient, existing nameSet, export domain.AppExport, opts driving.Options) domain.ObjectResult {
	name := export.App.Name
	if opts.SkipExisting && existing.has(name) {
		m.log.Info("app %q already present in target, skipping", name)
		return domain.ObjectResult{Name: name, Status: domain.StatusSkipped}
	}

	id, err := tc.ImportAppDSL(ctx, export.DSL)
	if err != nil {
		m.log.Error("import app %q: %v", name, err)
		return domain.ObjectResult{Name: name, Status: domain.StatusFailed, Err: err}
	}

	existing.add(name)
	m.log.Info("app %q migrated (%s)", name, id)
	return domain.ObjectResult{Name: name, Status: domain.StatusSuccess}
}

// exportApps writes every source app's DSL to the export store.
func (m *Migrator) exportApps(ctx context.Context, opts driving.Options) domain.Report {
	var report domain.Report
	for _, src := range m.sources {
		sc := m.factory.New(src)
		apps, err := sc.ListAllApps(ctx)
		if err != nil {
			m.log.Error("list apps from %s: %v", src.BaseURL, err)
			continue
		}

		for _, app := range apps {
			export, err := m.exportAppUnit(ctx, sc, app, opts)
			if err != nil {
				m.log.Error("export app %q: %v", app.Name, err)
				report.Record(domain.ObjectResult{Name: app.Name, Status: domain.StatusFailed, Err: err})
				continue
			}
			path, err := m.store.SaveApp(ctx, export)
			if err != nil {
				m.log.Error("save app %q: %v", app.Name, err)
				report.Record(domain.ObjectResult{Name: app.Name, Status: domain.StatusFailed, Err: err})
				continue
			}
			m.log.Info("exported app %q to %s", app.Name, path)
			report.Record(domain.ObjectResult{Name: app.Name, Status: domain.StatusSuccess})
		}
	}
	return report
}

// importStoredApps replays stored DSL files into the target.
func (m *Migrator) importStoredApps(ctx context.Context, opts driving.Options) (domain.Report, error) {
	exports, err := m.store.LoadApps(ctx)
	if err != nil {
		return domain.Report{}, fmt.Errorf("load stored apps: %w", err)
	}

	tc := m.factory.New(m.target)
	existing, err := m.targetApps(ctx, tc)
	if err != nil {
		return domain.Report{}, err
	}

	var report domain.Report
	for _, export := range exports {
		report.Record(m.importAppExport(ctx, tc, existing, export, opts))
	}
	return report, nil
}

// targetApps seeds the target-side app name set once per pipeline run.
func (m *Migrator) targetApps(ctx context.Context, tc driven.InstanceClient) (nameSet, error) {
	apps, err := tc.ListAllApps(ctx)
	if err != nil {
		return nil, fmt.Errorf("list target apps: %w", err)
	}

	existing := nameSet{}
	for _, app := range apps {
		existing.add(app.Name)
	}
	return existing, nil
}

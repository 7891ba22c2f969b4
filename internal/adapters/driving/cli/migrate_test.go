package cli

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/dify-migrate/internal/core/domain"
	"github.com/custodia-labs/dify-migrate/internal/core/ports/driven"
	"github.com/custodia-labs/dify-migrate/internal/core/ports/driving"
)

// memConfigStore implements driven.ConfigStore in memory.
type memConfigStore struct {
	cfg     domain.MigrationConfig
	loadErr error
}

func (s *memConfigStore) Load() (domain.MigrationConfig, error) {
	if s.loadErr != nil {
		return domain.MigrationConfig{}, s.loadErr
	}
	return s.cfg, nil
}

func (s *memConfigStore) Save(cfg domain.MigrationConfig) error {
	s.cfg = cfg
	return nil
}

func (s *memConfigStore) Path() string { return "/tmp/dify-migrate/config.toml" }

// mockMigrator implements driving.Migrator and records the last call.
type mockMigrator struct {
	lastCall string
	lastOpts driving.Options
	report   *domain.RunReport
	err      error
}

func (m *mockMigrator) MigrateAll(_ context.Context, opts driving.Options) (*domain.RunReport, error) {
	m.lastCall, m.lastOpts = "migrate", opts
	return m.report, m.err
}

func (m *mockMigrator) ExportAll(_ context.Context, opts driving.Options) (*domain.RunReport, error) {
	m.lastCall, m.lastOpts = "export", opts
	return m.report, m.err
}

func (m *mockMigrator) ImportFromStore(_ context.Context, opts driving.Options) (*domain.RunReport, error) {
	m.lastCall, m.lastOpts = "import", opts
	return m.report, m.err
}

// stubClient implements driven.InstanceClient with canned listings.
type stubClient struct {
	datasets []domain.Dataset
	apps     []domain.App
	deleted  []string
}

func (c *stubClient) ListDatasets(context.Context, int, int) (driven.DatasetPage, error) {
	return driven.DatasetPage{Datasets: c.datasets}, nil
}

func (c *stubClient) ListAllDatasets(context.Context) ([]domain.Dataset, error) {
	return c.datasets, nil
}

func (c *stubClient) CreateDataset(context.Context, string, string) (domain.Dataset, error) {
	return domain.Dataset{}, nil
}

func (c *stubClient) DeleteDataset(_ context.Context, id string) error {
	c.deleted = append(c.deleted, id)
	return nil
}

func (c *stubClient) ListDocuments(context.Context, string, int, int) (driven.DocumentPage, error) {
	return driven.DocumentPage{}, nil
}

func (c *stubClient) ListAllDocuments(context.Context, string) ([]domain.Document, error) {
	return nil, nil
}

func (c *stubClient) ListSegments(context.Context, string, string) ([]domain.Segment, error) {
	return nil, nil
}

func (c *stubClient) CreateDocumentByText(context.Context, string, string, string) (domain.Document, error) {
	return domain.Document{}, nil
}

func (c *stubClient) ListApps(context.Context, int, int) (driven.AppPage, error) {
	return driven.AppPage{Apps: c.apps}, nil
}

func (c *stubClient) ListAllApps(context.Context) ([]domain.App, error) {
	return c.apps, nil
}

func (c *stubClient) ExportAppDSL(context.Context, string, bool) (string, error) {
	return "", nil
}

func (c *stubClient) ImportAppDSL(context.Context, string) (string, error) {
	return "", nil
}

type stubFactory struct{ client *stubClient }

func (f stubFactory) New(domain.InstanceConfig) driven.InstanceClient { return f.client }

// memExportStore is a no-op export store for command wiring.
type memExportStore struct{}

func (memExportStore) SaveDataset(context.Context, domain.DatasetExport) (string, error) {
	return "", nil
}
func (memExportStore) SaveApp(context.Context, domain.AppExport) (string, error) { return "", nil }
func (memExportStore) LoadDatasets(context.Context) ([]domain.DatasetExport, error) {
	return nil, nil
}
func (memExportStore) LoadApps(context.Context) ([]domain.AppExport, error) { return nil, nil }

func validTestConfig() domain.MigrationConfig {
	return domain.MigrationConfig{
		Sources: []domain.InstanceConfig{{
			BaseURL: "https://old.dify.example.com/v1",
			APIKey:  "dataset-source-key-123",
		}},
		Target: domain.InstanceConfig{
			BaseURL: "https://new.dify.example.com/v1",
			APIKey:  "dataset-target-key-456",
		},
		Defaults: domain.NewRunDefaults(),
	}
}

func okReport() *domain.RunReport {
	report := &domain.RunReport{RunID: "run-1"}
	report.Datasets.Record(domain.ObjectResult{Name: "Docs", Status: domain.StatusSuccess})
	report.Apps.Record(domain.ObjectResult{Name: "bot", Status: domain.StatusSkipped})
	return report
}

// setupCLITest swaps the wired services for fakes and returns a restore
// function.
func setupCLITest(cfg domain.MigrationConfig, m *mockMigrator, client *stubClient) func() {
	oldStore, oldFactory, oldExport, oldMigrator := configStore, clientFactory, newExportStore, newMigrator

	// Flag variables persist between Execute calls; start each test from
	// the registered defaults.
	flagDatasets, flagApps, flagBatch, flagParallel = false, false, false, false
	flagSkipExisting, flagAutoCreate, flagIncludeSecret = true, true, false
	flagExportDir = ""
	flagExportDatasets, flagExportApps, flagExportIncludeSecret, flagExportTo = false, false, false, ""
	flagImportDatasets, flagImportApps, flagImportFrom = false, false, ""
	flagImportSkipExisting, flagImportAutoCreate = true, true
	flagListTarget, flagListSource = false, 1

	configStore = &memConfigStore{cfg: cfg}
	clientFactory = stubFactory{client: client}
	newExportStore = func(string) (driven.ExportStore, error) { return memExportStore{}, nil }
	newMigrator = func(domain.MigrationConfig, driven.ExportStore) driving.Migrator { return m }

	return func() {
		configStore, clientFactory, newExportStore, newMigrator = oldStore, oldFactory, oldExport, oldMigrator
	}
}

func executeCLI(args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}

func TestMigrateCmd_Use(t *testing.T) {
	assert.Equal(t, "migrate", migrateCmd.Use)
}

func TestMigrateCmd_Short(t *testing.T) {
	assert.Contains(t, migrateCmd.Short, "Migrate")
}

func TestMigrateCmd_RunsWithDefaults(t *testing.T) {
	m := &mockMigrator{report: okReport()}
	cleanup := setupCLITest(validTestConfig(), m, &stubClient{})
	defer cleanup()

	out, err := executeCLI("migrate")
	require.NoError(t, err)

	assert.Equal(t, "migrate", m.lastCall)
	assert.True(t, m.lastOpts.SkipExisting)
	assert.True(t, m.lastOpts.AutoCreate)
	assert.False(t, m.lastOpts.IncludeSecret)
	assert.Contains(t, out, "Run run-1")
	assert.Contains(t, out, "total=1 success=1 skipped=0 failed=0")
}

func TestMigrateCmd_FlagOverrides(t *testing.T) {
	m := &mockMigrator{report: okReport()}
	cleanup := setupCLITest(validTestConfig(), m, &stubClient{})
	defer cleanup()

	_, err := executeCLI("migrate", "--batch", "--parallel", "--include-secret", "--datasets")
	require.NoError(t, err)

	assert.True(t, m.lastOpts.Batch)
	assert.True(t, m.lastOpts.Parallel)
	assert.True(t, m.lastOpts.IncludeSecret)
	assert.True(t, m.lastOpts.Datasets)
	assert.False(t, m.lastOpts.Apps)
}

func TestMigrateCmd_PipelineFailureExitsNonZero(t *testing.T) {
	report := &domain.RunReport{RunID: "run-2", AppErr: fmt.Errorf("console down")}
	m := &mockMigrator{report: report}
	cleanup := setupCLITest(validTestConfig(), m, &stubClient{})
	defer cleanup()

	out, err := executeCLI("migrate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pipeline failures")
	assert.Contains(t, out, "console down")
}

func TestMigrateCmd_InvalidConfig(t *testing.T) {
	m := &mockMigrator{report: okReport()}
	cleanup := setupCLITest(domain.MigrationConfig{}, m, &stubClient{})
	defer cleanup()

	_, err := executeCLI("migrate")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}

func TestMigrateCmd_ServiceNotConfigured(t *testing.T) {
	oldStore := configStore
	configStore = nil
	defer func() { configStore = oldStore }()

	_, err := executeCLI("migrate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}

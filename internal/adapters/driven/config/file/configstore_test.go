package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/dify-migrate/internal/core/domain"
)

func newTestConfigStore(t *testing.T) *ConfigStore {
	t.Helper()
	s, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	return s
}

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	s := newTestConfigStore(t)

	cfg, err := s.Load()
	require.NoError(t, err)
	assert.Empty(t, cfg.Sources)
	assert.True(t, cfg.Defaults.SkipExisting)
	assert.True(t, cfg.Defaults.AutoCreate)
	assert.False(t, cfg.Defaults.IncludeSecret)
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	s := newTestConfigStore(t)

	in := domain.MigrationConfig{
		Sources: []domain.InstanceConfig{
			{
				BaseURL:  "https://old.dify.example.com/v1",
				APIKey:   "dataset-source-key-123",
				Email:    "admin@example.com",
				Password: "password123",
			},
			{
				BaseURL:               "https://legacy.dify.example.com/v1",
				APIKey:                "dataset-legacy-key-456",
				AllowInsecureFallback: true,
			},
		},
		Target: domain.InstanceConfig{
			BaseURL: "https://new.dify.example.com/v1",
			APIKey:  "dataset-target-key-789",
		},
		Defaults: domain.RunDefaults{
			SkipExisting: true,
			AutoCreate:   true,
			Parallel:     true,
			ExportDir:    "/var/lib/dify-migrate",
		},
	}
	require.NoError(t, s.Save(in))

	out, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestSaveRestrictsPermissions(t *testing.T) {
	s := newTestConfigStore(t)
	require.NoError(t, s.Save(domain.MigrationConfig{}))

	info, err := os.Stat(s.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestLoadParsesHandWrittenFile(t *testing.T) {
	dir := t.TempDir()
	content := `[[sources]]
base_url = "https://old.dify.example.com/v1"
api_key = "dataset-source-key-123"

[target]
base_url = "https://new.dify.example.com/v1"
api_key = "dataset-target-key-789"

[options]
skip_existing = true
auto_create = false
batch = true
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0600))

	s, err := NewConfigStore(dir)
	require.NoError(t, err)

	cfg, err := s.Load()
	require.NoError(t, err)
	require.Len(t, cfg.Sources, 1)
	assert.Equal(t, "https://old.dify.example.com/v1", cfg.Sources[0].BaseURL)
	assert.Equal(t, "https://new.dify.example.com/v1", cfg.Target.BaseURL)
	assert.True(t, cfg.Defaults.SkipExisting)
	assert.False(t, cfg.Defaults.AutoCreate)
	assert.True(t, cfg.Defaults.Batch)
}

func TestLoadMissingOptionsSectionKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	content := `[[sources]]
base_url = "https://old.dify.example.com/v1"
api_key = "dataset-source-key-123"

[target]
base_url = "https://new.dify.example.com/v1"
api_key = "dataset-target-key-789"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0600))

	s, err := NewConfigStore(dir)
	require.NoError(t, err)

	cfg, err := s.Load()
	require.NoError(t, err)
	require.Len(t, cfg.Sources, 1)
	assert.True(t, cfg.Defaults.SkipExisting)
	assert.True(t, cfg.Defaults.AutoCreate)
	assert.False(t, cfg.Defaults.IncludeSecret)
	assert.False(t, cfg.Defaults.Batch)
}

func TestLoadRejectsMalformedTOML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("not = [valid"), 0600))

	s, err := NewConfigStore(dir)
	require.NoError(t, err)

	_, err = s.Load()
	assert.Error(t, err)
}

package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/dify-migrate/internal/core/domain"
)

func TestConfigShowCmd(t *testing.T) {
	cleanup := setupCLITest(validTestConfig(), &mockMigrator{report: okReport()}, &stubClient{})
	defer cleanup()

	out, err := executeCLI("config", "show")
	require.NoError(t, err)

	assert.Contains(t, out, "[Sources]")
	assert.Contains(t, out, "https://old.dify.example.com/v1")
	assert.Contains(t, out, "[Target]")
	assert.Contains(t, out, "https://new.dify.example.com/v1")
	assert.Contains(t, out, "skip_existing:  true")

	// API keys never appear in clear text.
	assert.NotContains(t, out, "dataset-source-key-123")
	assert.NotContains(t, out, "dataset-target-key-456")
}

func TestConfigAddSourceCmd(t *testing.T) {
	cleanup := setupCLITest(validTestConfig(), &mockMigrator{report: okReport()}, &stubClient{})
	defer cleanup()

	out, err := executeCLI("config", "add-source",
		"--url", "https://legacy.dify.example.com/v1",
		"--api-key", "dataset-legacy-key-789",
	)
	require.NoError(t, err)
	assert.Contains(t, out, "Added source 2")

	store := configStore.(*memConfigStore)
	require.Len(t, store.cfg.Sources, 2)
	assert.Equal(t, "https://legacy.dify.example.com/v1", store.cfg.Sources[1].BaseURL)
}

func TestConfigAddSourceCmd_RejectsInvalid(t *testing.T) {
	cleanup := setupCLITest(validTestConfig(), &mockMigrator{report: okReport()}, &stubClient{})
	defer cleanup()

	_, err := executeCLI("config", "add-source", "--url", "ftp://nope", "--api-key", "dataset-key-123456")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}

func TestConfigSetTargetCmd(t *testing.T) {
	cleanup := setupCLITest(validTestConfig(), &mockMigrator{report: okReport()}, &stubClient{})
	defer cleanup()

	_, err := executeCLI("config", "set-target",
		"--url", "https://next.dify.example.com/v1",
		"--api-key", "dataset-next-key-000",
		"--email", "admin@example.com",
		"--password", "password123",
	)
	require.NoError(t, err)

	store := configStore.(*memConfigStore)
	assert.Equal(t, "https://next.dify.example.com/v1", store.cfg.Target.BaseURL)
	assert.True(t, store.cfg.Target.HasConsoleCredentials())
}

func TestConfigSetDefaultsCmd(t *testing.T) {
	cleanup := setupCLITest(validTestConfig(), &mockMigrator{report: okReport()}, &stubClient{})
	defer cleanup()

	_, err := executeCLI("config", "set-defaults", "--parallel", "--export-dir", "/srv/exports")
	require.NoError(t, err)

	store := configStore.(*memConfigStore)
	assert.True(t, store.cfg.Defaults.Parallel)
	assert.Equal(t, "/srv/exports", store.cfg.Defaults.ExportDir)

	// Untouched defaults survive.
	assert.True(t, store.cfg.Defaults.SkipExisting)
}

package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/dify-migrate/internal/core/domain"
)

func TestListDatasetsCmd_DefaultsToAllInstances(t *testing.T) {
	client := &stubClient{datasets: []domain.Dataset{
		{ID: "ds-1", Name: "Product FAQ", DocumentCount: 3, WordCount: 120},
	}}
	cleanup := setupCLITest(validTestConfig(), &mockMigrator{report: okReport()}, client)
	defer cleanup()

	out, err := executeCLI("list", "datasets")
	require.NoError(t, err)
	assert.Contains(t, out, "1 datasets on source 1")
	assert.Contains(t, out, "1 datasets on target")
	assert.Contains(t, out, "Product FAQ")
	assert.Contains(t, out, "documents=3")
}

func TestListAppsCmd_Target(t *testing.T) {
	client := &stubClient{apps: []domain.App{
		{ID: "app-1", Name: "support-bot", Mode: "chat"},
	}}
	cleanup := setupCLITest(validTestConfig(), &mockMigrator{report: okReport()}, client)
	defer cleanup()

	out, err := executeCLI("list", "apps", "--target")
	require.NoError(t, err)
	assert.Contains(t, out, "1 apps on target")
	assert.Contains(t, out, "support-bot")
	assert.Contains(t, out, "mode=chat")
}

func TestListCmd_UnknownSourceIndex(t *testing.T) {
	cleanup := setupCLITest(validTestConfig(), &mockMigrator{report: okReport()}, &stubClient{})
	defer cleanup()

	_, err := executeCLI("list", "datasets", "--source", "3")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "source 3 not configured")
}

func TestDeleteDatasetCmd(t *testing.T) {
	client := &stubClient{}
	cleanup := setupCLITest(validTestConfig(), &mockMigrator{report: okReport()}, client)
	defer cleanup()

	out, err := executeCLI("delete-dataset", "ds-9", "--target")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted dataset ds-9")
	assert.Equal(t, []string{"ds-9"}, client.deleted)
}

func TestDeleteDatasetCmd_RequiresArg(t *testing.T) {
	cleanup := setupCLITest(validTestConfig(), &mockMigrator{report: okReport()}, &stubClient{})
	defer cleanup()

	_, err := executeCLI("delete-dataset")
	assert.Error(t, err)
}

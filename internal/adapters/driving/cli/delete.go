package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/dify-migrate/internal/core/domain"
)

var deleteDatasetCmd = &cobra.Command{
	Use:   "delete-dataset <dataset-id>",
	Short: "Delete a dataset from a configured instance",
	Long: `Deletes a dataset by id from the target (--target) or a source
(--source, default the first). Deletion is immediate and not recoverable.`,
	Args: cobra.ExactArgs(1),
	RunE: runDeleteDataset,
}

func init() {
	deleteDatasetCmd.Flags().BoolVar(&flagListTarget, "target", false, "delete from the target instance")
	deleteDatasetCmd.Flags().IntVar(&flagListSource, "source", 1, "delete from the n-th source instance")
	rootCmd.AddCommand(deleteDatasetCmd)
}

// deleteInstance resolves exactly one instance for the delete command.
func deleteInstance() (domain.InstanceConfig, string, error) {
	if configStore == nil || clientFactory == nil {
		return domain.InstanceConfig{}, "", errors.New("migration service not configured")
	}

	cfg, err := configStore.Load()
	if err != nil {
		return domain.InstanceConfig{}, "", fmt.Errorf("load configuration: %w", err)
	}

	if flagListTarget {
		if err := cfg.Target.Validate(); err != nil {
			return domain.InstanceConfig{}, "", fmt.Errorf("target: %w", err)
		}
		return cfg.Target, "target", nil
	}

	idx := flagListSource
	if idx < 1 || idx > len(cfg.Sources) {
		return domain.InstanceConfig{}, "", fmt.Errorf("source %d not configured (%d sources)", idx, len(cfg.Sources))
	}
	inst := cfg.Sources[idx-1]
	if err := inst.Validate(); err != nil {
		return domain.InstanceConfig{}, "", fmt.Errorf("source %d: %w", idx, err)
	}
	return inst, fmt.Sprintf("source %d", idx), nil
}

func runDeleteDataset(cmd *cobra.Command, args []string) error {
	inst, label, err := deleteInstance()
	if err != nil {
		return err
	}

	datasetID := args[0]
	if err := clientFactory.New(inst).DeleteDataset(cmd.Context(), datasetID); err != nil {
		return fmt.Errorf("delete dataset %s: %w", datasetID, err)
	}

	cmd.Printf("Deleted dataset %s from %s (%s)\n", datasetID, label, inst.BaseURL)
	return nil
}

package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/dify-migrate/internal/core/domain"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List objects on the configured instances",
	Long: `Lists datasets or apps. Without flags every configured source and the
target are listed; narrow the selection with --source or --target.`,
}

var listDatasetsCmd = &cobra.Command{
	Use:   "datasets",
	Short: "List datasets (knowledge bases)",
	RunE:  runListDatasets,
}

var listAppsCmd = &cobra.Command{
	Use:   "apps",
	Short: "List apps (requires console credentials)",
	RunE:  runListApps,
}

var (
	flagListTarget bool
	flagListSource int
)

func init() {
	listCmd.PersistentFlags().BoolVar(&flagListTarget, "target", false, "list only the target instance")
	listCmd.PersistentFlags().IntVar(&flagListSource, "source", 1, "list only the n-th source instance")
	listCmd.AddCommand(listDatasetsCmd)
	listCmd.AddCommand(listAppsCmd)
	rootCmd.AddCommand(listCmd)
}

// instanceRef is one instance selected for a listing.
type instanceRef struct {
	cfg   domain.InstanceConfig
	label string
}

// selectInstances resolves the --target / --source flags. With neither flag
// set, every configured source plus the target is returned.
func selectInstances(cmd *cobra.Command) ([]instanceRef, error) {
	if configStore == nil || clientFactory == nil {
		return nil, errors.New("migration service not configured")
	}

	cfg, err := configStore.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	if flagListTarget {
		if err := cfg.Target.Validate(); err != nil {
			return nil, fmt.Errorf("target: %w", err)
		}
		return []instanceRef{{cfg: cfg.Target, label: "target"}}, nil
	}

	if cmd.Flags().Changed("source") {
		idx := flagListSource
		if idx < 1 || idx > len(cfg.Sources) {
			return nil, fmt.Errorf("source %d not configured (%d sources)", idx, len(cfg.Sources))
		}
		inst := cfg.Sources[idx-1]
		if err := inst.Validate(); err != nil {
			return nil, fmt.Errorf("source %d: %w", idx, err)
		}
		return []instanceRef{{cfg: inst, label: fmt.Sprintf("source %d", idx)}}, nil
	}

	var refs []instanceRef
	for i := range cfg.Sources {
		inst := cfg.Sources[i]
		if err := inst.Validate(); err != nil {
			return nil, fmt.Errorf("source %d: %w", i+1, err)
		}
		refs = append(refs, instanceRef{cfg: inst, label: fmt.Sprintf("source %d", i+1)})
	}
	if cfg.Target.BaseURL != "" {
		if err := cfg.Target.Validate(); err != nil {
			return nil, fmt.Errorf("target: %w", err)
		}
		refs = append(refs, instanceRef{cfg: cfg.Target, label: "target"})
	}
	if len(refs) == 0 {
		return nil, fmt.Errorf("no instances configured (edit %s)", configStore.Path())
	}
	return refs, nil
}

func runListDatasets(cmd *cobra.Command, _ []string) error {
	refs, err := selectInstances(cmd)
	if err != nil {
		return err
	}

	for _, ref := range refs {
		datasets, err := clientFactory.New(ref.cfg).ListAllDatasets(cmd.Context())
		if err != nil {
			return fmt.Errorf("list datasets on %s: %w", ref.label, err)
		}

		cmd.Printf("%d datasets on %s (%s)\n", len(datasets), ref.label, ref.cfg.BaseURL)
		for _, ds := range datasets {
			cmd.Printf("  %s  %-30s  documents=%d words=%d\n", ds.ID, ds.Name, ds.DocumentCount, ds.WordCount)
		}
	}
	return nil
}

func runListApps(cmd *cobra.Command, _ []string) error {
	refs, err := selectInstances(cmd)
	if err != nil {
		return err
	}

	for _, ref := range refs {
		apps, err := clientFactory.New(ref.cfg).ListAllApps(cmd.Context())
		if err != nil {
			return fmt.Errorf("list apps on %s: %w", ref.label, err)
		}

		cmd.Printf("%d apps on %s (%s)\n", len(apps), ref.label, ref.cfg.BaseURL)
		for _, app := range apps {
			cmd.Printf("  %s  %-30s  mode=%s\n", app.ID, app.Name, app.Mode)
		}
	}
	return nil
}

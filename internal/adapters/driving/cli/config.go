package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/dify-migrate/internal/core/domain"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage instance configuration",
	Long: `View and edit the stored configuration: source instances, the target
instance and the default run options.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current configuration",
	RunE:  runConfigShow,
}

var configAddSourceCmd = &cobra.Command{
	Use:   "add-source",
	Short: "Add a source instance",
	RunE:  runConfigAddSource,
}

var configSetTargetCmd = &cobra.Command{
	Use:   "set-target",
	Short: "Set the target instance",
	RunE:  runConfigSetTarget,
}

var configSetDefaultsCmd = &cobra.Command{
	Use:   "set-defaults",
	Short: "Set default run options",
	RunE:  runConfigSetDefaults,
}

var (
	flagCfgURL      string
	flagCfgAPIKey   string
	flagCfgEmail    string
	flagCfgPassword string
	flagCfgInsecure bool

	flagDefSkipExisting  bool
	flagDefAutoCreate    bool
	flagDefIncludeSecret bool
	flagDefBatch         bool
	flagDefParallel      bool
	flagDefExportDir     string
)

func init() {
	for _, c := range []*cobra.Command{configAddSourceCmd, configSetTargetCmd} {
		c.Flags().StringVar(&flagCfgURL, "url", "", "content API base URL, e.g. https://api.dify.example.com/v1")
		c.Flags().StringVar(&flagCfgAPIKey, "api-key", "", "dataset API key")
		c.Flags().StringVar(&flagCfgEmail, "email", "", "console email (enables app operations)")
		c.Flags().StringVar(&flagCfgPassword, "password", "", "console password (prompted when omitted)")
		c.Flags().BoolVar(&flagCfgInsecure, "allow-insecure-fallback", false, "retry once without TLS verification on certificate errors")
	}

	configSetDefaultsCmd.Flags().BoolVar(&flagDefSkipExisting, "skip-existing", true, "skip objects whose name exists in the target")
	configSetDefaultsCmd.Flags().BoolVar(&flagDefAutoCreate, "auto-create", true, "create datasets missing from the target")
	configSetDefaultsCmd.Flags().BoolVar(&flagDefIncludeSecret, "include-secret", false, "carry secret environment variables in app DSL")
	configSetDefaultsCmd.Flags().BoolVar(&flagDefBatch, "batch", false, "export to disk before importing")
	configSetDefaultsCmd.Flags().BoolVar(&flagDefParallel, "parallel", false, "run pipelines concurrently")
	configSetDefaultsCmd.Flags().StringVar(&flagDefExportDir, "export-dir", "", "directory for export units")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configAddSourceCmd)
	configCmd.AddCommand(configSetTargetCmd)
	configCmd.AddCommand(configSetDefaultsCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if configStore == nil {
		return errors.New("configuration store not configured")
	}

	cfg, err := configStore.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	cmd.Printf("Configuration (%s)\n\n", configStore.Path())

	cmd.Println("[Sources]")
	if len(cfg.Sources) == 0 {
		cmd.Println("  (none)")
	}
	for i := range cfg.Sources {
		cmd.Printf("  %d. %s\n", i+1, cfg.Sources[i].Redacted())
	}
	cmd.Println()

	cmd.Println("[Target]")
	if cfg.Target.BaseURL == "" {
		cmd.Println("  (not set)")
	} else {
		cmd.Printf("  %s\n", cfg.Target.Redacted())
	}
	cmd.Println()

	cmd.Println("[Options]")
	cmd.Printf("  skip_existing:  %t\n", cfg.Defaults.SkipExisting)
	cmd.Printf("  auto_create:    %t\n", cfg.Defaults.AutoCreate)
	cmd.Printf("  include_secret: %t\n", cfg.Defaults.IncludeSecret)
	cmd.Printf("  batch:          %t\n", cfg.Defaults.Batch)
	cmd.Printf("  parallel:       %t\n", cfg.Defaults.Parallel)
	if cfg.Defaults.ExportDir != "" {
		cmd.Printf("  export_dir:     %s\n", cfg.Defaults.ExportDir)
	}
	return nil
}

// instanceFromFlags assembles and validates an instance configuration from
// the shared flags, prompting for the password when an email is given
// without one.
func instanceFromFlags(cmd *cobra.Command) (domain.InstanceConfig, error) {
	inst := domain.InstanceConfig{
		BaseURL:               flagCfgURL,
		APIKey:                flagCfgAPIKey,
		Email:                 flagCfgEmail,
		Password:              flagCfgPassword,
		AllowInsecureFallback: flagCfgInsecure,
	}

	if inst.Email != "" && inst.Password == "" {
		cmd.Printf("Console password for %s: ", inst.Email)
		inst.Password = readPassword()
		cmd.Println()
	}

	if err := inst.Validate(); err != nil {
		return domain.InstanceConfig{}, err
	}
	return inst, nil
}

func runConfigAddSource(cmd *cobra.Command, _ []string) error {
	if configStore == nil {
		return errors.New("configuration store not configured")
	}

	inst, err := instanceFromFlags(cmd)
	if err != nil {
		return err
	}

	cfg, err := configStore.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	cfg.Sources = append(cfg.Sources, inst)
	if err := configStore.Save(cfg); err != nil {
		return fmt.Errorf("save configuration: %w", err)
	}

	cmd.Printf("Added source %d: %s\n", len(cfg.Sources), inst.BaseURL)
	return nil
}

func runConfigSetTarget(cmd *cobra.Command, _ []string) error {
	if configStore == nil {
		return errors.New("configuration store not configured")
	}

	inst, err := instanceFromFlags(cmd)
	if err != nil {
		return err
	}

	cfg, err := configStore.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	cfg.Target = inst
	if err := configStore.Save(cfg); err != nil {
		return fmt.Errorf("save configuration: %w", err)
	}

	cmd.Printf("Target set to %s\n", inst.BaseURL)
	return nil
}

func runConfigSetDefaults(cmd *cobra.Command, _ []string) error {
	if configStore == nil {
		return errors.New("configuration store not configured")
	}

	cfg, err := configStore.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("skip-existing") {
		cfg.Defaults.SkipExisting = flagDefSkipExisting
	}
	if flags.Changed("auto-create") {
		cfg.Defaults.AutoCreate = flagDefAutoCreate
	}
	if flags.Changed("include-secret") {
		cfg.Defaults.IncludeSecret = flagDefIncludeSecret
	}
	if flags.Changed("batch") {
		cfg.Defaults.Batch = flagDefBatch
	}
	if flags.Changed("parallel") {
		cfg.Defaults.Parallel = flagDefParallel
	}
	if flags.Changed("export-dir") {
		cfg.Defaults.ExportDir = flagDefExportDir
	}

	if err := configStore.Save(cfg); err != nil {
		return fmt.Errorf("save configuration: %w", err)
	}
	cmd.Println("Defaults updated.")
	return nil
}

//nolint:errcheck // CLI helper, error ignored for UX
func readPassword() string {
	// Try to read password without echo
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return string(password)
		}
	}
	// Fallback to regular input
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

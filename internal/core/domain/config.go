package domain

import "fmt"

// RunDefaults are the persisted default policy flags for migration runs.
// Command-line flags override them per invocation.
type RunDefaults struct {
	SkipExisting  bool
	AutoCreate    bool
	IncludeSecret bool
	Batch         bool
	Parallel      bool

	// ExportDir is where export units are written. Empty means the
	// store's default directory.
	ExportDir string

	Verbose bool
}

// NewRunDefaults returns the safe defaults: skip existing objects,
// auto-create missing datasets, redact secrets, streaming, sequential.
func NewRunDefaults() RunDefaults {
	return RunDefaults{SkipExisting: true, AutoCreate: true}
}

// MigrationConfig is the full tool configuration: the instances to migrate
// between and the default run policy.
type MigrationConfig struct {
	Sources  []InstanceConfig
	Target   InstanceConfig
	Defaults RunDefaults
}

// Validate checks that every instance is usable and at least one source is
// configured.
func (c *MigrationConfig) Validate() error {
	if len(c.Sources) == 0 {
		return fmt.Errorf("%w: at least one source instance is required", ErrInvalidConfig)
	}
	for i := range c.Sources {
		if err := c.Sources[i].Validate(); err != nil {
			return fmt.Errorf("source %d: %w", i+1, err)
		}
	}
	if err := c.Target.Validate(); err != nil {
		return fmt.Errorf("target: %w", err)
	}
	return nil
}

package driven

import "github.com/custodia-labs/dify-migrate/internal/core/domain"

// ConfigStore loads and persists the migration configuration.
type ConfigStore interface {
	// Load reads the stored configuration. A missing file yields an empty
	// configuration with default run policy, not an error.
	Load() (domain.MigrationConfig, error)

	// Save persists the configuration, replacing what was stored.
	Save(cfg domain.MigrationConfig) error

	// Path returns the backing file path for messages.
	Path() string
}

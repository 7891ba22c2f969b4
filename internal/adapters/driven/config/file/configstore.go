// Package file implements the driven.ConfigStore port with a TOML file,
// by default ~/.dify-migrate/config.toml.
package file

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/dify-migrate/internal/core/domain"
	"github.com/custodia-labs/dify-migrate/internal/core/ports/driven"
)

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore persists the migration configuration as TOML.
type ConfigStore struct {
	mu       sync.Mutex
	filePath string
}

// NewConfigStore creates a TOML-backed config store.
// If configDir is empty, defaults to ~/.dify-migrate.
func NewConfigStore(configDir string) (*ConfigStore, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		configDir = filepath.Join(home, ".dify-migrate")
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, err
	}

	return &ConfigStore{filePath: filepath.Join(configDir, "config.toml")}, nil
}

// Path returns the configuration file path.
func (s *ConfigStore) Path() string { return s.filePath }

// On-disk shape. Kept separate from domain types so the file format stays
// stable under domain refactors.

type configFile struct {
	Sources []instanceSection `toml:"sources"`
	Target  instanceSection   `toml:"target"`
	Options optionsSection    `toml:"options"`
}

type instanceSection struct {
	BaseURL               string `toml:"base_url"`
	APIKey                string `toml:"api_key"`
	Email                 string `toml:"email,omitempty"`
	Password              string `toml:"password,omitempty"`
	AllowInsecureFallback bool   `toml:"allow_insecure_fallback,omitempty"`
}

type optionsSection struct {
	SkipExisting  bool   `toml:"skip_existing"`
	AutoCreate    bool   `toml:"auto_create"`
	IncludeSecret bool   `toml:"include_secret"`
	Batch         bool   `toml:"batch"`
	Parallel      bool   `toml:"parallel"`
	ExportDir     string `toml:"export_dir,omitempty"`
	Verbose       bool   `toml:"verbose"`
}

// Load reads the stored configuration. A missing file yields an empty
// configuration with default run policy.
func (s *ConfigStore) Load() (domain.MigrationConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.MigrationConfig{Defaults: domain.NewRunDefaults()}, nil
		}
		return domain.MigrationConfig{}, err
	}

	// A file without an [options] section keeps the default run policy.
	in := configFile{Options: fromDefaults(domain.NewRunDefaults())}
	if err := toml.Unmarshal(data, &in); err != nil {
		return domain.MigrationConfig{}, fmt.Errorf("parse %s: %w", s.filePath, err)
	}

	cfg := domain.MigrationConfig{
		Target:   toInstance(in.Target),
		Defaults: toDefaults(in.Options),
	}
	for _, src := range in.Sources {
		cfg.Sources = append(cfg.Sources, toInstance(src))
	}
	return cfg, nil
}

// Save persists the configuration with restricted permissions: the file
// carries API keys and console passwords.
func (s *ConfigStore) Save(cfg domain.MigrationConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := configFile{
		Target:  fromInstance(cfg.Target),
		Options: fromDefaults(cfg.Defaults),
	}
	for _, src := range cfg.Sources {
		out.Sources = append(out.Sources, fromInstance(src))
	}

	data, err := toml.Marshal(out)
	if err != nil {
		return fmt.Errorf("encode configuration: %w", err)
	}
	return os.WriteFile(s.filePath, data, 0600)
}

func toInstance(in instanceSection) domain.InstanceConfig {
	return domain.InstanceConfig{
		BaseURL:               in.BaseURL,
		APIKey:                in.APIKey,
		Email:                 in.Email,
		Password:              in.Password,
		AllowInsecureFallback: in.AllowInsecureFallback,
	}
}

func fromInstance(in domain.InstanceConfig) instanceSection {
	return instanceSection{
		BaseURL:               in.BaseURL,
		APIKey:                in.APIKey,
		Email:                 in.Email,
		Password:              in.Password,
		AllowInsecureFallback: in.AllowInsecureFallback,
	}
}

func toDefaults(in optionsSection) domain.RunDefaults {
	return domain.RunDefaults{
		SkipExisting:  in.SkipExisting,
		AutoCreate:    in.AutoCreate,
		IncludeSecret: in.IncludeSecret,
		Batch:         in.Batch,
		Parallel:      in.Parallel,
		ExportDir:     in.ExportDir,
		Verbose:       in.Verbose,
	}
}

func fromDefaults(in domain.RunDefaults) optionsSection {
	return optionsSection{
		SkipExisting:  in.SkipExisting,
		AutoCreate:    in.AutoCreate,
		IncludeSecret: in.IncludeSecret,
		Batch:         in.Batch,
		Parallel:      in.Parallel,
		ExportDir:     in.ExportDir,
		Verbose:       in.Verbose,
	}
}

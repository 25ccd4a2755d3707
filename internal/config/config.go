// Package config loads runtime configuration. Values come from .oot.yaml
// (or .oot.toml) in the working directory or home, OOT_* environment
// variables and CLI flags bound by the commands.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"oot/internal/domain"
)

const DefaultVaultPath = "~/Documents/vault"

// State backends.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// Config holds all runtime configuration.
type Config struct {
	Vault              string        `mapstructure:"vault"`
	PropertyName       string        `mapstructure:"property_name"`
	IgnoredFolders     []string      `mapstructure:"ignored_folders"`
	MinSyncInterval    time.Duration `mapstructure:"min_interval_between_syncs"`
	SoftExclusionGrace time.Duration `mapstructure:"soft_exclusion_grace"`
	DeletionPolicy     string        `mapstructure:"deletion_policy"`
	StateBackend       string        `mapstructure:"state_backend"`
	StatePath          string        `mapstructure:"state_path"`
	Verbose            bool          `mapstructure:"verbose"`
}

// Init points viper at the configuration file and environment. An empty
// cfgFile searches for .oot.* in the working directory and home.
func Init(cfgFile string) error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(".oot")
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
	}

	viper.SetEnvPrefix("OOT")
	viper.AutomaticEnv()

	// It's fine if no config file is found; we use defaults.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	}
	return nil
}

// Load reads configuration from viper, applying built-in defaults for any
// values not set by config file, environment, or flags.
func Load() (Config, error) {
	d := domain.DefaultSettings()
	viper.SetDefault("vault", DefaultVaultPath)
	viper.SetDefault("property_name", d.PropertyName)
	viper.SetDefault("ignored_folders", []string{})
	viper.SetDefault("min_interval_between_syncs", d.MinSyncInterval)
	viper.SetDefault("soft_exclusion_grace", d.SoftExclusionGrace)
	viper.SetDefault("deletion_policy", string(d.DeletionPolicy))
	viper.SetDefault("state_backend", BackendJSON)
	viper.SetDefault("state_path", "")
	viper.SetDefault("verbose", false)

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.Vault = expandHome(cfg.Vault)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values viper cannot type-check.
func (c Config) Validate() error {
	if strings.TrimSpace(c.PropertyName) == "" {
		return fmt.Errorf("property_name must not be empty")
	}
	switch domain.DeletionPolicy(c.DeletionPolicy) {
	case domain.DeletionSoft, domain.DeletionImmediate:
	default:
		return fmt.Errorf("deletion_policy must be %q or %q, got %q", domain.DeletionSoft, domain.DeletionImmediate, c.DeletionPolicy)
	}
	switch c.StateBackend {
	case BackendJSON, BackendSQLite:
	default:
		return fmt.Errorf("state_backend must be %q or %q, got %q", BackendJSON, BackendSQLite, c.StateBackend)
	}
	if c.MinSyncInterval < 0 || c.SoftExclusionGrace < 0 {
		return fmt.Errorf("durations must not be negative")
	}
	return nil
}

// Settings projects the engine parameters.
func (c Config) Settings() domain.Settings {
	return domain.Settings{
		PropertyName:       c.PropertyName,
		IgnoredFolders:     append([]string{}, c.IgnoredFolders...),
		MinSyncInterval:    c.MinSyncInterval,
		SoftExclusionGrace: c.SoftExclusionGrace,
		DeletionPolicy:     domain.DeletionPolicy(c.DeletionPolicy),
	}
}

// JSONStatePath returns where the json backend keeps its state.
func (c Config) JSONStatePath() string {
	if c.StatePath != "" {
		return expandHome(c.StatePath)
	}
	return filepath.Join(c.Vault, ".oot", "data.json")
}

func expandHome(p string) string {
	if strings.HasPrefix(p, "~") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, p[1:])
	}
	return p
}

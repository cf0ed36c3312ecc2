// Package config loads the fillbook configuration from a YAML file with
// environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/tradelytics/fillbook"
)

const (
	defaultConfigPath = "fillbook.yaml"
	envPrefix         = "fillbook"
)

// Config is the complete application configuration.
type Config struct {
	Database Database `mapstructure:"database"`
	Logging  Logging  `mapstructure:"logging"`
	Rebuild  Rebuild  `mapstructure:"rebuild"`

	// Multipliers maps instrument symbols to their contract multiplier
	// (dollars per point), as decimal literals.
	Multipliers map[string]string `mapstructure:"multipliers"`
}

// Database configures the SQLite store.
type Database struct {
	Path     string `mapstructure:"path"`
	InMemory bool   `mapstructure:"in_memory"`
}

// Logging configures the zap logger.
type Logging struct {
	Level            string   `mapstructure:"level"`
	Encoding         string   `mapstructure:"encoding"`
	Development      bool     `mapstructure:"development"`
	OutputPaths      []string `mapstructure:"output_paths"`
	ErrorOutputPaths []string `mapstructure:"error_output_paths"`
}

// Rebuild configures the position rebuild pipeline.
type Rebuild struct {
	// Concurrency bounds how many (account, instrument) partitions are
	// rebuilt in parallel.
	Concurrency int `mapstructure:"concurrency"`
}

// Load reads the configuration file at path (or the default location) and
// applies FILLBOOK_* environment overrides.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path == "" {
		path = defaultConfigPath
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil, fmt.Errorf("config file %q not found: %w", path, err)
		}
		return nil, fmt.Errorf("cannot read config file %q: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("cannot parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.path", "fillbook.db")
	v.SetDefault("database.in_memory", false)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.encoding", "console")
	v.SetDefault("logging.development", false)

	v.SetDefault("rebuild.concurrency", 4)
}

// Validate checks the loaded configuration for internally consistent
// values.
func (c *Config) Validate() error {
	if c.Database.Path == "" && !c.Database.InMemory {
		return errors.New("config: database.path is required unless database.in_memory is set")
	}
	if c.Rebuild.Concurrency < 1 {
		return fmt.Errorf("config: rebuild.concurrency must be at least 1, got %d", c.Rebuild.Concurrency)
	}
	if _, err := c.MultiplierTable(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// MultiplierTable builds the instrument multiplier lookup from the
// configured literals.
func (c *Config) MultiplierTable() (fillbook.MultiplierTable, error) {
	return fillbook.NewMultiplierTable(c.Multipliers)
}

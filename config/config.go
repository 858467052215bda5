// Package config loads the simulator configuration from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/kamio90/zus-retirement-simulator-sub000/factory"
)

// ErrInvalid is returned by Validate.
var ErrInvalid = errors.New("invalid configuration")

// Config holds all simulator configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Providers ProvidersConfig `yaml:"providers"`
	Seed      SeedConfig      `yaml:"seed"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig configures the HTTP adapter.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	AllowedOrigins  []string      `yaml:"allowed_origins"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// ProvidersConfig selects the provider bundle.
type ProvidersConfig struct {
	Kind       string `yaml:"kind"`        // demo, table
	StorePath  string `yaml:"store_path"`  // SQLite store for kind=table
	TablesFile string `yaml:"tables_file"` // JSON/YAML tables for kind=table, instead of the store

	// ReloadInterval re-reads the tables while serving. Zero disables it.
	ReloadInterval time.Duration `yaml:"reload_interval"`
}

// SeedConfig is the year range the seed command snapshots.
type SeedConfig struct {
	From int `yaml:"from"`
	To   int `yaml:"to"`
}

// LoggingConfig configures zap.
type LoggingConfig struct {
	Level       string `yaml:"level"` // debug, info, warn, error
	Development bool   `yaml:"development"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			AllowedOrigins:  []string{"*"},
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Providers: ProvidersConfig{
			Kind:      factory.KindDemo,
			StorePath: "tables.db",
		},
		Seed: SeedConfig{
			From: 1950,
			To:   2100,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from a YAML file over the defaults, then applies
// environment overrides. An empty path or a missing file yields the
// defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv("SIMULATOR_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: SIMULATOR_PORT=%q is not a number", ErrInvalid, v)
		}
		c.Server.Port = port
	}
	if v := os.Getenv("SIMULATOR_ALLOWED_ORIGINS"); v != "" {
		c.Server.AllowedOrigins = strings.Split(v, ",")
	}
	if v := os.Getenv("SIMULATOR_PROVIDERS"); v != "" {
		c.Providers.Kind = v
	}
	if v := os.Getenv("SIMULATOR_STORE"); v != "" {
		c.Providers.StorePath = v
	}
	if v := os.Getenv("SIMULATOR_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	return nil
}

// Validate checks the configuration for values the server cannot start with.
func (c *Config) Validate() error {
	var problems []string

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		problems = append(problems, fmt.Sprintf("server.port %d out of range", c.Server.Port))
	}
	if c.Server.ShutdownTimeout <= 0 {
		problems = append(problems, "server.shutdown_timeout must be positive")
	}

	switch c.Providers.Kind {
	case factory.KindDemo:
	case factory.KindTable:
		if c.Providers.StorePath == "" && c.Providers.TablesFile == "" {
			problems = append(problems, "providers: kind table needs store_path or tables_file")
		}
	default:
		problems = append(problems, fmt.Sprintf("providers.kind %q not one of %s", c.Providers.Kind, strings.Join(factory.Kinds(), ", ")))
	}

	if c.Providers.ReloadInterval < 0 {
		problems = append(problems, "providers.reload_interval must not be negative")
	}

	if c.Seed.From > c.Seed.To {
		problems = append(problems, fmt.Sprintf("seed range [%d, %d] is empty", c.Seed.From, c.Seed.To))
	}

	if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
		problems = append(problems, fmt.Sprintf("logging.level %q unknown", c.Logging.Level))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(problems, "; "))
	}
	return nil
}

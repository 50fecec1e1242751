// ABOUTME: Configuration loading and parsing for partycollage
// ABOUTME: Reads YAML or TOML, expands ${VAR} references, applies defaults, and validates

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// EnvConfigPath names the environment variable that overrides the config path.
const EnvConfigPath = "PARTYCOLLAGE_CONFIG"

// Config holds all configuration for partycollage.
type Config struct {
	Database DatabaseConfig `yaml:"database" toml:"database"`
	Session  SessionConfig  `yaml:"session" toml:"session"`
	Auth     AuthConfig     `yaml:"auth" toml:"auth"`
	Logging  LoggingConfig  `yaml:"logging" toml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics" toml:"metrics"`
}

// DatabaseConfig selects the SQLite file and driver.
type DatabaseConfig struct {
	Path   string `yaml:"path" toml:"path"`
	Driver string `yaml:"driver" toml:"driver"` // "sqlite" (modernc) or "sqlite3" (cgo)
}

// SessionConfig holds party session settings.
type SessionConfig struct {
	DefaultExpiryDays int `yaml:"default_expiry_days" toml:"default_expiry_days"`
}

// AuthConfig holds password storage settings.
type AuthConfig struct {
	PasswordScheme string `yaml:"password_scheme" toml:"password_scheme"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

// MetricsConfig holds metrics settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" toml:"enabled"`
	Path    string `yaml:"path" toml:"path"` // optional textfile collector output
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:   filepath.Join(dataDir(), "partycollage.db"),
			Driver: "sqlite",
		},
		Session: SessionConfig{DefaultExpiryDays: 7},
		Auth:    AuthConfig{PasswordScheme: "plaintext"},
		Logging: LoggingConfig{Level: "info", Format: "text"},
	}
}

func dataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "partycollage")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "share", "partycollage")
	}
	return "."
}

// DefaultPath returns the config file location: $PARTYCOLLAGE_CONFIG, then
// $XDG_CONFIG_HOME/partycollage/config.yaml, then ~/.config/partycollage/config.yaml.
func DefaultPath() string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "partycollage", "config.yaml")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", "partycollage", "config.yaml")
	}
	return "config.yaml"
}

// Load reads a configuration file from the given path and returns a parsed Config.
// Files ending in .toml are parsed as TOML, everything else as YAML.
// Environment variables in the format ${VAR_NAME} are expanded.
// Fields absent from the file keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	expanded := expandEnvVars(string(data))

	cfg := Default()
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.Decode(expanded, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	} else {
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// LoadOrDefault loads path (DefaultPath when empty). A missing file yields
// the defaults; any other failure is returned.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	switch c.Database.Driver {
	case "sqlite", "sqlite3":
	default:
		return fmt.Errorf("database.driver must be sqlite or sqlite3, got %q", c.Database.Driver)
	}

	if c.Session.DefaultExpiryDays < 1 {
		return fmt.Errorf("session.default_expiry_days must be at least 1")
	}

	switch c.Auth.PasswordScheme {
	case "plaintext", "bcrypt":
	default:
		return fmt.Errorf("auth.password_scheme must be plaintext or bcrypt, got %q", c.Auth.PasswordScheme)
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format)
	}

	return nil
}

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Loader provides methods for loading configuration from various sources.
type Loader interface {
	// Load loads configuration with the following precedence:
	// 1. Environment variables
	// 2. Configuration file
	// 3. Default values
	//
	// Returns the merged configuration or an error if validation fails.
	Load() (*Config, error)

	// LoadFromFile loads configuration from a specific file.
	LoadFromFile(path string) (*Config, error)
}

// loader implements the Loader interface.
type loader struct {
	configPath string
}

// NewLoader creates a new configuration loader.
//
// If configPath is empty, searches for a config file in:
// 1. ./config.yaml (current directory)
// 2. ~/.config/holerabbit/config.yaml.
func NewLoader(configPath string) Loader {
	return &loader{
		configPath: configPath,
	}
}

// Load implements Loader.Load.
func (l *loader) Load() (*Config, error) {
	cfg := Default()

	configPath := l.configPath
	if configPath == "" {
		configPath = l.findConfigFile()
	}

	if configPath != "" {
		fileCfg, err := l.LoadFromFile(configPath)
		if err != nil {
			// An explicitly requested file must load; a discovered one
			// may be absent or broken, in which case defaults stand.
			if l.configPath != "" {
				return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
			}
		} else {
			cfg = mergeConfigs(cfg, fileCfg)
		}
	}

	cfg = applyEnvVars(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// LoadFromFile implements Loader.LoadFromFile.
func (l *loader) LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from the user's own flags or env
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidYAML, err)
	}

	return &cfg, nil
}

// findConfigFile searches standard locations for a config file.
//
// Returns empty string if none exists.
func (l *loader) findConfigFile() string {
	candidates := []string{
		"./config.yaml",
		defaultConfigPath(),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// mergeConfigs merges file configuration into the base configuration.
//
// File values override defaults only when they are non-zero. The
// AutoTrack.Enabled flag is a bool and always taken from the override;
// domain lists override only when non-nil so an explicit empty list in
// the file clears the default allow-list.
func mergeConfigs(base, override *Config) *Config {
	result := *base

	result.AutoTrack.Enabled = override.AutoTrack.Enabled
	if override.AutoTrack.AllowedDomains != nil {
		result.AutoTrack.AllowedDomains = override.AutoTrack.AllowedDomains
	}
	if override.AutoTrack.ExcludedDomains != nil {
		result.AutoTrack.ExcludedDomains = override.AutoTrack.ExcludedDomains
	}
	if override.AutoTrack.SessionGapMinutes > 0 {
		result.AutoTrack.SessionGapMinutes = override.AutoTrack.SessionGapMinutes
	}

	if override.Backend.BaseURL != "" {
		result.Backend.BaseURL = override.Backend.BaseURL
	}
	if override.Backend.Timeout > 0 {
		result.Backend.Timeout = override.Backend.Timeout
	}

	if override.Bridge.Listen != "" {
		result.Bridge.Listen = override.Bridge.Listen
	}

	if override.Storage.DBPath != "" {
		result.Storage.DBPath = override.Storage.DBPath
	}

	if override.Logging.Level != "" {
		result.Logging.Level = override.Logging.Level
	}
	if override.Logging.Output != "" {
		result.Logging.Output = override.Logging.Output
	}
	if override.Logging.Format != "" {
		result.Logging.Format = override.Logging.Format
	}

	return &result
}

// applyEnvVars applies environment variable overrides.
//
// Supported environment variables:
//   - HOLERABBIT_BACKEND_URL: backend base URL
//   - HOLERABBIT_BACKEND_TIMEOUT: backend call timeout (Go duration)
//   - HOLERABBIT_LISTEN: bridge listen address
//   - HOLERABBIT_DB: override database path
//   - HOLERABBIT_LOG_LEVEL: log level
func applyEnvVars(cfg *Config) *Config {
	result := *cfg

	if baseURL := os.Getenv("HOLERABBIT_BACKEND_URL"); baseURL != "" {
		result.Backend.BaseURL = baseURL
	}

	if timeout := os.Getenv("HOLERABBIT_BACKEND_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil && d > 0 {
			result.Backend.Timeout = d
		}
	}

	if listen := os.Getenv("HOLERABBIT_LISTEN"); listen != "" {
		result.Bridge.Listen = listen
	}

	if dbPath := os.Getenv("HOLERABBIT_DB"); dbPath != "" {
		result.Storage.DBPath = dbPath
	}

	if logLevel := os.Getenv("HOLERABBIT_LOG_LEVEL"); logLevel != "" {
		result.Logging.Level = strings.ToLower(logLevel)
	}

	return &result
}

// Load is a convenience function that creates a loader and loads configuration.
func Load() (*Config, error) {
	return NewLoader("").Load()
}

// LoadFromFile is a convenience function that loads configuration from a file.
func LoadFromFile(path string) (*Config, error) {
	return NewLoader(path).Load()
}

// Save writes the configuration to a YAML file.
//
// Creates parent directories if they don't exist. The file is created
// with 0600 permissions.
func Save(cfg *Config, path string) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	return defaultConfigPath()
}

// ResolvePath returns the config file path Load would read: the explicit
// path when one is given, otherwise the first discovered candidate,
// otherwise the default location (where a config file would be created).
//
// Watchers must target this path rather than DefaultPath directly, or a
// ./config.yaml in the working directory would be loaded but never
// watched.
func ResolvePath(configPath string) string {
	if configPath != "" {
		return configPath
	}

	l := &loader{}
	if found := l.findConfigFile(); found != "" {
		return found
	}

	return defaultConfigPath()
}

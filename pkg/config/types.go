// Package config provides configuration management for the holerabbit agent.
//
// Configuration is assembled from multiple sources with the following
// precedence:
//  1. Persisted overrides (bbolt store, written by the setConfig message)
//  2. Environment variables
//  3. Configuration file (YAML)
//  4. Default values
//
// Example usage:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("tracking enabled: %v\n", cfg.AutoTrack.Enabled)
package config

import (
	"time"
)

// Config represents the complete agent configuration.
//
// Invariants:
// - AutoTrack.SessionGapMinutes must be > 0
// - Backend.BaseURL must be non-empty
// - Backend.Timeout must be > 0
// - Bridge.Listen must be non-empty
// - Logging.Level and Logging.Format must be recognized values.
type Config struct {
	// Auto-tracking behavior (domain admission, session gap).
	AutoTrack AutoTrackConfig `yaml:"auto_track" json:"autoTrack"`

	// Backend connection settings.
	Backend BackendConfig `yaml:"backend" json:"-"`

	// Message API listener settings.
	Bridge BridgeConfig `yaml:"bridge" json:"-"`

	// Storage settings.
	Storage StorageConfig `yaml:"storage" json:"-"`

	// Logging settings.
	Logging LoggingConfig `yaml:"logging" json:"-"`
}

// AutoTrackConfig controls the navigation-to-session engine.
//
// The JSON tags match the message API config shape consumed by the UI
// layer (getConfig/setConfig).
type AutoTrackConfig struct {
	// Enabled toggles navigation tracking.
	Enabled bool `yaml:"enabled" json:"enabled"`

	// AllowedDomains admits hostnames containing any of these strings.
	// Empty means allow all (subject to exclusions).
	AllowedDomains []string `yaml:"allowed_domains" json:"allowedDomains"`

	// ExcludedDomains rejects hostnames containing any of these strings,
	// regardless of the allow-list.
	ExcludedDomains []string `yaml:"excluded_domains" json:"excludedDomains"`

	// SessionGapMinutes is the idle gap after which a new session starts.
	SessionGapMinutes float64 `yaml:"session_gap_minutes" json:"sessionGapMinutes"`
}

// BackendConfig contains Mycelica backend connection settings.
type BackendConfig struct {
	// BaseURL is the backend service address.
	BaseURL string `yaml:"base_url"`

	// Timeout applies to every outbound backend call.
	Timeout time.Duration `yaml:"timeout"`
}

// BridgeConfig contains message API listener settings.
type BridgeConfig struct {
	// Listen is the local address the message API binds to.
	Listen string `yaml:"listen"`
}

// StorageConfig contains storage settings.
type StorageConfig struct {
	// DBPath is the bbolt database file holding persisted config overrides.
	DBPath string `yaml:"db_path"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	// Log level (debug, info, warn, error).
	Level string `yaml:"level"`

	// Log output destination (stdout, stderr, file path).
	Output string `yaml:"output"`

	// Log format (text, json).
	Format string `yaml:"format"`
}

// Validate checks if the configuration satisfies all invariants.
//
// Returns a sentinel error for the first violated invariant.
func (c *Config) Validate() error {
	if c.AutoTrack.SessionGapMinutes <= 0 {
		return ErrInvalidSessionGap
	}

	if c.Backend.BaseURL == "" {
		return ErrMissingBackendURL
	}
	if c.Backend.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.Bridge.Listen == "" {
		return ErrMissingListenAddr
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.Logging.Level] {
		return ErrInvalidLogLevel
	}

	validFormats := map[string]bool{
		"text": true,
		"json": true,
	}
	if !validFormats[c.Logging.Format] {
		return ErrInvalidLogFormat
	}

	return nil
}

package config

import (
	"os"
	"path/filepath"
	"time"
)

// Default returns a configuration with the agent's default values.
//
// Tracking starts disabled and scoped to the Wikimedia properties, the
// same out-of-the-box posture as the browser extension.
func Default() *Config {
	return &Config{
		AutoTrack: AutoTrackConfig{
			Enabled:           false,
			AllowedDomains:    []string{"wikipedia.org", "wikimedia.org"},
			ExcludedDomains:   []string{},
			SessionGapMinutes: 30,
		},
		Backend: BackendConfig{
			BaseURL: "http://localhost:9876",
			Timeout: 3 * time.Second,
		},
		Bridge: BridgeConfig{
			Listen: "127.0.0.1:9877",
		},
		Storage: StorageConfig{
			DBPath: defaultDBPath(),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: "stderr",
			Format: "text",
		},
	}
}

// defaultConfigDir returns the agent's config directory.
func defaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "holerabbit")
}

// defaultConfigPath returns the default config file location.
func defaultConfigPath() string {
	return filepath.Join(defaultConfigDir(), "config.yaml")
}

// defaultDBPath returns the default override database location.
func defaultDBPath() string {
	return filepath.Join(defaultConfigDir(), "holerabbit.db")
}

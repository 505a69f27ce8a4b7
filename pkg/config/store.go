package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/mycelica/holerabbit/pkg/logger"
)

// Bucket and key names.
var (
	bucketConfig = []byte("config")
	keyAutoTrack = []byte("auto_track")
)

// Store persists configuration overrides across agent restarts.
//
// The setConfig message mutates the auto-track section at runtime; the
// store keeps that mutation so a restarted agent resumes with the same
// tracking posture (the browser.storage.local role in the extension).
type Store interface {
	// LoadAutoTrack returns the persisted auto-track override.
	//
	// Returns ErrNotPersisted if no override has been saved yet.
	LoadAutoTrack() (*AutoTrackConfig, error)

	// SaveAutoTrack persists an auto-track override.
	SaveAutoTrack(cfg AutoTrackConfig) error

	// Close closes the database and releases resources.
	Close() error
}

// StoreConfig contains override store configuration.
type StoreConfig struct {
	// DBPath is the bbolt file path.
	DBPath string

	// Timeout is the database open timeout (default: 1 second).
	Timeout time.Duration
}

// store implements the Store interface using bbolt.
type store struct {
	db     *bolt.DB
	logger logger.Logger
}

// NewStore opens (creating if needed) the override database.
//
// Parameters:
//   - cfg: Store configuration
//   - log: Logger instance
//
// Returns:
//   - Configured Store
//   - Error if the database cannot be opened
func NewStore(cfg StoreConfig, log logger.Logger) (Store, error) {
	if cfg.Timeout == 0 {
		cfg.Timeout = time.Second
	}

	dbPath := expandHome(cfg.DBPath)

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := bolt.Open(dbPath, 0600, &bolt.Options{
		Timeout: cfg.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		if _, createErr := tx.CreateBucketIfNotExists(bucketConfig); createErr != nil {
			return fmt.Errorf("failed to create config bucket: %w", createErr)
		}
		return nil
	}); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			log.Error("failed to close database after initialization error",
				"error", closeErr)
		}
		return nil, err
	}

	log.Info("config store opened", "db_path", dbPath)

	return &store{
		db:     db,
		logger: log,
	}, nil
}

// LoadAutoTrack implements Store.LoadAutoTrack.
func (s *store) LoadAutoTrack() (*AutoTrackConfig, error) {
	var cfg *AutoTrackConfig

	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketConfig).Get(keyAutoTrack)
		if data == nil {
			return ErrNotPersisted
		}

		var c AutoTrackConfig
		if unmarshalErr := json.Unmarshal(data, &c); unmarshalErr != nil {
			return fmt.Errorf("failed to unmarshal auto-track override: %w", unmarshalErr)
		}

		cfg = &c
		return nil
	})

	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// SaveAutoTrack implements Store.SaveAutoTrack.
func (s *store) SaveAutoTrack(cfg AutoTrackConfig) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		data, err := json.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("failed to marshal auto-track override: %w", err)
		}

		if err := tx.Bucket(bucketConfig).Put(keyAutoTrack, data); err != nil {
			return fmt.Errorf("failed to store auto-track override: %w", err)
		}

		s.logger.Debug("auto-track override persisted",
			"enabled", cfg.Enabled,
			"gap_minutes", cfg.SessionGapMinutes)

		return nil
	})
}

// Close implements Store.Close.
func (s *store) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	s.logger.Debug("config store closed")
	return nil
}

// expandHome expands ~ in file paths to the user's home directory.
func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	if path == "~" {
		return homeDir
	}

	return filepath.Join(homeDir, path[2:])
}

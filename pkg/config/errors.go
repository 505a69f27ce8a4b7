package config

import "errors"

// Validation errors.
var (
	// ErrInvalidSessionGap is returned when the session gap is not positive.
	ErrInvalidSessionGap = errors.New("session gap minutes must be positive")

	// ErrMissingBackendURL is returned when no backend base URL is set.
	ErrMissingBackendURL = errors.New("backend base URL is required")

	// ErrInvalidTimeout is returned when the backend timeout is not positive.
	ErrInvalidTimeout = errors.New("backend timeout must be positive")

	// ErrMissingListenAddr is returned when no bridge listen address is set.
	ErrMissingListenAddr = errors.New("bridge listen address is required")

	// ErrInvalidLogLevel is returned for an unrecognized log level.
	ErrInvalidLogLevel = errors.New("invalid log level")

	// ErrInvalidLogFormat is returned for an unrecognized log format.
	ErrInvalidLogFormat = errors.New("invalid log format")
)

// Loader errors.
var (
	// ErrConfigNotFound is returned when a config file does not exist.
	ErrConfigNotFound = errors.New("config file not found")

	// ErrInvalidYAML is returned when a config file cannot be parsed.
	ErrInvalidYAML = errors.New("invalid YAML in config file")
)

// Store errors.
var (
	// ErrNotPersisted is returned when no override has been stored yet.
	ErrNotPersisted = errors.New("no persisted config override")
)

// Watcher errors.
var (
	// ErrWatcherClosed is returned when using a closed watcher.
	ErrWatcherClosed = errors.New("config watcher is closed")

	// ErrAlreadyWatching is returned when Start is called twice.
	ErrAlreadyWatching = errors.New("config watcher already started")
)

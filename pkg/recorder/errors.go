package recorder

import "errors"

// Common errors returned by the engine.
var (
	// ErrNoActiveSession is returned by Pause/Resume when no session exists.
	ErrNoActiveSession = errors.New("no active session")

	// ErrEngineRunning is returned when Start is called twice.
	ErrEngineRunning = errors.New("engine already running")

	// ErrEngineNotRunning is returned when Stop is called before Start.
	ErrEngineNotRunning = errors.New("engine not running")

	// ErrEngineClosed is returned when using a stopped engine.
	ErrEngineClosed = errors.New("engine is closed")
)

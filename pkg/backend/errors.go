package backend

import "errors"

// Common errors returned by the backend client.
var (
	// ErrMissingBaseURL is returned when no base URL is configured.
	ErrMissingBaseURL = errors.New("backend base URL is required")

	// ErrUnexpectedStatus is returned for non-2xx backend responses.
	ErrUnexpectedStatus = errors.New("unexpected backend status")

	// ErrEmptySessionID is returned when a session operation is called
	// without a session id.
	ErrEmptySessionID = errors.New("session id is required")
)

package obs

import "errors"

// Domain-specific errors for OBS control operations.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrConnectionFailed is returned when the dial or the Hello/Identify
	// exchange fails for any reason other than rejected credentials.
	ErrConnectionFailed = errors.New("obs: connection failed")

	// ErrAuthFailed is returned when obs-websocket rejects the password.
	ErrAuthFailed = errors.New("obs: authentication failed")

	// ErrRequestFailed is returned when a request is not acknowledged as
	// successful, carrying the server-reported comment where one exists.
	// Transport failures during a request are wrapped the same way.
	ErrRequestFailed = errors.New("obs: request failed")

	// ErrNotConnected is returned when attempting operations on a closed client.
	ErrNotConnected = errors.New("obs: client not connected")
)

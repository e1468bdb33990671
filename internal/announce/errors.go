package announce

import "errors"

var (
	// ErrConnectionFailed indicates the broker could not be reached
	// within the connect timeout.
	ErrConnectionFailed = errors.New("announce: connection failed")

	// ErrNotConnected indicates the broker connection is currently down.
	ErrNotConnected = errors.New("announce: not connected")
)

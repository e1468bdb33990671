package feed

import "errors"

// Domain-specific errors for feed operations.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrConnectionFailed is returned when the WebSocket dial or handshake fails.
	ErrConnectionFailed = errors.New("feed: connection failed")

	// ErrTimeout is returned by Receive when no frame arrives within the
	// bounded wait. It is the expected idle outcome, not a failure: the
	// caller uses it to check for a stop request between frames.
	ErrTimeout = errors.New("feed: receive timed out")

	// ErrClosed is returned by Receive once the connection has terminated,
	// wrapping the underlying close cause where one is known.
	ErrClosed = errors.New("feed: connection closed")
)

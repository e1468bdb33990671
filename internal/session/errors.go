package session

import "errors"

// Domain errors for the session package.
var (
	// ErrInvalidConfig is returned synchronously by Start when the session
	// configuration fails validation; the session never leaves Stopped.
	ErrInvalidConfig = errors.New("session: invalid configuration")

	// ErrAlreadyRunning is returned by Start while a session is active.
	// Stop the running session first.
	ErrAlreadyRunning = errors.New("session: already running")

	// ErrStartAborted is returned by Start when Stop was called while the
	// connections were still being established. The connections are
	// released and the session ends in Stopped.
	ErrStartAborted = errors.New("session: stopped during start")

	// ErrShutdownTimeout is returned by Stop when graceful shutdown
	// exceeded its bound and termination was forced. The session still
	// ends in Stopped; callers may treat this as informational.
	ErrShutdownTimeout = errors.New("session: shutdown timed out")
)

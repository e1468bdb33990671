package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/fieldcast/fieldcast/internal/feed"
	"github.com/fieldcast/fieldcast/internal/obs"
	"github.com/fieldcast/fieldcast/internal/switcher"
)

// Status represents the current state of a monitoring session.
type Status string

const (
	StatusStopped    Status = "stopped"
	StatusConnecting Status = "connecting"
	StatusRunning    Status = "running"
	StatusStopping   Status = "stopping"
)

// Default timing constants.
const (
	// defaultReceiveTimeout bounds each feed receive so the loop observes
	// a stop request within one interval.
	defaultReceiveTimeout = 1 * time.Second

	// defaultShutdownTimeout bounds graceful shutdown before termination
	// is forced.
	defaultShutdownTimeout = 5 * time.Second

	// maxFramePreview caps how much of an undecodable frame is logged.
	maxFramePreview = 120
)

// Config holds the connection settings for one monitoring session.
// It is immutable once the session starts; changes require stop and restart.
type Config struct {
	// EventCode is the scoring system event code. Required.
	EventCode string

	// ScoringHost and ScoringPort locate the scoring system feed.
	ScoringHost string
	ScoringPort int

	// OBSHost, OBSPort and OBSPassword locate the obs-websocket server.
	OBSHost     string
	OBSPort     int
	OBSPassword string

	// ConnectTimeout bounds both connection handshakes. Zero means the
	// clients' defaults.
	ConnectTimeout time.Duration
}

// validate checks the per-session connection settings.
func (c Config) validate() error {
	var errs []string
	if strings.TrimSpace(c.EventCode) == "" {
		errs = append(errs, "event code is required")
	}
	if c.ScoringPort < 1 || c.ScoringPort > 65535 {
		errs = append(errs, fmt.Sprintf("scoring port %d out of range", c.ScoringPort))
	}
	if c.OBSPort < 1 || c.OBSPort > 65535 {
		errs = append(errs, fmt.Sprintf("obs port %d out of range", c.OBSPort))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(errs, "; "))
	}
	return nil
}

// FeedConn is the slice of the feed client the supervisor drives.
type FeedConn interface {
	Receive(ctx context.Context, timeout time.Duration) ([]byte, error)
	Close() error
}

// ControlConn is the slice of the OBS client the supervisor drives.
type ControlConn interface {
	SwitchScene(ctx context.Context, scene string) error
	Close() error
}

// Logger defines the logging interface for the supervisor.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Options holds the long-lived collaborators for a Supervisor.
type Options struct {
	// Registry is the shared field-to-scene mapping. Required.
	Registry *switcher.Registry

	// Logger is an optional structured logger.
	Logger Logger

	// Recorder persists switch attempts (the journal). Optional.
	Recorder switcher.Recorder

	// Notifier publishes successful field changes (the announcer). Optional.
	Notifier switcher.Notifier

	// OnStatus is invoked on every session status transition. Optional.
	// It runs on whichever goroutine drove the transition and with the
	// supervisor's internal lock held: front ends must marshal onto their
	// own UI context and must not call back into the Supervisor.
	OnStatus func(Status)

	// ReceiveTimeout bounds each feed receive. Zero means 1s.
	ReceiveTimeout time.Duration

	// ShutdownTimeout bounds graceful shutdown. Zero means 5s.
	ShutdownTimeout time.Duration

	// DialFeed and ConnectControl build the session's connections.
	// Nil means the real feed and OBS clients. Overridable for tests.
	DialFeed       func(ctx context.Context, cfg feed.Config) (FeedConn, error)
	ConnectControl func(ctx context.Context, cfg obs.Config) (ControlConn, error)
}

// Supervisor drives the connect → monitor → disconnect lifecycle of one
// monitoring session at a time.
//
// It owns the feed and control connections for the active session and the
// per-session coordinator; the registry outlives sessions and is shared with
// front ends for editing.
//
// Thread Safety: Start, Stop, Status, CurrentField and UpdateMapping are
// safe for concurrent use. Stop is safe concurrently with an in-flight
// receive; the loop observes cancellation within one receive timeout.
type Supervisor struct {
	opts Options

	mu       sync.Mutex
	status   Status
	cancel   context.CancelFunc
	loopDone chan struct{}
	feedConn FeedConn
	control  ControlConn
	coord    *switcher.Coordinator
	logger   Logger
}

// New creates a Supervisor in the Stopped state.
func New(opts Options) (*Supervisor, error) {
	if opts.Registry == nil {
		return nil, errors.New("session: registry is required")
	}
	if opts.Logger == nil {
		opts.Logger = noopLogger{}
	}
	if opts.ReceiveTimeout == 0 {
		opts.ReceiveTimeout = defaultReceiveTimeout
	}
	if opts.ShutdownTimeout == 0 {
		opts.ShutdownTimeout = defaultShutdownTimeout
	}
	if opts.DialFeed == nil {
		opts.DialFeed = func(ctx context.Context, cfg feed.Config) (FeedConn, error) {
			return feed.Dial(ctx, cfg)
		}
	}
	if opts.ConnectControl == nil {
		opts.ConnectControl = func(ctx context.Context, cfg obs.Config) (ControlConn, error) {
			return obs.Connect(ctx, cfg)
		}
	}
	return &Supervisor{
		opts:   opts,
		status: StatusStopped,
		logger: opts.Logger,
	}, nil
}

// Start validates the configuration, connects to OBS and the feed, and
// begins the receive loop.
//
// Validation failures are reported synchronously as ErrInvalidConfig and
// leave the session Stopped. A connection failure on either endpoint is
// fatal to the session: whatever was established is released and the
// session returns to Stopped. Calling Start while a session is active is a
// warning no-op returning ErrAlreadyRunning. A Stop issued while the
// connections are still being established wins: the freshly-opened
// connections are released and Start returns ErrStartAborted.
func (s *Supervisor) Start(ctx context.Context, cfg Config) error {
	s.mu.Lock()
	if s.status != StatusStopped {
		status := s.status
		s.mu.Unlock()
		s.logger.Warn("start ignored, session already active", "status", string(status))
		return ErrAlreadyRunning
	}
	if err := cfg.validate(); err != nil {
		s.mu.Unlock()
		return err
	}
	s.setStatusLocked(StatusConnecting)
	s.mu.Unlock()

	control, err := s.opts.ConnectControl(ctx, obs.Config{
		Host:           cfg.OBSHost,
		Port:           cfg.OBSPort,
		Password:       cfg.OBSPassword,
		ConnectTimeout: cfg.ConnectTimeout,
	})
	if err != nil {
		s.logger.Error("failed to connect to OBS", "host", cfg.OBSHost, "port", cfg.OBSPort, "error", err)
		s.setStatus(StatusStopped)
		return fmt.Errorf("connecting to OBS: %w", err)
	}
	s.logger.Info("connected to OBS", "host", cfg.OBSHost, "port", cfg.OBSPort)

	feedConn, err := s.opts.DialFeed(ctx, feed.Config{
		Host:             cfg.ScoringHost,
		Port:             cfg.ScoringPort,
		EventCode:        cfg.EventCode,
		HandshakeTimeout: cfg.ConnectTimeout,
	})
	if err != nil {
		_ = control.Close()
		s.logger.Error("failed to connect to scoring feed",
			"host", cfg.ScoringHost, "port", cfg.ScoringPort, "error", err)
		s.setStatus(StatusStopped)
		return fmt.Errorf("connecting to scoring feed: %w", err)
	}
	s.logger.Info("connected to scoring feed",
		"host", cfg.ScoringHost, "port", cfg.ScoringPort, "event", cfg.EventCode)

	coord, err := switcher.NewCoordinator(switcher.CoordinatorOptions{
		Registry: s.opts.Registry,
		Control:  control,
		Recorder: s.opts.Recorder,
		Notifier: s.opts.Notifier,
		Logger:   s.logger,
	})
	if err != nil {
		_ = feedConn.Close()
		_ = control.Close()
		s.setStatus(StatusStopped)
		return err
	}

	loopCtx, cancel := context.WithCancel(context.Background())

	s.mu.Lock()
	if s.status != StatusConnecting {
		// Stop intervened while the connections were being established.
		s.mu.Unlock()
		cancel()
		_ = feedConn.Close()
		_ = control.Close()
		s.logger.Warn("session stopped during start, discarding connections")
		s.setStatus(StatusStopped)
		return ErrStartAborted
	}
	s.control = control
	s.feedConn = feedConn
	s.coord = coord
	s.cancel = cancel
	s.loopDone = make(chan struct{})
	done := s.loopDone
	s.setStatusLocked(StatusRunning)
	s.mu.Unlock()

	go s.receiveLoop(loopCtx, feedConn, coord, done)

	s.logger.Info("session running", "mapped_fields", s.opts.Registry.Len())
	return nil
}

// receiveLoop consumes feed frames until cancelled or the connection dies.
func (s *Supervisor) receiveLoop(ctx context.Context, conn FeedConn, coord *switcher.Coordinator, done chan struct{}) {
	defer close(done)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		data, err := s.receive(ctx, conn)
		switch {
		case err == nil:
			s.handleFrame(ctx, coord, data)

		case errors.Is(err, feed.ErrTimeout):
			// Idle interval; loop around and re-check cancellation.

		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return

		case errors.Is(err, feed.ErrClosed):
			if s.Status() == StatusRunning {
				s.logger.Error("scoring feed connection lost", "error", err)
				// Stop waits on this loop's done channel, so it must run
				// on its own goroutine.
				go func() { _ = s.Stop() }()
			}
			return

		default:
			s.logger.Warn("feed receive error", "error", err)
		}
	}
}

func (s *Supervisor) receive(ctx context.Context, conn FeedConn) ([]byte, error) {
	return conn.Receive(ctx, s.opts.ReceiveTimeout)
}

// handleFrame classifies one frame and feeds match-show events to the
// coordinator. One event is processed to completion before the next receive.
func (s *Supervisor) handleFrame(ctx context.Context, coord *switcher.Coordinator, data []byte) {
	ev := feed.Classify(data)
	switch ev.Kind {
	case feed.KindMatchShow:
		coord.HandleMatchShow(ctx, ev.Field)
	case feed.KindMalformed:
		s.logger.Warn("dropping undecodable frame", "payload", framePreview(data))
	case feed.KindPong, feed.KindIgnored:
		// Keep-alives and display chatter: no action, no logging.
	}
}

// Stop cancels the receive loop and tears the session down.
//
// Graceful shutdown (close feed, drain the loop, disconnect OBS) is bounded
// by the shutdown timeout; past it, termination is forced with a warning and
// ErrShutdownTimeout is returned. The session always ends Stopped. Stop on a
// stopped session is a no-op.
func (s *Supervisor) Stop() error {
	s.mu.Lock()
	if s.status == StatusStopped || s.status == StatusStopping {
		s.mu.Unlock()
		return nil
	}
	s.setStatusLocked(StatusStopping)
	cancel := s.cancel
	feedConn := s.feedConn
	control := s.control
	done := s.loopDone
	s.cancel = nil
	s.feedConn = nil
	s.control = nil
	s.coord = nil
	s.mu.Unlock()

	s.logger.Info("stopping session")
	if cancel != nil {
		cancel()
	}

	graceful := make(chan struct{})
	go func() {
		defer close(graceful)
		if feedConn != nil {
			_ = feedConn.Close()
		}
		if done != nil {
			<-done
		}
		if control != nil {
			_ = control.Close()
		}
	}()

	var err error
	select {
	case <-graceful:
		s.logger.Info("session stopped")
	case <-time.After(s.opts.ShutdownTimeout):
		s.logger.Warn("shutdown timed out, forcing termination",
			"timeout", s.opts.ShutdownTimeout)
		err = ErrShutdownTimeout
	}

	s.setStatus(StatusStopped)
	return err
}

// Status returns the current session status.
func (s *Supervisor) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// CurrentField returns the field of the active session's last successful
// switch. The second return is false when no session is active or no switch
// has succeeded yet.
func (s *Supervisor) CurrentField() (int, bool) {
	s.mu.Lock()
	coord := s.coord
	s.mu.Unlock()
	if coord == nil {
		return 0, false
	}
	return coord.CurrentField()
}

// UpdateMapping replaces the registry contents. Valid while a session is
// running; the next decision cycle observes the new mapping.
func (s *Supervisor) UpdateMapping(scenes map[int]string) error {
	if err := s.opts.Registry.Replace(scenes); err != nil {
		return err
	}
	s.logger.Info("scene mapping updated", "mapped_fields", len(scenes))
	return nil
}

func (s *Supervisor) setStatus(status Status) {
	s.mu.Lock()
	s.setStatusLocked(status)
	s.mu.Unlock()
}

// setStatusLocked updates the status and fires OnStatus. Callers hold s.mu.
func (s *Supervisor) setStatusLocked(status Status) {
	if s.status == status {
		return
	}
	s.status = status
	if s.opts.OnStatus != nil {
		s.opts.OnStatus(status)
	}
}

// framePreview truncates an undecodable payload for logging.
func framePreview(data []byte) string {
	if len(data) > maxFramePreview {
		return string(data[:maxFramePreview]) + "..."
	}
	return string(data)
}

package switcher

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"
)

// SceneSwitcher is the interface the coordinator needs from the OBS client.
type SceneSwitcher interface {
	// SwitchScene sets the current program scene.
	SwitchScene(ctx context.Context, scene string) error
}

// Recorder persists switch attempts for later review. Optional.
type Recorder interface {
	// RecordSwitch stores one switch attempt outcome.
	RecordSwitch(ctx context.Context, rec Record) error
}

// Notifier publishes field changes to interested external systems. Optional.
type Notifier interface {
	// FieldChanged reports a successful switch to a new field.
	FieldChanged(field int, scene string)
}

// Logger defines the logging interface for the coordinator.
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

// Outcome is the result of one switch attempt.
type Outcome string

const (
	// OutcomeSwitched means the scene change succeeded.
	OutcomeSwitched Outcome = "switched"

	// OutcomeFailed means the OBS request failed; the current field is unchanged.
	OutcomeFailed Outcome = "failed"

	// OutcomeNoMapping means the field has no registry entry; no request was made.
	OutcomeNoMapping Outcome = "no_mapping"
)

// Record describes one switch attempt for the journal.
type Record struct {
	At      time.Time
	Field   int
	Scene   string
	Outcome Outcome
	Detail  string
}

// Coordinator is the field-change state machine.
//
// It consumes classified match-show events, consults the registry, and calls
// the scene switcher only on an actual field change. A steady stream of
// identical match-show events produces exactly one scene switch.
//
// The current field starts unset and only advances on a successful switch:
// after a failure the prior value is kept, so an identical follow-up event
// retries naturally while a successful switch suppresses repeats.
//
// Thread Safety: HandleMatchShow is safe for concurrent use, though the
// session delivers events one at a time.
type Coordinator struct {
	registry *Registry
	control  SceneSwitcher
	recorder Recorder
	notifier Notifier
	logger   Logger

	mu       sync.Mutex
	current  int
	hasField bool
}

// CoordinatorOptions holds dependencies for creating a Coordinator.
type CoordinatorOptions struct {
	// Registry is the field-to-scene mapping. Required.
	Registry *Registry

	// Control issues scene-switch requests. Required.
	Control SceneSwitcher

	// Recorder persists switch attempts. Optional.
	Recorder Recorder

	// Notifier publishes successful field changes. Optional.
	Notifier Notifier

	// Logger is an optional structured logger.
	Logger Logger
}

// NewCoordinator creates a coordinator with no current field.
func NewCoordinator(opts CoordinatorOptions) (*Coordinator, error) {
	if opts.Registry == nil {
		return nil, errors.New("switcher: registry is required")
	}
	if opts.Control == nil {
		return nil, errors.New("switcher: scene switcher is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = noopLogger{}
	}
	return &Coordinator{
		registry: opts.Registry,
		control:  opts.Control,
		recorder: opts.Recorder,
		notifier: opts.Notifier,
		logger:   logger,
	}, nil
}

// HandleMatchShow processes one match-show event for the given field.
//
// If the field equals the current one, nothing happens. Otherwise the
// registry is consulted and a single switch is attempted; only success
// advances the current field. Failures are logged and recorded, never
// escalated: the next differing event is the retry policy.
func (c *Coordinator) HandleMatchShow(ctx context.Context, field int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.hasField && c.current == field {
		return
	}

	scene, ok := c.registry.Lookup(field)
	if !ok {
		c.logger.Warn("no scene mapping for field", "field", field)
		c.record(ctx, Record{Field: field, Outcome: OutcomeNoMapping})
		return
	}

	if err := c.control.SwitchScene(ctx, scene); err != nil {
		c.logger.Error("scene switch failed",
			"field", field,
			"scene", scene,
			"error", err,
		)
		c.record(ctx, Record{Field: field, Scene: scene, Outcome: OutcomeFailed, Detail: err.Error()})
		return
	}

	previous := "none"
	if c.hasField {
		previous = strconv.Itoa(c.current)
	}
	c.current = field
	c.hasField = true

	c.logger.Info("switched scene",
		"field", field,
		"scene", scene,
		"previous_field", previous,
	)
	c.record(ctx, Record{Field: field, Scene: scene, Outcome: OutcomeSwitched})

	if c.notifier != nil {
		c.notifier.FieldChanged(field, scene)
	}
}

// CurrentField returns the field of the last successful switch.
// The second return is false until the first switch succeeds.
func (c *Coordinator) CurrentField() (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current, c.hasField
}

// record persists a switch attempt if a recorder is configured.
// Journal failures are logged and otherwise ignored; recording must never
// interfere with switching.
func (c *Coordinator) record(ctx context.Context, rec Record) {
	if c.recorder == nil {
		return
	}
	rec.At = time.Now().UTC()
	if err := c.recorder.RecordSwitch(ctx, rec); err != nil {
		c.logger.Error("failed to record switch attempt", "error", err)
	}
}

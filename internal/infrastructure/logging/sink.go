package logging

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

// Sink receives timestamped human-readable log lines.
//
// Front ends implement this to display session activity (a text widget, a
// terminal, a ring buffer). Implementations are invoked from the goroutine
// that produced the record and must marshal onto their own UI context if one
// exists; they should return quickly and must not call back into the logger.
type Sink interface {
	Log(line string)
}

// SinkFunc adapts a plain function to the Sink interface.
type SinkFunc func(line string)

// Log implements Sink.
func (f SinkFunc) Log(line string) { f(line) }

// timeLayout is the prefix format for sink lines. Operators watch these lines
// live during an event, so a short wall-clock time beats a full RFC3339 stamp.
const timeLayout = "15:04:05"

// NewSinkHandler returns a slog.Handler that renders each record as a single
// "HH:MM:SS message (key=value ...)" line and hands it to sink.
func NewSinkHandler(sink Sink, level slog.Level) slog.Handler {
	return &sinkHandler{sink: sink, level: level, mu: &sync.Mutex{}}
}

type sinkHandler struct {
	sink  Sink
	level slog.Level
	attrs []slog.Attr
	group string

	// mu serialises sink delivery; shared by handlers derived via
	// WithAttrs and WithGroup so lines never interleave.
	mu *sync.Mutex
}

func (h *sinkHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *sinkHandler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder
	b.WriteString(r.Time.Format(timeLayout))
	b.WriteByte(' ')
	if r.Level >= slog.LevelWarn {
		b.WriteString(r.Level.String())
		b.WriteString(": ")
	}
	b.WriteString(r.Message)

	first := true
	writeAttr := func(a slog.Attr) {
		if a.Equal(slog.Attr{}) {
			return
		}
		if first {
			b.WriteString(" (")
			first = false
		} else {
			b.WriteByte(' ')
		}
		b.WriteString(h.group)
		b.WriteString(a.Key)
		b.WriteByte('=')
		b.WriteString(fmt.Sprint(a.Value.Resolve().Any()))
	}
	for _, a := range h.attrs {
		writeAttr(a)
	}
	r.Attrs(func(a slog.Attr) bool {
		writeAttr(a)
		return true
	})
	if !first {
		b.WriteByte(')')
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.sink.Log(b.String())
	return nil
}

func (h *sinkHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &next
}

func (h *sinkHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.group = h.group + name + "."
	return &next
}

// teeHandler fans a record out to every wrapped handler.
type teeHandler struct {
	handlers []slog.Handler
}

func (t teeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range t.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (t teeHandler) Handle(ctx context.Context, r slog.Record) error {
	var firstErr error
	for _, h := range t.handlers {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (t teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := make([]slog.Handler, len(t.handlers))
	for i, h := range t.handlers {
		next[i] = h.WithAttrs(attrs)
	}
	return teeHandler{handlers: next}
}

func (t teeHandler) WithGroup(name string) slog.Handler {
	next := make([]slog.Handler, len(t.handlers))
	for i, h := range t.handlers {
		next[i] = h.WithGroup(name)
	}
	return teeHandler{handlers: next}
}

package feed

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Connection constants.
const (
	// defaultHandshakeTimeout bounds the WebSocket dial and upgrade.
	defaultHandshakeTimeout = 5 * time.Second

	// frameBuffer is the number of undelivered frames held between the
	// reader goroutine and Receive before the reader blocks.
	frameBuffer = 16

	// closeGrace is how long Close waits for the close handshake and for
	// the reader goroutine to drain out.
	closeGrace = time.Second

	// streamPath is the scoring system's display command stream endpoint.
	streamPath = "/stream/display/command/"
)

// Config contains scoring feed connection settings.
type Config struct {
	// Host is the scoring system host.
	Host string

	// Port is the scoring system port.
	Port int

	// EventCode identifies the event whose display commands to stream.
	EventCode string

	// HandshakeTimeout bounds the dial. Zero means the default.
	HandshakeTimeout time.Duration
}

// URL returns the WebSocket endpoint for the configured event.
func (c Config) URL() string {
	return fmt.Sprintf("ws://%s:%d%s?code=%s",
		c.Host, c.Port, streamPath, url.QueryEscape(c.EventCode))
}

// Client owns a single persistent WebSocket connection to the scoring
// system's display command stream.
//
// A dedicated reader goroutine pumps raw frames onto an internal channel;
// Receive takes frames off that channel under a bounded wait. The split
// exists because a gorilla/websocket connection is unusable after a read
// deadline expires, so the per-call timeout cannot live on the socket.
//
// Thread Safety: Receive is intended for a single consumer. Close may be
// called concurrently with an in-flight Receive.
type Client struct {
	conn   *websocket.Conn
	frames chan []byte

	// stop unblocks the reader if it is parked on a channel send.
	stop chan struct{}

	// done is closed when the reader goroutine exits.
	done chan struct{}

	closeOnce sync.Once

	mu       sync.Mutex
	readErr  error
	stopping bool
}

// Dial opens the WebSocket connection to the scoring system and starts the
// reader goroutine.
//
// Parameters:
//   - ctx: Context bounding the dial
//   - cfg: Feed connection settings
//
// Returns:
//   - *Client: Connected client ready for Receive
//   - error: Wrapping ErrConnectionFailed if the dial or upgrade fails
func Dial(ctx context.Context, cfg Config) (*Client, error) {
	timeout := cfg.HandshakeTimeout
	if timeout == 0 {
		timeout = defaultHandshakeTimeout
	}
	dialer := websocket.Dialer{HandshakeTimeout: timeout}

	conn, resp, err := dialer.DialContext(ctx, cfg.URL(), nil)
	if err != nil {
		if resp != nil {
			_ = resp.Body.Close()
		}
		return nil, fmt.Errorf("%w: dialing %s: %w", ErrConnectionFailed, cfg.URL(), err)
	}

	c := &Client{
		conn:   conn,
		frames: make(chan []byte, frameBuffer),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go c.readLoop()

	return c, nil
}

// readLoop reads frames until the connection dies or Close is called.
func (c *Client) readLoop() {
	defer close(c.done)
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			c.mu.Lock()
			c.readErr = err
			c.mu.Unlock()
			return
		}
		select {
		case c.frames <- data:
		case <-c.stop:
			return
		}
	}
}

// Receive returns the next raw frame, waiting at most timeout.
//
// Returns:
//   - []byte: The raw frame payload
//   - error: ErrTimeout when the bounded wait elapses (the cooperative
//     cancellation point), ErrClosed once the connection has terminated,
//     or the context error if ctx is cancelled first
//
// Frames already buffered when the connection dies are still delivered
// before ErrClosed is reported.
func (c *Client) Receive(ctx context.Context, timeout time.Duration) ([]byte, error) {
	// Drain buffered frames ahead of a racing close.
	select {
	case data := <-c.frames:
		return data, nil
	default:
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case data := <-c.frames:
		return data, nil
	case <-c.done:
		// The reader may have queued a final frame in the same instant
		// it exited; deliver it before reporting closure.
		select {
		case data := <-c.frames:
			return data, nil
		default:
		}
		return nil, c.closedErr()
	case <-timer.C:
		return nil, ErrTimeout
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// closedErr builds the ErrClosed result, attaching the underlying cause
// unless the client was deliberately closed.
func (c *Client) closedErr() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopping || c.readErr == nil {
		return ErrClosed
	}
	return fmt.Errorf("%w: %w", ErrClosed, c.readErr)
}

// Close tears down the connection.
//
// It attempts a WebSocket close handshake, closes the underlying socket,
// and waits briefly for the reader goroutine to exit. Safe to call more
// than once and concurrently with Receive.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.stopping = true
		c.mu.Unlock()

		close(c.stop)

		deadline := time.Now().Add(closeGrace)
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = c.conn.WriteControl(websocket.CloseMessage, msg, deadline)
		_ = c.conn.Close()

		select {
		case <-c.done:
		case <-time.After(closeGrace):
		}
	})
	return nil
}

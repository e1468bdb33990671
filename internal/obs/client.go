package obs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Connection constants.
const (
	// defaultConnectTimeout bounds the dial plus the Hello/Identify
	// exchange. A hung or unreachable OBS must fail the session start
	// quickly instead of blocking the caller.
	defaultConnectTimeout = 3 * time.Second

	// requestTimeout bounds a single request round trip.
	requestTimeout = 5 * time.Second

	// closeGrace bounds the close handshake on Close.
	closeGrace = time.Second
)

// Config contains obs-websocket connection settings.
type Config struct {
	Host string
	Port int

	// Password may be empty when obs-websocket authentication is disabled.
	Password string

	// ConnectTimeout bounds the handshake. Zero means the default.
	ConnectTimeout time.Duration
}

// Client owns a connection to an OBS instance's obs-websocket v5 server.
//
// The client issues requests only; event deliveries are not subscribed.
// Requests carry no retry policy: a failed request is reported once and the
// decision to try again belongs to the caller.
//
// Thread Safety: SwitchScene and Close serialise on an internal mutex, but
// callers are expected to issue one request at a time.
type Client struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

// Connect dials obs-websocket and completes the Hello/Identify exchange.
//
// The whole handshake is bounded by the connect timeout; on any failure all
// partially-established resources are released before returning.
//
// Parameters:
//   - ctx: Context bounding the dial
//   - cfg: OBS connection settings
//
// Returns:
//   - *Client: Identified client ready for requests
//   - error: Wrapping ErrAuthFailed if the password was rejected, or
//     ErrConnectionFailed for every other handshake failure
func Connect(ctx context.Context, cfg Config) (*Client, error) {
	timeout := cfg.ConnectTimeout
	if timeout == 0 {
		timeout = defaultConnectTimeout
	}

	dialer := websocket.Dialer{HandshakeTimeout: timeout}
	addr := fmt.Sprintf("ws://%s:%d", cfg.Host, cfg.Port)

	conn, resp, err := dialer.DialContext(ctx, addr, nil)
	if err != nil {
		if resp != nil {
			_ = resp.Body.Close()
		}
		return nil, fmt.Errorf("%w: dialing %s: %w", ErrConnectionFailed, addr, err)
	}

	c := &Client{conn: conn}
	if err := c.identify(cfg.Password, timeout); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return c, nil
}

// identify performs the Hello/Identify/Identified exchange.
func (c *Client) identify(password string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	if err := c.conn.SetReadDeadline(deadline); err != nil {
		return fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	var hello helloData
	if err := c.readPayload(opHello, &hello); err != nil {
		return fmt.Errorf("%w: awaiting hello: %w", ErrConnectionFailed, err)
	}

	identify := identifyData{RPCVersion: rpcVersion}
	if hello.Authentication != nil {
		identify.Authentication = authResponse(password,
			hello.Authentication.Salt, hello.Authentication.Challenge)
	}

	if err := c.conn.SetWriteDeadline(deadline); err != nil {
		return fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}
	if err := c.writePayload(opIdentify, identify); err != nil {
		return fmt.Errorf("%w: sending identify: %w", ErrConnectionFailed, err)
	}

	var identified identifiedData
	if err := c.readPayload(opIdentified, &identified); err != nil {
		var closeErr *websocket.CloseError
		if errors.As(err, &closeErr) && closeErr.Code == closeCodeAuthFailed {
			return fmt.Errorf("%w: %s", ErrAuthFailed, closeErr.Text)
		}
		return fmt.Errorf("%w: awaiting identified: %w", ErrConnectionFailed, err)
	}

	// Clear deadlines; each request sets its own.
	_ = c.conn.SetReadDeadline(time.Time{})
	_ = c.conn.SetWriteDeadline(time.Time{})
	return nil
}

// SwitchScene sets the current program scene.
//
// It issues a single SetCurrentProgramScene request and waits for the
// matching response. A non-success status is surfaced as ErrRequestFailed
// carrying the server-reported comment; transport failures are wrapped the
// same way. No retry is attempted.
//
// Parameters:
//   - ctx: Context for cancellation; its deadline tightens the request bound
//   - scene: Scene name exactly as configured in OBS
func (c *Client) SwitchScene(ctx context.Context, scene string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return ErrNotConnected
	}

	deadline := time.Now().Add(requestTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	requestID := uuid.NewString()
	req := requestData{
		RequestType: requestSetScene,
		RequestID:   requestID,
		RequestData: map[string]string{"sceneName": scene},
	}

	if err := c.conn.SetWriteDeadline(deadline); err != nil {
		return fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	if err := c.writePayload(opRequest, req); err != nil {
		return fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}

	if err := c.conn.SetReadDeadline(deadline); err != nil {
		return fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	for {
		var resp requestResponseData
		if err := c.readPayload(opRequestResponse, &resp); err != nil {
			return fmt.Errorf("%w: %w", ErrRequestFailed, err)
		}
		if resp.RequestID != requestID {
			// Stale response from an abandoned earlier request.
			continue
		}
		if !resp.RequestStatus.Result {
			if resp.RequestStatus.Comment != "" {
				return fmt.Errorf("%w: %s (code %d)",
					ErrRequestFailed, resp.RequestStatus.Comment, resp.RequestStatus.Code)
			}
			return fmt.Errorf("%w: code %d", ErrRequestFailed, resp.RequestStatus.Code)
		}
		return nil
	}
}

// Close disconnects from obs-websocket. Safe to call more than once.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return nil
	}

	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeGrace))
	err := c.conn.Close()
	c.conn = nil
	return err
}

// readPayload reads envelopes until one with the wanted opcode arrives,
// decoding its payload into out. Other opcodes (stray events, unmatched
// responses) are skipped.
func (c *Client) readPayload(wantOp int, out any) error {
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return err
		}
		var env envelope
		if err := json.Unmarshal(data, &env); err != nil {
			return fmt.Errorf("decoding envelope: %w", err)
		}
		if env.Op != wantOp {
			continue
		}
		if err := json.Unmarshal(env.D, out); err != nil {
			return fmt.Errorf("decoding op %d payload: %w", env.Op, err)
		}
		return nil
	}
}

// writePayload sends one envelope.
func (c *Client) writePayload(op int, payload any) error {
	d, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding op %d payload: %w", op, err)
	}
	return c.conn.WriteJSON(envelope{Op: op, D: d})
}

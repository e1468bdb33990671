package announce

import (
	"context"
	"fmt"
	"sync"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/fieldcast/fieldcast/internal/infrastructure/config"
)

// Connection constants.
const (
	// defaultConnectTimeout is the maximum time to wait for initial connection.
	defaultConnectTimeout = 10 * time.Second

	// defaultPublishTimeout is the maximum time to wait for publish acknowledgment.
	defaultPublishTimeout = 5 * time.Second

	// defaultDisconnectQuiesce is the time to wait for pending operations on disconnect.
	defaultDisconnectQuiesce = 1000 // milliseconds

	// defaultKeepAlive is the keepalive interval for the connection.
	defaultKeepAlive = 60 * time.Second

	// reconnectInitialDelay is the starting backoff for reconnect attempts.
	reconnectInitialDelay = 1 * time.Second

	// reconnectMaxDelay caps the reconnect backoff.
	reconnectMaxDelay = 60 * time.Second
)

// Topic names published by the announcer. All are retained so late
// subscribers immediately see the current state.
const (
	topicStatus  = "fieldcast/status"
	topicSession = "fieldcast/session"
	topicField   = "fieldcast/field"
)

// Logger interface for optional logging support.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Warn(msg string, args ...any)
}

// Announcer publishes session state to an MQTT broker so dashboards and
// stream overlays can follow what the switcher is doing.
//
// It publishes three retained topics:
//   - fieldcast/status: online/offline, with an LWT for crash detection
//   - fieldcast/session: the session lifecycle state
//   - fieldcast/field: the active field and scene after each switch
//
// The Announcer satisfies switcher.Notifier.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type Announcer struct {
	client pahomqtt.Client
	cfg    config.AnnounceConfig

	connected bool
	connMu    sync.RWMutex

	logger   Logger
	loggerMu sync.RWMutex
}

// Connect establishes a connection to the MQTT broker and publishes the
// online status.
//
// The broker's Last Will and Testament is configured before connecting,
// so an unexpected disconnect flips fieldcast/status to offline without
// any action from this process. Reconnection is automatic with
// exponential backoff; retained topics are re-published by the broker,
// not by us, so there is nothing to restore on reconnect.
//
// Parameters:
//   - cfg: Announce configuration from config.yaml
//
// Returns:
//   - *Announcer: Connected announcer ready for use
//   - error: If initial connection fails within timeout
func Connect(cfg config.AnnounceConfig) (*Announcer, error) {
	opts := buildClientOptions(cfg)
	configureLWT(opts, cfg.Broker.ClientID)

	a := &Announcer{cfg: cfg}

	opts.SetOnConnectHandler(func(_ pahomqtt.Client) {
		a.handleConnect()
	})
	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
		a.handleDisconnect(err)
	})

	a.client = pahomqtt.NewClient(opts)
	token := a.client.Connect()
	if !token.WaitTimeout(defaultConnectTimeout) {
		return nil, fmt.Errorf("%w: timeout after %v", ErrConnectionFailed, defaultConnectTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	// The OnConnectHandler runs asynchronously and may not have executed
	// yet; mark connected here so publishes work immediately.
	a.connMu.Lock()
	a.connected = true
	a.connMu.Unlock()

	return a, nil
}

// handleConnect is called when the connection is established.
func (a *Announcer) handleConnect() {
	a.connMu.Lock()
	a.connected = true
	a.connMu.Unlock()

	a.client.Publish(topicStatus, byte(a.cfg.QoS), true, buildOnlinePayload(a.cfg.Broker.ClientID))
}

// handleDisconnect is called when the connection is lost.
func (a *Announcer) handleDisconnect(err error) {
	a.connMu.Lock()
	a.connected = false
	a.connMu.Unlock()

	if logger := a.getLogger(); logger != nil {
		logger.Warn("MQTT connection lost", "error", err)
	}
}

// SessionStatus publishes the session lifecycle state to fieldcast/session.
//
// Failures are logged rather than returned: status announcements are
// advisory and must never stall the session state machine.
func (a *Announcer) SessionStatus(status string) {
	payload := fmt.Sprintf(
		`{"status":%q,"timestamp":"%s"}`,
		status,
		time.Now().UTC().Format(time.RFC3339),
	)
	a.publish(topicSession, payload)
}

// FieldChanged publishes the active field and scene to fieldcast/field.
// Implements switcher.Notifier.
func (a *Announcer) FieldChanged(field int, scene string) {
	payload := fmt.Sprintf(
		`{"field":%d,"scene":%q,"timestamp":"%s"}`,
		field,
		scene,
		time.Now().UTC().Format(time.RFC3339),
	)
	a.publish(topicField, payload)
}

// publish sends a retained message, logging on timeout or error.
func (a *Announcer) publish(topic, payload string) {
	if !a.IsConnected() {
		if logger := a.getLogger(); logger != nil {
			logger.Warn("announcement dropped, broker not connected", "topic", topic)
		}
		return
	}

	token := a.client.Publish(topic, byte(a.cfg.QoS), true, payload)
	if !token.WaitTimeout(defaultPublishTimeout) {
		if logger := a.getLogger(); logger != nil {
			logger.Warn("announcement publish timed out", "topic", topic)
		}
		return
	}
	if err := token.Error(); err != nil {
		if logger := a.getLogger(); logger != nil {
			logger.Warn("announcement publish failed", "topic", topic, "error", err)
		}
	}
}

// HealthCheck verifies the broker connection is alive.
func (a *Announcer) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("announce health check: %w", ctx.Err())
	default:
	}

	if !a.IsConnected() {
		return ErrNotConnected
	}
	return nil
}

// IsConnected returns the current connection state.
func (a *Announcer) IsConnected() bool {
	a.connMu.RLock()
	defer a.connMu.RUnlock()
	return a.connected && a.client.IsConnected()
}

// SetLogger sets a logger for publish and connection warnings.
// If not set, failures are silently ignored.
func (a *Announcer) SetLogger(logger Logger) {
	a.loggerMu.Lock()
	a.logger = logger
	a.loggerMu.Unlock()
}

// getLogger returns the current logger (may be nil).
func (a *Announcer) getLogger() Logger {
	a.loggerMu.RLock()
	defer a.loggerMu.RUnlock()
	return a.logger
}

// Close gracefully disconnects from the MQTT broker.
//
// It publishes a graceful offline status (distinct from the LWT crash
// status) before disconnecting, then waits briefly for pending
// operations to flush.
func (a *Announcer) Close() error {
	if a.client == nil {
		return nil
	}

	if a.IsConnected() {
		token := a.client.Publish(topicStatus, byte(a.cfg.QoS), true,
			buildOfflinePayload(a.cfg.Broker.ClientID, "graceful_shutdown"))
		token.WaitTimeout(defaultPublishTimeout)
	}

	a.client.Disconnect(defaultDisconnectQuiesce)

	a.connMu.Lock()
	a.connected = false
	a.connMu.Unlock()

	return nil
}

// buildClientOptions creates paho MQTT options from announce config.
func buildClientOptions(cfg config.AnnounceConfig) *pahomqtt.ClientOptions {
	opts := pahomqtt.NewClientOptions()

	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", cfg.Broker.Host, cfg.Broker.Port))
	opts.SetClientID(cfg.Broker.ClientID)

	if cfg.Auth.Username != "" {
		opts.SetUsername(cfg.Auth.Username)
		opts.SetPassword(cfg.Auth.Password)
	}

	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(reconnectInitialDelay)
	opts.SetMaxReconnectInterval(reconnectMaxDelay)
	opts.SetConnectTimeout(defaultConnectTimeout)
	opts.SetKeepAlive(defaultKeepAlive)

	return opts
}

// configureLWT sets up Last Will and Testament for offline detection.
//
// The broker publishes this if the client disconnects unexpectedly, so
// subscribers can tell a crash from a graceful shutdown.
func configureLWT(opts *pahomqtt.ClientOptions, clientID string) {
	opts.SetWill(topicStatus, buildOfflinePayload(clientID, "unexpected_disconnect"), 1, true)
}

// buildOnlinePayload creates the JSON payload for online status messages.
func buildOnlinePayload(clientID string) string {
	return fmt.Sprintf(
		`{"status":"online","client_id":%q,"timestamp":"%s"}`,
		clientID,
		time.Now().UTC().Format(time.RFC3339),
	)
}

// buildOfflinePayload creates the JSON payload for offline status messages.
func buildOfflinePayload(clientID, reason string) string {
	return fmt.Sprintf(
		`{"status":"offline","client_id":%q,"reason":%q,"timestamp":"%s"}`,
		clientID,
		reason,
		time.Now().UTC().Format(time.RFC3339),
	)
}

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrInvalid is returned when configuration validation fails.
// Use errors.Is() to distinguish bad input from I/O failures.
var ErrInvalid = errors.New("config: invalid")

// Config is the root configuration structure for fieldcast.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Event    EventConfig    `yaml:"event"`
	OBS      OBSConfig      `yaml:"obs"`
	Session  SessionConfig  `yaml:"session"`
	Scenes   map[int]string `yaml:"scenes"`
	Journal  JournalConfig  `yaml:"journal"`
	Announce AnnounceConfig `yaml:"announce"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// EventConfig identifies the scoring system event to monitor.
type EventConfig struct {
	// Code is the event code issued by the scoring system. Required.
	Code string `yaml:"code"`

	// Host is the scoring system host serving the display command stream.
	Host string `yaml:"host"`

	// Port is the scoring system HTTP/WebSocket port.
	Port int `yaml:"port"`
}

// OBSConfig contains obs-websocket connection settings.
type OBSConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`

	// Password may be empty when obs-websocket authentication is disabled.
	Password string `yaml:"password"`
}

// SessionConfig contains monitoring session timing settings, in seconds.
type SessionConfig struct {
	// ReceiveTimeout bounds each feed receive so the loop can observe
	// a stop request between frames.
	ReceiveTimeout int `yaml:"receive_timeout"`

	// ConnectTimeout bounds the OBS and feed connection handshakes.
	ConnectTimeout int `yaml:"connect_timeout"`

	// ShutdownTimeout bounds graceful shutdown before termination is forced.
	ShutdownTimeout int `yaml:"shutdown_timeout"`
}

// JournalConfig contains switch-history journal settings.
type JournalConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// AnnounceConfig contains MQTT status announcer settings.
// The announcer is optional and disabled by default.
type AnnounceConfig struct {
	Enabled bool                 `yaml:"enabled"`
	Broker  AnnounceBrokerConfig `yaml:"broker"`
	Auth    AnnounceAuthConfig   `yaml:"auth"`
	QoS     int                  `yaml:"qos"`
}

// AnnounceBrokerConfig contains MQTT broker connection details.
type AnnounceBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	ClientID string `yaml:"client_id"`
}

// AnnounceAuthConfig contains MQTT authentication credentials.
type AnnounceAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: FIELDCAST_SECTION_KEY
// For example: FIELDCAST_EVENT_CODE, FIELDCAST_OBS_PASSWORD
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Default returns a Config with sensible defaults.
// The event code has no default; it must come from the file or environment.
func Default() *Config {
	return &Config{
		Event: EventConfig{
			Host: "localhost",
			Port: 8080,
		},
		OBS: OBSConfig{
			Host: "localhost",
			Port: 4455,
		},
		Session: SessionConfig{
			ReceiveTimeout:  1,
			ConnectTimeout:  3,
			ShutdownTimeout: 5,
		},
		Journal: JournalConfig{
			Path: "./data/fieldcast.db",
		},
		Announce: AnnounceConfig{
			Broker: AnnounceBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "fieldcast",
			},
			QoS: 1,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: FIELDCAST_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("FIELDCAST_EVENT_CODE"); v != "" {
		cfg.Event.Code = v
	}
	if v := os.Getenv("FIELDCAST_EVENT_HOST"); v != "" {
		cfg.Event.Host = v
	}
	if v := os.Getenv("FIELDCAST_OBS_HOST"); v != "" {
		cfg.OBS.Host = v
	}
	if v := os.Getenv("FIELDCAST_OBS_PASSWORD"); v != "" {
		cfg.OBS.Password = v
	}
	if v := os.Getenv("FIELDCAST_JOURNAL_PATH"); v != "" {
		cfg.Journal.Path = v
	}
	if v := os.Getenv("FIELDCAST_MQTT_HOST"); v != "" {
		cfg.Announce.Broker.Host = v
	}
	if v := os.Getenv("FIELDCAST_MQTT_USERNAME"); v != "" {
		cfg.Announce.Auth.Username = v
	}
	if v := os.Getenv("FIELDCAST_MQTT_PASSWORD"); v != "" {
		cfg.Announce.Auth.Password = v
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Wrapping ErrInvalid with a description of each failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	if strings.TrimSpace(c.Event.Code) == "" {
		errs = append(errs, "event.code is required")
	}
	if msg := validatePort("event.port", c.Event.Port); msg != "" {
		errs = append(errs, msg)
	}
	if msg := validatePort("obs.port", c.OBS.Port); msg != "" {
		errs = append(errs, msg)
	}

	if c.Session.ReceiveTimeout < 1 {
		errs = append(errs, "session.receive_timeout must be at least 1 second")
	}
	if c.Session.ShutdownTimeout < 1 {
		errs = append(errs, "session.shutdown_timeout must be at least 1 second")
	}

	for field, scene := range c.Scenes {
		if field < 1 {
			errs = append(errs, fmt.Sprintf("scenes: field number %d must be positive", field))
		}
		if strings.TrimSpace(scene) == "" {
			errs = append(errs, fmt.Sprintf("scenes: field %d has an empty scene name", field))
		}
	}

	if c.Journal.Enabled && c.Journal.Path == "" {
		errs = append(errs, "journal.path is required when journal is enabled")
	}

	if c.Announce.Enabled {
		if c.Announce.Broker.Host == "" {
			errs = append(errs, "announce.broker.host is required when announce is enabled")
		}
		if msg := validatePort("announce.broker.port", c.Announce.Broker.Port); msg != "" {
			errs = append(errs, msg)
		}
		if c.Announce.QoS < 0 || c.Announce.QoS > 2 {
			errs = append(errs, "announce.qos must be 0, 1, or 2")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(errs, "; "))
	}

	return nil
}

// validatePort returns a description of the failure, or "" if the port is valid.
func validatePort(name string, port int) string {
	if port < 1 || port > 65535 {
		return name + " must be between 1 and 65535 (got " + strconv.Itoa(port) + ")"
	}
	return ""
}

// GetReceiveTimeout returns the feed receive timeout as a Duration.
func (c *Config) GetReceiveTimeout() time.Duration {
	return time.Duration(c.Session.ReceiveTimeout) * time.Second
}

// GetConnectTimeout returns the connection handshake timeout as a Duration.
func (c *Config) GetConnectTimeout() time.Duration {
	return time.Duration(c.Session.ConnectTimeout) * time.Second
}

// GetShutdownTimeout returns the graceful shutdown timeout as a Duration.
func (c *Config) GetShutdownTimeout() time.Duration {
	return time.Duration(c.Session.ShutdownTimeout) * time.Second
}

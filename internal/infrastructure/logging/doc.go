// Package logging provides structured logging for fieldcast.
//
// This package wraps Go's standard log/slog package to provide
// consistent, structured logging across the entire application.
//
// # Features
//
//   - Text output for operators (default), JSON for machine collection
//   - Default fields (service, version) on all log entries
//   - Level-based filtering (debug, info, warn, error)
//   - A Sink abstraction that mirrors records as timestamped
//     human-readable lines into whatever a front end uses for display
//   - Thread-safe for concurrent use
//
// # Configuration
//
// Logging is configured via the LoggingConfig in config.yaml:
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "text"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// # Usage
//
//	logger := logging.New(cfg.Logging, "1.0.0")
//	logger = logger.WithSink(logging.SinkFunc(gui.AppendLogLine), slog.LevelInfo)
//	logger.Info("session running", "field_count", 2)
//
// Never log secrets: the OBS password and broker credentials must not appear
// in log output at any level.
package logging

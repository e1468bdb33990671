// fieldcast - FTC field to OBS scene switcher
//
// fieldcast follows a FIRST Tech Challenge scoring system's live display
// feed and switches OBS to the matching field camera scene whenever a
// match is shown. It is designed for unattended operation at the scoring
// table: connect once, leave it running for the event.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fieldcast/fieldcast/internal/announce"
	"github.com/fieldcast/fieldcast/internal/infrastructure/config"
	"github.com/fieldcast/fieldcast/internal/infrastructure/logging"
	"github.com/fieldcast/fieldcast/internal/journal"
	"github.com/fieldcast/fieldcast/internal/session"
	"github.com/fieldcast/fieldcast/internal/switcher"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	configFlag := flag.String("config", "", "path to config.yaml (overrides FIELDCAST_CONFIG)")
	legacyFlag := flag.String("legacy-config", "", "path to a legacy ftc_obs_config.json file")
	flag.Parse()

	// Cancel on interrupt signals (Ctrl+C, SIGTERM) for graceful shutdown.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, *configFlag, *legacyFlag); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//   - configPath: Explicit config path from -config (may be empty)
//   - legacyPath: Legacy JSON config path from -legacy-config (may be empty)
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context, configPath, legacyPath string) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting fieldcast",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	cfg, path, err := loadConfig(configPath, legacyPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", path)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Open the switch-history journal (optional)
	var store *journal.Store
	if cfg.Journal.Enabled {
		store, err = journal.Open(journal.Config{Path: cfg.Journal.Path})
		if err != nil {
			return fmt.Errorf("opening journal: %w", err)
		}
		defer func() {
			log.Info("closing journal")
			if closeErr := store.Close(); closeErr != nil {
				log.Error("error closing journal", "error", closeErr)
			}
		}()
		log.Info("journal opened", "path", cfg.Journal.Path)
	} else {
		log.Info("journal disabled")
	}

	// Connect the MQTT announcer (optional)
	var announcer *announce.Announcer
	if cfg.Announce.Enabled {
		announcer, err = announce.Connect(cfg.Announce)
		if err != nil {
			return fmt.Errorf("connecting announcer: %w", err)
		}
		announcer.SetLogger(log)
		defer func() {
			log.Info("disconnecting announcer")
			if closeErr := announcer.Close(); closeErr != nil {
				log.Error("error closing announcer", "error", closeErr)
			}
		}()
		log.Info("announcer connected",
			"broker", fmt.Sprintf("%s:%d", cfg.Announce.Broker.Host, cfg.Announce.Broker.Port),
			"client_id", cfg.Announce.Broker.ClientID,
		)
	} else {
		log.Info("announcer disabled")
	}

	// Build the field-to-scene registry from config
	registry := switcher.NewRegistry()
	if len(cfg.Scenes) > 0 {
		if err := registry.Replace(cfg.Scenes); err != nil {
			return fmt.Errorf("loading scene mapping: %w", err)
		}
	}
	log.Info("scene mapping loaded", "fields", registry.Len())

	// Assemble the session supervisor
	opts := session.Options{
		Registry:        registry,
		Logger:          log,
		ReceiveTimeout:  cfg.GetReceiveTimeout(),
		ShutdownTimeout: cfg.GetShutdownTimeout(),
	}
	if store != nil {
		opts.Recorder = store
	}
	if announcer != nil {
		opts.Notifier = announcer
		opts.OnStatus = func(status session.Status) {
			go announcer.SessionStatus(string(status))
		}
	}
	sup, err := session.New(opts)
	if err != nil {
		return fmt.Errorf("creating supervisor: %w", err)
	}

	// Start the monitoring session
	if err := sup.Start(ctx, session.Config{
		EventCode:      cfg.Event.Code,
		ScoringHost:    cfg.Event.Host,
		ScoringPort:    cfg.Event.Port,
		OBSHost:        cfg.OBS.Host,
		OBSPort:        cfg.OBS.Port,
		OBSPassword:    cfg.OBS.Password,
		ConnectTimeout: cfg.GetConnectTimeout(),
	}); err != nil {
		return fmt.Errorf("starting session: %w", err)
	}
	log.Info("session running",
		"event_code", cfg.Event.Code,
		"scoring", fmt.Sprintf("%s:%d", cfg.Event.Host, cfg.Event.Port),
		"obs", fmt.Sprintf("%s:%d", cfg.OBS.Host, cfg.OBS.Port),
	)

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	if err := sup.Stop(); err != nil {
		log.Warn("session did not stop cleanly", "error", err)
	}

	log.Info("fieldcast stopped")
	return nil
}

// loadConfig resolves and loads the configuration.
//
// -legacy-config wins over everything and parses the flat JSON format
// used by earlier releases. Otherwise the path is -config, then the
// FIELDCAST_CONFIG environment variable, then the default.
func loadConfig(configPath, legacyPath string) (*config.Config, string, error) {
	if legacyPath != "" {
		cfg, err := config.LoadLegacy(legacyPath)
		return cfg, legacyPath, err
	}

	path := configPath
	if path == "" {
		path = os.Getenv("FIELDCAST_CONFIG")
	}
	if path == "" {
		path = defaultConfigPath
	}

	cfg, err := config.Load(path)
	return cfg, path, err
}

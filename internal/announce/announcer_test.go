package announce

import (
	"encoding/json"
	"testing"

	"github.com/fieldcast/fieldcast/internal/infrastructure/config"
)

func testConfig() config.AnnounceConfig {
	return config.AnnounceConfig{
		Enabled: true,
		Broker: config.AnnounceBrokerConfig{
			Host:     "broker.local",
			Port:     1883,
			ClientID: "fieldcast-test",
		},
		QoS: 1,
	}
}

func TestBuildClientOptions(t *testing.T) {
	cfg := testConfig()
	cfg.Auth.Username = "fc"
	cfg.Auth.Password = "secret"

	opts := buildClientOptions(cfg)

	if len(opts.Servers) != 1 || opts.Servers[0].String() != "tcp://broker.local:1883" {
		t.Errorf("Servers = %v, want [tcp://broker.local:1883]", opts.Servers)
	}
	if opts.ClientID != "fieldcast-test" {
		t.Errorf("ClientID = %q, want %q", opts.ClientID, "fieldcast-test")
	}
	if opts.Username != "fc" || opts.Password != "secret" {
		t.Errorf("credentials = %q/%q, want fc/secret", opts.Username, opts.Password)
	}
	if !opts.AutoReconnect {
		t.Error("AutoReconnect = false, want true")
	}
	if !opts.CleanSession {
		t.Error("CleanSession = false, want true")
	}
}

func TestBuildClientOptions_NoAuth(t *testing.T) {
	opts := buildClientOptions(testConfig())

	if opts.Username != "" {
		t.Errorf("Username = %q, want empty when no credentials configured", opts.Username)
	}
}

func TestConfigureLWT(t *testing.T) {
	opts := buildClientOptions(testConfig())
	configureLWT(opts, "fieldcast-test")

	if !opts.WillEnabled {
		t.Fatal("WillEnabled = false, want true")
	}
	if opts.WillTopic != "fieldcast/status" {
		t.Errorf("WillTopic = %q, want %q", opts.WillTopic, "fieldcast/status")
	}
	if !opts.WillRetained {
		t.Error("WillRetained = false, want true")
	}

	var payload struct {
		Status   string `json:"status"`
		ClientID string `json:"client_id"`
		Reason   string `json:"reason"`
	}
	if err := json.Unmarshal(opts.WillPayload, &payload); err != nil {
		t.Fatalf("LWT payload is not valid JSON: %v", err)
	}
	if payload.Status != "offline" || payload.Reason != "unexpected_disconnect" {
		t.Errorf("LWT payload = %+v, want offline/unexpected_disconnect", payload)
	}
	if payload.ClientID != "fieldcast-test" {
		t.Errorf("LWT client_id = %q, want %q", payload.ClientID, "fieldcast-test")
	}
}

func TestStatusPayloads(t *testing.T) {
	var online struct {
		Status    string `json:"status"`
		ClientID  string `json:"client_id"`
		Timestamp string `json:"timestamp"`
	}
	if err := json.Unmarshal([]byte(buildOnlinePayload("fc")), &online); err != nil {
		t.Fatalf("online payload is not valid JSON: %v", err)
	}
	if online.Status != "online" || online.ClientID != "fc" || online.Timestamp == "" {
		t.Errorf("online payload = %+v", online)
	}

	var offline struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	}
	if err := json.Unmarshal([]byte(buildOfflinePayload("fc", "graceful_shutdown")), &offline); err != nil {
		t.Fatalf("offline payload is not valid JSON: %v", err)
	}
	if offline.Status != "offline" || offline.Reason != "graceful_shutdown" {
		t.Errorf("offline payload = %+v", offline)
	}
}

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestParseLegacy_StringPorts(t *testing.T) {
	data := []byte(`{
		"event_code": "USTXHO",
		"scoring_host": "192.168.1.50",
		"scoring_port": "8080",
		"obs_host": "127.0.0.1",
		"obs_port": "4455",
		"obs_password": "secret",
		"scene_mapping": {"1": "Field 1", "2": "Field 2"}
	}`)

	cfg, err := ParseLegacy(data)
	if err != nil {
		t.Fatalf("ParseLegacy() error = %v", err)
	}

	if cfg.Event.Code != "USTXHO" {
		t.Errorf("Event.Code = %q, want %q", cfg.Event.Code, "USTXHO")
	}
	if cfg.Event.Port != 8080 {
		t.Errorf("Event.Port = %d, want 8080 from string port", cfg.Event.Port)
	}
	if cfg.OBS.Port != 4455 {
		t.Errorf("OBS.Port = %d, want 4455 from string port", cfg.OBS.Port)
	}
	if cfg.Scenes[2] != "Field 2" {
		t.Errorf("Scenes[2] = %q, want %q", cfg.Scenes[2], "Field 2")
	}
}

func TestParseLegacy_NumericPorts(t *testing.T) {
	data := []byte(`{
		"event_code": "USTXHO",
		"scoring_port": 8080,
		"obs_port": 4455
	}`)

	cfg, err := ParseLegacy(data)
	if err != nil {
		t.Fatalf("ParseLegacy() error = %v", err)
	}
	if cfg.Event.Port != 8080 || cfg.OBS.Port != 4455 {
		t.Errorf("ports = %d/%d, want 8080/4455", cfg.Event.Port, cfg.OBS.Port)
	}
}

func TestParseLegacy_DefaultsPreserved(t *testing.T) {
	cfg, err := ParseLegacy([]byte(`{"event_code": "USTXHO"}`))
	if err != nil {
		t.Fatalf("ParseLegacy() error = %v", err)
	}

	if cfg.Event.Host != "localhost" {
		t.Errorf("Event.Host = %q, want default %q", cfg.Event.Host, "localhost")
	}
	if cfg.OBS.Port != 4455 {
		t.Errorf("OBS.Port = %d, want default 4455", cfg.OBS.Port)
	}
}

func TestParseLegacy_BadMappingKey(t *testing.T) {
	data := []byte(`{
		"event_code": "USTXHO",
		"scene_mapping": {"red": "Field 1"}
	}`)

	_, err := ParseLegacy(data)
	if !errors.Is(err, ErrInvalid) {
		t.Errorf("ParseLegacy() error = %v, want ErrInvalid for non-numeric key", err)
	}
}

func TestParseLegacy_MissingEventCode(t *testing.T) {
	_, err := ParseLegacy([]byte(`{"obs_host": "localhost"}`))
	if !errors.Is(err, ErrInvalid) {
		t.Errorf("ParseLegacy() error = %v, want ErrInvalid", err)
	}
}

func TestParseLegacy_InvalidJSON(t *testing.T) {
	_, err := ParseLegacy([]byte(`{not json`))
	if err == nil {
		t.Error("ParseLegacy() expected error for invalid JSON, got nil")
	}
}

func TestLoadLegacy(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "ftc_obs_config.json")
	content := `{"event_code": "USTXHO", "scene_mapping": {"1": "Field 1"}}`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := LoadLegacy(path)
	if err != nil {
		t.Fatalf("LoadLegacy() error = %v", err)
	}
	if cfg.Scenes[1] != "Field 1" {
		t.Errorf("Scenes[1] = %q, want %q", cfg.Scenes[1], "Field 1")
	}
}

func TestLoadLegacy_MissingFile(t *testing.T) {
	_, err := LoadLegacy("/nonexistent/ftc_obs_config.json")
	if err == nil {
		t.Error("LoadLegacy() expected error for missing file, got nil")
	}
}

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// legacyConfig mirrors the flat ftc_obs_config.json record written by the
// original desktop front ends. Ports were stored as strings by some variants
// and as numbers by others, so both are accepted.
type legacyConfig struct {
	EventCode    string            `json:"event_code"`
	ScoringHost  string            `json:"scoring_host"`
	ScoringPort  flexInt           `json:"scoring_port"`
	OBSHost      string            `json:"obs_host"`
	OBSPort      flexInt           `json:"obs_port"`
	OBSPassword  string            `json:"obs_password"`
	SceneMapping map[string]string `json:"scene_mapping"`
}

// flexInt unmarshals from a JSON number or a numeric string.
type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("parsing port %q: %w", s, err)
	}
	*f = flexInt(n)
	return nil
}

// ParseLegacy converts a flat JSON configuration record into a Config.
//
// Fields absent from the record keep their defaults. The scene_mapping object
// is keyed by string field numbers ("1": "Field 1"); a non-numeric key fails
// with ErrInvalid. The resulting Config is validated before being returned.
func ParseLegacy(data []byte) (*Config, error) {
	var legacy legacyConfig
	if err := json.Unmarshal(data, &legacy); err != nil {
		return nil, fmt.Errorf("parsing legacy config: %w", err)
	}

	cfg := Default()
	cfg.Event.Code = legacy.EventCode
	if legacy.ScoringHost != "" {
		cfg.Event.Host = legacy.ScoringHost
	}
	if legacy.ScoringPort != 0 {
		cfg.Event.Port = int(legacy.ScoringPort)
	}
	if legacy.OBSHost != "" {
		cfg.OBS.Host = legacy.OBSHost
	}
	if legacy.OBSPort != 0 {
		cfg.OBS.Port = int(legacy.OBSPort)
	}
	cfg.OBS.Password = legacy.OBSPassword

	if len(legacy.SceneMapping) > 0 {
		cfg.Scenes = make(map[int]string, len(legacy.SceneMapping))
		for key, scene := range legacy.SceneMapping {
			field, err := strconv.Atoi(key)
			if err != nil {
				return nil, fmt.Errorf("%w: scene_mapping key %q is not a field number", ErrInvalid, key)
			}
			cfg.Scenes[field] = scene
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadLegacy reads a flat JSON configuration file written by the original
// desktop front ends and converts it into a Config.
func LoadLegacy(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading legacy config file: %w", err)
	}
	return ParseLegacy(data)
}

// Package config handles loading and validating fieldcast configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Overriding with environment variables
//   - Validation of required fields
//   - Default value handling
//   - Converting the legacy flat-JSON records written by the original
//     desktop front ends (ftc_obs_config.json)
//
// Security Considerations:
//   - Sensitive values (OBS and broker passwords) should be set via
//     environment variables rather than committed to the config file
//   - The config file should have restricted permissions (0600)
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Event.Code)
package config

// Package config handles loading and validating Smart City core configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Overriding with environment variables
//   - Validation of every section, reported as one joined error
//
// Security Considerations:
//   - The seeded access.users passwords are demo credentials; replace them
//   - Sensitive values (MQTT password, InfluxDB token) should come from the environment
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.City.Name)
package config

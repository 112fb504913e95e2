// Package config loads service configuration from a YAML file, a .env file
// and environment variables.
//
// Resolution order, later sources winning: config.yml, then the .env file,
// then process environment. Environment variables are scoped by the service
// prefix: for service "minutes", MINUTES_ATTRIBUTION_ACTION_THRESHOLD sets
// attribution.action_threshold.
//
// # Usage
//
//	var cfg AppConfig
//	err := config.LoadConfig("minutes", &cfg, config.WithConfigFile("config.yml"))
package config

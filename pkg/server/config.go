// Package server hosts the operational HTTP endpoints of a daemon: health
// checks and optional pprof.
package server

import "time"

// Config holds operational server configuration
type Config struct {
	// HealthCheckAddr is the address to listen on for healthcheck.
	HealthCheckAddr *string `yaml:"healthCheckAddr"`
	// PProfAddr is the address to listen on for pprof.
	PProfAddr *string `yaml:"pprofAddr"`
	// ShutdownTimeout is the timeout for shutting down the server.
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout" default:"10s"`
}

// Validate checks if the configuration is valid. Both listeners are
// optional.
func (c *Config) Validate() error {
	return nil
}

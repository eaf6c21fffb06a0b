package storage

import (
	"errors"
	"time"
)

// Static errors for configuration validation
var (
	ErrURIRequired      = errors.New("URI is required")
	ErrDatabaseRequired = errors.New("database is required")
)

// Config contains MongoDB connection settings.
type Config struct {
	URI            string        `yaml:"uri" default:"mongodb://localhost:27017"`
	Database       string        `yaml:"database" default:"lotteryd"`
	ConnectTimeout time.Duration `yaml:"connectTimeout" default:"10s"`
	QueryTimeout   time.Duration `yaml:"queryTimeout" default:"30s"`
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.URI == "" {
		return ErrURIRequired
	}

	if c.Database == "" {
		return ErrDatabaseRequired
	}

	return nil
}

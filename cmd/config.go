package cmd

import (
	"fmt"
	"os"

	"github.com/creasty/defaults"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/riorajhon/lotteryd/pkg/api"
	"github.com/riorajhon/lotteryd/pkg/redis"
	"github.com/riorajhon/lotteryd/pkg/scheduler"
	"github.com/riorajhon/lotteryd/pkg/scrape"
	"github.com/riorajhon/lotteryd/pkg/server"
	"github.com/riorajhon/lotteryd/pkg/storage"
	"github.com/riorajhon/lotteryd/pkg/worker"
)

// Config is the full daemon configuration. Every command reads the same
// file and uses the sections it needs.
type Config struct {
	// Logging level for the daemon
	Logging string `yaml:"logging" default:"info"`
	// MetricsAddr is the Prometheus metrics listen address
	MetricsAddr string `yaml:"metricsAddr" default:":9090"`

	Storage   storage.Config   `yaml:"storage"`
	Redis     redis.Config     `yaml:"redis"`
	Scrape    scrape.Config    `yaml:"scrape"`
	Worker    worker.Config    `yaml:"worker"`
	Scheduler scheduler.Config `yaml:"scheduler"`
	API       api.Config       `yaml:"api"`
	Server    server.Config    `yaml:"server"`
}

// Validate validates every configuration section.
func (c *Config) Validate() error {
	if err := c.Storage.Validate(); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.Redis.Validate(); err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	if err := c.Scrape.Validate(); err != nil {
		return fmt.Errorf("scrape: %w", err)
	}
	if err := c.Worker.Validate(); err != nil {
		return fmt.Errorf("worker: %w", err)
	}
	if err := c.Scheduler.Validate(); err != nil {
		return fmt.Errorf("scheduler: %w", err)
	}
	if err := c.API.Validate(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}

// loadConfigFromFile loads configuration from a YAML file. A missing file
// yields the defaults.
func loadConfigFromFile(file string) (*Config, error) {
	if file == "" {
		file = "config.yaml"
	}

	config := &Config{}

	if err := defaults.Set(config); err != nil {
		return nil, err
	}

	yamlFile, err := os.ReadFile(file) //nolint:gosec // User-provided config file path
	if err != nil {
		if os.IsNotExist(err) {
			return config, config.Validate()
		}
		return nil, err
	}

	if err := yaml.Unmarshal(yamlFile, config); err != nil {
		return nil, err
	}

	return config, config.Validate()
}

// newLogger builds the logger for a daemon command from the configured level.
func newLogger(config *Config) (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(config.Logging)
	if err != nil {
		return nil, err
	}

	log := logrus.New()
	log.SetLevel(level)
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	return log, nil
}

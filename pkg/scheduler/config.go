// Package scheduler triggers the daily scrape pipeline on a cron schedule,
// with redis-backed leader election so only one instance schedules.
package scheduler

import (
	"fmt"

	"github.com/robfig/cron/v3"
)

// Config defines scheduler configuration
type Config struct {
	// Schedule is a cron expression for the daily pipeline run.
	Schedule string `yaml:"schedule" default:"2 0 * * *"`
}

// Validate checks if the scheduler configuration is valid
func (c *Config) Validate() error {
	if _, err := parseSchedule(c.Schedule); err != nil {
		return err
	}

	return nil
}

func parseSchedule(schedule string) (cron.Schedule, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

	sched, err := parser.Parse(schedule)
	if err != nil {
		return nil, fmt.Errorf("invalid schedule format: %w", err)
	}

	return sched, nil
}

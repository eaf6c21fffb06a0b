package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Full key pattern: lotteryd:scheduler:run:{runID}
const scheduleKeyPrefix = "lotteryd:scheduler:run:"

// scheduleTracker persists run timestamps so the daily trigger fires once
// per period across restarts and leader changes.
type scheduleTracker interface {
	// GetLastRun retrieves the last run timestamp, zero time if never run
	GetLastRun(ctx context.Context, runID string) (time.Time, error)

	// SetLastRun updates the last run timestamp, persisted with no TTL
	SetLastRun(ctx context.Context, runID string, timestamp time.Time) error

	// Close releases resources held by the tracker
	Close() error
}

type redisScheduleTracker struct {
	log   logrus.FieldLogger
	redis *redis.Client
}

func newScheduleTracker(log logrus.FieldLogger, redisClient *redis.Client) scheduleTracker {
	return &redisScheduleTracker{
		log:   log.WithField("component", "schedule_tracker"),
		redis: redisClient,
	}
}

func (r *redisScheduleTracker) GetLastRun(ctx context.Context, runID string) (time.Time, error) {
	val, err := r.redis.Get(ctx, scheduleKeyPrefix+runID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return time.Time{}, nil
		}
		return time.Time{}, fmt.Errorf("failed to get last run for %s: %w", runID, err)
	}

	timestamp, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse timestamp for %s: %w", runID, err)
	}

	return timestamp, nil
}

func (r *redisScheduleTracker) SetLastRun(ctx context.Context, runID string, timestamp time.Time) error {
	val := timestamp.UTC().Format(time.RFC3339)

	if err := r.redis.Set(ctx, scheduleKeyPrefix+runID, val, 0).Err(); err != nil {
		return fmt.Errorf("failed to set last run for %s: %w", runID, err)
	}

	r.log.WithFields(logrus.Fields{
		"run_id":    runID,
		"timestamp": timestamp,
	}).Debug("Updated last run")

	return nil
}

func (r *redisScheduleTracker) Close() error {
	if r.redis != nil {
		return r.redis.Close()
	}

	return nil
}

var _ scheduleTracker = (*redisScheduleTracker)(nil)

package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	runLockPrefix = "lotteryd:run:"
	// runLockTTL matches the task timeout so a crashed worker cannot hold a
	// game's lock longer than its task could have run.
	runLockTTL = 30 * time.Minute
)

// ErrRunLocked is returned when another worker already holds a game's run
// lock. The task fails and Asynq retries it later.
var ErrRunLocked = errors.New("another run holds the lock for this game")

// runLock guards derived-artifact writes with one Redis lock per game.
// Queues only provide fair scheduling across games; with worker concurrency
// above one, an update and a rebuild for the same game can be active at the
// same time, and a rebuild's reset must never interleave with another run's
// writes.
type runLock struct {
	log    logrus.FieldLogger
	client *redis.Client
	id     string
}

func newRunLock(log logrus.FieldLogger, client *redis.Client) *runLock {
	return &runLock{
		log:    log.WithField("component", "run-lock"),
		client: client,
		id:     uuid.New().String(),
	}
}

// acquire takes the run lock for one game and returns its release func.
func (l *runLock) acquire(ctx context.Context, slug string) (func(), error) {
	key := runLockPrefix + slug

	acquired, err := l.client.SetNX(ctx, key, l.id, runLockTTL).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire run lock: %w", err)
	}

	if !acquired {
		return nil, fmt.Errorf("%w: %s", ErrRunLocked, slug)
	}

	release := func() {
		owner, err := l.client.Get(context.Background(), key).Result()
		if err != nil || owner != l.id {
			return
		}

		if err := l.client.Del(context.Background(), key).Err(); err != nil {
			l.log.WithError(err).WithField("lottery", slug).Warn("Failed to release run lock")
		}
	}

	return release, nil
}

package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/riorajhon/lotteryd/pkg/tasks"
)

// tickInterval is how often the leader checks whether the schedule is due.
const tickInterval = 10 * time.Second

// Service defines the public interface for the scheduler
type Service interface {
	// Start initializes and starts the scheduler service
	Start(ctx context.Context) error

	// Stop gracefully shuts down the scheduler service
	Stop() error
}

// service runs the daily trigger on whichever instance holds leadership
type service struct {
	log logrus.FieldLogger
	cfg *Config

	done chan struct{}
	wg   sync.WaitGroup

	elector LeaderElector
	tracker scheduleTracker
	ticker  *dailyTicker
}

// NewService creates a new scheduler service
func NewService(log logrus.FieldLogger, cfg *Config, redisOpt *redis.Options, queue *tasks.QueueManager) (Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	schedule, err := parseSchedule(cfg.Schedule)
	if err != nil {
		return nil, err
	}

	scopedLog := log.WithField("service", "scheduler")
	tracker := newScheduleTracker(scopedLog, redis.NewClient(redisOpt))

	return &service{
		log:     scopedLog,
		cfg:     cfg,
		done:    make(chan struct{}),
		elector: NewLeaderElector(scopedLog, redisOpt),
		tracker: tracker,
		ticker:  newDailyTicker(scopedLog, schedule, tracker, queue),
	}, nil
}

// Start initializes and starts the scheduler service
func (s *service) Start(ctx context.Context) error {
	if err := s.elector.Start(ctx); err != nil {
		return fmt.Errorf("failed to start leader election: %w", err)
	}

	s.wg.Add(1)
	go s.run(ctx)

	s.log.WithField("schedule", s.cfg.Schedule).Info("Scheduler service started (participating in leader election)")

	return nil
}

func (s *service) run(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !s.elector.IsLeader() {
				continue
			}

			if err := s.ticker.check(ctx, time.Now().UTC()); err != nil {
				s.log.WithError(err).Error("Schedule check failed")
			}
		}
	}
}

// Stop gracefully shuts down the scheduler service
func (s *service) Stop() error {
	close(s.done)

	if err := s.elector.Stop(); err != nil {
		s.log.WithError(err).Warn("Failed to stop leader elector")
	}

	s.wg.Wait()

	if err := s.tracker.Close(); err != nil {
		s.log.WithError(err).Warn("Failed to close schedule tracker")
	}

	s.log.Info("Scheduler service stopped")

	return nil
}

var _ Service = (*service)(nil)

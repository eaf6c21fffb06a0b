package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/hibiken/asynq"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/riorajhon/lotteryd/pkg/lottery"
	"github.com/riorajhon/lotteryd/pkg/tasks"
)

// dailyRunID identifies the daily pipeline trigger in the tracker.
const dailyRunID = "daily:scrape"

// enqueuer is the slice of the queue manager the ticker needs.
type enqueuer interface {
	Enqueue(payload tasks.TaskPayload, opts ...asynq.Option) error
}

// dailyTicker fires the daily pipeline when the cron schedule comes due:
// one scrape task per game, in the fixed daily order. Each scrape chains its
// own update, so triggering the scrapes is all the scheduler does.
type dailyTicker struct {
	log      logrus.FieldLogger
	schedule cron.Schedule
	tracker  scheduleTracker
	queue    enqueuer
}

func newDailyTicker(log logrus.FieldLogger, schedule cron.Schedule, tracker scheduleTracker, queue enqueuer) *dailyTicker {
	return &dailyTicker{
		log:      log.WithField("component", "ticker"),
		schedule: schedule,
		tracker:  tracker,
		queue:    queue,
	}
}

// check fires the trigger if it is due at now. A never-run tracker fires
// immediately so a fresh deployment catches up without waiting a day.
func (t *dailyTicker) check(ctx context.Context, now time.Time) error {
	lastRun, err := t.tracker.GetLastRun(ctx, dailyRunID)
	if err != nil {
		return err
	}

	if !lastRun.IsZero() && now.Before(t.schedule.Next(lastRun)) {
		return nil
	}

	t.log.WithField("last_run", lastRun).Info("Daily schedule due, enqueueing scrape tasks")

	for _, cfg := range lottery.DailyOrder() {
		payload := tasks.TaskPayload{
			Type:       tasks.TypeScrape,
			Lottery:    cfg.Slug,
			Trigger:    tasks.TriggerSchedule,
			EnqueuedAt: now.UTC(),
		}

		if err := t.queue.Enqueue(payload); err != nil {
			// Still queued from a previous slow run
			if errors.Is(err, asynq.ErrTaskIDConflict) {
				t.log.WithField("lottery", cfg.Slug).Debug("Scrape task already queued, skipping")
				continue
			}
			return err
		}

		t.log.WithField("lottery", cfg.Slug).Info("Enqueued scheduled scrape task")
	}

	return t.tracker.SetLastRun(ctx, dailyRunID, now)
}

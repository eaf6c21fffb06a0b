package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/riorajhon/lotteryd/pkg/lottery"
	"github.com/riorajhon/lotteryd/pkg/observability"
	"github.com/riorajhon/lotteryd/pkg/pipeline"
	"github.com/riorajhon/lotteryd/pkg/scrape"
)

// TaskHandler executes queued work: scrapes, incremental updates and full
// rebuilds. A completed scrape chains an update for the same game so the
// daily pipeline survives process restarts between the two steps.
//
// Updates and rebuilds take the game's run lock first. Without it, a rebuild
// and an update for the same game could be active at once and the rebuild's
// reset would race the update's writes.
type TaskHandler struct {
	log      logrus.FieldLogger
	scraper  *scrape.Scraper
	pipeline *pipeline.Pipeline
	queue    *QueueManager
	lock     *runLock
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(log logrus.FieldLogger, scraper *scrape.Scraper, p *pipeline.Pipeline, queue *QueueManager, redisClient *redis.Client) *TaskHandler {
	return &TaskHandler{
		log:      log.WithField("component", "task-handler"),
		scraper:  scraper,
		pipeline: p,
		queue:    queue,
		lock:     newRunLock(log, redisClient),
	}
}

// HandleScrape fetches the daily window for one game and chains an update.
func (h *TaskHandler) HandleScrape(ctx context.Context, t *asynq.Task) error {
	payload, cfg, err := h.decode(t)
	if err != nil {
		return err
	}

	start := time.Now()

	saved, err := h.scraper.ScrapeDaily(ctx, cfg)
	if err != nil {
		observability.RecordTaskComplete(TypeScrape, "failed", time.Since(start).Seconds())
		observability.RecordError("task-handler", "scrape_error")
		return fmt.Errorf("scrape failed: %w", err)
	}

	observability.RecordTaskComplete(TypeScrape, "success", time.Since(start).Seconds())

	h.log.WithFields(logrus.Fields{
		"lottery": cfg.Slug,
		"saved":   saved,
	}).Info("Scrape task completed")

	update := TaskPayload{
		Type:       TypeUpdate,
		Lottery:    cfg.Slug,
		Trigger:    payload.Trigger,
		EnqueuedAt: time.Now().UTC(),
	}
	if err := h.queue.Enqueue(update); err != nil {
		observability.RecordError("task-handler", "chain_enqueue_error")
		return fmt.Errorf("failed to chain update task: %w", err)
	}

	return nil
}

// HandleUpdate runs an incremental feature update for one game.
func (h *TaskHandler) HandleUpdate(ctx context.Context, t *asynq.Task) error {
	_, cfg, err := h.decode(t)
	if err != nil {
		return err
	}

	release, err := h.lock.acquire(ctx, cfg.Slug)
	if err != nil {
		observability.RecordError("task-handler", "run_locked")
		return err
	}
	defer release()

	start := time.Now()

	if err := h.pipeline.Update(ctx, cfg); err != nil {
		observability.RecordTaskComplete(TypeUpdate, "failed", time.Since(start).Seconds())
		observability.RecordError("task-handler", "update_error")
		return fmt.Errorf("update failed: %w", err)
	}

	observability.RecordTaskComplete(TypeUpdate, "success", time.Since(start).Seconds())

	return nil
}

// HandleRebuild runs a full rebuild for one game.
func (h *TaskHandler) HandleRebuild(ctx context.Context, t *asynq.Task) error {
	_, cfg, err := h.decode(t)
	if err != nil {
		return err
	}

	release, err := h.lock.acquire(ctx, cfg.Slug)
	if err != nil {
		observability.RecordError("task-handler", "run_locked")
		return err
	}
	defer release()

	start := time.Now()

	if err := h.pipeline.Rebuild(ctx, cfg); err != nil {
		observability.RecordTaskComplete(TypeRebuild, "failed", time.Since(start).Seconds())
		observability.RecordError("task-handler", "rebuild_error")
		return fmt.Errorf("rebuild failed: %w", err)
	}

	observability.RecordTaskComplete(TypeRebuild, "success", time.Since(start).Seconds())

	return nil
}

func (h *TaskHandler) decode(t *asynq.Task) (TaskPayload, *lottery.Config, error) {
	var payload TaskPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		observability.RecordError("task-handler", "unmarshal_error")
		return payload, nil, fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	cfg, err := lottery.BySlug(payload.Lottery)
	if err != nil {
		observability.RecordError("task-handler", "unknown_lottery")
		return payload, nil, err
	}

	h.log.WithFields(logrus.Fields{
		"type":    payload.Type,
		"lottery": payload.Lottery,
		"trigger": payload.Trigger,
	}).Info("Starting task")

	return payload, cfg, nil
}

// Routes returns the task handler routes for Asynq
func (h *TaskHandler) Routes() map[string]asynq.HandlerFunc {
	return map[string]asynq.HandlerFunc{
		TypeScrape:  h.HandleScrape,
		TypeUpdate:  h.HandleUpdate,
		TypeRebuild: h.HandleRebuild,
	}
}

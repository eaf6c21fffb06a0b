// Package handlers implements the HTTP handlers for the query and trigger API.
package handlers

import (
	"errors"
	"strconv"
	"time"

	json "github.com/goccy/go-json"
	"github.com/gofiber/fiber/v3"
	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"github.com/riorajhon/lotteryd/pkg/draws"
	"github.com/riorajhon/lotteryd/pkg/lottery"
	"github.com/riorajhon/lotteryd/pkg/storage"
	"github.com/riorajhon/lotteryd/pkg/tasks"
)

// TaskEnqueuer enqueues background tasks. Satisfied by tasks.QueueManager.
type TaskEnqueuer interface {
	Enqueue(payload tasks.TaskPayload, opts ...asynq.Option) error
}

// Server holds dependencies for the HTTP handlers
type Server struct {
	store storage.Store
	queue TaskEnqueuer
	log   logrus.FieldLogger
}

// NewServer creates a new handler server
func NewServer(store storage.Store, queue TaskEnqueuer, log logrus.FieldLogger) *Server {
	return &Server{
		store: store,
		queue: queue,
		log:   log.WithField("component", "api.handlers"),
	}
}

// Register mounts the API routes on the given router
func (s *Server) Register(router fiber.Router) {
	router.Get("/health", s.Health)
	router.Get("/lotteries", s.ListLotteries)
	router.Get("/draws", s.ListDraws)
	router.Get("/lotteries/:lottery/features", s.ListFeatures)
	router.Get("/lotteries/:lottery/bets", s.BetSeries)
	router.Get("/lotteries/:lottery/pools/:pool/numbers/:number/history", s.NumberHistory)
	router.Get("/lotteries/:lottery/pools/:pool/dates", s.NumberDates)
	router.Post("/lotteries/:lottery/draws/import", s.ImportDraws)
	router.Post("/lotteries/:lottery/scrape", s.TriggerScrape)
	router.Post("/lotteries/:lottery/rebuild", s.TriggerRebuild)
}

// Health returns service health status
func (s *Server) Health(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// ListLotteries returns the registered games and their pool definitions
func (s *Server) ListLotteries(c fiber.Ctx) error {
	infos := make([]LotteryInfo, 0, len(lottery.All()))
	for _, cfg := range lottery.All() {
		infos = append(infos, lotteryInfo(cfg))
	}
	return c.JSON(fiber.Map{"lotteries": infos})
}

// ListDraws returns stored raw draws for a game, newest first
func (s *Server) ListDraws(c fiber.Ctx) error {
	slug := c.Query("lottery")
	if slug == "" {
		return ErrLotteryRequired
	}
	cfg, err := lottery.BySlug(slug)
	if err != nil {
		return ErrLotteryNotFound
	}

	window := windowParams(c)
	page := pageParams(c)

	ds, total, err := s.store.ListRawDraws(c.Context(), cfg, window, page)
	if err != nil {
		s.log.WithError(err).WithField("lottery", slug).Error("Failed to list draws")
		return fiber.NewError(fiber.StatusInternalServerError, "failed to list draws")
	}

	return c.JSON(DrawListResponse{
		Lottery: cfg.Slug,
		Total:   total,
		Limit:   page.Limit,
		Offset:  page.Offset,
		Draws:   ds,
	})
}

// ListFeatures returns derived feature snapshots for a game, newest first
func (s *Server) ListFeatures(c fiber.Ctx) error {
	cfg, err := lottery.BySlug(c.Params("lottery"))
	if err != nil {
		return ErrLotteryNotFound
	}

	page := pageParams(c)

	snaps, total, err := s.store.Features(c.Context(), cfg, page)
	if err != nil {
		s.log.WithError(err).WithField("lottery", cfg.Slug).Error("Failed to list features")
		return fiber.NewError(fiber.StatusInternalServerError, "failed to list features")
	}

	features := make([]map[string]any, 0, len(snaps))
	for i := range snaps {
		features = append(features, storage.SnapshotDocument(cfg, &snaps[i]))
	}

	return c.JSON(FeatureListResponse{
		Lottery:  cfg.Slug,
		Total:    total,
		Limit:    page.Limit,
		Offset:   page.Offset,
		Features: features,
	})
}

// BetSeries returns per-draw betting figures for a game, oldest first
func (s *Server) BetSeries(c fiber.Ctx) error {
	cfg, err := lottery.BySlug(c.Params("lottery"))
	if err != nil {
		return ErrLotteryNotFound
	}

	points, err := s.store.BetSeries(c.Context(), cfg, windowParams(c))
	if err != nil {
		s.log.WithError(err).WithField("lottery", cfg.Slug).Error("Failed to fetch bet series")
		return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch bet series")
	}

	return c.JSON(BetSeriesResponse{
		Lottery: cfg.Slug,
		Points:  points,
	})
}

// ImportDraws bulk-loads raw draw records for a game. Records are normalized
// and upserted by id_sorteo, so re-importing the same file is harmless.
func (s *Server) ImportDraws(c fiber.Ctx) error {
	cfg, err := lottery.BySlug(c.Params("lottery"))
	if err != nil {
		return ErrLotteryNotFound
	}

	var raws []draws.RawDraw
	if err := json.Unmarshal(c.Body(), &raws); err != nil {
		return ErrInvalidBody
	}

	records := raws[:0:0]
	for i := range raws {
		if raws[i].DrawID == "" {
			continue
		}
		raws[i].GameID = cfg.GameID
		raws[i].Normalize()
		records = append(records, raws[i])
	}

	saved, err := s.store.SaveRawDraws(c.Context(), cfg, records)
	if err != nil {
		s.log.WithError(err).WithField("lottery", cfg.Slug).Error("Failed to import draws")
		return fiber.NewError(fiber.StatusInternalServerError, "failed to import draws")
	}

	s.log.WithFields(logrus.Fields{
		"lottery": cfg.Slug,
		"saved":   saved,
		"total":   len(records),
	}).Info("Imported draws")

	return c.JSON(ImportResponse{
		Lottery: cfg.Slug,
		Saved:   saved,
		Total:   len(records),
	})
}

// NumberHistory returns the appearance log of one number in one pool
func (s *Server) NumberHistory(c fiber.Ctx) error {
	cfg, err := lottery.BySlug(c.Params("lottery"))
	if err != nil {
		return ErrLotteryNotFound
	}
	number, err := strconv.Atoi(c.Params("number"))
	if err != nil {
		return ErrInvalidNumber
	}
	pool := c.Params("pool")

	apps, err := s.store.NumberHistory(c.Context(), cfg, pool, number, windowParams(c))
	if err != nil {
		if errors.Is(err, storage.ErrUnknownPool) {
			return ErrPoolNotFound
		}
		s.log.WithError(err).WithField("lottery", cfg.Slug).Error("Failed to fetch number history")
		return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch number history")
	}

	return c.JSON(NumberHistoryResponse{
		Lottery:     cfg.Slug,
		Pool:        pool,
		Number:      number,
		Appearances: appearancePoints(apps),
	})
}

// NumberDates returns appearance dates grouped by number for one pool
func (s *Server) NumberDates(c fiber.Ctx) error {
	cfg, err := lottery.BySlug(c.Params("lottery"))
	if err != nil {
		return ErrLotteryNotFound
	}
	pool := c.Params("pool")

	dates, err := s.store.NumberHistoryDates(c.Context(), cfg, pool)
	if err != nil {
		if errors.Is(err, storage.ErrUnknownPool) {
			return ErrPoolNotFound
		}
		s.log.WithError(err).WithField("lottery", cfg.Slug).Error("Failed to fetch number dates")
		return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch number dates")
	}

	return c.JSON(NumberDatesResponse{
		Lottery: cfg.Slug,
		Pool:    pool,
		Dates:   dates,
	})
}

// TriggerScrape enqueues a scrape task for a game
func (s *Server) TriggerScrape(c fiber.Ctx) error {
	return s.trigger(c, tasks.TypeScrape)
}

// TriggerRebuild enqueues a full rebuild task for a game
func (s *Server) TriggerRebuild(c fiber.Ctx) error {
	return s.trigger(c, tasks.TypeRebuild)
}

func (s *Server) trigger(c fiber.Ctx, taskType string) error {
	cfg, err := lottery.BySlug(c.Params("lottery"))
	if err != nil {
		return ErrLotteryNotFound
	}

	payload := tasks.TaskPayload{
		Type:       taskType,
		Lottery:    cfg.Slug,
		Trigger:    tasks.TriggerAPI,
		EnqueuedAt: time.Now().UTC(),
	}

	if err := s.queue.Enqueue(payload); err != nil {
		if errors.Is(err, asynq.ErrTaskIDConflict) {
			return c.Status(fiber.StatusConflict).JSON(TaskResponse{
				Lottery: cfg.Slug,
				Type:    taskType,
				Status:  "already queued",
			})
		}
		s.log.WithError(err).WithField("lottery", cfg.Slug).Error("Failed to enqueue task")
		return fiber.NewError(fiber.StatusInternalServerError, "failed to enqueue task")
	}

	return c.Status(fiber.StatusAccepted).JSON(TaskResponse{
		Lottery: cfg.Slug,
		Type:    taskType,
		Status:  "queued",
	})
}

func windowParams(c fiber.Ctx) storage.DateWindow {
	return storage.DateWindow{
		From: c.Query("from"),
		To:   c.Query("to"),
	}
}

func pageParams(c fiber.Ctx) storage.Page {
	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return storage.Page{Limit: limit, Offset: offset}
}

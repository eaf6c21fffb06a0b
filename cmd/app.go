package cmd

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/riorajhon/lotteryd/pkg/lottery"
	"github.com/riorajhon/lotteryd/pkg/redis"
	"github.com/riorajhon/lotteryd/pkg/server"
	"github.com/riorajhon/lotteryd/pkg/storage"
	"github.com/riorajhon/lotteryd/pkg/tasks"
)

// application bundles the dependencies shared by the daemon and one-shot
// commands: configuration, logger, mongo store and the task queue.
type application struct {
	config *Config
	log    *logrus.Logger

	store    *storage.Mongo
	redisOpt *goredis.Options
	queue    *tasks.QueueManager
	ops      *server.Server
}

func newApplication(cfgFile string) (*application, error) {
	config, err := loadConfigFromFile(cfgFile)
	if err != nil {
		return nil, err
	}

	log, err := newLogger(config)
	if err != nil {
		return nil, err
	}

	log.Info("Configuration loaded")

	return &application{
		config: config,
		log:    log,
	}, nil
}

// startStore connects to mongo and ensures indexes for every game.
func (a *application) startStore(ctx context.Context) error {
	store, err := storage.NewMongo(a.log, &a.config.Storage)
	if err != nil {
		return err
	}

	if err := store.Start(ctx); err != nil {
		return fmt.Errorf("failed to connect to mongo: %w", err)
	}

	for _, cfg := range lottery.All() {
		if err := store.EnsureIndexes(ctx, cfg); err != nil {
			return fmt.Errorf("failed to ensure indexes for %s: %w", cfg.Slug, err)
		}
	}

	a.store = store

	return nil
}

// startOps starts the health check and pprof listeners when configured.
func (a *application) startOps(ctx context.Context) error {
	ops, err := server.NewServer(a.log, &a.config.Server)
	if err != nil {
		return err
	}
	if err := ops.Start(ctx); err != nil {
		return err
	}

	a.ops = ops

	return nil
}

// startQueue opens the redis-backed task queue client.
func (a *application) startQueue() {
	a.redisOpt = redis.NewOptions(&a.config.Redis)
	a.queue = tasks.NewQueueManager(redis.NewAsynqRedisOptions(a.redisOpt))
}

// stop releases whatever was started, logging rather than failing on
// shutdown errors.
func (a *application) stop(ctx context.Context) {
	if a.ops != nil {
		if err := a.ops.Stop(); err != nil {
			a.log.WithError(err).Error("Operational server stopped with error")
		}
	}

	if a.queue != nil {
		if err := a.queue.Close(); err != nil {
			a.log.WithError(err).Error("Failed to close task queue")
		}
	}

	if a.store != nil {
		if err := a.store.Stop(ctx); err != nil {
			a.log.WithError(err).Error("Failed to disconnect from mongo")
		}
	}
}

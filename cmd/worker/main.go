package main

import (
	"context"
	"errors"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"reel/internal/config"
	"reel/internal/jobstore"
	"reel/internal/pkg/logger"
	"reel/internal/pkg/shutdown"
	"reel/internal/storage"
	"reel/internal/worker"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.FromEnv()
	if err != nil {
		panic(err)
	}

	log := logger.New(logger.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		ServiceName: "reel-worker",
		AddSource:   cfg.Logging.AddSource,
	})

	if err := cfg.ValidateWorkerConfig(); err != nil {
		log.LogFatal("invalid configuration", err)
	}

	log.Info("starting reel worker",
		"version", "0.1.0",
		"queue", cfg.Queue.Name,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownMgr := shutdown.NewManager(log, 30*time.Second)
	shutdownMgr.Register("worker-loop", func(context.Context) error {
		cancel()
		return nil
	})

	rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
	shutdownMgr.Register("redis", func(ctx context.Context) error {
		return rdb.Close()
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		log.LogFatal("failed to ping Redis", err)
	}
	log.Info("Redis connected")

	store, err := jobstore.New(cfg.Queue.Dir, log)
	if err != nil {
		log.LogFatal("failed to open job store", err)
	}

	sp, err := storage.NewProvider(cfg.Storage)
	if err != nil {
		log.LogFatal("failed to initialize storage provider", err)
	}
	log.Info("storage provider initialized", "provider", sp.Provider())

	done := make(chan struct{})
	go func() {
		defer close(done)
		err := worker.Run(ctx, worker.Deps{
			RDB:   rdb,
			Store: store,
			SP:    sp,
			Cfg:   cfg,
			Log:   log,
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Error("worker loop stopped", "error", err.Error())
		}
	}()

	shutdownMgr.Wait()
	<-done
}

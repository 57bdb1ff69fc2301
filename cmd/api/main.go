package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"reel/internal/config"
	"reel/internal/httpapi"
	"reel/internal/jobstore"
	"reel/internal/pkg/logger"
	"reel/internal/pkg/shutdown"
	"reel/internal/storage"
	"reel/internal/worker/processor"
	"reel/internal/worker/queue"
	"reel/internal/worker/renderer"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.FromEnv()
	if err != nil {
		panic(err)
	}

	log := logger.New(logger.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		ServiceName: "reel-api",
		AddSource:   cfg.Logging.AddSource,
	})

	if err := cfg.ValidateAPIConfig(); err != nil {
		log.LogFatal("invalid configuration", err)
	}

	log.Info("starting reel API",
		"version", "0.1.0",
	)

	ctx := context.Background()

	// Initialize shutdown manager
	shutdownMgr := shutdown.NewManager(log, cfg.Server.ShutdownTimeout)

	// Connect to Redis
	log.Info("connecting to Redis")
	rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
	shutdownMgr.Register("redis", func(ctx context.Context) error {
		return rdb.Close()
	})

	// Verify Redis connection
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.LogFatal("failed to ping Redis", err)
	}
	log.Info("Redis connected")

	// Open the job store
	store, err := jobstore.New(cfg.Queue.Dir, log)
	if err != nil {
		log.LogFatal("failed to open job store", err)
	}
	log.Info("job store ready", "dir", cfg.Queue.Dir)

	// Initialize storage provider
	log.Info("initializing storage provider")
	sp, err := storage.NewProvider(cfg.Storage)
	if err != nil {
		log.LogFatal("failed to initialize storage provider", err)
	}
	log.Info("storage provider initialized", "provider", sp.Provider())

	// The synchronous /render-and-upload endpoint runs the same pipeline
	// the worker does, in-process.
	proc := processor.New(processor.Deps{
		Store:    store,
		Renderer: renderer.NewCLIClient(cfg.Render.ManimBin, cfg.Render.WorkDir, log),
		SP:       sp,
		Render:   cfg.Render,
		Log:      log,
	})

	// Create HTTP router
	router := httpapi.NewRouter(httpapi.Deps{
		RDB:       rdb,
		SP:        sp,
		Store:     store,
		Queue:     queue.NewRedisQueue(rdb, cfg.Queue.Name),
		Processor: proc,
		Render:    cfg.Render,
		Log:       log,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf("0.0.0.0:%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Register server shutdown
	shutdownMgr.Register("http-server", func(ctx context.Context) error {
		log.Info("shutting down HTTP server")
		return server.Shutdown(ctx)
	})

	// Start server in goroutine
	go func() {
		log.Info("HTTP server listening",
			"addr", server.Addr,
			"port", cfg.Server.Port,
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.LogFatal("HTTP server failed", err)
		}
	}()

	// Wait for shutdown signal
	shutdownMgr.Wait()
}

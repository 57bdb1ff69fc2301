package handlers

import (
	"github.com/redis/go-redis/v9"

	"reel/internal/config"
	"reel/internal/jobstore"
	"reel/internal/pkg/logger"
	"reel/internal/ports"
	"reel/internal/worker/processor"
	"reel/internal/worker/queue"
)

type Deps struct {
	RDB       *redis.Client
	SP        ports.StorageProvider
	Store     *jobstore.Store
	Queue     *queue.RedisQueue
	Processor *processor.Processor
	Render    config.RenderConfig
	Log       *logger.Logger
}

type Handler struct {
	rdb    *redis.Client
	sp     ports.StorageProvider
	store  *jobstore.Store
	queue  *queue.RedisQueue
	proc   *processor.Processor
	render config.RenderConfig
	log    *logger.Logger
}

func New(d Deps) *Handler {
	log := d.Log
	if log == nil {
		log = logger.NewDefault()
	}
	return &Handler{
		rdb:    d.RDB,
		sp:     d.SP,
		store:  d.Store,
		queue:  d.Queue,
		proc:   d.Processor,
		render: d.Render,
		log:    log.WithComponent("httpapi"),
	}
}

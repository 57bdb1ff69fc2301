package worker

import (
	"github.com/redis/go-redis/v9"

	"reel/internal/config"
	"reel/internal/jobstore"
	"reel/internal/pkg/logger"
	"reel/internal/ports"
)

type Deps struct {
	RDB   *redis.Client
	Store *jobstore.Store
	SP    ports.StorageProvider
	Cfg   *config.Config
	Log   *logger.Logger
}

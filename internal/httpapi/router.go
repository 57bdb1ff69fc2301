package httpapi

import (
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"reel/internal/config"
	"reel/internal/httpapi/handlers"
	"reel/internal/httpkit"
	"reel/internal/jobstore"
	"reel/internal/pkg/logger"
	"reel/internal/pkg/middleware"
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

func NewRouter(d Deps) http.Handler {
	log := d.Log
	if log == nil {
		log = logger.NewDefault()
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logging(log))
	r.Use(middleware.Recovery(log))

	// ---- CORS (Swagger UI + future frontend) ----
	allowedOrigins := envCSV("CORS_ALLOWED_ORIGINS", []string{
		"http://localhost:8081",
		"http://localhost:5173",
	})
	r.Use(httpkit.CORS(httpkit.CORSOptions{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: false,
		MaxAgeSeconds:    600,
	}))

	h := handlers.New(handlers.Deps{
		RDB:       d.RDB,
		SP:        d.SP,
		Store:     d.Store,
		Queue:     d.Queue,
		Processor: d.Processor,
		Render:    d.Render,
		Log:       log,
	})

	// ---- HEALTH ----
	r.Get("/health", h.Health)

	// ---- SYNCHRONOUS RENDER ----
	r.Post("/render-and-upload", h.RenderAndUpload)

	// ---- JOBS ----
	r.Post("/jobs", h.PostJob)
	r.Get("/jobs/{jobId}", h.GetJob)
	r.Delete("/jobs/{jobId}", h.DeleteJob)

	return r
}

func envCSV(key string, def []string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

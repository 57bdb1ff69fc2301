package handlers

import (
	"context"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"reel/internal/httpkit"
)

// Health performs a health check of the service.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := h.log.FromContext(ctx)

	// Basic health response
	health := map[string]any{
		"status":  "ok",
		"service": "reel-api",
		"version": "0.1.0",
	}

	// Check if deep health check is requested
	if r.URL.Query().Get("deep") == "true" {
		checks := h.deepHealthCheck(ctx)
		health["checks"] = checks

		// If any check failed, change status
		for _, check := range checks {
			if checkMap, ok := check.(map[string]any); ok {
				if checkMap["status"] != "ok" {
					health["status"] = "degraded"
					log.Warn("health check degraded", "checks", checks)
					break
				}
			}
		}
	}

	httpkit.WriteJSON(w, 200, health)
}

// deepHealthCheck performs detailed health checks on dependencies.
func (h *Handler) deepHealthCheck(ctx context.Context) map[string]any {
	checks := make(map[string]any)

	checks["redis"] = h.checkRedis(ctx)
	checks["queue_dir"] = h.checkQueueDir()
	checks["storage"] = h.checkStorage(ctx)
	checks["tools"] = h.checkTools()

	return checks
}

func (h *Handler) checkRedis(ctx context.Context) map[string]any {
	start := time.Now()
	result := map[string]any{
		"status": "ok",
	}

	// Create a context with timeout
	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	// Ping Redis
	if err := h.rdb.Ping(checkCtx).Err(); err != nil {
		result["status"] = "error"
		result["error"] = err.Error()
	}

	result["latency_ms"] = time.Since(start).Milliseconds()
	return result
}

// checkQueueDir verifies the job record directory is writable; a
// read-only volume would silently lose every admitted job.
func (h *Handler) checkQueueDir() map[string]any {
	result := map[string]any{
		"status": "ok",
		"dir":    h.store.Dir(),
	}

	probe := filepath.Join(h.store.Dir(), ".health")
	if err := os.WriteFile(probe, []byte("ok"), 0o644); err != nil {
		result["status"] = "error"
		result["error"] = err.Error()
		return result
	}
	_ = os.Remove(probe)
	return result
}

func (h *Handler) checkStorage(_ context.Context) map[string]any {
	result := map[string]any{
		"status":   "ok",
		"provider": h.sp.Provider(),
	}

	// For now, just report the provider type
	// In the future, we could add actual connectivity checks
	return result
}

// checkTools reports whether the configured render and concat binaries
// are resolvable. Missing tools fail every job, so surface it here.
func (h *Handler) checkTools() map[string]any {
	result := map[string]any{"status": "ok"}
	for _, tool := range []string{h.render.ManimBin, h.render.FFmpegBin} {
		if _, err := exec.LookPath(tool); err != nil {
			result["status"] = "error"
			result[tool] = "not found"
		}
	}
	return result
}

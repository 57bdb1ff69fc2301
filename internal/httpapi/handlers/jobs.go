package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"reel/internal/httpkit"
	"reel/internal/jobstore"
	"reel/internal/pkg/errors"
	"reel/internal/worker/processor"
	"reel/internal/worker/util"
)

type CreateJobRequest struct {
	ScriptCode string `json:"script_code"`
	Quality    string `json:"quality"`
}

// PostJob admits a render job: persist the record with status queued,
// then push the id onto the wake-up queue for the worker.
func (h *Handler) PostJob(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateJobRequest
	if err := httpkit.DecodeJSON(r, &req); err != nil {
		httpkit.WriteErr(w, 400, "VALIDATION_ERROR", "invalid json body", nil)
		return
	}
	if strings.TrimSpace(req.ScriptCode) == "" {
		httpkit.WriteErr(w, 400, "VALIDATION_ERROR", "script_code is required", map[string]any{"field": "script_code"})
		return
	}
	if req.Quality == "" {
		req.Quality = processor.QualityLow
	}
	if !processor.ValidQuality(req.Quality) {
		httpkit.WriteErr(w, 400, "VALIDATION_ERROR", "unknown quality tier", map[string]any{"field": "quality"})
		return
	}

	jobID := util.NewID("job")
	payload := map[string]any{
		"script_code": req.ScriptCode,
		"quality":     req.Quality,
	}

	if err := h.store.Save(jobID, payload); err != nil {
		h.log.FromContext(ctx).Error("job save failed", "error", err.Error())
		httpkit.WriteErr(w, 500, "INTERNAL_ERROR", "job save failed", nil)
		return
	}

	if err := h.queue.Push(ctx, jobID); err != nil {
		httpkit.WriteErr(w, 500, "INTERNAL_ERROR", "queue push failed", nil)
		return
	}

	httpkit.WriteJSON(w, 202, map[string]any{
		"job": map[string]any{
			"id":      jobID,
			"status":  jobstore.StatusQueued,
			"quality": req.Quality,
		},
	})
}

// GetJob reads the job's record file, the sole durable representation
// of its state.
func (h *Handler) GetJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobId")

	rec, err := h.store.Get(jobID)
	if err != nil {
		if errors.IsNotFound(err) {
			httpkit.WriteErr(w, 404, "JOB_NOT_FOUND", "job not found", map[string]any{"job_id": jobID})
			return
		}
		h.log.FromContext(r.Context()).Error("job read failed", "error", err.Error())
		httpkit.WriteErr(w, 500, "INTERNAL_ERROR", "job read failed", nil)
		return
	}

	job := map[string]any{
		"id":     rec.JobID,
		"status": rec.Status,
	}
	for k, v := range rec.Extra {
		job[k] = v
	}

	httpkit.WriteJSON(w, 200, map[string]any{"job": job})
}

// DeleteJob removes a consumed job record. Deleting an absent job is
// not an error.
func (h *Handler) DeleteJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobId")

	if err := h.store.Delete(jobID); err != nil {
		h.log.FromContext(r.Context()).Error("job delete failed", "error", err.Error())
		httpkit.WriteErr(w, 500, "INTERNAL_ERROR", "job delete failed", nil)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

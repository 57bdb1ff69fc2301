package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"reel/internal/httpkit"
	"reel/internal/pkg/errors"
	"reel/internal/worker/processor"
)

type RenderAndUploadRequest struct {
	ScriptCode string `json:"script_code"`
	Quality    string `json:"quality"`
}

// RenderAndUpload runs the whole pipeline synchronously and responds
// with the public video URL. Long renders hold the connection open;
// callers that cannot wait should use POST /jobs instead.
func (h *Handler) RenderAndUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := h.log.FromContext(ctx)

	var req RenderAndUploadRequest
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

	res, err := h.proc.RenderAndUpload(ctx, processor.RenderRequest{
		Script:  req.ScriptCode,
		Quality: req.Quality,
	})
	if err != nil {
		code := errors.GetCode(err)
		status := errors.GetHTTPStatus(err)
		log.Warn("render request failed", "code", string(code), "error", err.Error())
		httpkit.WriteErr(w, status, string(code), err.Error(), nil)
		return
	}

	httpkit.WriteJSON(w, 200, map[string]any{
		"success":         true,
		"video_url":       res.VideoURL,
		"message":         fmt.Sprintf("Rendered and uploaded %d scenes: %s", res.ScenesRendered, res.ObjectKey),
		"scenes_rendered": res.ScenesRendered,
	})
}

package processor

import "reel/internal/pkg/errors"

// Quality tiers accepted by the service.
const (
	QualityLow    = "low"
	QualityMedium = "medium"
	QualityHigh   = "high"
	Quality4K     = "4k"
)

// Engine quality flags and the output folder each tier renders into.
var qualityFlags = map[string]string{
	QualityLow:    "-ql",
	QualityMedium: "-qm",
	QualityHigh:   "-qh",
	Quality4K:     "-qk",
}

var qualityFolders = map[string]string{
	QualityLow:    "480p15",
	QualityMedium: "720p30",
	QualityHigh:   "1080p60",
	Quality4K:     "2160p60",
}

// ValidQuality reports whether q names a known tier.
func ValidQuality(q string) bool {
	_, ok := qualityFlags[q]
	return ok
}

// NormalizeQuality maps unknown tiers to low.
func NormalizeQuality(q string) string {
	if ValidQuality(q) {
		return q
	}
	return QualityLow
}

// QualityFlag returns the engine CLI flag for a tier.
func QualityFlag(q string) string {
	return qualityFlags[NormalizeQuality(q)]
}

// QualityFolder returns the engine output folder for a tier.
func QualityFolder(q string) string {
	return qualityFolders[NormalizeQuality(q)]
}

// unsafePatterns is a shallow substring denylist against embedding
// alternate execution primitives in a submitted script. It is not a
// sandbox and is trivially bypassable; it only keeps the obvious
// cases from ever reaching the engine.
var unsafePatterns = []string{
	"import os",
	"subprocess",
	"exec",
	"__import__",
	"open(",
	"file(",
}

// CheckScriptSafety rejects scripts tripping the denylist.
func CheckScriptSafety(script string) error {
	for _, pattern := range unsafePatterns {
		if containsPattern(script, pattern) {
			return errors.Validation("unsafe code detected")
		}
	}
	return nil
}

// RenderRequest is one submitted rendering job.
type RenderRequest struct {
	Script  string `json:"script_code"`
	Quality string `json:"quality"`
}

// RenderResult describes a completed, uploaded render.
type RenderResult struct {
	VideoURL       string
	ObjectKey      string
	ScenesRendered int
}

// RequestFromPayload reads a render request out of a persisted job
// payload. Missing keys yield zero values; the caller validates.
func RequestFromPayload(payload map[string]any) RenderRequest {
	var req RenderRequest
	if v, ok := payload["script_code"].(string); ok {
		req.Script = v
	}
	if v, ok := payload["quality"].(string); ok {
		req.Quality = v
	}
	return req
}

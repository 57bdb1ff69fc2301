package processor

import (
	"os"
	"path/filepath"
	"slices"

	"reel/internal/pkg/logger"
)

// Cleanup removes a request's artifacts and engine output directories
// after hand-off. Strictly best-effort: every deletion failure is
// logged and the remaining deletions still run. A failed cleanup must
// never turn a successful render and upload into a failed response.
type Cleanup struct {
	mediaRoot string
	log       *logger.Logger
}

func NewCleanup(mediaRoot string, log *logger.Logger) *Cleanup {
	return &Cleanup{mediaRoot: mediaRoot, log: log}
}

// CleanupJob deletes the per-scene artifacts, the final artifact when
// it is a separate file, the concat manifest a failed assembly may have
// left behind, and the request's video/image directories under both
// the flat and the nested engine output layouts.
func (c *Cleanup) CleanupJob(baseName string, artifacts []string, finalArtifact string) {
	for _, artifact := range artifacts {
		c.removeFile(artifact)
	}
	if finalArtifact != "" && !slices.Contains(artifacts, finalArtifact) {
		c.removeFile(finalArtifact)
	}
	c.removeFile(filepath.Join(c.mediaRoot, baseName+"_concat.txt"))

	for _, dir := range []string{
		filepath.Join(c.mediaRoot, "videos", baseName),
		filepath.Join(c.mediaRoot, "images", baseName),
		filepath.Join(c.mediaRoot, "media", "videos", baseName),
		filepath.Join(c.mediaRoot, "media", "images", baseName),
	} {
		c.removeDir(dir)
	}
}

func (c *Cleanup) removeFile(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		c.log.Warn("failed to delete artifact", "path", path, "error", err.Error())
	}
}

func (c *Cleanup) removeDir(dir string) {
	if err := os.RemoveAll(dir); err != nil {
		c.log.Warn("failed to delete output directory", "dir", dir, "error", err.Error())
	}
}

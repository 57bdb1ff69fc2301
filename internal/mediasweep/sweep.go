// Package mediasweep is the safety net behind the per-request cleanup:
// an idempotent, age-based batch deletion over the shared engine
// output tree. It catches whatever the best-effort hot path missed so
// a long-lived service does not grow disk usage without bound.
package mediasweep

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"reel/internal/pkg/logger"
)

// DefaultMaxAge is how long request output may sit before the sweep
// considers it abandoned.
const DefaultMaxAge = 24 * time.Hour

type Sweeper struct {
	mediaRoot string
	maxAge    time.Duration
	log       *logger.Logger
}

func New(mediaRoot string, maxAge time.Duration, log *logger.Logger) *Sweeper {
	if log == nil {
		log = logger.NewDefault()
	}
	return &Sweeper{mediaRoot: mediaRoot, maxAge: maxAge, log: log.WithComponent("mediasweep")}
}

// Sweep deletes request directories older than the age threshold under
// both engine output layouts, plus stale typesetting scratch files.
// Request directories are recognized by the temp-file prefix their
// workspace base names carry. Returns the number of items deleted.
func (s *Sweeper) Sweep() int {
	if _, err := os.Stat(s.mediaRoot); os.IsNotExist(err) {
		s.log.Info("no media directory found", "dir", s.mediaRoot)
		return 0
	}

	cutoff := time.Now().Add(-s.maxAge)
	deleted := 0

	for _, dir := range []string{
		filepath.Join(s.mediaRoot, "videos"),
		filepath.Join(s.mediaRoot, "images"),
		filepath.Join(s.mediaRoot, "media", "videos"),
		filepath.Join(s.mediaRoot, "media", "images"),
	} {
		deleted += s.sweepRequestDirs(dir, cutoff)
	}

	deleted += s.sweepTexFiles(cutoff)

	s.log.Info("sweep complete", "deleted", deleted)
	return deleted
}

func (s *Sweeper) sweepRequestDirs(dir string, cutoff time.Time) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}

	deleted := 0
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), "tmp") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		if err := os.RemoveAll(path); err != nil {
			s.log.Warn("failed to delete old directory", "path", path, "error", err.Error())
			continue
		}
		s.log.Info("deleted old directory", "path", path)
		deleted++
	}
	return deleted
}

func (s *Sweeper) sweepTexFiles(cutoff time.Time) int {
	paths, err := filepath.Glob(filepath.Join(s.mediaRoot, "Tex", "*.tex"))
	if err != nil {
		return 0
	}

	deleted := 0
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(path); err != nil {
			s.log.Warn("failed to delete old tex file", "path", path, "error", err.Error())
			continue
		}
		deleted++
	}
	return deleted
}

// PurgeAll removes the entire media tree. Escape hatch; use with care.
func (s *Sweeper) PurgeAll() error {
	if _, err := os.Stat(s.mediaRoot); os.IsNotExist(err) {
		s.log.Info("no media directory found", "dir", s.mediaRoot)
		return nil
	}
	s.log.Warn("deleting ALL media files", "dir", s.mediaRoot)
	return os.RemoveAll(s.mediaRoot)
}

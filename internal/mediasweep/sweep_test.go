package mediasweep

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reel/internal/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Output: io.Discard})
}

func mkdirOld(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(path, 0o755))
	old := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(path, old, old))
}

func TestSweepDeletesOldRequestDirs(t *testing.T) {
	media := t.TempDir()

	oldFlat := filepath.Join(media, "videos", "tmpabc123")
	oldNested := filepath.Join(media, "media", "videos", "tmpdef456")
	fresh := filepath.Join(media, "videos", "tmpfresh")
	notTmp := filepath.Join(media, "videos", "archive")
	mkdirOld(t, oldFlat)
	mkdirOld(t, oldNested)
	require.NoError(t, os.MkdirAll(fresh, 0o755))
	mkdirOld(t, notTmp)

	s := New(media, 24*time.Hour, testLogger())
	deleted := s.Sweep()

	assert.Equal(t, 2, deleted)
	for _, gone := range []string{oldFlat, oldNested} {
		_, err := os.Stat(gone)
		assert.True(t, os.IsNotExist(err), gone)
	}
	for _, kept := range []string{fresh, notTmp} {
		_, err := os.Stat(kept)
		assert.NoError(t, err, kept)
	}
}

func TestSweepDeletesStaleTexFiles(t *testing.T) {
	media := t.TempDir()
	texDir := filepath.Join(media, "Tex")
	require.NoError(t, os.MkdirAll(texDir, 0o755))

	stale := filepath.Join(texDir, "old.tex")
	require.NoError(t, os.WriteFile(stale, []byte("x"), 0o644))
	old := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(stale, old, old))

	fresh := filepath.Join(texDir, "fresh.tex")
	require.NoError(t, os.WriteFile(fresh, []byte("x"), 0o644))

	s := New(media, 24*time.Hour, testLogger())
	deleted := s.Sweep()

	assert.Equal(t, 1, deleted)
	_, err := os.Stat(stale)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(fresh)
	assert.NoError(t, err)
}

func TestSweepMissingMediaRoot(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "nope"), time.Hour, testLogger())
	assert.Equal(t, 0, s.Sweep())
}

func TestPurgeAll(t *testing.T) {
	media := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(media, "videos", "tmpabc"), 0o755))

	s := New(media, time.Hour, testLogger())
	require.NoError(t, s.PurgeAll())

	_, err := os.Stat(media)
	assert.True(t, os.IsNotExist(err))

	// Second purge of a missing tree is a no-op.
	require.NoError(t, s.PurgeAll())
}

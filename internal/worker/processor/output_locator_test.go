package processor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeArtifact(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("mp4"), 0o644))
}

func TestLocateArtifactFlatLayout(t *testing.T) {
	media := t.TempDir()
	want := filepath.Join(media, "videos", "tmp123", "480p15", "Intro.mp4")
	writeArtifact(t, want)

	got, err := LocateArtifact(media, "tmp123", "480p15", "Intro")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLocateArtifactNestedLayout(t *testing.T) {
	media := t.TempDir()
	want := filepath.Join(media, "media", "videos", "tmp123", "720p30", "Intro.mp4")
	writeArtifact(t, want)

	got, err := LocateArtifact(media, "tmp123", "720p30", "Intro")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLocateArtifactPrefersFlatLayout(t *testing.T) {
	media := t.TempDir()
	flat := filepath.Join(media, "videos", "b", "480p15", "S.mp4")
	nested := filepath.Join(media, "media", "videos", "b", "480p15", "S.mp4")
	writeArtifact(t, flat)
	writeArtifact(t, nested)

	got, err := LocateArtifact(media, "b", "480p15", "S")
	require.NoError(t, err)
	assert.Equal(t, flat, got)
}

func TestLocateArtifactMissingListsCandidates(t *testing.T) {
	media := t.TempDir()

	_, err := LocateArtifact(media, "tmp123", "480p15", "Intro")
	require.Error(t, err)
	for _, candidate := range ArtifactCandidates(media, "tmp123", "480p15", "Intro") {
		assert.Contains(t, err.Error(), candidate)
	}
}

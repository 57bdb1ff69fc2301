package processor

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reel/internal/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Output: io.Discard})
}

func TestAssembleSingleArtifactIsIdentity(t *testing.T) {
	media := t.TempDir()
	artifact := filepath.Join(media, "videos", "b", "480p15", "Only.mp4")
	writeArtifact(t, artifact)

	a := NewAssembler("ffmpeg", media, testLogger())
	final, err := a.Assemble(context.Background(), "b", "480p15", []string{artifact})
	require.NoError(t, err)
	assert.Equal(t, artifact, final, "single scene must not spawn the concatenation tool")

	_, statErr := os.Stat(filepath.Join(media, "b_concat.txt"))
	assert.True(t, os.IsNotExist(statErr), "no manifest for a single artifact")
}

func TestAssembleEmptyIsError(t *testing.T) {
	a := NewAssembler("ffmpeg", t.TempDir(), testLogger())
	_, err := a.Assemble(context.Background(), "b", "480p15", nil)
	assert.Error(t, err)
}

func TestWriteConcatManifestOrder(t *testing.T) {
	media := t.TempDir()
	a1 := filepath.Join(media, "A.mp4")
	a2 := filepath.Join(media, "B.mp4")
	a3 := filepath.Join(media, "C.mp4")

	listPath := filepath.Join(media, "b_concat.txt")
	require.NoError(t, writeConcatManifest(listPath, []string{a1, a2, a3}))

	data, err := os.ReadFile(listPath)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "file '"+a1+"'", lines[0])
	assert.Equal(t, "file '"+a2+"'", lines[1])
	assert.Equal(t, "file '"+a3+"'", lines[2])
}

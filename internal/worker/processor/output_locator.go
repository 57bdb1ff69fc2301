package processor

import (
	"os"
	"path/filepath"
	"strings"

	"reel/internal/pkg/errors"
)

// ArtifactCandidates lists every known engine output location for a
// scene, in the order they are probed. The engine places outputs under
// either a flat or a nested media tree depending on its own working
// directory assumptions; both must stay covered, do not collapse this
// to a single assumed path.
func ArtifactCandidates(mediaRoot, baseName, qualityFolder, sceneName string) []string {
	name := sceneName + ".mp4"
	return []string{
		filepath.Join(mediaRoot, "videos", baseName, qualityFolder, name),
		filepath.Join(mediaRoot, "media", "videos", baseName, qualityFolder, name),
	}
}

// LocateArtifact returns the first candidate path that exists on disk.
// When none exists the error carries the full list of paths checked.
func LocateArtifact(mediaRoot, baseName, qualityFolder, sceneName string) (string, error) {
	candidates := ArtifactCandidates(mediaRoot, baseName, qualityFolder, sceneName)
	for _, path := range candidates {
		if st, err := os.Stat(path); err == nil && !st.IsDir() {
			return path, nil
		}
	}
	return "", errors.Newf(errors.CodeRender,
		"output file not generated for scene '%s'. Checked: %s",
		sceneName, strings.Join(candidates, ", "))
}

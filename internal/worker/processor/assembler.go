package processor

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"reel/internal/pkg/errors"
	"reel/internal/pkg/logger"
	"reel/internal/worker/renderer"
)

// Assembler concatenates per-scene artifacts into one final video via
// the external concatenation tool in stream-copy mode (no re-encode).
type Assembler struct {
	ffmpegBin string
	mediaRoot string
	log       *logger.Logger
}

func NewAssembler(ffmpegBin, mediaRoot string, log *logger.Logger) *Assembler {
	return &Assembler{ffmpegBin: ffmpegBin, mediaRoot: mediaRoot, log: log}
}

// Assemble merges artifacts in the given order. A single artifact is
// returned as-is; no new file is produced. With multiple artifacts a
// manifest is written, the tool is invoked, and the merged file lands
// next to the per-scene outputs.
func (a *Assembler) Assemble(ctx context.Context, baseName, qualityFolder string, artifacts []string) (string, error) {
	if len(artifacts) == 0 {
		return "", errors.Internal("assembler: no artifacts to assemble")
	}
	if len(artifacts) == 1 {
		return artifacts[0], nil
	}

	listPath := filepath.Join(a.mediaRoot, baseName+"_concat.txt")
	if err := writeConcatManifest(listPath, artifacts); err != nil {
		return "", errors.WrapWithCode(err, errors.CodeAssemble, "assembler.manifest", "failed to write concat manifest")
	}

	finalPath := filepath.Join(a.mediaRoot, "videos", baseName, qualityFolder, "final_output.mp4")
	if err := os.MkdirAll(filepath.Dir(finalPath), 0o755); err != nil {
		return "", errors.WrapWithCode(err, errors.CodeAssemble, "assembler.mkdir", "failed to create output directory")
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, a.ffmpegBin,
		"-f", "concat", "-safe", "0", "-i", listPath, "-c", "copy", finalPath)
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		a.log.Error("concatenation failed", "stderr", stderr.String())
		return "", errors.Newf(errors.CodeAssemble, "failed to concatenate videos: %s",
			renderer.Truncate(stderr.String(), 500))
	}

	// The manifest is transient; one orphaned by a failure above is
	// removed by the request cleanup.
	_ = os.Remove(listPath)

	a.log.Info("concatenated scene videos", "count", len(artifacts), "final", finalPath)
	return finalPath, nil
}

// writeConcatManifest writes the tool's list-file syntax: one quoted
// absolute path per line, in concatenation order.
func writeConcatManifest(path string, artifacts []string) error {
	var b strings.Builder
	for _, artifact := range artifacts {
		abs, err := filepath.Abs(artifact)
		if err != nil {
			return err
		}
		fmt.Fprintf(&b, "file '%s'\n", abs)
	}
	return os.WriteFile(path, []byte(b.String()), 0o644)
}

// Package renderer drives the external rendering engine. The engine is
// invoked once per scene as a subprocess; its only failure signal is a
// non-zero exit plus stderr text, which gets classified into the
// pipeline error codes here.
package renderer

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"reel/internal/pkg/errors"
	"reel/internal/pkg/logger"
)

// DefaultTimeout bounds a single scene render. A scene that runs past
// it is assumed to be runaway user content, not transient trouble, so
// the timeout is surfaced verbatim and never retried.
const DefaultTimeout = 300 * time.Second

// Request selects one scene of one script at one quality.
type Request struct {
	ScriptPath  string
	SceneName   string
	QualityFlag string
	Timeout     time.Duration
}

// Result captures the engine invocation outcome in full.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

type Client interface {
	Render(ctx context.Context, req Request) (*Result, error)
}

// CLIClient runs the engine binary in a fixed working directory, so
// artifacts land under workDir/media.
type CLIClient struct {
	bin     string
	workDir string
	log     *logger.Logger
}

func NewCLIClient(bin, workDir string, log *logger.Logger) *CLIClient {
	if log == nil {
		log = logger.NewDefault()
	}
	return &CLIClient{bin: bin, workDir: workDir, log: log.WithComponent("renderer")}
}

func (c *CLIClient) Render(ctx context.Context, req Request) (*Result, error) {
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, c.bin, req.QualityFlag, req.ScriptPath, req.SceneName)
	cmd.Dir = c.workDir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()

	res := &Result{
		ExitCode: -1,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
	}
	if cmd.ProcessState != nil {
		res.ExitCode = cmd.ProcessState.ExitCode()
	}

	c.log.Debug("engine invocation finished",
		"scene", req.SceneName,
		"exit_code", res.ExitCode,
		"stdout", res.Stdout,
		"stderr", res.Stderr,
	)

	if ctx.Err() == context.DeadlineExceeded {
		return res, errors.WrapWithCode(ctx.Err(), errors.CodeTimeout, "renderer.render",
			fmt.Sprintf("rendering scene '%s' timed out after %s", req.SceneName, timeout))
	}
	if runErr != nil {
		return res, ClassifyFailure(req.SceneName, res.Stderr)
	}
	return res, nil
}

// ClassifyFailure maps engine stderr onto an error code. The check is
// substring-based on known vendor error vocabulary, not exhaustive;
// a misclassification degrades diagnostics, nothing more.
func ClassifyFailure(sceneName, stderr string) *errors.Error {
	detail := Truncate(stderr, 500)
	if strings.Contains(stderr, "LaTeX") || strings.Contains(strings.ToLower(stderr), "tex") {
		return errors.Newf(errors.CodeLatex,
			"LaTeX rendering failed in scene '%s'. Use Text() instead of Tex() for simple text. Error: %s",
			sceneName, detail)
	}
	return errors.Newf(errors.CodeRender, "render failed for scene '%s': %s", sceneName, detail)
}

// Truncate caps engine output carried inside error messages.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

package renderer

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reel/internal/pkg/errors"
	"reel/internal/pkg/logger"
)

// fakeEngine writes a shell script standing in for the engine binary.
func fakeEngine(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "engine.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return path
}

func newTestClient(t *testing.T, bin string) *CLIClient {
	t.Helper()
	log := logger.New(logger.Config{Output: io.Discard})
	return NewCLIClient(bin, t.TempDir(), log)
}

func TestRenderSuccess(t *testing.T) {
	bin := fakeEngine(t, "echo rendered")
	c := newTestClient(t, bin)

	res, err := c.Render(context.Background(), Request{
		ScriptPath:  "script.py",
		SceneName:   "Intro",
		QualityFlag: "-ql",
		Timeout:     5 * time.Second,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, res.ExitCode)
	assert.Contains(t, res.Stdout, "rendered")
}

func TestRenderTimeout(t *testing.T) {
	bin := fakeEngine(t, "sleep 10")
	c := newTestClient(t, bin)

	_, err := c.Render(context.Background(), Request{
		ScriptPath:  "script.py",
		SceneName:   "SlowScene",
		QualityFlag: "-ql",
		Timeout:     100 * time.Millisecond,
	})
	require.Error(t, err)
	assert.Equal(t, errors.CodeTimeout, errors.GetCode(err))
	assert.Contains(t, err.Error(), "SlowScene")
	assert.Contains(t, err.Error(), "timed out after 100ms")
}

func TestRenderFailureClassifiedFromStderr(t *testing.T) {
	bin := fakeEngine(t, "echo 'LaTeX Error: missing package' >&2; exit 1")
	c := newTestClient(t, bin)

	res, err := c.Render(context.Background(), Request{
		ScriptPath:  "script.py",
		SceneName:   "MathScene",
		QualityFlag: "-qh",
		Timeout:     5 * time.Second,
	})
	require.Error(t, err)
	assert.Equal(t, errors.CodeLatex, errors.GetCode(err))
	assert.Contains(t, err.Error(), "MathScene")
	assert.Equal(t, 1, res.ExitCode)
	assert.Contains(t, res.Stderr, "LaTeX Error")
}

func TestClassifyFailure(t *testing.T) {
	tests := []struct {
		name     string
		stderr   string
		wantCode errors.Code
		wantHint bool
	}{
		{"latex error", "ERROR: LaTeX compilation failed", errors.CodeLatex, true},
		{"lowercase tex", "could not find latex binary", errors.CodeLatex, true},
		{"plain failure", "Traceback (most recent call last): NameError", errors.CodeRender, false},
		{"empty stderr", "", errors.CodeRender, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ClassifyFailure("MyScene", tt.stderr)
			assert.Equal(t, tt.wantCode, err.Code)
			assert.Contains(t, err.Message, "MyScene")
			if tt.wantHint {
				assert.Contains(t, err.Message, "Use Text() instead of Tex()")
			}
		})
	}
}

func TestClassifyFailureTruncatesDetail(t *testing.T) {
	stderr := strings.Repeat("x", 2000)
	err := ClassifyFailure("S", stderr)
	assert.Less(t, len(err.Message), 700, "stderr detail must be capped at 500 bytes")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 5))
	assert.Equal(t, "ab", Truncate("abc", 2))
	assert.Equal(t, "", Truncate("", 5))
}

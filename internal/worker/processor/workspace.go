package processor

import (
	"os"
	"path/filepath"
	"strings"
)

// Workspace owns one request's temp script file. Its base name keys
// every engine output path for the request, which is what lets
// concurrent requests share the media tree without clashing.
type Workspace struct {
	ScriptPath string
	BaseName   string
}

// NewWorkspace writes the script to a fresh temp file. tmpDir empty
// means the OS default temp directory.
func NewWorkspace(tmpDir, script string) (*Workspace, error) {
	f, err := os.CreateTemp(tmpDir, "tmp*.py")
	if err != nil {
		return nil, err
	}
	path := f.Name()

	if _, err := f.WriteString(script); err != nil {
		f.Close()
		os.Remove(path)
		return nil, err
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return nil, err
	}

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return &Workspace{ScriptPath: path, BaseName: base}, nil
}

// Close removes the script file. It runs on every exit path of the
// request, success or failure.
func (w *Workspace) Close() {
	_ = os.Remove(w.ScriptPath)
}

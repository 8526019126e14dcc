package ffmpeg

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const workspacePrefix = "videoengine-"

// Workspace is the set of temp files owned by one request. Every path shares
// the same uniquely named base so concurrent requests never collide and a
// single glob removes everything.
type Workspace struct {
	base  string
	input string
}

// NewWorkspace allocates a workspace under dir for a source with extension
// sourceExt. No files are created until WriteInput.
func NewWorkspace(dir, sourceExt string) (*Workspace, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create workspace dir: %w", err)
	}
	base := filepath.Join(dir, workspacePrefix+uuid.NewString())
	return &Workspace{
		base:  base,
		input: base + "-source" + normalizeExt(sourceExt),
	}, nil
}

// Base returns the shared path stem.
func (w *Workspace) Base() string {
	return w.base
}

// Input returns the path the source buffer is written to.
func (w *Workspace) Input() string {
	return w.input
}

// LogPath returns the two-pass statistics path shared by both passes.
func (w *Workspace) LogPath() string {
	return w.base + ".log"
}

// Output returns the encoded output path for a container extension.
func (w *Workspace) Output(ext string) string {
	return w.base + normalizeExt(ext)
}

// WriteInput stores the source buffer.
func (w *Workspace) WriteInput(buf []byte) error {
	if err := os.WriteFile(w.input, buf, 0o600); err != nil {
		return fmt.Errorf("write workspace input: %w", err)
	}
	return nil
}

// Reset removes everything but the input: outputs, pass logs and any side
// files the encoder wrote next to them.
func (w *Workspace) Reset() error {
	return w.remove(func(path string) bool { return path != w.input })
}

// Close removes every file in the workspace.
func (w *Workspace) Close() error {
	return w.remove(func(string) bool { return true })
}

func (w *Workspace) remove(match func(string) bool) error {
	paths, err := filepath.Glob(w.base + "*")
	if err != nil {
		return fmt.Errorf("list workspace files: %w", err)
	}
	var errs []error
	for _, path := range paths {
		if !match(path) {
			continue
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func normalizeExt(ext string) string {
	ext = strings.TrimSpace(ext)
	if ext == "" || strings.HasPrefix(ext, ".") {
		return ext
	}
	return "." + ext
}

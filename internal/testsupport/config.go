// Package testsupport builds isolated configurations and stores for tests.
package testsupport

import (
	"path/filepath"
	"testing"

	"videoengine/internal/config"
)

// ConfigOption mutates the config produced by NewConfig.
type ConfigOption func(*config.Config)

// NewConfig returns the default configuration rooted in t.TempDir(), with
// history disabled unless WithHistory is passed.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	root := t.TempDir()
	cfg := config.Default()
	cfg.Engine.TempDir = filepath.Join(root, "tmp")
	cfg.Engine.FFmpegPath = "ffmpeg"
	cfg.Engine.FFprobePath = "ffprobe"
	cfg.History.Path = filepath.Join(root, "history", "history.db")
	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

func WithHistory() ConfigOption {
	return func(cfg *config.Config) { cfg.History.Enabled = true }
}

// WithCodecs exposes the per-codec tables for in-place edits.
func WithCodecs(fn func(h264 *config.H264, h265 *config.H265, vp9 *config.VP9)) ConfigOption {
	return func(cfg *config.Config) { fn(&cfg.H264, &cfg.H265, &cfg.VP9) }
}

// BaseDir is the temp root a NewConfig result was built under.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Engine.TempDir)
}

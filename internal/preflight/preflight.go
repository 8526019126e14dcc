package preflight

import (
	"os"
	"path/filepath"
	"strings"

	"videoengine/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the filesystem checks applicable to cfg. Binary checks are
// reported separately by CheckSystemDeps.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	tempDir := strings.TrimSpace(cfg.Engine.TempDir)
	if tempDir == "" {
		tempDir = os.TempDir()
	}

	results := []Result{
		CheckDirectoryAccess("Temp directory", tempDir),
		CheckFreeSpace("Temp free space", tempDir, MinFreeBytes),
	}

	if cfg.History.Enabled && strings.TrimSpace(cfg.History.Path) != "" {
		results = append(results, CheckDirectoryAccess("History directory", filepath.Dir(cfg.History.Path)))
	}

	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}

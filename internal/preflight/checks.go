package preflight

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"golang.org/x/sys/unix"

	"videoengine/internal/config"
	"videoengine/internal/deps"
)

// MinFreeBytes is the free space below which the temp directory check fails.
// Encodes stage the source, the pass log, and the output side by side.
const MinFreeBytes uint64 = 512 * 1024 * 1024

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckFreeSpace reports the space available to unprivileged users on the
// filesystem holding path and fails when it drops below minBytes.
func CheckFreeSpace(name, path string, minBytes uint64) Result {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: statfs: %v)", path, err)}
	}
	free := stat.Bavail * uint64(stat.Bsize)
	detail := fmt.Sprintf("%s free on %s", humanize.IBytes(free), path)
	if free < minBytes {
		return Result{Name: name, Detail: fmt.Sprintf("%s (below %s)", detail, humanize.IBytes(minBytes))}
	}
	return Result{Name: name, Passed: true, Detail: detail}
}

// SystemRequirements lists the binaries the engine shells out to for cfg.
func SystemRequirements(cfg *config.Config) []deps.Requirement {
	requirements := []deps.Requirement{
		{
			Name:    "FFmpeg",
			Command: cfg.FFmpegBinary(),
			Purpose: "encodes every output",
		},
		{
			Name:    "FFprobe",
			Command: deps.ResolveFFprobe(cfg.FFmpegBinary(), cfg.FFprobeBinary()),
			Purpose: "reads source geometry and timing",
		},
	}
	if cfg.Engine.UseGifsicleEngine {
		requirements = append(requirements, deps.Requirement{
			Name:     "gifsicle",
			Command:  "gifsicle",
			Purpose:  "handles animated GIFs routed away from ffmpeg",
			Optional: true,
		})
	}
	return requirements
}

// CheckSystemDeps evaluates all system-level dependencies for the given config.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	if cfg == nil {
		return nil
	}
	return deps.CheckBinaries(SystemRequirements(cfg))
}

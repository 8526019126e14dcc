package deps

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// ResolveFFprobe returns the ffprobe executable to use alongside ffmpegBinary.
//
// A configured ffprobe that resolves wins. Otherwise an ffprobe sitting next to
// the resolved ffmpeg binary is preferred, so static ffmpeg bundles unpacked
// into a single directory work without extra configuration. The configured
// value is returned unchanged when neither resolves, leaving the error to the
// caller that executes it.
func ResolveFFprobe(ffmpegBinary, ffprobeBinary string) string {
	configured := strings.TrimSpace(ffprobeBinary)
	if configured == "" {
		configured = "ffprobe"
	}
	if resolved, err := exec.LookPath(configured); err == nil {
		return resolved
	}
	if candidate, ok := sidecarCandidate(ffmpegBinary, "ffprobe"); ok {
		return candidate
	}
	return configured
}

func sidecarCandidate(anchor, name string) (string, bool) {
	anchor = strings.TrimSpace(anchor)
	if anchor == "" {
		return "", false
	}
	resolved, err := exec.LookPath(anchor)
	if err != nil {
		return "", false
	}
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	candidate := filepath.Join(filepath.Dir(resolved), name)
	info, err := os.Stat(candidate)
	if err != nil || !isExecutable(info) {
		return "", false
	}
	return candidate, true
}

func isExecutable(info os.FileInfo) bool {
	if info == nil {
		return false
	}
	if info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode().Perm()&0o111 != 0
}

package main

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"videoengine/internal/config"
)

func TestProbeReportsMetadata(t *testing.T) {
	env := setupCLITestEnv(t)
	input := env.writeInput(t, "clip.mp4", mp4Header)

	out, _, err := runCLI(t, []string{"probe", input}, env.configPath)
	if err != nil {
		t.Fatalf("probe: %v", err)
	}
	requireContains(t, out, "320x240")
	requireContains(t, out, "ffmpeg (video)")

	out, _, err = runCLI(t, []string{"probe", input, "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("probe --json: %v", err)
	}
	var report probeReport
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("decode probe: %v", err)
	}
	if report.Width != 320 || report.Height != 240 || report.Frames != 60 || !report.Animated {
		t.Fatalf("unexpected probe report %#v", report)
	}
	if report.Codec != "h264" || report.Kind != "video" {
		t.Fatalf("unexpected codec/kind %q/%q", report.Codec, report.Kind)
	}
}

func TestProbeFailureIsReported(t *testing.T) {
	env := setupCLITestEnv(t)
	env.rewriteConfig(t, func(cfg *config.Config) {
		cfg.Engine.FFprobePath = writeScript(t, filepath.Join(env.baseDir, "bin"), "ffprobe-broken", "#!/bin/sh\necho 'invalid data' >&2\nexit 1\n")
	})
	input := env.writeInput(t, "clip.mp4", mp4Header)

	if _, _, err := runCLI(t, []string{"probe", input}, env.configPath); err == nil {
		t.Fatal("expected probe failure")
	}
}

func TestHistoryRequiresLedger(t *testing.T) {
	env := setupCLITestEnv(t)
	_, _, err := runCLI(t, []string{"history"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "history is disabled") {
		t.Fatalf("expected disabled history error, got %v", err)
	}
}

func TestHistoryEmpty(t *testing.T) {
	env := setupCLITestEnv(t)
	env.rewriteConfig(t, func(cfg *config.Config) { cfg.History.Enabled = true })

	out, _, err := runCLI(t, []string{"history", "--limit", "5"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "No encode runs recorded")
}

func TestDoctorReportsDependencies(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"doctor"}, env.configPath)
	if err != nil && !strings.Contains(err.Error(), "readiness check") {
		t.Fatalf("doctor: %v", err)
	}
	requireContains(t, out, "FFmpeg")
	requireContains(t, out, "FFprobe")
	requireContains(t, out, "Temp directory")
	if strings.Contains(out, "gifsicle") {
		t.Fatalf("gifsicle should only be checked when enabled: %s", out)
	}
}

func TestDoctorFailsWithoutFFmpeg(t *testing.T) {
	env := setupCLITestEnv(t)
	env.rewriteConfig(t, func(cfg *config.Config) {
		cfg.Engine.FFmpegPath = filepath.Join(env.baseDir, "missing", "ffmpeg")
		cfg.Engine.UseGifsicleEngine = true
	})

	out, _, err := runCLI(t, []string{"doctor"}, env.configPath)
	if err == nil {
		t.Fatal("expected doctor to fail")
	}
	requireContains(t, out, "FAIL")
	requireContains(t, out, "gifsicle")
}

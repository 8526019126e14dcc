package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"videoengine/internal/config"
	"videoengine/internal/testsupport"
)

var mp4Header = []byte{
	0x00, 0x00, 0x00, 0x18, 'f', 't', 'y', 'p', 'i', 's', 'o', 'm',
	0x00, 0x00, 0x02, 0x00, 'i', 's', 'o', 'm', 'i', 's', 'o', '2',
}

const ffprobeStub = `#!/bin/sh
cat <<'JSON'
{
  "streams": [
    {"index": 0, "codec_name": "h264", "codec_type": "video", "width": 320, "height": 240,
     "avg_frame_rate": "30/1", "r_frame_rate": "30/1", "duration": "2.000000", "nb_frames": "60"}
  ],
  "format": {"filename": "input.mp4", "nb_streams": 1, "duration": "2.000000", "size": "1024", "format_name": "mov,mp4,m4a,3gp,3g2,mj2"}
}
JSON
`

// ffmpegStub writes a fixed payload to its last argument, the output path.
const ffmpegStub = `#!/bin/sh
for arg do out="$arg"; done
printf 'encoded-video' > "$out"
`

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t, opts...)
	base := testsupport.BaseDir(cfg)
	t.Setenv("HOME", filepath.Join(base, "home"))

	binDir := filepath.Join(base, "bin")
	cfg.Engine.FFmpegPath = writeScript(t, binDir, "ffmpeg", ffmpegStub)
	cfg.Engine.FFprobePath = writeScript(t, binDir, "ffprobe", ffprobeStub)
	cfg.Logging.Level = "error"

	configPath := filepath.Join(base, "videoengine.toml")
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{cfg: cfg, configPath: configPath, baseDir: base}
}

func (e *cliTestEnv) rewriteConfig(t *testing.T, mutate func(*config.Config)) {
	t.Helper()
	mutate(e.cfg)
	writeTestConfig(t, e.configPath, e.cfg)
}

func (e *cliTestEnv) writeInput(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(e.baseDir, "inputs", name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir inputs: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	return path
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir bin: %v", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o755); err != nil {
		t.Fatalf("write %s stub: %v", name, err)
	}
	return path
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := cfg.Marshal()
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

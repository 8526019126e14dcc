package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"videoengine/internal/media/codec"
)

//go:embed sample_config.toml
var sampleConfig string

// Engine contains host integration and external binary settings.
type Engine struct {
	ImageEngine       string `toml:"image_engine"`
	FFmpegEngine      string `toml:"ffmpeg_engine"`
	FFmpegPath        string `toml:"ffmpeg_path"`
	FFprobePath       string `toml:"ffprobe_path"`
	UseGifsicleEngine bool   `toml:"use_gifsicle_engine"`
	HandleAnimatedGIF bool   `toml:"handle_animated_gif"`
	TempDir           string `toml:"temp_dir"`
}

// H264 contains libx264 tunables. Empty strings leave the flag out.
type H264 struct {
	TwoPass bool   `toml:"two_pass"`
	Preset  string `toml:"preset"`
	Level   string `toml:"level"`
	Profile string `toml:"profile"`
	Tune    string `toml:"tune"`
	CRF     string `toml:"crf"`
	Bitrate string `toml:"bitrate"`
	MaxRate string `toml:"maxrate"`
	BufSize string `toml:"bufsize"`
	QMin    string `toml:"qmin"`
	QMax    string `toml:"qmax"`
}

// H265 contains hevc tunables. MaxRate, BufSize, CRFMin and CRFMax are passed
// through -x265-params.
type H265 struct {
	TwoPass bool   `toml:"two_pass"`
	Preset  string `toml:"preset"`
	Level   string `toml:"level"`
	Profile string `toml:"profile"`
	Tune    string `toml:"tune"`
	CRF     string `toml:"crf"`
	Bitrate string `toml:"bitrate"`
	MaxRate string `toml:"maxrate"`
	BufSize string `toml:"bufsize"`
	CRFMin  string `toml:"crf_min"`
	CRFMax  string `toml:"crf_max"`
}

// VP9 contains libvpx-vp9 tunables.
type VP9 struct {
	TwoPass  bool   `toml:"two_pass"`
	Bitrate  string `toml:"bitrate"`
	Lossless bool   `toml:"lossless"`
	Deadline string `toml:"deadline"`
	CRF      string `toml:"crf"`
	CPUUsed  string `toml:"cpu_used"`
	RowMT    bool   `toml:"row_mt"`
	MinRate  string `toml:"minrate"`
	MaxRate  string `toml:"maxrate"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// History controls the SQLite ledger of encode runs.
type History struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Config encapsulates all configuration values for the video engine.
//
// Configuration sections by subsystem:
//   - Engine: engine routing, ffmpeg/ffprobe binaries, temp directory
//   - H264, H265, VP9: per-codec encoder tunables
//   - Logging: log format and level
//   - History: optional encode run ledger
//
// A Config is read-only once loaded; the engine resolves a CodecConfig from it
// for every request.
type Config struct {
	Engine  Engine  `toml:"engine"`
	H264    H264    `toml:"h264"`
	H265    H265    `toml:"h265"`
	VP9     VP9     `toml:"vp9"`
	Logging Logging `toml:"logging"`
	History History `toml:"history"`
}

// CodecConfig is the flattened set of tunables for one codec. Fields a codec
// does not support stay at their zero value.
type CodecConfig struct {
	TwoPass bool

	Preset  string
	Level   string
	Profile string
	Tune    string
	CRF     string
	Bitrate string
	MinRate string
	MaxRate string
	BufSize string

	QMin string
	QMax string

	CRFMin string
	CRFMax string

	Deadline string
	CPUUsed  string
	RowMT    bool
	Lossless bool
}

// Codec resolves the tunables for c. Unknown codecs yield an empty config.
func (c *Config) Codec(target codec.Codec) CodecConfig {
	switch target {
	case codec.H264:
		h := c.H264
		return CodecConfig{
			TwoPass: h.TwoPass,
			Preset:  h.Preset,
			Level:   h.Level,
			Profile: h.Profile,
			Tune:    h.Tune,
			CRF:     h.CRF,
			Bitrate: h.Bitrate,
			MaxRate: h.MaxRate,
			BufSize: h.BufSize,
			QMin:    h.QMin,
			QMax:    h.QMax,
		}
	case codec.H265:
		h := c.H265
		return CodecConfig{
			TwoPass: h.TwoPass,
			Preset:  h.Preset,
			Level:   h.Level,
			Profile: h.Profile,
			Tune:    h.Tune,
			CRF:     h.CRF,
			Bitrate: h.Bitrate,
			MaxRate: h.MaxRate,
			BufSize: h.BufSize,
			CRFMin:  h.CRFMin,
			CRFMax:  h.CRFMax,
		}
	case codec.VP9:
		v := c.VP9
		return CodecConfig{
			TwoPass:  v.TwoPass,
			Bitrate:  v.Bitrate,
			Lossless: v.Lossless,
			Deadline: v.Deadline,
			CRF:      v.CRF,
			CPUUsed:  v.CPUUsed,
			RowMT:    v.RowMT,
			MinRate:  v.MinRate,
			MaxRate:  v.MaxRate,
		}
	default:
		return CodecConfig{}
	}
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. Environment
// overrides using the FFMPEG_* names are applied after the file is decoded.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs("videoengine.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the temp directory and, when the ledger is
// enabled, the directory holding the history database.
func (c *Config) EnsureDirectories() error {
	if dir := strings.TrimSpace(c.Engine.TempDir); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create temp directory %q: %w", dir, err)
		}
	}
	if c.History.Enabled && strings.TrimSpace(c.History.Path) != "" {
		dir := filepath.Dir(c.History.Path)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create history directory %q: %w", dir, err)
		}
	}
	return nil
}

// FFmpegBinary returns the ffmpeg executable used for encoding.
func (c *Config) FFmpegBinary() string {
	if bin := strings.TrimSpace(c.Engine.FFmpegPath); bin != "" {
		return bin
	}
	return "ffmpeg"
}

// FFprobeBinary returns the ffprobe executable used for media inspection.
func (c *Config) FFprobeBinary() string {
	if bin := strings.TrimSpace(c.Engine.FFprobePath); bin != "" {
		return bin
	}
	return "ffprobe"
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// Marshal renders the configuration as TOML.
func (c *Config) Marshal() ([]byte, error) {
	return toml.Marshal(c)
}

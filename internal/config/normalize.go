package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

type stringOverride struct {
	env    string
	target *string
}

type boolOverride struct {
	env    string
	target *bool
}

func (c *Config) normalize() error {
	if err := c.applyEnvOverrides(); err != nil {
		return err
	}
	if err := c.normalizeEngine(); err != nil {
		return err
	}
	c.normalizeCodecs()
	c.normalizeLogging()
	if err := c.normalizeHistory(); err != nil {
		return err
	}
	return nil
}

// applyEnvOverrides honours the FFMPEG_* variable names used by the original
// plugin configuration so existing deployments keep working.
func (c *Config) applyEnvOverrides() error {
	strs := []stringOverride{
		{"IMAGE_ENGINE", &c.Engine.ImageEngine},
		{"FFMPEG_ENGINE", &c.Engine.FFmpegEngine},
		{"FFMPEG_PATH", &c.Engine.FFmpegPath},
		{"FFPROBE_PATH", &c.Engine.FFprobePath},

		{"FFMPEG_H264_PRESET", &c.H264.Preset},
		{"FFMPEG_H264_LEVEL", &c.H264.Level},
		{"FFMPEG_H264_PROFILE", &c.H264.Profile},
		{"FFMPEG_H264_TUNE", &c.H264.Tune},
		{"FFMPEG_H264_CRF", &c.H264.CRF},
		{"FFMPEG_H264_VBR", &c.H264.Bitrate},
		{"FFMPEG_H264_MAXRATE", &c.H264.MaxRate},
		{"FFMPEG_H264_BUFSIZE", &c.H264.BufSize},
		{"FFMPEG_H264_QMIN", &c.H264.QMin},
		{"FFMPEG_H264_QMAX", &c.H264.QMax},

		{"FFMPEG_H265_PRESET", &c.H265.Preset},
		{"FFMPEG_H265_LEVEL", &c.H265.Level},
		{"FFMPEG_H265_PROFILE", &c.H265.Profile},
		{"FFMPEG_H265_TUNE", &c.H265.Tune},
		{"FFMPEG_H265_CRF", &c.H265.CRF},
		{"FFMPEG_H265_VBR", &c.H265.Bitrate},
		{"FFMPEG_H265_MAXRATE", &c.H265.MaxRate},
		{"FFMPEG_H265_BUFSIZE", &c.H265.BufSize},
		{"FFMPEG_H265_CRF_MIN", &c.H265.CRFMin},
		{"FFMPEG_H265_CRF_MAX", &c.H265.CRFMax},

		{"FFMPEG_VP9_VBR", &c.VP9.Bitrate},
		{"FFMPEG_VP9_DEADLINE", &c.VP9.Deadline},
		{"FFMPEG_VP9_CRF", &c.VP9.CRF},
		{"FFMPEG_VP9_CPU_USED", &c.VP9.CPUUsed},
		{"FFMPEG_VP9_MINRATE", &c.VP9.MinRate},
		{"FFMPEG_VP9_MAXRATE", &c.VP9.MaxRate},
	}
	for _, o := range strs {
		if value, ok := os.LookupEnv(o.env); ok {
			*o.target = strings.TrimSpace(value)
		}
	}

	bools := []boolOverride{
		{"FFMPEG_USE_GIFSICLE_ENGINE", &c.Engine.UseGifsicleEngine},
		{"FFMPEG_HANDLE_ANIMATED_GIF", &c.Engine.HandleAnimatedGIF},
		{"FFMPEG_H264_TWO_PASS", &c.H264.TwoPass},
		{"FFMPEG_H265_TWO_PASS", &c.H265.TwoPass},
		{"FFMPEG_VP9_TWO_PASS", &c.VP9.TwoPass},
		{"FFMPEG_VP9_LOSSLESS", &c.VP9.Lossless},
		{"FFMPEG_VP9_ROW_MT", &c.VP9.RowMT},
	}
	for _, o := range bools {
		value, ok := os.LookupEnv(o.env)
		if !ok || strings.TrimSpace(value) == "" {
			continue
		}
		parsed, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("%s: invalid boolean %q", o.env, value)
		}
		*o.target = parsed
	}
	return nil
}

func (c *Config) normalizeEngine() error {
	c.Engine.ImageEngine = strings.TrimSpace(c.Engine.ImageEngine)
	if c.Engine.ImageEngine == "" {
		c.Engine.ImageEngine = defaultImageEngine
	}
	c.Engine.FFmpegEngine = strings.TrimSpace(c.Engine.FFmpegEngine)
	if c.Engine.FFmpegEngine == "" {
		c.Engine.FFmpegEngine = defaultFFmpegEngine
	}
	c.Engine.FFmpegPath = strings.TrimSpace(c.Engine.FFmpegPath)
	if c.Engine.FFmpegPath == "" {
		c.Engine.FFmpegPath = defaultFFmpegPath
	}
	c.Engine.FFprobePath = strings.TrimSpace(c.Engine.FFprobePath)
	if c.Engine.FFprobePath == "" {
		c.Engine.FFprobePath = defaultFFprobePath
	}

	tempDir := strings.TrimSpace(c.Engine.TempDir)
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	var err error
	if c.Engine.TempDir, err = expandPath(tempDir); err != nil {
		return fmt.Errorf("engine.temp_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeCodecs() {
	trimAll(
		&c.H264.Preset, &c.H264.Level, &c.H264.Profile, &c.H264.Tune, &c.H264.CRF,
		&c.H264.Bitrate, &c.H264.MaxRate, &c.H264.BufSize, &c.H264.QMin, &c.H264.QMax,
	)
	trimAll(
		&c.H265.Preset, &c.H265.Level, &c.H265.Profile, &c.H265.Tune, &c.H265.CRF,
		&c.H265.Bitrate, &c.H265.MaxRate, &c.H265.BufSize, &c.H265.CRFMin, &c.H265.CRFMax,
	)
	trimAll(
		&c.VP9.Bitrate, &c.VP9.Deadline, &c.VP9.CRF, &c.VP9.CPUUsed,
		&c.VP9.MinRate, &c.VP9.MaxRate,
	)
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func (c *Config) normalizeHistory() error {
	if strings.TrimSpace(c.History.Path) == "" {
		c.History.Path = defaultHistoryPath
	}
	var err error
	if c.History.Path, err = expandPath(c.History.Path); err != nil {
		return fmt.Errorf("history.path: %w", err)
	}
	return nil
}

func trimAll(values ...*string) {
	for _, v := range values {
		*v = strings.TrimSpace(*v)
	}
}

package config

import (
	"errors"
	"fmt"
	"strconv"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateEngine(); err != nil {
		return err
	}
	if err := c.validateH264(); err != nil {
		return err
	}
	if err := c.validateH265(); err != nil {
		return err
	}
	if err := c.validateVP9(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateEngine() error {
	if c.Engine.FFmpegPath == "" {
		return errors.New("engine.ffmpeg_path must be set")
	}
	if c.Engine.FFprobePath == "" {
		return errors.New("engine.ffprobe_path must be set")
	}
	return nil
}

func (c *Config) validateH264() error {
	if err := validateQuality("h264.crf", c.H264.CRF); err != nil {
		return err
	}
	return validateIntRange("h264.qmin", c.H264.QMin, "h264.qmax", c.H264.QMax)
}

func (c *Config) validateH265() error {
	if err := validateQuality("h265.crf", c.H265.CRF); err != nil {
		return err
	}
	if err := validateQuality("h265.crf_min", c.H265.CRFMin); err != nil {
		return err
	}
	if err := validateQuality("h265.crf_max", c.H265.CRFMax); err != nil {
		return err
	}
	if c.H265.CRFMin != "" && c.H265.CRFMax != "" {
		lo, _ := strconv.ParseFloat(c.H265.CRFMin, 64)
		hi, _ := strconv.ParseFloat(c.H265.CRFMax, 64)
		if lo > hi {
			return errors.New("h265.crf_min must not exceed h265.crf_max")
		}
	}
	return nil
}

func (c *Config) validateVP9() error {
	if err := validateQuality("vp9.crf", c.VP9.CRF); err != nil {
		return err
	}
	if c.VP9.CPUUsed != "" {
		if _, err := strconv.Atoi(c.VP9.CPUUsed); err != nil {
			return fmt.Errorf("vp9.cpu_used must be an integer, got %q", c.VP9.CPUUsed)
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

// validateQuality accepts an empty value or a non-negative number.
func validateQuality(key, value string) error {
	if value == "" {
		return nil
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("%s must be numeric, got %q", key, value)
	}
	if parsed < 0 {
		return fmt.Errorf("%s must be non-negative", key)
	}
	return nil
}

func validateIntRange(minKey, minValue, maxKey, maxValue string) error {
	var lo, hi int
	var err error
	if minValue != "" {
		if lo, err = strconv.Atoi(minValue); err != nil || lo < 0 {
			return fmt.Errorf("%s must be a non-negative integer, got %q", minKey, minValue)
		}
	}
	if maxValue != "" {
		if hi, err = strconv.Atoi(maxValue); err != nil || hi < 0 {
			return fmt.Errorf("%s must be a non-negative integer, got %q", maxKey, maxValue)
		}
	}
	if minValue != "" && maxValue != "" && lo > hi {
		return fmt.Errorf("%s must not exceed %s", minKey, maxKey)
	}
	return nil
}

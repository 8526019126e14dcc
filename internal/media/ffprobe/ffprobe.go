package ffprobe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"

	"videoengine/internal/services"
)

// Result is the decoded `ffprobe -show_format -show_streams -of json` output.
// Numeric fields stay strings because ffprobe emits them quoted.
type Result struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`
}

type Stream struct {
	Index        int    `json:"index"`
	CodecName    string `json:"codec_name"`
	CodecType    string `json:"codec_type"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	PixFmt       string `json:"pix_fmt"`
	AvgFrameRate string `json:"avg_frame_rate"`
	RFrameRate   string `json:"r_frame_rate"`
	Duration     string `json:"duration"`
	NBFrames     string `json:"nb_frames"`
}

type Format struct {
	FormatName string `json:"format_name"`
	Duration   string `json:"duration"`
	Size       string `json:"size"`
}

// Metadata is what the engine needs from a probe: the first video stream's
// geometry and timing.
type Metadata struct {
	Width     int
	Height    int
	FrameRate float64
	Duration  float64
	Frames    int
	Animated  bool
}

// Runner executes binary and returns its stdout.
type Runner func(ctx context.Context, binary string, args ...string) ([]byte, error)

// Client runs ffprobe through a Runner so tests can substitute canned output.
type Client struct {
	binary string
	run    Runner
}

// NewClient returns a client for binary ("ffprobe" when blank). A nil runner
// executes the binary with os/exec.
func NewClient(binary string, run Runner) *Client {
	c := &Client{binary: strings.TrimSpace(binary), run: run}
	if c.binary == "" {
		c.binary = "ffprobe"
	}
	if c.run == nil {
		c.run = runCommand
	}
	return c
}

func (c *Client) Binary() string { return c.binary }

// Args is the argument list Inspect passes to ffprobe.
func Args(path string) []string {
	return []string{"-v", "error", "-hide_banner", "-show_format", "-show_streams", "-of", "json", "--", path}
}

// Inspect runs ffprobe on path and decodes its JSON report.
func (c *Client) Inspect(ctx context.Context, path string) (Result, error) {
	if strings.TrimSpace(path) == "" {
		return Result{}, errors.New("ffprobe: no input path")
	}
	out, err := c.run(ctx, c.binary, Args(path)...)
	if err != nil {
		return Result{}, fmt.Errorf("run %s: %w", c.binary, err)
	}
	var res Result
	if err := json.Unmarshal(out, &res); err != nil {
		return Result{}, fmt.Errorf("decode ffprobe output: %w", err)
	}
	return res, nil
}

// Probe is Inspect followed by Metadata. Both failure paths are tagged
// services.ErrProbe.
func (c *Client) Probe(ctx context.Context, path string) (Metadata, error) {
	res, err := c.Inspect(ctx, path)
	if err != nil {
		return Metadata{}, services.Wrap(services.ErrProbe, "probe", "inspect", path, err)
	}
	meta, err := res.Metadata()
	if err != nil {
		return Metadata{}, services.Wrap(services.ErrProbe, "probe", "parse", path, err)
	}
	return meta, nil
}

func runCommand(ctx context.Context, binary string, args ...string) ([]byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, binary, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if tail := strings.TrimSpace(stderr.String()); tail != "" {
			return nil, fmt.Errorf("%w: %s", err, tail)
		}
		return nil, err
	}
	return stdout.Bytes(), nil
}

// VideoStream returns the first stream whose codec_type is video.
func (r Result) VideoStream() (Stream, bool) {
	for _, s := range r.Streams {
		if strings.EqualFold(s.CodecType, "video") {
			return s, true
		}
	}
	return Stream{}, false
}

// Metadata extracts geometry and timing from the first video stream.
// avg_frame_rate falls back to r_frame_rate, stream duration to the
// container's. A clip is animated when it has more than one frame or a
// positive duration and rate.
func (r Result) Metadata() (Metadata, error) {
	s, ok := r.VideoStream()
	if !ok {
		return Metadata{}, errors.New("no video stream")
	}
	if s.Width <= 0 || s.Height <= 0 {
		return Metadata{}, fmt.Errorf("invalid dimensions %dx%d", s.Width, s.Height)
	}

	m := Metadata{Width: s.Width, Height: s.Height}
	if m.FrameRate = ParseFrameRate(s.AvgFrameRate); m.FrameRate == 0 {
		m.FrameRate = ParseFrameRate(s.RFrameRate)
	}
	if m.Duration = positive(s.Duration); m.Duration == 0 {
		m.Duration = positive(r.Format.Duration)
	}
	if n, err := strconv.Atoi(strings.TrimSpace(s.NBFrames)); err == nil && n > 0 {
		m.Frames = n
	}
	m.Animated = m.Frames > 1 || (m.Duration > 0 && m.FrameRate > 0)
	return m, nil
}

// ParseFrameRate accepts "num/den" or a plain number. Anything unparsable,
// negative, or with a zero denominator ("0/0") is 0.
func ParseFrameRate(value string) float64 {
	num, den, ok := strings.Cut(strings.TrimSpace(value), "/")
	if !ok {
		return positive(num)
	}
	n, d := positive(num), positive(den)
	if d == 0 {
		return 0
	}
	return n / d
}

// positive parses value as a finite non-negative float, or returns 0.
func positive(value string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0
	}
	return f
}

package ffmpeg

import (
	"strings"

	"videoengine/internal/config"
	"videoengine/internal/media/codec"
)

// flag is one conditional tunable. value reports false when the tunable is
// unset and the flag must be left out.
type flag struct {
	name  string
	value func(config.CodecConfig) (string, bool)
}

func text(name string, get func(config.CodecConfig) string) flag {
	return flag{name: name, value: func(cfg config.CodecConfig) (string, bool) {
		v := strings.TrimSpace(get(cfg))
		return v, v != ""
	}}
}

func toggle(name string, get func(config.CodecConfig) bool) flag {
	return flag{name: name, value: func(cfg config.CodecConfig) (string, bool) {
		return "1", get(cfg)
	}}
}

var encoderFlags = map[codec.Codec][]string{
	codec.H264: {"-c:v", "libx264"},
	codec.H265: {"-c:v", "hevc", "-tag:v", "hvc1"},
	codec.VP9:  {"-c:v", "libvpx-vp9", "-loop", "0"},
}

var commonFlags = []string{"-an", "-pix_fmt", "yuv420p", "-movflags", "faststart"}

var tunableFlags = map[codec.Codec][]flag{
	codec.H264: {
		text("-crf", func(c config.CodecConfig) string { return c.CRF }),
		text("-b:v", func(c config.CodecConfig) string { return c.Bitrate }),
		text("-profile:v", func(c config.CodecConfig) string { return c.Profile }),
		text("-preset", func(c config.CodecConfig) string { return c.Preset }),
		text("-level", func(c config.CodecConfig) string { return c.Level }),
		text("-tune", func(c config.CodecConfig) string { return c.Tune }),
		text("-maxrate", func(c config.CodecConfig) string { return c.MaxRate }),
		text("-bufsize", func(c config.CodecConfig) string { return c.BufSize }),
		text("-qmin", func(c config.CodecConfig) string { return c.QMin }),
		text("-qmax", func(c config.CodecConfig) string { return c.QMax }),
	},
	codec.H265: {
		text("-b:v", func(c config.CodecConfig) string { return c.Bitrate }),
		text("-crf", func(c config.CodecConfig) string { return c.CRF }),
		text("-profile:v", func(c config.CodecConfig) string { return c.Profile }),
		text("-preset", func(c config.CodecConfig) string { return c.Preset }),
		text("-tune", func(c config.CodecConfig) string { return c.Tune }),
		text("-level", func(c config.CodecConfig) string { return c.Level }),
	},
	codec.VP9: {
		text("-crf", func(c config.CodecConfig) string { return c.CRF }),
		text("-b:v", func(c config.CodecConfig) string { return c.Bitrate }),
		text("-deadline", func(c config.CodecConfig) string { return c.Deadline }),
		text("-cpu-used", func(c config.CodecConfig) string { return c.CPUUsed }),
		toggle("-row-mt", func(c config.CodecConfig) bool { return c.RowMT }),
		toggle("-lossless", func(c config.CodecConfig) bool { return c.Lossless }),
		text("-maxrate", func(c config.CodecConfig) string { return c.MaxRate }),
		text("-minrate", func(c config.CodecConfig) string { return c.MinRate }),
	},
}

// x265Params are the clauses folded into the h265 -x265-params value.
var x265Params = []flag{
	text("vbv-maxrate", func(c config.CodecConfig) string { return c.MaxRate }),
	text("vbv-bufsize", func(c config.CodecConfig) string { return c.BufSize }),
	text("crf-min", func(c config.CodecConfig) string { return c.CRFMin }),
	text("crf-max", func(c config.CodecConfig) string { return c.CRFMax }),
}

func expandFlags(flags []flag, cfg config.CodecConfig) []string {
	out := make([]string, 0, len(flags)*2)
	for _, f := range flags {
		if value, ok := f.value(cfg); ok {
			out = append(out, f.name, value)
		}
	}
	return out
}

func x265Clauses(cfg config.CodecConfig) []string {
	clauses := make([]string, 0, len(x265Params))
	for _, f := range x265Params {
		if value, ok := f.value(cfg); ok {
			clauses = append(clauses, f.name+"="+value)
		}
	}
	return clauses
}

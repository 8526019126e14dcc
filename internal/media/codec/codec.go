// Package codec names the three video codecs the engine can produce and the
// containers they are written into.
package codec

import (
	"fmt"
	"strings"
)

// Codec identifies a target video codec.
type Codec string

const (
	H264 Codec = "h264"
	H265 Codec = "h265"
	VP9  Codec = "vp9"
)

// All lists the supported codecs in display order.
var All = []Codec{H264, H265, VP9}

// Parse resolves a request format name. Container names are accepted as
// aliases for their default codec.
func Parse(name string) (Codec, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "h264", "avc", "x264", "mp4":
		return H264, nil
	case "h265", "hevc", "x265":
		return H265, nil
	case "vp9", "webm":
		return VP9, nil
	default:
		return "", fmt.Errorf("unsupported codec %q", name)
	}
}

// FromExtension picks the codec implied by an output file extension. Anything
// other than webm falls back to h264.
func FromExtension(ext string) Codec {
	ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
	if ext == "webm" {
		return VP9
	}
	return H264
}

// Container returns the ffmpeg output format for the codec.
func (c Codec) Container() string {
	if c == VP9 {
		return "webm"
	}
	return "mp4"
}

// Extension returns the dotted file extension of the codec's container.
func (c Codec) Extension() string {
	return "." + c.Container()
}

// Valid reports whether c is one of the supported codecs.
func (c Codec) Valid() bool {
	switch c {
	case H264, H265, VP9:
		return true
	default:
		return false
	}
}

func (c Codec) String() string {
	return string(c)
}

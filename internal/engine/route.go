package engine

import (
	"bytes"
	"image/gif"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"videoengine/internal/config"
)

// Kind classifies a source buffer for routing.
type Kind string

const (
	KindVideo       Kind = "video"
	KindAnimatedGIF Kind = "animated_gif"
	KindImage       Kind = "image"
)

// GifsicleEngine is the engine name returned when animated GIFs are handed to
// gifsicle.
const GifsicleEngine = "gifsicle"

var videoExtensions = map[string]struct{}{
	".mp4":  {},
	".m4v":  {},
	".mov":  {},
	".webm": {},
	".mkv":  {},
	".avi":  {},
}

// Selection is the routing decision for one buffer.
type Selection struct {
	Engine string
	Kind   Kind
	MIME   string
}

// UsesFFmpeg reports whether the selection targets the ffmpeg engine.
func (s Selection) UsesFFmpeg(cfg *config.Config) bool {
	return s.Engine == cfg.Engine.FFmpegEngine
}

// Route picks the engine for buf. Videos always go to the ffmpeg engine.
// Animated GIFs go to ffmpeg when handle_animated_gif is set, otherwise to
// gifsicle when use_gifsicle_engine is set. Everything else goes to the image
// engine.
func Route(cfg *config.Config, buf []byte, ext string) Selection {
	mime := mimetype.Detect(buf)
	kind := classify(mime, buf, normalizeExt(ext))
	sel := Selection{Kind: kind, MIME: mime.String(), Engine: cfg.Engine.ImageEngine}

	switch kind {
	case KindVideo:
		sel.Engine = cfg.Engine.FFmpegEngine
	case KindAnimatedGIF:
		switch {
		case cfg.Engine.HandleAnimatedGIF:
			sel.Engine = cfg.Engine.FFmpegEngine
		case cfg.Engine.UseGifsicleEngine:
			sel.Engine = GifsicleEngine
		}
	}
	return sel
}

func classify(mime *mimetype.MIME, buf []byte, ext string) Kind {
	if strings.HasPrefix(mime.String(), "video/") {
		return KindVideo
	}
	if mime.Is("image/gif") {
		if isAnimatedGIF(buf) {
			return KindAnimatedGIF
		}
		return KindImage
	}
	// Unrecognized content with a video extension is still treated as video.
	if _, ok := videoExtensions[ext]; ok && mime.Is("application/octet-stream") {
		return KindVideo
	}
	return KindImage
}

func isAnimatedGIF(buf []byte) bool {
	anim, err := gif.DecodeAll(bytes.NewReader(buf))
	if err != nil {
		return false
	}
	return len(anim.Image) > 1
}

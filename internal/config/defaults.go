package config

const (
	defaultConfigPath        = "~/.config/videoengine/config.toml"
	defaultImageEngine       = "pil"
	defaultFFmpegEngine      = "ffmpeg"
	defaultFFmpegPath        = "/usr/local/bin/ffmpeg"
	defaultFFprobePath       = "/usr/local/bin/ffprobe"
	defaultHandleAnimatedGIF = true
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
	defaultHistoryPath       = "~/.local/share/videoengine/history.db"
)

// Default returns a Config populated with repository defaults. Every encoder
// tunable is unset so no optional flag reaches ffmpeg unless configured.
func Default() Config {
	return Config{
		Engine: Engine{
			ImageEngine:       defaultImageEngine,
			FFmpegEngine:      defaultFFmpegEngine,
			FFmpegPath:        defaultFFmpegPath,
			FFprobePath:       defaultFFprobePath,
			HandleAnimatedGIF: defaultHandleAnimatedGIF,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		History: History{
			Path: defaultHistoryPath,
		},
	}
}

// Package config loads, normalizes, and validates video engine configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours the FFMPEG_* environment names of
// the original plugin (FFMPEG_H264_TWO_PASS, FFMPEG_VP9_CRF, ...). The Config
// type is built once at startup and passed by pointer to the engine; the
// per-request CodecConfig view is derived from it with Config.Codec.
//
// Every encoder tunable defaults to unset. An unset tunable never produces a
// command-line flag.
package config

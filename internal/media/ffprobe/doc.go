// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// Key types:
//   - Client: runs ffprobe through an injectable Runner
//   - Result: parsed ffprobe output containing streams and format metadata
//   - Metadata: width, height, frame rate, duration and frame count of the
//     first video stream
//
// Probe failures are reported with services.ErrProbe so callers can classify
// them with errors.Is.
package ffprobe

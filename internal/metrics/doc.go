// Package metrics provides Prometheus instrumentation for the video engine.
//
// All metrics are prefixed with "videoengine_" and registered on the default
// registry.
//
// # Probe Metrics
//   - ProbesTotal: Counter of ffprobe runs by status
//   - ProbeDuration: Histogram of ffprobe run duration
//
// # Encode Metrics
//   - EncodePassesTotal: Counter of ffmpeg invocations by codec, pass and status
//   - EncodePassDuration: Histogram of ffmpeg invocation duration by codec and pass
//   - EncodesTotal: Counter of complete encode requests by codec and status
//   - EncodesInProgress: Gauge of encodes currently running
//   - EncodeOutputBytes: Histogram of encoded output size by codec
//
// Observer adapts these metrics to the engine and ffmpeg observer hooks.
// WriteTextfile dumps the default registry in the node_exporter textfile
// format for one-shot CLI runs.
package metrics

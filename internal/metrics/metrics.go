package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Probe metrics
var (
	ProbesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "videoengine_probes_total",
			Help: "Total number of ffprobe runs",
		},
		[]string{"status"},
	)

	ProbeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "videoengine_probe_duration_seconds",
			Help:    "ffprobe run duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
	)
)

// Encode metrics
var (
	EncodePassesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "videoengine_encode_passes_total",
			Help: "Total number of ffmpeg invocations",
		},
		[]string{"codec", "pass", "status"},
	)

	EncodePassDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "videoengine_encode_pass_duration_seconds",
			Help:    "ffmpeg invocation duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300},
		},
		[]string{"codec", "pass"},
	)

	EncodesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "videoengine_encodes_total",
			Help: "Total number of encode requests",
		},
		[]string{"codec", "status"},
	)

	EncodesInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "videoengine_encodes_in_progress",
			Help: "Number of encodes currently in progress",
		},
	)

	EncodeOutputBytes = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "videoengine_encode_output_bytes",
			Help:    "Size of encoded output in bytes",
			Buckets: prometheus.ExponentialBuckets(16*1024, 4, 8),
		},
		[]string{"codec"},
	)
)

// WriteTextfile writes the current state of the default registry to path.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}

package metrics

import (
	"strconv"
	"time"

	"videoengine/internal/media/codec"
	"videoengine/internal/services"
)

// Observer records probe, pass and encode outcomes into the package metrics.
type Observer struct{}

// NewObserver returns an observer backed by the default registry.
func NewObserver() *Observer {
	return &Observer{}
}

// ObserveProbe records a single ffprobe run.
func (o *Observer) ObserveProbe(elapsed time.Duration, err error) {
	ProbeDuration.Observe(elapsed.Seconds())
	ProbesTotal.WithLabelValues(status(err)).Inc()
}

// ObservePass records a single ffmpeg invocation.
func (o *Observer) ObservePass(c codec.Codec, pass int, elapsed time.Duration, err error) {
	passLabel := strconv.Itoa(pass)
	EncodePassDuration.WithLabelValues(c.String(), passLabel).Observe(elapsed.Seconds())
	EncodePassesTotal.WithLabelValues(c.String(), passLabel, status(err)).Inc()
}

// EncodeStarted marks an encode as running.
func (o *Observer) EncodeStarted() {
	EncodesInProgress.Inc()
}

// ObserveEncode records the outcome of a whole encode request.
func (o *Observer) ObserveEncode(c codec.Codec, outputBytes int, err error) {
	EncodesInProgress.Dec()
	EncodesTotal.WithLabelValues(c.String(), status(err)).Inc()
	if err == nil {
		EncodeOutputBytes.WithLabelValues(c.String()).Observe(float64(outputBytes))
	}
}

// status labels successes "ok" and failures by error kind.
func status(err error) string {
	if err == nil {
		return "ok"
	}
	return services.Kind(err)
}

package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"time"

	"log/slog"

	"videoengine/internal/logging"
	"videoengine/internal/media/codec"
	"videoengine/internal/services"
)

// PassObserver is notified after every ffmpeg invocation. pass is 0 for a
// single-pass encode and 1 or 2 otherwise.
type PassObserver interface {
	ObservePass(c codec.Codec, pass int, elapsed time.Duration, err error)
}

// Option configures the orchestrator.
type Option func(*Orchestrator)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(o *Orchestrator) {
		if exec != nil {
			o.exec = exec
		}
	}
}

// WithLogger sets the logger used for pass progress.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithObserver registers a pass observer.
func WithObserver(observer PassObserver) Option {
	return func(o *Orchestrator) {
		o.observer = observer
	}
}

// Orchestrator runs the passes of an encode in order.
type Orchestrator struct {
	builder  *Builder
	exec     Executor
	logger   *slog.Logger
	observer PassObserver
}

// NewOrchestrator returns an orchestrator that renders commands with builder.
func NewOrchestrator(builder *Builder, opts ...Option) *Orchestrator {
	if builder == nil {
		builder = NewBuilder("")
	}
	o := &Orchestrator{
		builder: builder,
		exec:    commandExecutor{},
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Plan decides between single and two-pass encoding for job. Two-pass is used
// exactly when the codec's two_pass setting is enabled.
func (o *Orchestrator) Plan(job Job, ws *Workspace) PassPlan {
	output := ws.Output(job.Codec.Extension())
	if job.Config.TwoPass {
		return TwoPass(ws.LogPath(), output)
	}
	return SinglePass(output)
}

// Commands returns the argument vectors Run would execute, without running
// them.
func (o *Orchestrator) Commands(job Job, ws *Workspace) ([]ArgumentVector, error) {
	return o.builder.Build(job, o.Plan(job, ws))
}

// Run encodes job inside ws and returns the encoded bytes. A failed pass
// aborts the encode; the second pass never runs after a failed first pass.
func (o *Orchestrator) Run(ctx context.Context, job Job, ws *Workspace) ([]byte, error) {
	plan := o.Plan(job, ws)
	vectors, err := o.builder.Build(job, plan)
	if err != nil {
		return nil, err
	}

	ctx = services.WithStage(ctx, "encode")
	logger := logging.WithContext(ctx, o.logger).With(
		logging.String(logging.FieldCodec, job.Codec.String()),
	)
	logger.Info("encode started",
		logging.Int("passes", plan.Passes()),
		logging.String("filter", job.Filter),
		logging.Int("quality", job.Quality),
	)

	for idx, argv := range vectors {
		pass := 0
		if plan.TwoPass {
			pass = idx + 1
		}
		if err := o.runPass(ctx, logger, job.Codec, pass, argv); err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(plan.Output)
	if err != nil {
		return nil, services.Wrap(services.ErrEncode, "encode", "read output", plan.Output, err)
	}
	if len(data) == 0 {
		return nil, services.Wrap(services.ErrEncode, "encode", "read output", "ffmpeg produced an empty file", nil)
	}

	logger.Info("encode finished", logging.Int("bytes", len(data)))
	return data, nil
}

func (o *Orchestrator) runPass(ctx context.Context, logger *slog.Logger, c codec.Codec, pass int, argv ArgumentVector) error {
	logger.Debug("ffmpeg pass", logging.Int(logging.FieldPass, pass), logging.Argv("argv", argv))

	start := time.Now()
	_, err := o.exec.Run(ctx, argv)
	elapsed := time.Since(start)
	if o.observer != nil {
		o.observer.ObservePass(c, pass, elapsed, err)
	}
	if err != nil {
		logger.Error("ffmpeg pass failed",
			logging.Int(logging.FieldPass, pass),
			logging.Duration("elapsed", elapsed),
			logging.Error(err),
		)
		op := "run"
		if pass > 0 {
			op = fmt.Sprintf("pass %d", pass)
		}
		return services.Wrap(services.ErrEncode, "encode", op, "ffmpeg failed", err)
	}
	logger.Debug("ffmpeg pass complete", logging.Int(logging.FieldPass, pass), logging.Duration("elapsed", elapsed))
	return nil
}

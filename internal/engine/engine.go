package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"log/slog"

	"github.com/google/uuid"

	"videoengine/internal/config"
	"videoengine/internal/ffmpeg"
	"videoengine/internal/geometry"
	"videoengine/internal/history"
	"videoengine/internal/logging"
	"videoengine/internal/media/codec"
	"videoengine/internal/media/ffprobe"
	"videoengine/internal/services"
)

// Prober extracts source metadata from a file on disk.
type Prober interface {
	Probe(ctx context.Context, path string) (ffprobe.Metadata, error)
}

// Recorder persists the outcome of each read.
type Recorder interface {
	Record(ctx context.Context, run *history.Run) error
}

// Observer receives probe and encode outcomes, typically for metrics. When it
// also implements ffmpeg.PassObserver it is notified of every pass.
type Observer interface {
	ObserveProbe(elapsed time.Duration, err error)
	EncodeStarted()
	ObserveEncode(c codec.Codec, outputBytes int, err error)
}

// Option configures an Engine.
type Option func(*Engine)

// WithExecutor replaces the ffmpeg executor (primarily for tests).
func WithExecutor(exec ffmpeg.Executor) Option {
	return func(e *Engine) {
		e.executor = exec
	}
}

// WithProber replaces the ffprobe client.
func WithProber(p Prober) Option {
	return func(e *Engine) {
		if p != nil {
			e.prober = p
		}
	}
}

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithRecorder enables run recording.
func WithRecorder(r Recorder) Option {
	return func(e *Engine) {
		e.recorder = r
	}
}

// WithObserver registers a metrics observer.
func WithObserver(o Observer) Option {
	return func(e *Engine) {
		e.observer = o
	}
}

// Request is the encode request recorded by Load and the transform setters.
// An empty Codec means Read picks one from the output extension.
type Request struct {
	SourceExt string
	Codec     codec.Codec
	Geometry  geometry.Request
}

// Engine encodes one loaded source at a time.
type Engine struct {
	cfg          *config.Config
	prober       Prober
	executor     ffmpeg.Executor
	orchestrator *ffmpeg.Orchestrator
	logger       *slog.Logger
	recorder     Recorder
	observer     Observer

	requestID string
	sourceExt string
	workspace *ffmpeg.Workspace
	meta      ffprobe.Metadata
	request   geometry.Request
	format    codec.Codec
	width     int
	height    int
}

// New constructs an engine from cfg.
func New(cfg *config.Config, opts ...Option) *Engine {
	if cfg == nil {
		def := config.Default()
		cfg = &def
	}
	e := &Engine{
		cfg:    cfg,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.prober == nil {
		e.prober = ffprobe.NewClient(cfg.FFprobeBinary(), nil)
	}
	e.logger = logging.NewComponentLogger(e.logger, "engine")

	orchOpts := []ffmpeg.Option{
		ffmpeg.WithLogger(logging.NewComponentLogger(e.logger, "ffmpeg")),
		ffmpeg.WithExecutor(e.executor),
	}
	if passObserver, ok := e.observer.(ffmpeg.PassObserver); ok {
		orchOpts = append(orchOpts, ffmpeg.WithObserver(passObserver))
	}
	e.orchestrator = ffmpeg.NewOrchestrator(ffmpeg.NewBuilder(cfg.FFmpegBinary()), orchOpts...)
	return e
}

// Load stores buf as the source and probes it. Any previously loaded source is
// released first. A probe failure releases the new workspace and is returned
// unchanged.
func (e *Engine) Load(ctx context.Context, buf []byte, ext string) error {
	if err := e.Close(); err != nil {
		e.logger.Warn("failed to release previous workspace", logging.Error(err))
	}
	if len(buf) == 0 {
		return services.Wrap(services.ErrProbe, "load", "read buffer", "empty source buffer", nil)
	}

	ext = normalizeExt(ext)
	ws, err := ffmpeg.NewWorkspace(e.cfg.Engine.TempDir, ext)
	if err != nil {
		return services.Wrap(services.ErrProbe, "load", "allocate workspace", e.cfg.Engine.TempDir, err)
	}
	if err := ws.WriteInput(buf); err != nil {
		_ = ws.Close()
		return services.Wrap(services.ErrProbe, "load", "write source", ws.Input(), err)
	}

	e.requestID = uuid.NewString()
	ctx = e.requestContext(ctx, "probe")
	logger := logging.WithContext(ctx, e.logger)

	start := time.Now()
	meta, err := e.prober.Probe(ctx, ws.Input())
	if e.observer != nil {
		e.observer.ObserveProbe(time.Since(start), err)
	}
	if err != nil {
		if closeErr := ws.Close(); closeErr != nil {
			logger.Warn("failed to clean workspace after probe failure", logging.Error(closeErr))
		}
		logger.Error("probe failed", logging.Error(err))
		return err
	}

	e.workspace = ws
	e.sourceExt = ext
	e.meta = meta
	e.request = geometry.Request{}
	e.format = ""
	e.width = meta.Width
	e.height = meta.Height

	logger.Info("source loaded",
		logging.Int("bytes", len(buf)),
		logging.Int("width", meta.Width),
		logging.Int("height", meta.Height),
		logging.Float64("fps", meta.FrameRate),
		logging.Float64("duration", meta.Duration),
		logging.Bool("animated", meta.Animated),
	)
	return nil
}

// Crop records a crop box in the coordinates of the rotated frame.
func (e *Engine) Crop(left, top, right, bottom int) {
	e.request.Crop = geometry.Box{Left: left, Top: top, Right: right, Bottom: bottom}
}

// Rotate records a clockwise rotation in degrees.
func (e *Engine) Rotate(degrees int) {
	e.request.Rotate = degrees
}

// Resize records the output size. A zero dimension is derived from the
// aspect ratio of the cropped frame.
func (e *Engine) Resize(width, height int) {
	e.request.Resize = geometry.Size{Width: width, Height: height}
}

// SetFormat selects the output codec by name. Without it, Read picks the
// codec from the output extension.
func (e *Engine) SetFormat(name string) error {
	c, err := codec.Parse(name)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "engine", "set format", "", err)
	}
	e.format = c
	return nil
}

// Read encodes the loaded source and returns the output bytes. Probe,
// configuration and encode errors are returned unchanged. Output and pass log
// files are removed before Read returns.
func (e *Engine) Read(ctx context.Context, ext string, quality int) ([]byte, error) {
	job, res, err := e.prepare(ext, quality)
	if err != nil {
		return nil, err
	}
	ctx = e.requestContext(ctx, "encode")
	logger := logging.WithContext(ctx, e.logger)
	defer func() {
		if err := e.workspace.Reset(); err != nil {
			logger.Warn("failed to clean encode outputs", logging.Error(err))
		}
	}()

	run := &history.Run{
		RequestID:    e.requestID,
		Codec:        job.Codec.String(),
		Passes:       passCount(job),
		InputExt:     e.sourceExt,
		Filter:       job.Filter,
		SourceWidth:  e.meta.Width,
		SourceHeight: e.meta.Height,
		Width:        res.Width,
		Height:       res.Height,
		Quality:      quality,
		StartedAt:    time.Now().UTC(),
	}

	if e.observer != nil {
		e.observer.EncodeStarted()
	}
	data, err := e.orchestrator.Run(ctx, job, e.workspace)
	if e.observer != nil {
		e.observer.ObserveEncode(job.Codec, len(data), err)
	}
	e.record(ctx, logger, run, len(data), err)
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Plan resolves the request like Read but returns the ffmpeg command lines
// instead of running them.
func (e *Engine) Plan(ext string, quality int) ([]ffmpeg.ArgumentVector, error) {
	job, _, err := e.prepare(ext, quality)
	if err != nil {
		return nil, err
	}
	return e.orchestrator.Commands(job, e.workspace)
}

func (e *Engine) prepare(ext string, quality int) (ffmpeg.Job, geometry.Result, error) {
	if e.workspace == nil {
		return ffmpeg.Job{}, geometry.Result{}, services.Wrap(services.ErrConfiguration, "engine", "read", "no source loaded", nil)
	}
	if quality < 0 || quality > 100 {
		return ffmpeg.Job{}, geometry.Result{}, services.Wrap(services.ErrConfiguration, "engine", "read", fmt.Sprintf("quality %d outside 0-100", quality), nil)
	}

	target := e.format
	if target == "" {
		target = codec.FromExtension(ext)
	}

	res, err := geometry.Resolve(geometry.Size{Width: e.meta.Width, Height: e.meta.Height}, e.request)
	if err != nil {
		return ffmpeg.Job{}, geometry.Result{}, err
	}
	e.width = res.Width
	e.height = res.Height

	job := ffmpeg.Job{
		Codec:   target,
		Config:  e.cfg.Codec(target),
		Filter:  res.Filter.String(),
		Quality: quality,
		Input:   e.workspace.Input(),
	}
	return job, res, nil
}

func (e *Engine) record(ctx context.Context, logger *slog.Logger, run *history.Run, outputBytes int, err error) {
	if e.recorder == nil {
		return
	}
	run.FinishedAt = time.Now().UTC()
	run.OutputBytes = int64(outputBytes)
	run.Status = history.StatusSucceeded
	if err != nil {
		run.Status = history.StatusFailed
		run.ErrorKind = services.Kind(err)
		run.ErrorMessage = err.Error()
	}
	// The caller's context may already be cancelled when ffmpeg was killed.
	if recErr := e.recorder.Record(context.WithoutCancel(ctx), run); recErr != nil {
		logger.Warn("failed to record encode run", logging.Error(recErr))
	}
}

func (e *Engine) requestContext(ctx context.Context, stage string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if _, ok := services.RequestIDFromContext(ctx); !ok {
		ctx = services.WithRequestID(ctx, e.requestID)
	}
	return services.WithStage(ctx, stage)
}

func passCount(job ffmpeg.Job) int {
	if job.Config.TwoPass {
		return 2
	}
	return 1
}

// Width returns the output width of the most recent resolve, or the source
// width before any Read.
func (e *Engine) Width() int { return e.width }

// Height returns the output height of the most recent resolve, or the source
// height before any Read.
func (e *Engine) Height() int { return e.height }

// SourceWidth returns the probed source width.
func (e *Engine) SourceWidth() int { return e.meta.Width }

// SourceHeight returns the probed source height.
func (e *Engine) SourceHeight() int { return e.meta.Height }

// Size returns the current output dimensions.
func (e *Engine) Size() (int, int) { return e.width, e.height }

// Metadata returns the probed source metadata.
func (e *Engine) Metadata() ffprobe.Metadata { return e.meta }

// Request returns the request recorded since the last Load.
func (e *Engine) Request() Request {
	return Request{SourceExt: e.sourceExt, Codec: e.format, Geometry: e.request}
}

// RequestID returns the correlation id assigned by the last Load.
func (e *Engine) RequestID() string { return e.requestID }

// Close releases the workspace. It is safe to call more than once.
func (e *Engine) Close() error {
	if e.workspace == nil {
		return nil
	}
	err := e.workspace.Close()
	e.workspace = nil
	if err != nil {
		return fmt.Errorf("release workspace: %w", err)
	}
	return nil
}

// IsProbeError reports whether err came from probing the source.
func IsProbeError(err error) bool { return errors.Is(err, services.ErrProbe) }

// IsEncodeError reports whether err came from an ffmpeg pass.
func IsEncodeError(err error) bool { return errors.Is(err, services.ErrEncode) }

// IsConfigurationError reports whether err came from an invalid request.
func IsConfigurationError(err error) bool { return errors.Is(err, services.ErrConfiguration) }

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

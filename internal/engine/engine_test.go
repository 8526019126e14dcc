package engine_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"videoengine/internal/config"
	"videoengine/internal/engine"
	"videoengine/internal/ffmpeg"
	"videoengine/internal/history"
	"videoengine/internal/media/codec"
	"videoengine/internal/media/ffprobe"
	"videoengine/internal/services"
	"videoengine/internal/testsupport"
)

type stubProber struct {
	meta  ffprobe.Metadata
	err   error
	paths []string
}

func (s *stubProber) Probe(_ context.Context, path string) (ffprobe.Metadata, error) {
	s.paths = append(s.paths, path)
	if _, err := os.Stat(path); err != nil {
		return ffprobe.Metadata{}, err
	}
	return s.meta, s.err
}

type stubExecutor struct {
	calls  []ffmpeg.ArgumentVector
	failOn int
}

func (s *stubExecutor) Run(_ context.Context, argv ffmpeg.ArgumentVector) ([]byte, error) {
	s.calls = append(s.calls, append(ffmpeg.ArgumentVector(nil), argv...))
	if s.failOn == len(s.calls) {
		return nil, &ffmpeg.ProcessError{Argv: argv, ExitCode: 1}
	}
	target := argv[len(argv)-1]
	if target != os.DevNull {
		if err := os.WriteFile(target, []byte("encoded:"+filepath.Ext(target)), 0o644); err != nil {
			return nil, err
		}
	}
	return nil, nil
}

type memoryRecorder struct {
	runs []history.Run
}

func (m *memoryRecorder) Record(_ context.Context, run *history.Run) error {
	m.runs = append(m.runs, *run)
	return nil
}

type countingObserver struct {
	probes  int
	started int
	encodes []error
	passes  []int
}

func (c *countingObserver) ObserveProbe(time.Duration, error) { c.probes++ }
func (c *countingObserver) EncodeStarted()                   { c.started++ }
func (c *countingObserver) ObserveEncode(_ codec.Codec, _ int, err error) {
	c.encodes = append(c.encodes, err)
}
func (c *countingObserver) ObservePass(_ codec.Codec, pass int, _ time.Duration, _ error) {
	c.passes = append(c.passes, pass)
}

func sourceMeta() ffprobe.Metadata {
	return ffprobe.Metadata{Width: 200, Height: 150, FrameRate: 33.3333, Duration: 1.5, Frames: 50, Animated: true}
}

func newEngine(t *testing.T, cfg *config.Config, exec *stubExecutor, opts ...engine.Option) *engine.Engine {
	t.Helper()
	opts = append([]engine.Option{
		engine.WithProber(&stubProber{meta: sourceMeta()}),
		engine.WithExecutor(exec),
	}, opts...)
	e := engine.New(cfg, opts...)
	t.Cleanup(func() { _ = e.Close() })
	return e
}

func workspaceFiles(t *testing.T, cfg *config.Config) []string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(cfg.Engine.TempDir, "videoengine-*"))
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	return matches
}

func TestReadH264TwoPass(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithCodecs(func(h264 *config.H264, _ *config.H265, _ *config.VP9) {
		h264.TwoPass = true
	}))
	exec := &stubExecutor{}
	e := newEngine(t, cfg, exec)
	ctx := context.Background()

	if err := e.Load(ctx, []byte("mp4 data"), ".mp4"); err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	e.Resize(200, 150)
	data, err := e.Read(ctx, ".mp4", 80)
	if err != nil {
		t.Fatalf("Read returned error: %v", err)
	}
	if string(data) != "encoded:.mp4" {
		t.Fatalf("unexpected output %q", data)
	}
	if len(exec.calls) != 2 {
		t.Fatalf("expected 2 ffmpeg calls, got %d", len(exec.calls))
	}

	const filter = "-vf rotate=0,crop=200:150:0:0,scale=200:150:flags=lanczos"
	first, second := exec.calls[0].String(), exec.calls[1].String()
	for _, argv := range []string{first, second} {
		if !strings.Contains(argv, filter) {
			t.Fatalf("expected filter in %q", argv)
		}
		if !strings.HasPrefix(argv, "ffmpeg -hide_banner -i ") {
			t.Fatalf("unexpected prefix %q", argv)
		}
	}
	logPath := exec.calls[0][slices.Index(exec.calls[0], "-passlogfile")+1]
	if !strings.HasSuffix(first, "-pass 1 -passlogfile "+logPath+" -y "+os.DevNull) {
		t.Fatalf("unexpected pass 1 %q", first)
	}
	if !strings.Contains(second, "-pass 2 -passlogfile "+logPath+" -y ") || !strings.HasSuffix(second, ".mp4") {
		t.Fatalf("unexpected pass 2 %q", second)
	}
	if exec.calls[0][3] != exec.calls[1][3] {
		t.Fatalf("passes must share the input path")
	}

	if files := workspaceFiles(t, cfg); len(files) != 1 || !strings.Contains(files[0], "-source.mp4") {
		t.Fatalf("expected only the source to remain after read, got %v", files)
	}
	if err := e.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
	if files := workspaceFiles(t, cfg); len(files) != 0 {
		t.Fatalf("expected workspace removed after close, got %v", files)
	}
}

func TestReadVP9FromExtension(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithCodecs(func(_ *config.H264, _ *config.H265, vp9 *config.VP9) {
		vp9.CRF = "22"
	}))
	exec := &stubExecutor{}
	e := newEngine(t, cfg, exec)

	if err := e.Load(context.Background(), []byte("gif data"), ".gif"); err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	data, err := e.Read(context.Background(), ".webm", 0)
	if err != nil {
		t.Fatalf("Read returned error: %v", err)
	}
	if string(data) != "encoded:.webm" {
		t.Fatalf("unexpected output %q", data)
	}
	if len(exec.calls) != 1 {
		t.Fatalf("expected 1 ffmpeg call, got %d", len(exec.calls))
	}
	argv := exec.calls[0].String()
	if !strings.Contains(argv, "-c:v libvpx-vp9 -loop 0") || !strings.Contains(argv, "-f webm -crf 22 -y ") {
		t.Fatalf("unexpected vp9 argv %q", argv)
	}
}

func TestSetFormatOverridesExtension(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithCodecs(func(_ *config.H264, h265 *config.H265, _ *config.VP9) {
		h265.MaxRate = "2M"
		h265.BufSize = "4M"
	}))
	exec := &stubExecutor{}
	e := newEngine(t, cfg, exec)

	if err := e.Load(context.Background(), []byte("data"), ".mp4"); err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if err := e.SetFormat("hevc"); err != nil {
		t.Fatalf("SetFormat returned error: %v", err)
	}
	if _, err := e.Read(context.Background(), ".webm", 50); err != nil {
		t.Fatalf("Read returned error: %v", err)
	}
	argv := exec.calls[0].String()
	if !strings.Contains(argv, "-x265-params vbv-maxrate=2M:vbv-bufsize=4M") {
		t.Fatalf("expected x265 params in %q", argv)
	}
	if !strings.HasSuffix(argv, ".mp4") {
		t.Fatalf("h265 must write mp4, got %q", argv)
	}

	if err := e.SetFormat("gif"); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration for unknown format, got %v", err)
	}
}

func TestTransformsUpdateDimensions(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	e := newEngine(t, cfg, &stubExecutor{})

	if err := e.Load(context.Background(), []byte("data"), ".mp4"); err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if e.Width() != 200 || e.Height() != 150 || e.SourceWidth() != 200 || e.SourceHeight() != 150 {
		t.Fatalf("unexpected dimensions before read: %dx%d", e.Width(), e.Height())
	}

	e.Rotate(90)
	e.Crop(0, 0, 150, 100)
	e.Resize(75, 0)
	vectors, err := e.Plan(".mp4", 0)
	if err != nil {
		t.Fatalf("Plan returned error: %v", err)
	}
	if len(vectors) != 1 {
		t.Fatalf("expected 1 vector, got %d", len(vectors))
	}
	if !strings.Contains(vectors[0].String(), "-vf rotate=90*PI/180:ow=ih:oh=iw,crop=150:100:0:0,scale=75:50:flags=lanczos") {
		t.Fatalf("unexpected filter in %q", vectors[0])
	}
	if w, h := e.Size(); w != 75 || h != 50 {
		t.Fatalf("unexpected size %dx%d", w, h)
	}
	if e.SourceWidth() != 200 || e.SourceHeight() != 150 {
		t.Fatalf("source dimensions must not change")
	}
}

func TestLoadProbeFailureCleansWorkspace(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	probeErr := services.Wrap(services.ErrProbe, "probe", "inspect", "", errors.New("invalid data"))
	observer := &countingObserver{}
	e := engine.New(cfg,
		engine.WithProber(&stubProber{err: probeErr}),
		engine.WithExecutor(&stubExecutor{}),
		engine.WithObserver(observer),
	)

	err := e.Load(context.Background(), []byte("garbage"), ".mp4")
	if !errors.Is(err, probeErr) || !engine.IsProbeError(err) {
		t.Fatalf("expected probe error returned unchanged, got %v", err)
	}
	if files := workspaceFiles(t, cfg); len(files) != 0 {
		t.Fatalf("expected no workspace files after probe failure, got %v", files)
	}
	if observer.probes != 1 {
		t.Fatalf("expected probe observation, got %d", observer.probes)
	}
	if _, err := e.Read(context.Background(), ".mp4", 0); !engine.IsConfigurationError(err) {
		t.Fatalf("expected configuration error reading without a source, got %v", err)
	}
}

func TestLoadRejectsEmptyBuffer(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	e := newEngine(t, cfg, &stubExecutor{})
	if err := e.Load(context.Background(), nil, ".mp4"); !engine.IsProbeError(err) {
		t.Fatalf("expected probe error for empty buffer, got %v", err)
	}
}

func TestReadEncodeFailureRecordsRun(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithCodecs(func(_ *config.H264, h265 *config.H265, _ *config.VP9) {
		h265.TwoPass = true
	}))
	exec := &stubExecutor{failOn: 1}
	recorder := &memoryRecorder{}
	observer := &countingObserver{}
	e := newEngine(t, cfg, exec, engine.WithRecorder(recorder), engine.WithObserver(observer))

	if err := e.Load(context.Background(), []byte("data"), ".mp4"); err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if err := e.SetFormat("h265"); err != nil {
		t.Fatalf("SetFormat returned error: %v", err)
	}
	_, err := e.Read(context.Background(), ".mp4", 0)
	if !engine.IsEncodeError(err) {
		t.Fatalf("expected encode error, got %v", err)
	}
	if len(exec.calls) != 1 {
		t.Fatalf("pass 2 must not run, got %d calls", len(exec.calls))
	}
	if len(recorder.runs) != 1 {
		t.Fatalf("expected 1 recorded run, got %d", len(recorder.runs))
	}
	run := recorder.runs[0]
	if run.Status != history.StatusFailed || run.ErrorKind != services.KindEncode || run.Passes != 2 || run.Codec != "h265" {
		t.Fatalf("unexpected run %+v", run)
	}
	if run.RequestID == "" || run.RequestID != e.RequestID() {
		t.Fatalf("run must carry the request id, got %q", run.RequestID)
	}
	if observer.started != 1 || len(observer.encodes) != 1 || observer.encodes[0] == nil {
		t.Fatalf("unexpected encode observations %+v", observer)
	}
	if len(observer.passes) != 1 || observer.passes[0] != 1 {
		t.Fatalf("unexpected pass observations %v", observer.passes)
	}
}

func TestReadRecordsSuccessfulRunInHistory(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithHistory())
	store := testsupport.MustOpenHistory(t, cfg)
	e := newEngine(t, cfg, &stubExecutor{}, engine.WithRecorder(store))

	if err := e.Load(context.Background(), []byte("data"), ".mp4"); err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	e.Resize(100, 0)
	if _, err := e.Read(context.Background(), ".mp4", 70); err != nil {
		t.Fatalf("Read returned error: %v", err)
	}

	runs, err := store.List(context.Background(), 0)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	run := runs[0]
	if run.Status != history.StatusSucceeded || run.Width != 100 || run.Height != 75 || run.Quality != 70 || run.OutputBytes == 0 {
		t.Fatalf("unexpected run %+v", run)
	}
	if run.InputExt != ".mp4" || run.SourceWidth != 200 {
		t.Fatalf("unexpected source details %+v", run)
	}
}

func TestReadRejectsInvalidRequests(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	exec := &stubExecutor{}
	e := newEngine(t, cfg, exec)
	if err := e.Load(context.Background(), []byte("data"), ".mp4"); err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	e.Rotate(45)
	if _, err := e.Read(context.Background(), ".mp4", 0); !engine.IsConfigurationError(err) {
		t.Fatalf("expected configuration error for rotation, got %v", err)
	}
	e.Rotate(0)
	e.Crop(10, 10, 10, 10)
	if _, err := e.Read(context.Background(), ".mp4", 0); !engine.IsConfigurationError(err) {
		t.Fatalf("expected configuration error for empty crop, got %v", err)
	}
	e.Crop(0, 0, 0, 0)
	if _, err := e.Read(context.Background(), ".mp4", 101); !engine.IsConfigurationError(err) {
		t.Fatalf("expected configuration error for quality, got %v", err)
	}
	if len(exec.calls) != 0 {
		t.Fatalf("ffmpeg must not run for invalid requests, got %d calls", len(exec.calls))
	}
}

func TestLoadReplacesPreviousSource(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	e := newEngine(t, cfg, &stubExecutor{})
	ctx := context.Background()

	if err := e.Load(ctx, []byte("one"), ".mp4"); err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	firstID := e.RequestID()
	if err := e.Load(ctx, []byte("two"), ".webm"); err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if e.RequestID() == firstID {
		t.Fatal("expected new request id per load")
	}
	files := workspaceFiles(t, cfg)
	if len(files) != 1 || !strings.HasSuffix(files[0], "-source.webm") {
		t.Fatalf("expected only the second source, got %v", files)
	}
}

func TestRequestSnapshotResetsOnLoad(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	e := newEngine(t, cfg, &stubExecutor{})
	ctx := context.Background()

	if err := e.Load(ctx, []byte("one"), "MP4"); err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	e.Rotate(180)
	e.Crop(1, 2, 3, 4)
	if err := e.SetFormat("webm"); err != nil {
		t.Fatalf("SetFormat returned error: %v", err)
	}
	req := e.Request()
	if req.SourceExt != ".mp4" || req.Codec != codec.VP9 || req.Geometry.Rotate != 180 || req.Geometry.Crop.Right != 3 {
		t.Fatalf("unexpected request %#v", req)
	}

	if err := e.Load(ctx, []byte("two"), ".mov"); err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	req = e.Request()
	if req.Codec != "" || req.Geometry.Rotate != 0 || !req.Geometry.Crop.IsZero() {
		t.Fatalf("expected request reset on load, got %#v", req)
	}
}

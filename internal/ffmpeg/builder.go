package ffmpeg

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"videoengine/internal/config"
	"videoengine/internal/media/codec"
	"videoengine/internal/services"
)

// ArgumentVector is a full ffmpeg command line; element 0 is the binary.
type ArgumentVector []string

// Args returns the arguments without the binary.
func (v ArgumentVector) Args() []string {
	if len(v) == 0 {
		return nil
	}
	return v[1:]
}

func (v ArgumentVector) String() string {
	return strings.Join(v, " ")
}

// Job is a fully resolved encode request.
type Job struct {
	Codec  codec.Codec
	Config config.CodecConfig
	Filter string
	// Quality is the host's 0-100 hint. It is recorded but does not select
	// any encoder flag; rate control comes from Config.
	Quality int
	Input   string
}

// PassPlan describes the passes of an encode and where each writes.
type PassPlan struct {
	TwoPass bool
	LogPath string
	Output  string
}

// SinglePass plans one pass writing to output.
func SinglePass(output string) PassPlan {
	return PassPlan{Output: output}
}

// TwoPass plans an analysis pass writing statistics to logPath followed by a
// final pass writing to output.
func TwoPass(logPath, output string) PassPlan {
	return PassPlan{TwoPass: true, LogPath: logPath, Output: output}
}

// Passes returns the number of ffmpeg invocations the plan needs.
func (p PassPlan) Passes() int {
	if p.TwoPass {
		return 2
	}
	return 1
}

// Target returns the output path of pass (1-based). The first pass of a
// two-pass plan discards its output.
func (p PassPlan) Target(pass int) string {
	if p.TwoPass && pass == 1 {
		return os.DevNull
	}
	return p.Output
}

// Builder renders ffmpeg argument vectors.
type Builder struct {
	binary string
}

// NewBuilder returns a builder that invokes binary.
func NewBuilder(binary string) *Builder {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffmpeg"
	}
	return &Builder{binary: binary}
}

// Build returns one vector per planned pass, in execution order.
func (b *Builder) Build(job Job, plan PassPlan) ([]ArgumentVector, error) {
	if err := validateJob(job, plan); err != nil {
		return nil, err
	}
	if !plan.TwoPass {
		return []ArgumentVector{b.vector(job, plan, 0)}, nil
	}
	return []ArgumentVector{b.vector(job, plan, 1), b.vector(job, plan, 2)}, nil
}

// vector renders a single invocation. pass is 0 for single-pass plans.
func (b *Builder) vector(job Job, plan PassPlan, pass int) ArgumentVector {
	argv := ArgumentVector{b.binary, "-hide_banner", "-i", job.Input}
	argv = append(argv, encoderFlags[job.Codec]...)
	argv = append(argv, commonFlags...)
	argv = append(argv, "-vf", job.Filter)
	argv = append(argv, "-f", job.Codec.Container())
	argv = append(argv, expandFlags(tunableFlags[job.Codec], job.Config)...)

	if job.Codec == codec.H265 {
		clauses := x265Clauses(job.Config)
		if pass > 0 {
			stats := []string{"pass=" + strconv.Itoa(pass), "stats=" + plan.LogPath}
			clauses = append(stats, clauses...)
		}
		argv = append(argv, "-x265-params", strings.Join(clauses, ":"))
	} else if pass > 0 {
		argv = append(argv, "-pass", strconv.Itoa(pass), "-passlogfile", plan.LogPath)
	}

	target := plan.Output
	if pass > 0 {
		target = plan.Target(pass)
	}
	return append(argv, "-y", target)
}

func validateJob(job Job, plan PassPlan) error {
	switch {
	case !job.Codec.Valid():
		return services.Wrap(services.ErrConfiguration, "encode", "build", fmt.Sprintf("unsupported codec %q", job.Codec), nil)
	case strings.TrimSpace(job.Input) == "":
		return services.Wrap(services.ErrConfiguration, "encode", "build", "input path required", nil)
	case strings.TrimSpace(job.Filter) == "":
		return services.Wrap(services.ErrConfiguration, "encode", "build", "filter graph required", nil)
	case strings.TrimSpace(plan.Output) == "":
		return services.Wrap(services.ErrConfiguration, "encode", "build", "output path required", nil)
	case plan.TwoPass && strings.TrimSpace(plan.LogPath) == "":
		return services.Wrap(services.ErrConfiguration, "encode", "build", "two-pass plan requires a log path", nil)
	}
	return nil
}

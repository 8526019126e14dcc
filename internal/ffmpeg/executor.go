package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Executor runs a command line and returns its standard output.
type Executor interface {
	Run(ctx context.Context, argv ArgumentVector) ([]byte, error)
}

// ProcessError reports an ffmpeg invocation that could not start or exited
// non-zero.
type ProcessError struct {
	Argv     ArgumentVector
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ProcessError) Error() string {
	msg := fmt.Sprintf("%s exited with code %d", e.binary(), e.ExitCode)
	if e.ExitCode < 0 && e.Err != nil {
		msg = fmt.Sprintf("%s failed: %v", e.binary(), e.Err)
	}
	if stderr := lastLine(e.Stderr); stderr != "" {
		msg += ": " + stderr
	}
	return msg
}

func (e *ProcessError) Unwrap() error {
	return e.Err
}

func (e *ProcessError) binary() string {
	if len(e.Argv) == 0 {
		return "ffmpeg"
	}
	return e.Argv[0]
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, argv ArgumentVector) ([]byte, error) {
	if len(argv) == 0 {
		return nil, &ProcessError{ExitCode: -1, Err: errors.New("empty command")}
	}
	cmd := exec.CommandContext(ctx, argv[0], argv.Args()...) //nolint:gosec
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		return nil, &ProcessError{
			Argv:     append(ArgumentVector(nil), argv...),
			ExitCode: exitCode,
			Stderr:   stderr.String(),
			Err:      err,
		}
	}
	return stdout.Bytes(), nil
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.LastIndexByte(s, '\n'); idx >= 0 {
		return strings.TrimSpace(s[idx+1:])
	}
	return s
}

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"videoengine/internal/config"
	"videoengine/internal/deps"
	"videoengine/internal/engine"
	"videoengine/internal/fileutil"
	"videoengine/internal/preflight"
)

func newEncodeCommand(ctx *commandContext) *cobra.Command {
	var output string
	var transforms transformFlags

	cmd := &cobra.Command{
		Use:   "encode <input>",
		Short: "Transcode a video file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(output)
			if target == "" {
				return errors.New("an output path is required (-o)")
			}
			target, err := config.ExpandPath(target)
			if err != nil {
				return fmt.Errorf("resolve output path: %w", err)
			}
			input, buf, err := readInput(args[0])
			if err != nil {
				return err
			}
			if err := requireFFmpegRoute(ctx, buf, input); err != nil {
				return err
			}
			if err := requireBinaries(ctx); err != nil {
				return err
			}

			eng, cleanup, err := ctx.newEngine()
			if err != nil {
				return err
			}
			defer cleanup()
			defer eng.Close()

			if err := eng.Load(cmd.Context(), buf, filepath.Ext(input)); err != nil {
				return err
			}
			if err := transforms.apply(eng); err != nil {
				return err
			}

			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return fmt.Errorf("create output directory: %w", err)
			}
			lock := flock.New(target + ".lock")
			locked, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("lock output: %w", err)
			}
			if !locked {
				return fmt.Errorf("another encode is writing %s", target)
			}
			defer func() {
				_ = lock.Unlock()
				_ = os.Remove(lock.Path())
			}()

			data, err := eng.Read(cmd.Context(), filepath.Ext(target), transforms.quality)
			if err != nil {
				return err
			}
			if err := fileutil.WriteAtomic(target, data, 0o644); err != nil {
				return fmt.Errorf("write output: %w", err)
			}

			width, height := eng.Size()
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%dx%d, %s)\n", target, width, height, formatBytes(int64(len(data))))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Destination file; its extension picks the container")
	transforms.register(cmd)
	return cmd
}

func readInput(arg string) (string, []byte, error) {
	path, err := config.ExpandPath(strings.TrimSpace(arg))
	if err != nil {
		return "", nil, fmt.Errorf("resolve input path: %w", err)
	}
	buf, err := os.ReadFile(path)
	if err != nil {
		return "", nil, fmt.Errorf("read input: %w", err)
	}
	return path, buf, nil
}

// requireFFmpegRoute rejects sources the host would hand to another engine.
func requireFFmpegRoute(ctx *commandContext, buf []byte, path string) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	sel := engine.Route(cfg, buf, filepath.Ext(path))
	if !sel.UsesFFmpeg(cfg) {
		return fmt.Errorf("%s (%s) is handled by the %q engine, not ffmpeg", filepath.Base(path), sel.MIME, sel.Engine)
	}
	return nil
}

// requireBinaries fails fast when ffmpeg or ffprobe cannot be resolved.
func requireBinaries(ctx *commandContext) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	missing := deps.Missing(preflight.CheckSystemDeps(cfg))
	if len(missing) == 0 {
		return nil
	}
	names := make([]string, 0, len(missing))
	for _, m := range missing {
		names = append(names, fmt.Sprintf("%s (%s)", m.Name, m.Detail))
	}
	return fmt.Errorf("missing dependencies: %s; run `videoengine doctor`", strings.Join(names, ", "))
}

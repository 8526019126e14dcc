package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"videoengine/internal/engine"
	"videoengine/internal/metrics"
	"videoengine/internal/services"
)

type probeReport struct {
	Path      string  `json:"path"`
	Engine    string  `json:"engine"`
	Kind      string  `json:"kind"`
	MIME      string  `json:"mime"`
	Bytes     int64   `json:"bytes"`
	Codec     string  `json:"codec,omitempty"`
	Format    string  `json:"format,omitempty"`
	Width     int     `json:"width"`
	Height    int     `json:"height"`
	FrameRate float64 `json:"frame_rate"`
	Duration  float64 `json:"duration_seconds"`
	Frames    int     `json:"frames"`
	Animated  bool    `json:"animated"`
}

func newProbeCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "probe <input>",
		Short: "Inspect a media file with ffprobe",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path, buf, err := readInput(args[0])
			if err != nil {
				return err
			}
			sel := engine.Route(cfg, buf, filepath.Ext(path))

			observer := metrics.NewObserver()
			start := time.Now()
			result, err := ctx.prober(cfg).Inspect(cmd.Context(), path)
			if err != nil {
				err = services.Wrap(services.ErrProbe, "probe", "inspect", path, err)
				observer.ObserveProbe(time.Since(start), err)
				return err
			}
			meta, err := result.Metadata()
			if err != nil {
				err = services.Wrap(services.ErrProbe, "probe", "parse", path, err)
			}
			observer.ObserveProbe(time.Since(start), err)
			if err != nil {
				return err
			}

			report := probeReport{
				Path:      path,
				Engine:    sel.Engine,
				Kind:      string(sel.Kind),
				MIME:      sel.MIME,
				Bytes:     int64(len(buf)),
				Format:    result.Format.FormatName,
				Width:     meta.Width,
				Height:    meta.Height,
				FrameRate: meta.FrameRate,
				Duration:  meta.Duration,
				Frames:    meta.Frames,
				Animated:  meta.Animated,
			}
			if stream, ok := result.VideoStream(); ok {
				report.Codec = stream.CodecName
			}

			if jsonOutput {
				return writeJSON(cmd, report)
			}
			rows := [][]string{
				{"Path", report.Path},
				{"Engine", fmt.Sprintf("%s (%s)", report.Engine, report.Kind)},
				{"MIME", report.MIME},
				{"Size", formatBytes(report.Bytes)},
				{"Container", report.Format},
				{"Codec", report.Codec},
				{"Dimensions", fmt.Sprintf("%dx%d", report.Width, report.Height)},
				{"Frame rate", strconv.FormatFloat(report.FrameRate, 'f', 3, 64)},
				{"Duration", (time.Duration(report.Duration * float64(time.Second))).Round(time.Millisecond).String()},
				{"Frames", strconv.Itoa(report.Frames)},
				{"Animated", yesNo(report.Animated)},
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Field", "Value"}, rows))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the report as JSON")
	return cmd
}

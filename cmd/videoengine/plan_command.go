package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"videoengine/internal/logging"
	"videoengine/internal/media/codec"
)

type planReport struct {
	Codec    string     `json:"codec"`
	Width    int        `json:"width"`
	Height   int        `json:"height"`
	Commands [][]string `json:"commands"`
}

func newPlanCommand(ctx *commandContext) *cobra.Command {
	var ext string
	var jsonOutput bool
	var transforms transformFlags

	cmd := &cobra.Command{
		Use:   "plan <input>",
		Short: "Print the ffmpeg commands an encode would run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, buf, err := readInput(args[0])
			if err != nil {
				return err
			}
			if err := requireFFmpegRoute(ctx, buf, input); err != nil {
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

			outExt := planExtension(ext, transforms.codec)
			vectors, err := eng.Plan(outExt, transforms.quality)
			if err != nil {
				return err
			}

			target := codec.FromExtension(outExt)
			if name := strings.TrimSpace(transforms.codec); name != "" {
				if parsed, err := codec.Parse(name); err == nil {
					target = parsed
				}
			}
			width, height := eng.Size()

			if jsonOutput {
				report := planReport{Codec: string(target), Width: width, Height: height}
				for _, v := range vectors {
					report.Commands = append(report.Commands, []string(v))
				}
				return writeJSON(cmd, report)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %dx%d, %d pass(es)\n", codecLabel(target), width, height, len(vectors))
			for i, v := range vectors {
				fmt.Fprintf(out, "pass %d: %s\n", i+1, logging.Argv("argv", v).Value.String())
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&ext, "ext", "", "Output extension (.mp4 or .webm); defaults from --codec")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the plan as JSON")
	transforms.register(cmd)
	return cmd
}

func planExtension(ext, codecName string) string {
	ext = strings.TrimSpace(ext)
	if ext != "" {
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		return ext
	}
	if c, err := codec.Parse(codecName); err == nil {
		return c.Extension()
	}
	return codec.H264.Extension()
}

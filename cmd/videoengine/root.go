package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"videoengine/internal/metrics"
)

// skipConfigLoad marks commands that must run before a valid config exists.
var skipConfigLoad = map[string]string{annotationSkipConfig: "true"}

const annotationSkipConfig = "skipConfigLoad"

func newRootCommand() *cobra.Command {
	var (
		configPath  string
		metricsPath string
	)
	ctx := newCommandContext(&configPath)

	root := &cobra.Command{
		Use:   "videoengine",
		Short: "Transcode short videos with ffmpeg",
		Long: "videoengine probes, crops, rotates, scales, and re-encodes short clips\n" +
			"to H.264, H.265, or VP9 using the local ffmpeg and ffprobe binaries.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if metricsPath = strings.TrimSpace(metricsPath); metricsPath == "" {
				return nil
			}
			if err := metrics.WriteTextfile(metricsPath); err != nil {
				return fmt.Errorf("write metrics textfile: %w", err)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", "", "Configuration file path")
	flags.StringVar(&metricsPath, "metrics-textfile", "", "Write Prometheus metrics to this file after the command finishes")

	root.AddCommand(
		newEncodeCommand(ctx),
		newProbeCommand(ctx),
		newPlanCommand(ctx),
		newConfigCommand(ctx),
		newHistoryCommand(ctx),
		newDoctorCommand(ctx),
	)
	return root
}

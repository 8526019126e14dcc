package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"videoengine/internal/config"
	"videoengine/internal/media/codec"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or scaffold the TOML configuration",
	}
	cmd.AddCommand(
		newConfigInitCommand(),
		newConfigValidateCommand(ctx),
		newConfigShowCommand(ctx),
	)
	return cmd
}

func newConfigInitCommand() *cobra.Command {
	var (
		path      string
		overwrite bool
	)
	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Write a commented sample config",
		Args:        cobra.NoArgs,
		Annotations: skipConfigLoad,
		RunE: func(cmd *cobra.Command, _ []string) error {
			target, err := sampleConfigTarget(path)
			if err != nil {
				return err
			}
			if !overwrite {
				if err := refuseExisting(target); err != nil {
					return err
				}
			}
			if err := config.CreateSample(target); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Set ffmpeg_path and ffprobe_path under [engine], or export FFMPEG_PATH and FFPROBE_PATH.")
			return nil
		},
	}
	cmd.Flags().StringVarP(&path, "path", "p", "", "Where to write the sample (defaults to the standard config location)")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace an existing file")
	return cmd
}

func sampleConfigTarget(path string) (string, error) {
	if path = strings.TrimSpace(path); path == "" {
		return config.DefaultConfigPath()
	}
	return config.ExpandPath(path)
}

func refuseExisting(path string) error {
	_, err := os.Stat(path)
	switch {
	case err == nil:
		return fmt.Errorf("%s already exists; pass --overwrite to replace it", path)
	case errors.Is(err, fs.ErrNotExist):
		return nil
	default:
		return fmt.Errorf("stat %s: %w", path, err)
	}
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:         "validate",
		Short:       "Load the config and create its directories",
		Args:        cobra.NoArgs,
		Annotations: skipConfigLoad,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, path, exists, err := config.Load(ctx.configPath())
			if err != nil {
				return err
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if exists {
				fmt.Fprintf(out, "Config path: %s\n", path)
			} else {
				fmt.Fprintf(out, "Config path: %s (not found, using defaults)\n", path)
			}
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}

func newConfigShowCommand(ctx *commandContext) *cobra.Command {
	var asTOML bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asTOML {
				data, err := cfg.Marshal()
				if err != nil {
					return fmt.Errorf("encode config: %w", err)
				}
				_, err = out.Write(data)
				return err
			}

			settings := [][]string{
				{"ffmpeg", cfg.FFmpegBinary()},
				{"ffprobe", cfg.FFprobeBinary()},
				{"Image engine", cfg.Engine.ImageEngine},
				{"FFmpeg engine", cfg.Engine.FFmpegEngine},
				{"Animated GIFs via ffmpeg", yesNo(cfg.Engine.HandleAnimatedGIF)},
				{"gifsicle fallback", yesNo(cfg.Engine.UseGifsicleEngine)},
				{"Temp directory", valueOr(cfg.Engine.TempDir, os.TempDir())},
				{"Logging", cfg.Logging.Format + "/" + cfg.Logging.Level},
				{"History", historySummary(cfg)},
			}
			fmt.Fprintln(out, renderTable([]string{"Setting", "Value"}, settings))

			codecs := make([][]string, 0, len(codec.All))
			for _, c := range codec.All {
				cc := cfg.Codec(c)
				codecs = append(codecs, []string{codecLabel(c), c.Container(), yesNo(cc.TwoPass), tunableSummary(cc)})
			}
			fmt.Fprintln(out, renderTable([]string{"Codec", "Container", "Two-pass", "Tunables"}, codecs))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asTOML, "toml", false, "Print the configuration as TOML")
	return cmd
}

func historySummary(cfg *config.Config) string {
	if !cfg.History.Enabled {
		return "disabled"
	}
	return cfg.History.Path
}

func valueOr(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

// tunableSummary lists the tunables that are set, in config key order.
func tunableSummary(cc config.CodecConfig) string {
	pairs := []struct {
		key   string
		value string
	}{
		{"preset", cc.Preset},
		{"level", cc.Level},
		{"profile", cc.Profile},
		{"tune", cc.Tune},
		{"crf", cc.CRF},
		{"bitrate", cc.Bitrate},
		{"minrate", cc.MinRate},
		{"maxrate", cc.MaxRate},
		{"bufsize", cc.BufSize},
		{"qmin", cc.QMin},
		{"qmax", cc.QMax},
		{"crf_min", cc.CRFMin},
		{"crf_max", cc.CRFMax},
		{"deadline", cc.Deadline},
		{"cpu_used", cc.CPUUsed},
	}
	var parts []string
	for _, p := range pairs {
		if v := strings.TrimSpace(p.value); v != "" {
			parts = append(parts, p.key+"="+v)
		}
	}
	if cc.RowMT {
		parts = append(parts, "row_mt")
	}
	if cc.Lossless {
		parts = append(parts, "lossless")
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, " ")
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"videoengine/internal/preflight"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check binaries and directories the engine needs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			failures := 0

			statuses := preflight.CheckSystemDeps(cfg)
			depRows := make([][]string, 0, len(statuses))
			for _, status := range statuses {
				detail := status.Detail
				switch {
				case status.Available:
					detail = status.Purpose
				case status.Optional:
					detail += " (optional)"
				default:
					failures++
				}
				depRows = append(depRows, []string{status.Name, status.Command, passLabel(status.Available, colorize), detail})
			}
			fmt.Fprintln(out, renderTable([]string{"Dependency", "Command", "Status", "Detail"}, depRows))

			results := preflight.RunAll(cfg)
			checkRows := make([][]string, 0, len(results))
			for _, result := range results {
				if !result.Passed {
					failures++
				}
				checkRows = append(checkRows, []string{result.Name, passLabel(result.Passed, colorize), result.Detail})
			}
			fmt.Fprintln(out, renderTable([]string{"Check", "Status", "Detail"}, checkRows))

			if failures > 0 {
				return fmt.Errorf("%d readiness check(s) failed", failures)
			}
			fmt.Fprintln(out, "All checks passed")
			return nil
		},
	}
}

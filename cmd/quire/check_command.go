package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"quire/internal/preflight"
	"quire/internal/workflow"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check directories, boilerplate files, and external binaries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			failed := false

			var lines []string
			lines = append(lines, renderSectionHeader("Paths", colorize)...)
			results := preflight.RunAll(cfg)
			failed = failed || preflight.Failed(results)
			lines = append(lines, preflightLines(results, colorize)...)

			lines = append(lines, "")
			lines = append(lines, renderSectionHeader("Dependencies", colorize)...)
			statuses := preflight.CheckSystemDeps(cfg)
			for _, s := range statuses {
				failed = failed || (!s.Available && !s.Optional)
			}
			lines = append(lines, dependencyLines(statuses, colorize)...)

			lines = append(lines, "")
			lines = append(lines, renderSectionHeader("Collaborators", colorize)...)
			err = ctx.withManager(cmd, func(runCtx context.Context, mgr *workflow.Manager) error {
				health := mgr.Health(runCtx)
				for _, h := range health {
					failed = failed || !h.Ready
				}
				lines = append(lines, healthLines(health, colorize)...)
				return nil
			})
			if err != nil {
				failed = true
				lines = append(lines, renderStatusLine("Manager", statusError, err.Error(), colorize))
			}

			fmt.Fprintln(out, strings.Join(lines, "\n"))
			if failed {
				return errors.New("preflight checks failed")
			}
			return nil
		},
	}
}

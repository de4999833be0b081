package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"quire/internal/stage"
	"quire/internal/stagecache"
	"quire/internal/workflow"
)

func newBuildCommand(ctx *commandContext) *cobra.Command {
	var until string
	var chapters []int
	var force bool

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Run the pipeline, skipping tasks whose outputs are fresh",
		Long: "Run the pipeline up to --until (default: verify). Per-chapter stages can be\n" +
			"limited with --chapter; --force reruns the selected tasks even when fresh.\n\n" +
			"Stages: " + strings.Join(stageNames(), ", "),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := workflow.BuildOptions{Chapters: chapters, Force: force}
			if strings.TrimSpace(until) != "" {
				name, err := stage.Parse(until)
				if err != nil {
					return err
				}
				opts.Until = name
			}
			return ctx.withManager(cmd, func(runCtx context.Context, mgr *workflow.Manager) error {
				report, err := mgr.Build(runCtx, opts)
				out := cmd.OutOrStdout()
				if report != nil {
					fmt.Fprintln(out, buildSummary(report))
				}
				if err != nil {
					return err
				}
				if opts.Until == "" || opts.Until.Index() >= stage.Render.Index() {
					fmt.Fprintf(out, "Document: %s\n", mgr.Layout().Document())
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&until, "until", "", "Last stage to run")
	cmd.Flags().IntSliceVar(&chapters, "chapter", nil, "Limit per-chapter stages to these chapters (repeatable)")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Rerun selected tasks even when fresh")
	return cmd
}

func buildSummary(report *stagecache.Report) string {
	summary := fmt.Sprintf("Build %s: %d ran, %d cached, %d pending",
		shortRunID(report.RunID),
		report.Count(stagecache.StateDone),
		report.Count(stagecache.StateCached),
		report.Count(stagecache.StatePending),
	)
	if failed := report.Failure(); failed != nil {
		summary += fmt.Sprintf("; %s failed", failed.Task)
	}
	return summary
}

func shortRunID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func stageNames() []string {
	names := make([]string, 0, len(stage.Ordered()))
	for _, n := range stage.Ordered() {
		names = append(names, string(n))
	}
	return names
}

package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"quire/internal/workflow"
)

func newForgetCommand(ctx *commandContext) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "forget [TASK...]",
		Short: "Drop recorded state so the named tasks rerun",
		Long: "Drop the recorded state of the named tasks and remove their outputs so the\n" +
			"next build reruns them. Raw downloads are kept. With --all every record is\n" +
			"dropped and outputs stay on disk.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if all == (len(args) > 0) {
				return errors.New("name one or more tasks, or pass --all")
			}
			return ctx.withManager(cmd, func(runCtx context.Context, mgr *workflow.Manager) error {
				out := cmd.OutOrStdout()
				if all {
					if err := mgr.ForgetAll(runCtx); err != nil {
						return err
					}
					fmt.Fprintln(out, "Forgot all recorded task state")
					return nil
				}
				if err := mgr.Forget(runCtx, args...); err != nil {
					return err
				}
				fmt.Fprintf(out, "Forgot %d task(s)\n", len(args))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Forget every task")
	return cmd
}

func newCleanCommand(ctx *commandContext) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove generated artifacts (downloaded pages are kept unless --all)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withManager(cmd, func(runCtx context.Context, mgr *workflow.Manager) error {
				removed, err := mgr.Clean(runCtx, !all)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				for _, name := range removed {
					fmt.Fprintf(out, "removed %s\n", name)
				}
				fmt.Fprintf(out, "Removed %d file(s)\n", len(removed))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Also remove downloaded pages")
	return cmd
}

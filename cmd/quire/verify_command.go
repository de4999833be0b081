package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"quire/internal/workflow"
)

func newVerifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Check the composite document against the verification checklist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withManager(cmd, func(runCtx context.Context, mgr *workflow.Manager) error {
				if err := mgr.Verify(runCtx); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Verified %s\n", mgr.Layout().Composite())
				return nil
			})
		},
	}
}

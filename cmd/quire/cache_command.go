package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"quire/internal/config"
	"quire/internal/workflow"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage saved chapter pages",
	}
	cacheCmd.AddCommand(newCacheImportCommand(ctx))
	return cacheCmd
}

func newCacheImportCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "import DIR",
		Short: "Copy saved pages (NN_a_orig.html) into the artifact directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			return ctx.withManager(cmd, func(runCtx context.Context, mgr *workflow.Manager) error {
				imported, err := mgr.ImportPages(runCtx, dir)
				out := cmd.OutOrStdout()
				if len(imported) > 0 {
					fmt.Fprintf(out, "Imported chapters %s\n", joinInts(imported))
				}
				if err != nil {
					return err
				}
				if len(imported) == 0 {
					fmt.Fprintf(out, "No chapter pages found in %s\n", dir)
				}
				return nil
			})
		},
	}
}

func joinInts(values []int) string {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		parts = append(parts, strconv.Itoa(v))
	}
	return strings.Join(parts, ", ")
}

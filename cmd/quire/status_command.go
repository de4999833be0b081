package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"quire/internal/stage"
	"quire/internal/stagecache"
	"quire/internal/workflow"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show which tasks are fresh and which would run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withManager(cmd, func(runCtx context.Context, mgr *workflow.Manager) error {
				statuses, err := mgr.Status(runCtx)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, renderTaskStatuses(statuses))
				fresh := 0
				for _, s := range statuses {
					if s.State == stagecache.StateCached {
						fresh++
					}
				}
				fmt.Fprintf(out, "%d of %d tasks fresh\n", fresh, len(statuses))
				return nil
			})
		},
	}
}

func newListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List tasks in dependency order with their inputs and output",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withManager(cmd, func(_ context.Context, mgr *workflow.Manager) error {
				tasks, err := mgr.Tasks()
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTaskList(tasks))
				return nil
			})
		},
	}
}

func renderTaskStatuses(statuses []workflow.TaskStatus) string {
	rows := make([][]string, 0, len(statuses))
	for _, s := range statuses {
		size, modified := "-", "-"
		if s.Exists {
			size = humanize.Bytes(uint64(s.Size))
			modified = humanize.Time(s.ModTime)
		}
		state := string(s.State)
		if s.Reason != "" {
			state = fmt.Sprintf("%s (%s)", state, s.Reason)
		}
		rows = append(rows, []string{s.Task, stageLabel(s.Stage), chapterLabel(s.Chapter), state, size, modified})
	}
	return renderTable(
		[]string{"Task", "Stage", "Chapter", "State", "Size", "Modified"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignRight, alignLeft},
	)
}

func renderTaskList(tasks []stagecache.Task) string {
	rows := make([][]string, 0, len(tasks))
	for _, t := range tasks {
		inputs := make([]string, 0, len(t.Inputs)+len(t.After))
		for _, in := range t.Inputs {
			inputs = append(inputs, filepath.Base(in))
		}
		for _, after := range t.After {
			inputs = append(inputs, "after "+after)
		}
		output := "-"
		if t.Output != "" {
			output = filepath.Base(t.Output)
		}
		rows = append(rows, []string{t.Name, stageLabel(t.Stage), strings.Join(inputs, ", "), output})
	}
	return renderTable([]string{"Task", "Stage", "Inputs", "Output"}, rows, nil)
}

func stageLabel(n stage.Name) string {
	return cases.Title(language.Und).String(string(n))
}

func chapterLabel(ch int) string {
	if ch <= 0 {
		return "-"
	}
	return strconv.Itoa(ch)
}

package stagecache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"quire/internal/fileutil"
	"quire/internal/logging"
	"quire/internal/services"
	"quire/internal/stage"
)

// State is a task's position in a run.
type State string

const (
	StatePending State = "pending"
	StateCached  State = "cached"
	StateRunning State = "running"
	StateDone    State = "done"
	StateFailed  State = "failed"
)

// Outcome is the final state of one planned task.
type Outcome struct {
	Task     string
	Stage    stage.Name
	Chapter  int
	State    State
	Reason   string
	Duration time.Duration
	Err      error
}

// Report lists the outcome of every planned task in plan order. Tasks after
// the first failure stay pending.
type Report struct {
	RunID    string
	Outcomes []Outcome
}

// Count returns how many tasks ended in state.
func (r *Report) Count(state State) int {
	if r == nil {
		return 0
	}
	n := 0
	for _, o := range r.Outcomes {
		if o.State == state {
			n++
		}
	}
	return n
}

// Failure returns the failed outcome, if any.
func (r *Report) Failure() *Outcome {
	if r == nil {
		return nil
	}
	for i := range r.Outcomes {
		if r.Outcomes[i].State == StateFailed {
			return &r.Outcomes[i]
		}
	}
	return nil
}

// RunOptions selects what a run executes.
type RunOptions struct {
	// Targets limits the run to these tasks and their dependencies.
	Targets []string
	// Force reruns the targets (every task when Targets is empty) even when
	// their outputs are fresh.
	Force bool
	RunID string
}

// Runner executes a graph in dependency order, skipping fresh tasks.
type Runner struct {
	Graph   *Graph
	Checker Checker
	Logger  *slog.Logger
}

// Run executes the plan for opts. The first failing task aborts the run; its
// error is returned alongside the report.
func (r *Runner) Run(ctx context.Context, opts RunOptions) (*Report, error) {
	plan, err := r.Graph.Plan(opts.Targets...)
	if err != nil {
		return nil, err
	}
	forced := make(map[string]bool)
	if opts.Force {
		if len(opts.Targets) == 0 {
			for _, name := range plan {
				forced[name] = true
			}
		}
		for _, name := range opts.Targets {
			forced[name] = true
		}
	}

	report := &Report{RunID: opts.RunID, Outcomes: make([]Outcome, len(plan))}
	for i, name := range plan {
		t, _ := r.Graph.Task(name)
		report.Outcomes[i] = Outcome{Task: t.Name, Stage: t.Stage, Chapter: t.Chapter, State: StatePending}
	}

	for i, name := range plan {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		t, _ := r.Graph.Task(name)
		outcome := &report.Outcomes[i]
		if err := r.runTask(ctx, t, forced[name], opts.RunID, outcome); err != nil {
			return report, err
		}
	}
	return report, nil
}

func (r *Runner) runTask(ctx context.Context, t Task, force bool, runID string, outcome *Outcome) error {
	taskCtx := services.WithChapter(services.WithStage(ctx, string(t.Stage)), t.Chapter)
	logger := logging.WithContext(taskCtx, r.Logger)

	fail := func(err error) error {
		outcome.State = StateFailed
		outcome.Err = err
		logger.Error("stage failed",
			logging.Event(logging.EventStageFailure),
			logging.Task(t.Name),
			logging.Hint("fix the cause and rerun; completed stages are reused"),
			logging.Error(err),
		)
		return err
	}

	for _, in := range r.Graph.StaticInputs(t.Name) {
		if _, err := os.Stat(in); err != nil {
			return fail(stage.Fail(t.Stage, t.Chapter, "check inputs", fmt.Errorf("required input %s: %w", in, err)))
		}
	}

	if !force {
		verdict, err := r.Checker.Check(ctx, t)
		if err != nil {
			return fail(err)
		}
		if verdict.Fresh {
			outcome.State = StateCached
			outcome.Reason = verdict.Reason
			logger.Debug("stage cached",
				logging.Event(logging.EventStageCached),
				logging.Task(t.Name),
				logging.String("reason", verdict.Reason),
			)
			return nil
		}
		outcome.Reason = verdict.Reason
	} else {
		outcome.Reason = "forced"
	}

	outcome.State = StateRunning
	logger.Info("stage started",
		logging.Event(logging.EventStageStart),
		logging.Task(t.Name),
		logging.String("reason", outcome.Reason),
	)

	start := time.Now()
	if err := t.Action(taskCtx); err != nil {
		outcome.Duration = time.Since(start)
		return fail(err)
	}
	outcome.Duration = time.Since(start)

	if t.Output != "" {
		if err := r.record(ctx, t, runID); err != nil {
			return fail(err)
		}
	}

	outcome.State = StateDone
	logger.Info("stage completed",
		logging.Event(logging.EventStageComplete),
		logging.Task(t.Name),
		logging.Duration("duration", outcome.Duration),
	)
	return nil
}

func (r *Runner) record(ctx context.Context, t Task, runID string) error {
	outHash, err := fileutil.HashFile(t.Output)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return stage.Fail(t.Stage, t.Chapter, "check output", fmt.Errorf("task did not produce %s", t.Output))
		}
		return fmt.Errorf("hash output %s: %w", t.Output, err)
	}
	if r.Checker.Store == nil {
		return nil
	}
	inputs, err := HashInputs(t.Inputs)
	if err != nil {
		return err
	}
	return r.Checker.Store.Save(ctx, Record{
		Task:        t.Name,
		Signature:   t.Signature,
		InputHashes: inputs,
		OutputHash:  outHash,
		RunID:       runID,
		CompletedAt: time.Now().UTC(),
	})
}

// Status evaluates freshness for the plan of targets without running
// anything. Fresh tasks report StateCached and stale ones StatePending.
func (r *Runner) Status(ctx context.Context, targets ...string) ([]Outcome, error) {
	plan, err := r.Graph.Plan(targets...)
	if err != nil {
		return nil, err
	}
	out := make([]Outcome, 0, len(plan))
	for _, name := range plan {
		t, _ := r.Graph.Task(name)
		verdict, err := r.Checker.Check(ctx, t)
		if err != nil {
			return nil, err
		}
		state := StatePending
		if verdict.Fresh {
			state = StateCached
		}
		out = append(out, Outcome{Task: t.Name, Stage: t.Stage, Chapter: t.Chapter, State: state, Reason: verdict.Reason})
	}
	return out, nil
}

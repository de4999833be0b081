package workflow

import (
	"context"
	"errors"
	"os"
	"time"

	"quire/internal/stagecache"
)

// TaskStatus combines a task's freshness with what is on disk.
type TaskStatus struct {
	stagecache.Outcome
	Output  string
	Exists  bool
	Size    int64
	ModTime time.Time
}

// Status reports the freshness of every task without running anything.
func (m *Manager) Status(ctx context.Context) ([]TaskStatus, error) {
	g, err := m.Graph()
	if err != nil {
		return nil, err
	}
	runner := &stagecache.Runner{
		Graph:   g,
		Checker: stagecache.Checker{Policy: m.policy, Store: m.store},
		Logger:  m.logger,
	}
	outcomes, err := runner.Status(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]TaskStatus, 0, len(outcomes))
	for _, o := range outcomes {
		t, _ := g.Task(o.Task)
		status := TaskStatus{Outcome: o, Output: t.Output}
		if t.Output != "" {
			info, err := os.Stat(t.Output)
			switch {
			case err == nil:
				status.Exists = true
				status.Size = info.Size()
				status.ModTime = info.ModTime()
			case !errors.Is(err, os.ErrNotExist):
				return nil, err
			}
		}
		out = append(out, status)
	}
	return out, nil
}

// Tasks lists the graph in dependency order.
func (m *Manager) Tasks() ([]stagecache.Task, error) {
	g, err := m.Graph()
	if err != nil {
		return nil, err
	}
	order, err := g.Order()
	if err != nil {
		return nil, err
	}
	out := make([]stagecache.Task, 0, len(order))
	for _, name := range order {
		t, _ := g.Task(name)
		out = append(out, t)
	}
	return out, nil
}

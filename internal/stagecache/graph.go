package stagecache

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"quire/internal/stage"
)

// ErrCycle reports a dependency cycle in the task graph.
var ErrCycle = errors.New("dependency cycle")

// Action produces a task's output.
type Action func(ctx context.Context) error

// Task is one node of the build graph. Inputs are file paths; an input that no
// task outputs is a static file that must already exist. After names tasks
// that must complete first without contributing a file.
type Task struct {
	Name      string
	Stage     stage.Name
	Chapter   int
	Inputs    []string
	Output    string
	After     []string
	Signature string
	Action    Action
}

// Graph holds tasks in registration order.
type Graph struct {
	tasks    []*Task
	byName   map[string]*Task
	byOutput map[string]*Task
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{
		byName:   make(map[string]*Task),
		byOutput: make(map[string]*Task),
	}
}

// Add registers a task. Names and outputs must be unique.
func (g *Graph) Add(t Task) error {
	name := strings.TrimSpace(t.Name)
	if name == "" {
		return errors.New("task name required")
	}
	if t.Action == nil {
		return fmt.Errorf("task %s: action required", name)
	}
	if _, exists := g.byName[name]; exists {
		return fmt.Errorf("task %s: already registered", name)
	}
	if t.Output != "" {
		if owner, exists := g.byOutput[t.Output]; exists {
			return fmt.Errorf("task %s: output %s already produced by %s", name, t.Output, owner.Name)
		}
	}
	t.Name = name
	t.Inputs = append([]string(nil), t.Inputs...)
	t.After = append([]string(nil), t.After...)
	stored := &t
	g.tasks = append(g.tasks, stored)
	g.byName[name] = stored
	if t.Output != "" {
		g.byOutput[t.Output] = stored
	}
	return nil
}

// Task returns a copy of the named task.
func (g *Graph) Task(name string) (Task, bool) {
	t, ok := g.byName[name]
	if !ok {
		return Task{}, false
	}
	return *t, true
}

// Tasks returns every task in registration order.
func (g *Graph) Tasks() []Task {
	out := make([]Task, 0, len(g.tasks))
	for _, t := range g.tasks {
		out = append(out, *t)
	}
	return out
}

// StaticInputs returns the inputs of name that no task produces.
func (g *Graph) StaticInputs(name string) []string {
	t, ok := g.byName[name]
	if !ok {
		return nil
	}
	var out []string
	for _, in := range t.Inputs {
		if _, produced := g.byOutput[in]; !produced {
			out = append(out, in)
		}
	}
	return out
}

// Dependencies returns the names of tasks that must finish before name, in
// declaration order without duplicates.
func (g *Graph) Dependencies(name string) ([]string, error) {
	t, ok := g.byName[name]
	if !ok {
		return nil, fmt.Errorf("unknown task %q", name)
	}
	seen := make(map[string]struct{})
	var deps []string
	add := func(dep string) {
		if dep == name {
			return
		}
		if _, dup := seen[dep]; dup {
			return
		}
		seen[dep] = struct{}{}
		deps = append(deps, dep)
	}
	for _, in := range t.Inputs {
		if producer, produced := g.byOutput[in]; produced {
			add(producer.Name)
		}
	}
	for _, after := range t.After {
		if _, known := g.byName[after]; !known {
			return nil, fmt.Errorf("task %s: depends on unknown task %q", name, after)
		}
		add(after)
	}
	return deps, nil
}

// Order returns every task name in dependency order. Among tasks whose
// dependencies are satisfied, registration order wins.
func (g *Graph) Order() ([]string, error) {
	return g.order(nil)
}

// Plan returns the targets and everything they depend on, in dependency
// order. No targets means the whole graph.
func (g *Graph) Plan(targets ...string) ([]string, error) {
	if len(targets) == 0 {
		return g.Order()
	}
	include := make(map[string]bool)
	var visit func(name string) error
	visit = func(name string) error {
		if include[name] {
			return nil
		}
		include[name] = true
		deps, err := g.Dependencies(name)
		if err != nil {
			return err
		}
		for _, dep := range deps {
			if err := visit(dep); err != nil {
				return err
			}
		}
		return nil
	}
	for _, target := range targets {
		if _, ok := g.byName[target]; !ok {
			return nil, fmt.Errorf("unknown task %q", target)
		}
		if err := visit(target); err != nil {
			return nil, err
		}
	}
	return g.order(include)
}

func (g *Graph) order(include map[string]bool) ([]string, error) {
	pending := make([]*Task, 0, len(g.tasks))
	deps := make(map[string][]string, len(g.tasks))
	for _, t := range g.tasks {
		if include != nil && !include[t.Name] {
			continue
		}
		d, err := g.Dependencies(t.Name)
		if err != nil {
			return nil, err
		}
		deps[t.Name] = d
		pending = append(pending, t)
	}

	done := make(map[string]bool, len(pending))
	order := make([]string, 0, len(pending))
	for len(pending) > 0 {
		picked := -1
		for i, t := range pending {
			ready := true
			for _, d := range deps[t.Name] {
				if !done[d] {
					ready = false
					break
				}
			}
			if ready {
				picked = i
				break
			}
		}
		if picked < 0 {
			names := make([]string, 0, len(pending))
			for _, t := range pending {
				names = append(names, t.Name)
			}
			sort.Strings(names)
			return nil, fmt.Errorf("%w among %s", ErrCycle, strings.Join(names, ", "))
		}
		t := pending[picked]
		done[t.Name] = true
		order = append(order, t.Name)
		pending = append(pending[:picked], pending[picked+1:]...)
	}
	return order, nil
}

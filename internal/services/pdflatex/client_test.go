package pdflatex_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"quire/internal/services"
	"quire/internal/services/pdflatex"
)

type passExecutor struct {
	calls    []services.Command
	failAt   int
	writePDF bool
}

func (p *passExecutor) Run(_ context.Context, cmd services.Command) (services.Result, error) {
	p.calls = append(p.calls, cmd)
	if p.failAt > 0 && len(p.calls) == p.failAt {
		return services.Result{ExitCode: 1}, &services.ExitError{Command: cmd.String(), ExitCode: 1}
	}
	if p.writePDF {
		var job string
		for _, arg := range cmd.Args {
			if strings.HasPrefix(arg, "-jobname=") {
				job = strings.TrimPrefix(arg, "-jobname=")
			}
		}
		if err := os.WriteFile(filepath.Join(cmd.Dir, job+".pdf"), []byte("%PDF-1.5"), 0o644); err != nil {
			return services.Result{}, err
		}
	}
	return services.Result{}, nil
}

func TestRenderRunsEveryPass(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "f_mm.tex")
	exec := &passExecutor{writePDF: true}
	client, err := pdflatex.New("pdflatex", 2, "batchmode", 0, pdflatex.WithExecutor(exec))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	out, err := client.Render(context.Background(), source, "g_mm")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if out != filepath.Join(dir, "g_mm.pdf") {
		t.Fatalf("output = %q", out)
	}
	if len(exec.calls) != 2 {
		t.Fatalf("expected 2 passes, got %d", len(exec.calls))
	}
	for _, call := range exec.calls {
		if call.Dir != dir {
			t.Fatalf("pass ran in %q, want %q", call.Dir, dir)
		}
		want := "-interaction=batchmode -jobname=g_mm f_mm.tex"
		if got := strings.Join(call.Args, " "); got != want {
			t.Fatalf("args = %q, want %q", got, want)
		}
	}
}

func TestRenderFailureStopsAndIncludesLog(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "g_mm.log"), []byte("This is pdfTeX\n! Undefined control sequence.\nl.12 \\foo\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	exec := &passExecutor{failAt: 1}
	client, _ := pdflatex.New("pdflatex", 2, "batchmode", 0, pdflatex.WithExecutor(exec))

	_, err := client.Render(context.Background(), filepath.Join(dir, "f_mm.tex"), "g_mm")
	if !errors.Is(err, services.ErrRender) {
		t.Fatalf("expected render error, got %v", err)
	}
	if len(exec.calls) != 1 {
		t.Fatalf("expected render to stop after failing pass, got %d calls", len(exec.calls))
	}
	if !strings.Contains(err.Error(), "Undefined control sequence") {
		t.Fatalf("expected log excerpt in %q", err)
	}
}

func TestRenderMissingOutput(t *testing.T) {
	exec := &passExecutor{}
	client, _ := pdflatex.New("pdflatex", 1, "", 0, pdflatex.WithExecutor(exec))
	_, err := client.Render(context.Background(), filepath.Join(t.TempDir(), "f_mm.tex"), "g_mm")
	if !errors.Is(err, services.ErrRender) {
		t.Fatalf("expected render error for missing output, got %v", err)
	}
}

func TestNewValidates(t *testing.T) {
	if _, err := pdflatex.New("", 2, "batchmode", 0); err == nil {
		t.Fatal("expected error for empty binary")
	}
	if _, err := pdflatex.New("pdflatex", 0, "batchmode", 0); err == nil {
		t.Fatal("expected error for zero passes")
	}
}

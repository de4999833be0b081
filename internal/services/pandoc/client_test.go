package pandoc_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"quire/internal/services"
	"quire/internal/services/pandoc"
)

type recordingExecutor struct {
	cmd    services.Command
	stdin  string
	stdout string
	err    error
}

func (r *recordingExecutor) Run(_ context.Context, cmd services.Command) (services.Result, error) {
	r.cmd = cmd
	if cmd.Stdin != nil {
		data, _ := io.ReadAll(cmd.Stdin)
		r.stdin = string(data)
	}
	return services.Result{Stdout: []byte(r.stdout)}, r.err
}

func TestConvertPassesFragmentOnStdin(t *testing.T) {
	exec := &recordingExecutor{stdout: "\\chapter{One}\n"}
	client, err := pandoc.New("pandoc", 30, pandoc.WithExecutor(exec))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	out, err := client.Convert(context.Background(), "<div><h1>One</h1></div>\n", pandoc.Options{
		From:             "html+smart",
		To:               "latex+smart",
		TopLevelDivision: "chapter",
	})
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if out != "\\chapter{One}\n" {
		t.Fatalf("output = %q", out)
	}
	if exec.cmd.Binary != "pandoc" {
		t.Fatalf("binary = %q", exec.cmd.Binary)
	}
	want := "-f html+smart -t latex+smart --top-level-division=chapter"
	if got := strings.Join(exec.cmd.Args, " "); got != want {
		t.Fatalf("args = %q, want %q", got, want)
	}
	if exec.stdin != "<div><h1>One</h1></div>\n" {
		t.Fatalf("stdin = %q", exec.stdin)
	}
}

func TestConvertFailureIsConversionError(t *testing.T) {
	exec := &recordingExecutor{err: &services.ExitError{Command: "pandoc", ExitCode: 64, Stderr: "unknown reader"}}
	client, err := pandoc.New("pandoc", 0, pandoc.WithExecutor(exec))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = client.Convert(context.Background(), "x", pandoc.Options{})
	if !errors.Is(err, services.ErrConversion) {
		t.Fatalf("expected conversion error, got %v", err)
	}
	var exitErr *services.ExitError
	if !errors.As(err, &exitErr) || exitErr.ExitCode != 64 {
		t.Fatalf("expected exit error preserved, got %v", err)
	}
	if !strings.Contains(err.Error(), "unknown reader") {
		t.Fatalf("expected stderr in message: %v", err)
	}
}

func TestNewRequiresBinary(t *testing.T) {
	if _, err := pandoc.New("  ", 10); err == nil {
		t.Fatal("expected error")
	}
}

func TestHealthCheck(t *testing.T) {
	missing := func(string) (string, error) { return "", errors.New("not found") }
	client, _ := pandoc.New("pandoc", 0, pandoc.WithLookPath(missing))
	if h := client.HealthCheck(context.Background()); h.Ready {
		t.Fatal("expected unhealthy")
	}
	found := func(string) (string, error) { return "/usr/bin/pandoc", nil }
	client, _ = pandoc.New("pandoc", 0, pandoc.WithLookPath(found))
	if h := client.HealthCheck(context.Background()); !h.Ready {
		t.Fatalf("expected healthy, got %+v", h)
	}
}

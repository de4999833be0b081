package pdflatex

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"quire/internal/services"
	"quire/internal/stage"
)

// Renderer turns a composite typeset source into a rendered document.
type Renderer interface {
	Render(ctx context.Context, sourcePath, jobName string) (string, error)
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec services.Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// WithLookPath overrides binary discovery used by HealthCheck.
func WithLookPath(fn func(string) (string, error)) Option {
	return func(c *Client) {
		if fn != nil {
			c.lookPath = fn
		}
	}
}

// Client drives pdflatex in non-interactive mode.
type Client struct {
	binary      string
	passes      int
	interaction string
	timeout     time.Duration
	exec        services.Executor
	lookPath    func(string) (string, error)
}

// New constructs a pdflatex client. passes is how many times each render
// runs the engine; the second pass resolves the table of contents.
func New(binary string, passes int, interaction string, timeoutSeconds int, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("pdflatex binary required")
	}
	if passes < 1 {
		return nil, fmt.Errorf("pdflatex passes must be at least 1, got %d", passes)
	}
	if interaction == "" {
		interaction = "batchmode"
	}
	client := &Client{
		binary:      binary,
		passes:      passes,
		interaction: interaction,
		timeout:     time.Duration(timeoutSeconds) * time.Second,
		exec:        services.CommandExecutor{},
		lookPath:    exec.LookPath,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Args builds one pass's argument list.
func (c *Client) Args(sourceFile, jobName string) []string {
	return []string{
		"-interaction=" + c.interaction,
		"-jobname=" + jobName,
		sourceFile,
	}
}

// Render runs every pass in the source's directory and returns the path of
// <jobName>.pdf beside it.
func (c *Client) Render(ctx context.Context, sourcePath, jobName string) (string, error) {
	if strings.TrimSpace(jobName) == "" {
		return "", services.Wrap(services.ErrRender, "render", "validate", "job name required", nil)
	}
	dir := filepath.Dir(sourcePath)
	output := filepath.Join(dir, jobName+".pdf")

	runCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	for pass := 1; pass <= c.passes; pass++ {
		_, err := c.exec.Run(runCtx, services.Command{
			Binary: c.binary,
			Args:   c.Args(filepath.Base(sourcePath), jobName),
			Dir:    dir,
		})
		if err != nil {
			detail := fmt.Sprintf("pass %d of %d", pass, c.passes)
			if excerpt := logExcerpt(filepath.Join(dir, jobName+".log")); excerpt != "" {
				detail += "; log: " + excerpt
			}
			return "", services.Wrap(services.ErrRender, "render", "run "+c.binary, detail, err)
		}
	}

	info, err := os.Stat(output)
	if err != nil {
		return "", services.Wrap(services.ErrRender, "render", "locate output", output, err)
	}
	if info.Size() == 0 {
		return "", services.Wrap(services.ErrRender, "render", "locate output", output+" is empty", nil)
	}
	return output, nil
}

// HealthCheck reports whether the pdflatex binary is on PATH.
func (c *Client) HealthCheck(context.Context) stage.Health {
	if _, err := c.lookPath(c.binary); err != nil {
		return stage.Unhealthy("renderer", fmt.Sprintf("%s not found on PATH", c.binary))
	}
	return stage.Healthy("renderer")
}

// logExcerpt returns the first TeX error line ("! ...") from the job log.
func logExcerpt(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	for _, line := range strings.Split(string(data), "\n") {
		if strings.HasPrefix(line, "! ") {
			return strings.TrimSpace(line)
		}
	}
	return ""
}

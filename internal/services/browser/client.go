package browser

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"quire/internal/services"
	"quire/internal/stage"
)

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

// Client launches a headless browser once per page and reads the rendered
// page source from its standard output. No process is reused between pages.
type Client struct {
	command  string
	args     []string
	timeout  time.Duration
	exec     services.Executor
	lookPath func(string) (string, error)
}

// New constructs a browser client. args may contain {url}.
func New(command string, args []string, timeoutSeconds int, opts ...Option) (*Client, error) {
	command = strings.TrimSpace(command)
	if command == "" {
		return nil, errors.New("browser command required")
	}
	client := &Client{
		command:  command,
		args:     append([]string(nil), args...),
		timeout:  time.Duration(timeoutSeconds) * time.Second,
		exec:     services.CommandExecutor{},
		lookPath: exec.LookPath,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Args expands the {url} placeholder. When no argument references it, the
// URL is appended.
func (c *Client) Args(url string) []string {
	out := make([]string, 0, len(c.args)+1)
	substituted := false
	for _, arg := range c.args {
		if strings.Contains(arg, "{url}") {
			substituted = true
			arg = strings.ReplaceAll(arg, "{url}", url)
		}
		out = append(out, arg)
	}
	if !substituted {
		out = append(out, url)
	}
	return out
}

// PageSource renders url and returns the resulting markup.
func (c *Client) PageSource(ctx context.Context, url string) (string, error) {
	runCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	result, err := c.exec.Run(runCtx, services.Command{Binary: c.command, Args: c.Args(url)})
	if err != nil {
		return "", services.Wrap(services.ErrFetch, "download", "run "+c.command, url, err)
	}
	return string(result.Stdout), nil
}

// HealthCheck reports whether the browser command is on PATH.
func (c *Client) HealthCheck(context.Context) stage.Health {
	if _, err := c.lookPath(c.command); err != nil {
		return stage.Unhealthy("browser", fmt.Sprintf("%s not found on PATH", c.command))
	}
	return stage.Healthy("browser")
}

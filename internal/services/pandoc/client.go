package pandoc

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

// Options selects input and output dialects and heading mapping.
type Options struct {
	From             string
	To               string
	TopLevelDivision string
}

// Converter turns a markup fragment into a typeset fragment.
type Converter interface {
	Convert(ctx context.Context, fragment string, opts Options) (string, error)
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

// Client runs pandoc with the fragment on standard input.
type Client struct {
	binary   string
	timeout  time.Duration
	exec     services.Executor
	lookPath func(string) (string, error)
}

// New constructs a pandoc client.
func New(binary string, timeoutSeconds int, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("pandoc binary required")
	}
	client := &Client{
		binary:   binary,
		timeout:  time.Duration(timeoutSeconds) * time.Second,
		exec:     services.CommandExecutor{},
		lookPath: exec.LookPath,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Args builds the pandoc argument list for opts.
func Args(opts Options) []string {
	args := make([]string, 0, 5)
	if opts.From != "" {
		args = append(args, "-f", opts.From)
	}
	if opts.To != "" {
		args = append(args, "-t", opts.To)
	}
	if opts.TopLevelDivision != "" {
		args = append(args, "--top-level-division="+opts.TopLevelDivision)
	}
	return args
}

// Convert runs pandoc and returns its standard output.
func (c *Client) Convert(ctx context.Context, fragment string, opts Options) (string, error) {
	runCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	result, err := c.exec.Run(runCtx, services.Command{
		Binary: c.binary,
		Args:   Args(opts),
		Stdin:  strings.NewReader(fragment),
	})
	if err != nil {
		return "", services.Wrap(services.ErrConversion, "convert", "run "+c.binary, "", err)
	}
	return string(result.Stdout), nil
}

// HealthCheck reports whether the pandoc binary is on PATH.
func (c *Client) HealthCheck(context.Context) stage.Health {
	if _, err := c.lookPath(c.binary); err != nil {
		return stage.Unhealthy("converter", fmt.Sprintf("%s not found on PATH", c.binary))
	}
	return stage.Healthy("converter")
}

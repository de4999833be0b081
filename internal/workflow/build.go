package workflow

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"quire/internal/logging"
	"quire/internal/services"
	"quire/internal/stage"
	"quire/internal/stagecache"
)

// LockFile is created in the artifact directory while a command mutates it.
const LockFile = ".quire.lock"

// ErrLocked reports that another process holds the artifact directory lock.
var ErrLocked = errors.New("artifact directory is locked by another quire process")

// BuildOptions selects how far and for which chapters a build runs.
type BuildOptions struct {
	// Until is the last stage to run; empty means verify.
	Until stage.Name
	// Chapters restricts per-chapter stages; empty means all chapters.
	Chapters []int
	// Force reruns the target tasks even when fresh.
	Force bool
}

// Build runs the pipeline up to opts.Until. The first failing task aborts the
// build; artifacts from completed tasks stay on disk.
func (m *Manager) Build(ctx context.Context, opts BuildOptions) (*stagecache.Report, error) {
	targets, err := m.targets(opts)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "build", "resolve targets", "", err)
	}
	g, err := m.Graph()
	if err != nil {
		return nil, err
	}

	unlock, err := m.lock()
	if err != nil {
		return nil, err
	}
	defer unlock()

	runID := uuid.NewString()
	ctx = services.WithRunID(ctx, runID)
	logger := logging.WithContext(ctx, m.logger)
	start := time.Now()
	logger.Info("build started",
		logging.Event(logging.EventBuildStart),
		logging.String("targets", strings.Join(targets, ",")),
		logging.String("freshness", string(m.policy)),
		logging.Bool("force", opts.Force),
	)

	runner := &stagecache.Runner{
		Graph:   g,
		Checker: stagecache.Checker{Policy: m.policy, Store: m.store},
		Logger:  m.logger,
	}
	report, err := runner.Run(ctx, stagecache.RunOptions{Targets: targets, Force: opts.Force, RunID: runID})
	if err != nil {
		m.reportFailure(ctx, report, err)
		return report, err
	}

	logger.Info("build completed",
		logging.Event(logging.EventBuildComplete),
		logging.Int("ran", report.Count(stagecache.StateDone)),
		logging.Int("cached", report.Count(stagecache.StateCached)),
		logging.Duration("duration", time.Since(start)),
	)
	return report, nil
}

// lock takes the exclusive artifact directory lock without waiting.
func (m *Manager) lock() (func(), error) {
	if err := m.cfg.EnsureDirectories(); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "build", "ensure directories", "", err)
	}
	lockPath := filepath.Join(m.layout.Dir, LockFile)
	fl := flock.New(lockPath)
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w (%s)", ErrLocked, lockPath)
	}
	return func() {
		if err := fl.Unlock(); err != nil {
			m.logger.Warn("failed to release artifact lock", logging.Error(err))
		}
	}, nil
}

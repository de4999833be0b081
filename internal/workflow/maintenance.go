package workflow

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"quire/internal/fetch"
	"quire/internal/fileutil"
	"quire/internal/logging"
	"quire/internal/services"
	"quire/internal/stage"
)

// Forget drops the recorded state of the named tasks and removes their
// outputs so the next build reruns them. Raw downloads are never removed;
// forgetting a download task only drops its record.
func (m *Manager) Forget(ctx context.Context, names ...string) error {
	g, err := m.Graph()
	if err != nil {
		return err
	}
	for _, name := range names {
		if _, ok := g.Task(name); !ok {
			return fmt.Errorf("unknown task %q", name)
		}
	}

	unlock, err := m.lock()
	if err != nil {
		return err
	}
	defer unlock()

	for _, name := range names {
		t, _ := g.Task(name)
		if err := m.store.Forget(ctx, name); err != nil {
			return err
		}
		if t.Output != "" && t.Stage != stage.Download {
			if err := os.Remove(t.Output); err != nil && !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("remove %s: %w", t.Output, err)
			}
		}
		logging.WithContext(ctx, m.logger).Info("task forgotten", logging.Event(logging.EventTaskForgotten), logging.Task(name))
	}
	return nil
}

// ForgetAll drops every recorded task state. Outputs stay on disk; under the
// hash policy every task with inputs reruns on the next build.
func (m *Manager) ForgetAll(ctx context.Context) error {
	unlock, err := m.lock()
	if err != nil {
		return err
	}
	defer unlock()
	return m.store.ForgetAll(ctx)
}

// Clean removes generated artifacts and all recorded state. With keepRaw the
// downloaded pages survive so the next build starts at extraction.
func (m *Manager) Clean(ctx context.Context, keepRaw bool) ([]string, error) {
	unlock, err := m.lock()
	if err != nil {
		return nil, err
	}
	defer unlock()

	entries, err := m.layout.List()
	if err != nil {
		return nil, err
	}
	var removed []string
	for _, e := range entries {
		if keepRaw && e.Raw {
			continue
		}
		if err := os.Remove(e.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return removed, fmt.Errorf("remove %s: %w", e.Path, err)
		}
		removed = append(removed, e.Name)
	}
	if err := m.store.ForgetAll(ctx); err != nil {
		return removed, err
	}
	logging.WithContext(ctx, m.logger).Info("artifacts cleaned",
		logging.Int("removed", len(removed)),
		logging.Bool("kept_raw", keepRaw),
	)
	return removed, nil
}

// ImportPages copies saved chapter pages from dir into the artifact directory
// as raw downloads. Files use the download artifact naming (NN_a_orig.html);
// each one must pass the page shape check before it is copied. Chapters with
// no file in dir are skipped. The import replaces any recorded state for the
// affected download tasks.
func (m *Manager) ImportPages(ctx context.Context, dir string) ([]int, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "cache", "import", dir, err)
	}
	if !info.IsDir() {
		return nil, services.Wrap(services.ErrValidation, "cache", "import", dir+" is not a directory", nil)
	}

	unlock, err := m.lock()
	if err != nil {
		return nil, err
	}
	defer unlock()

	source := fetch.SeedFetcher{Dir: dir}
	logger := logging.WithContext(ctx, m.logger)
	var imported []int
	for _, ch := range m.cfg.ChapterOrdinals() {
		src := source.Locator(ch)
		if _, err := os.Stat(src); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if _, err := source.Fetch(ctx, fetch.Chapter{Ordinal: ch, Locator: src}); err != nil {
			return imported, err
		}
		dst := m.layout.Chapter(ch, stage.Download)
		if filepath.Clean(src) != filepath.Clean(dst) {
			if err := fileutil.CopyFileVerified(src, dst); err != nil {
				return imported, stage.Fail(stage.Download, ch, "import page", err)
			}
		}
		if err := m.store.Forget(ctx, TaskName(stage.Download, ch)); err != nil {
			return imported, err
		}
		imported = append(imported, ch)
		logger.Info("page imported",
			logging.Event(logging.EventPageImported),
			logging.Chapter(ch),
			logging.String("source", src),
		)
	}
	return imported, nil
}

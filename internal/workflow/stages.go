package workflow

import (
	"context"
	"fmt"
	"strings"

	"quire/internal/aggregate"
	"quire/internal/config"
	"quire/internal/extract"
	"quire/internal/fetch"
	"quire/internal/logging"
	"quire/internal/normalize"
	"quire/internal/services"
	"quire/internal/stage"
	"quire/internal/stagecache"
)

// locator returns where chapter ch is fetched from.
func (m *Manager) locator(ch int) string {
	if m.cfg.Source.FetchMode == config.FetchModeSeed {
		return fetch.SeedFetcher{Dir: m.cfg.Source.SeedDir}.Locator(ch)
	}
	return m.cfg.ChapterURL(ch)
}

func (m *Manager) downloadAction(ch int) stagecache.Action {
	return func(ctx context.Context) error {
		page, err := m.fetcher.Fetch(ctx, fetch.Chapter{Ordinal: ch, Locator: m.locator(ch)})
		if err != nil {
			return err
		}
		return m.write(stage.Download, ch, page)
	}
}

func (m *Manager) extractAction(ch int) stagecache.Action {
	return func(ctx context.Context) error {
		page, err := m.read(stage.Extract, stage.Download, ch)
		if err != nil {
			return err
		}
		result, err := extract.Extract(page)
		if err != nil {
			return chapterError(stage.Extract, ch, err)
		}
		if err := stage.FragmentShape.Check(result.Fragment); err != nil {
			return stage.Fail(stage.Extract, ch, "validate output", err)
		}
		logging.WithContext(ctx, m.logger).Debug("chapter extracted",
			logging.String("chapter_name", result.ChapterName),
			logging.Int("bytes", len(result.Fragment)),
		)
		return m.write(stage.Extract, ch, result.Fragment)
	}
}

func (m *Manager) fixMarkupAction(ch int) stagecache.Action {
	return m.normalizeAction(stage.Extract, stage.FixMarkup, ch, m.markup, stage.FragmentShape)
}

func (m *Manager) fixTypesetAction(ch int) stagecache.Action {
	return m.normalizeAction(stage.Convert, stage.FixTypeset, ch, m.typeset, stage.TypesetShape)
}

func (m *Manager) normalizeAction(from, to stage.Name, ch int, rules normalize.RuleSet, shape stage.Postcondition) stagecache.Action {
	return func(ctx context.Context) error {
		text, err := m.read(to, from, ch)
		if err != nil {
			return err
		}
		out, fired := rules.Trace(text)
		if err := shape.Check(out); err != nil {
			return stage.Fail(to, ch, "validate output", err)
		}
		logging.WithContext(ctx, m.logger).Debug("rules applied",
			logging.String("rule_set", rules.Name),
			logging.String("fired", strings.Join(fired, ",")),
		)
		return m.write(to, ch, out)
	}
}

func (m *Manager) convertAction(ch int) stagecache.Action {
	return func(ctx context.Context) error {
		fragment, err := m.read(stage.Convert, stage.FixMarkup, ch)
		if err != nil {
			return err
		}
		tex, err := m.converter.Convert(ctx, fragment, m.convertOptions())
		if err != nil {
			return chapterError(stage.Convert, ch, err)
		}
		if err := stage.TypesetShape.Check(tex); err != nil {
			return stage.Fail(stage.Convert, ch, "validate output", err)
		}
		return m.write(stage.Convert, ch, tex)
	}
}

func (m *Manager) aggregateAction(finals []string) stagecache.Action {
	return func(context.Context) error {
		doc, err := aggregate.ComposeFiles(m.cfg.Paths.Header, m.cfg.Paths.Footer, finals)
		if err != nil {
			return err
		}
		if err := m.layout.Write(m.layout.Composite(), doc); err != nil {
			return stage.Fail(stage.Aggregate, 0, "write artifact", err)
		}
		return nil
	}
}

func (m *Manager) renderAction() stagecache.Action {
	return func(ctx context.Context) error {
		_, err := m.renderer.Render(ctx, m.layout.Composite(), m.layout.RenderJob())
		return err
	}
}

func (m *Manager) verifyAction() stagecache.Action {
	return func(ctx context.Context) error {
		return m.verifier.VerifyFile(ctx, m.layout.Composite(), m.cfg.Source.Chapters)
	}
}

// Verify checks the existing composite document without building anything.
func (m *Manager) Verify(ctx context.Context) error {
	ctx = services.WithStage(ctx, string(stage.Verify))
	return m.verifyAction()(ctx)
}

// read loads the artifact of stage n on behalf of stage by.
func (m *Manager) read(by, n stage.Name, ch int) (string, error) {
	text, err := m.layout.Read(m.layout.Chapter(ch, n))
	if err != nil {
		return "", stage.Fail(by, ch, "read input", err)
	}
	return text, nil
}

func (m *Manager) write(n stage.Name, ch int, text string) error {
	if err := m.layout.Write(m.layout.Chapter(ch, n), text); err != nil {
		return stage.Fail(n, ch, "write artifact", err)
	}
	return nil
}

// chapterError prefixes an already classified error with its stage and
// chapter.
func chapterError(n stage.Name, ch int, err error) error {
	return fmt.Errorf("%s chapter %d: %w", n, ch, err)
}

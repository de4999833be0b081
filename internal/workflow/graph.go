package workflow

import (
	"fmt"
	"strings"

	"quire/internal/aggregate"
	"quire/internal/extract"
	"quire/internal/fileutil"
	"quire/internal/services/pandoc"
	"quire/internal/stage"
	"quire/internal/stagecache"
)

// TaskName returns the graph name of a stage for one chapter, or of a
// whole-run stage when chapter is zero.
func TaskName(n stage.Name, chapter int) string {
	if chapter > 0 {
		return fmt.Sprintf("%s-%02d", n, chapter)
	}
	return string(n)
}

// Graph builds the task graph for every configured chapter.
func (m *Manager) Graph() (*stagecache.Graph, error) {
	g := stagecache.NewGraph()
	var finals []string

	for _, ch := range m.cfg.ChapterOrdinals() {
		path := func(n stage.Name) string { return m.layout.Chapter(ch, n) }
		tasks := []stagecache.Task{
			{
				Name:      TaskName(stage.Download, ch),
				Stage:     stage.Download,
				Chapter:   ch,
				Output:    path(stage.Download),
				Signature: "fetch:" + m.cfg.Source.FetchMode + ":" + m.locator(ch),
				Action:    m.downloadAction(ch),
			},
			{
				Name:      TaskName(stage.Extract, ch),
				Stage:     stage.Extract,
				Chapter:   ch,
				Inputs:    []string{path(stage.Download)},
				Output:    path(stage.Extract),
				Signature: "extract:" + extract.ContentSelector,
				Action:    m.extractAction(ch),
			},
			{
				Name:      TaskName(stage.FixMarkup, ch),
				Stage:     stage.FixMarkup,
				Chapter:   ch,
				Inputs:    []string{path(stage.Extract)},
				Output:    path(stage.FixMarkup),
				Signature: m.markup.Fingerprint(),
				Action:    m.fixMarkupAction(ch),
			},
			{
				Name:      TaskName(stage.Convert, ch),
				Stage:     stage.Convert,
				Chapter:   ch,
				Inputs:    []string{path(stage.FixMarkup)},
				Output:    path(stage.Convert),
				Signature: m.convertSignature(),
				Action:    m.convertAction(ch),
			},
			{
				Name:      TaskName(stage.FixTypeset, ch),
				Stage:     stage.FixTypeset,
				Chapter:   ch,
				Inputs:    []string{path(stage.Convert)},
				Output:    path(stage.FixTypeset),
				Signature: m.typeset.Fingerprint(),
				Action:    m.fixTypesetAction(ch),
			},
		}
		for _, t := range tasks {
			if err := g.Add(t); err != nil {
				return nil, err
			}
		}
		finals = append(finals, path(stage.FixTypeset))
	}

	aggregateInputs := append([]string{m.cfg.Paths.Header, m.cfg.Paths.Footer}, finals...)
	whole := []stagecache.Task{
		{
			Name:      TaskName(stage.Aggregate, 0),
			Stage:     stage.Aggregate,
			Inputs:    aggregateInputs,
			Output:    m.layout.Composite(),
			Signature: "aggregate:" + fileutil.HashBytes([]byte(aggregate.Separator)),
			Action:    m.aggregateAction(finals),
		},
		{
			Name:      TaskName(stage.Render, 0),
			Stage:     stage.Render,
			Inputs:    []string{m.layout.Composite()},
			Output:    m.layout.Document(),
			Signature: m.renderSignature(),
			Action:    m.renderAction(),
		},
		{
			Name:      TaskName(stage.Verify, 0),
			Stage:     stage.Verify,
			Inputs:    []string{m.layout.Composite()},
			After:     []string{TaskName(stage.Render, 0)},
			Signature: strings.Join(m.cfg.Verify.Checklist, "\x00"),
			Action:    m.verifyAction(),
		},
	}
	for _, t := range whole {
		if err := g.Add(t); err != nil {
			return nil, err
		}
	}
	return g, nil
}

func (m *Manager) convertSignature() string {
	args := pandoc.Args(m.convertOptions())
	return m.cfg.Converter.Binary + " " + strings.Join(args, " ")
}

func (m *Manager) renderSignature() string {
	return fmt.Sprintf("%s passes=%d interaction=%s", m.cfg.Renderer.Binary, m.cfg.Renderer.Passes, m.cfg.Renderer.Interaction)
}

func (m *Manager) convertOptions() pandoc.Options {
	return pandoc.Options{
		From:             m.cfg.Converter.From,
		To:               m.cfg.Converter.To,
		TopLevelDivision: m.cfg.Converter.TopLevelDivision,
	}
}

// targets resolves build options into graph targets.
func (m *Manager) targets(opts BuildOptions) ([]string, error) {
	until := opts.Until
	if until == "" {
		until = stage.Verify
	}
	if until.Index() < 0 {
		return nil, fmt.Errorf("unknown stage %q", until)
	}
	chapters := opts.Chapters
	for _, ch := range chapters {
		if ch < 1 || ch > m.cfg.Source.Chapters {
			return nil, fmt.Errorf("chapter %d out of range 1..%d", ch, m.cfg.Source.Chapters)
		}
	}
	if !until.PerChapter() {
		if len(chapters) > 0 {
			return nil, fmt.Errorf("chapter selection only applies to per-chapter stages, not %s", until)
		}
		return []string{TaskName(until, 0)}, nil
	}
	if len(chapters) == 0 {
		chapters = m.cfg.ChapterOrdinals()
	}
	out := make([]string, 0, len(chapters))
	for _, ch := range chapters {
		out = append(out, TaskName(until, ch))
	}
	return out, nil
}

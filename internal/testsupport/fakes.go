package testsupport

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"quire/internal/notifications"
	"quire/internal/services"
	"quire/internal/services/pandoc"
)

var (
	headingPattern   = regexp.MustCompile(`<h1>(.*?)</h1>`)
	paragraphPattern = regexp.MustCompile(`<p>(.*?)</p>`)
	quotePairPattern = regexp.MustCompile(`"([^"]*)"`)
	entityReplacer   = strings.NewReplacer(
		"&mdash;", "---",
		"&ndash;", "--",
		"&hyphen;", "\u2010",
		"&amp;", `\&`,
		"&lt;", "<",
		"&gt;", ">",
		"…", `\ldots{}`,
	)
)

// FakeConverter imitates the converter closely enough for pipeline tests:
// headings become \chapter, each paragraph becomes one line followed by a
// blank line, dash entities become TeX dashes, and paired quotes become
// ``smart'' quotes.
type FakeConverter struct {
	mu    sync.Mutex
	Calls int
	Err   error
	// FailOn makes Convert fail when the fragment contains this text.
	FailOn string
}

// Convert implements pandoc.Converter.
func (f *FakeConverter) Convert(_ context.Context, fragment string, _ pandoc.Options) (string, error) {
	f.mu.Lock()
	f.Calls++
	f.mu.Unlock()
	if f.Err != nil {
		return "", f.Err
	}
	if f.FailOn != "" && strings.Contains(fragment, f.FailOn) {
		return "", services.Wrap(services.ErrConversion, "convert", "fake", "", errors.New("converter rejected input"))
	}

	var b strings.Builder
	if m := headingPattern.FindStringSubmatch(fragment); m != nil {
		b.WriteString(`\chapter{` + entityReplacer.Replace(m[1]) + "}\n\n")
	}
	for _, m := range paragraphPattern.FindAllStringSubmatch(fragment, -1) {
		text := quotePairPattern.ReplaceAllString(m[1], "``${1}''")
		b.WriteString(entityReplacer.Replace(text))
		b.WriteString("\n\n")
	}
	return b.String(), nil
}

// CallCount returns how many times Convert ran.
func (f *FakeConverter) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Calls
}

// FakeRenderer writes a placeholder document beside the source.
type FakeRenderer struct {
	mu      sync.Mutex
	Calls   int
	Sources []string
	Err     error
}

// Render implements pdflatex.Renderer.
func (f *FakeRenderer) Render(_ context.Context, sourcePath, jobName string) (string, error) {
	f.mu.Lock()
	f.Calls++
	f.Sources = append(f.Sources, sourcePath)
	f.mu.Unlock()
	if f.Err != nil {
		return "", f.Err
	}
	out := filepath.Join(filepath.Dir(sourcePath), jobName+".pdf")
	if err := os.WriteFile(out, []byte("%PDF-1.5\n% fake\n"), 0o644); err != nil {
		return "", err
	}
	return out, nil
}

// CallCount returns how many times Render ran.
func (f *FakeRenderer) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Calls
}

// PublishedEvent records one notification.
type PublishedEvent struct {
	Event   notifications.Event
	Payload notifications.Payload
}

// RecordingNotifier captures published notifications.
type RecordingNotifier struct {
	mu     sync.Mutex
	Events []PublishedEvent
}

// Publish implements notifications.Service.
func (r *RecordingNotifier) Publish(_ context.Context, event notifications.Event, payload notifications.Payload) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events = append(r.Events, PublishedEvent{Event: event, Payload: payload})
	return nil
}

// Has reports whether event was published.
func (r *RecordingNotifier) Has(event notifications.Event) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.Events {
		if e.Event == event {
			return true
		}
	}
	return false
}

package extract_test

import (
	"errors"
	"strings"
	"testing"

	"quire/internal/extract"
	"quire/internal/services"
	"quire/internal/stage"
	"quire/internal/testsupport"
)

func TestExtractSamplePage(t *testing.T) {
	result, err := extract.Extract(testsupport.SamplePage(2))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if result.ChapterName != "Metropolis, Part 2" {
		t.Fatalf("chapter name = %q", result.ChapterName)
	}
	if err := stage.FragmentShape.Check(result.Fragment); err != nil {
		t.Fatalf("fragment shape: %v", err)
	}
	lines := strings.Split(result.Fragment, "\n")
	if len(lines) != 3 || lines[2] != "" {
		t.Fatalf("expected two lines plus trailing newline, got %d: %q", len(lines), lines)
	}
	if !strings.HasPrefix(lines[0], "<div><h1>Metropolis, Part 2</h1><p>Paragraph 1 of chapter 2") {
		t.Fatalf("unexpected first line prefix: %.80q", lines[0])
	}
	if lines[1] != "</div>" {
		t.Fatalf("closing line = %q", lines[1])
	}
	if strings.Contains(result.Fragment, "storytext") || strings.Contains(result.Fragment, "class=") {
		t.Fatalf("content attributes not stripped: %.120q", result.Fragment)
	}
	if strings.Contains(result.Fragment, "navigation") {
		t.Fatal("page chrome leaked into fragment")
	}
}

func TestExtractKeepsQuotesAndCollapsesLineBreaks(t *testing.T) {
	page := testsupport.ChapterPage(4, "Lois, Lex and Clark", []string{
		"He said \"hi\" and it's fine<br>ok",
		"first line\n   second line",
		"fish &amp; chips",
	})
	result, err := extract.Extract(page)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if result.ChapterName != "Lois, Lex and Clark" {
		t.Fatalf("chapter name = %q", result.ChapterName)
	}
	for _, want := range []string{
		`<p>He said "hi" and it's fine<br/>ok</p>`,
		"<p>first line second line</p>",
		"<p>fish &amp; chips</p>",
	} {
		if !strings.Contains(result.Fragment, want) {
			t.Fatalf("fragment missing %q: %q", want, result.Fragment)
		}
	}
	if got := strings.Count(result.Fragment, "\n"); got != 2 {
		t.Fatalf("newline count = %d", got)
	}
}

func TestExtractErrors(t *testing.T) {
	tests := []struct {
		name string
		page string
		want string
	}{
		{
			name: "missing content",
			page: "<html><head><title>Chapter 1: A, a superman fanfic</title></head><body><p>x</p></body></html>",
			want: "#storytext",
		},
		{
			name: "unexpected title",
			page: "<html><head><title>Just a moment...</title></head><body><div id='storytext'>x</div></body></html>",
			want: "parse title",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := extract.Extract(tt.page)
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, services.ErrExtraction) {
				t.Fatalf("expected extraction error, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

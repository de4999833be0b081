package testsupport

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"
)

// FillerParagraphs is how many plain paragraphs each sample chapter carries,
// enough for converted output to clear the line-count postcondition.
const FillerParagraphs = 110

// SpecialParagraphs exercise the correction table and rule sets and, once
// converted, contain every default checklist entry.
var SpecialParagraphs = []string{
	`"Are you bringing pistols into your home?" he asked---quietly.`,
	`I wanted to explain how I got opening portion of the letter.`,
	`He believed in the goodness of humanity - mostly.`,
	`Nobody thought he could actually do it...`,
	`It was not fear - that he could understand.`,
	`The shelves were full of bric-a-brac from 1931-1934.`,
	`She read the reviews/comments/favorites/recommendations with some presumptions.`,
}

// ChapterName is the synthetic chapter name used in sample page titles.
func ChapterName(ordinal int) string {
	return fmt.Sprintf("Metropolis, Part %d", ordinal)
}

// ChapterParagraphs returns the paragraph texts of a sample chapter.
func ChapterParagraphs(ordinal int) []string {
	paragraphs := make([]string, 0, FillerParagraphs+len(SpecialParagraphs))
	if ordinal == 1 {
		paragraphs = append(paragraphs, SpecialParagraphs...)
	}
	for i := 1; i <= FillerParagraphs; i++ {
		paragraphs = append(paragraphs, fmt.Sprintf("Paragraph %d of chapter %d moves the story along at an even pace.", i, ordinal))
	}
	return paragraphs
}

// ChapterPage builds a page in the shape of a downloaded chapter.
func ChapterPage(ordinal int, name string, paragraphs []string) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html><html><head>\n")
	b.WriteString("<meta charset='utf-8'>\n")
	fmt.Fprintf(&b, "<title>Chapter %d: %s, a superman fanfic | FanFiction</title>\n", ordinal, name)
	for i := 0; i < 60; i++ {
		fmt.Fprintf(&b, "<link rel='stylesheet' href='/static/styles/sheet%02d.css'>\n", i)
	}
	b.WriteString("</head><body>\n<div id='content_wrapper'>\n")
	for i := 0; i < 50; i++ {
		fmt.Fprintf(&b, "<span class='xgray'>navigation %d</span>\n", i)
	}
	b.WriteString("<div class='storytext xcontrast_txt nocopy' id='storytext'>")
	for _, p := range paragraphs {
		b.WriteString("<p>")
		b.WriteString(p)
		b.WriteString("</p>")
	}
	b.WriteString("\n</div>\n</div>\n</body></html>")
	return b.String()
}

// SamplePage builds the default sample page for ordinal.
func SamplePage(ordinal int) string {
	return ChapterPage(ordinal, ChapterName(ordinal), ChapterParagraphs(ordinal))
}

// SeedChapters writes SamplePage for chapters 1..n as NN_a_orig.html in dir.
func SeedChapters(t testing.TB, dir string, n int) {
	t.Helper()
	for i := 1; i <= n; i++ {
		WriteText(t, filepath.Join(dir, fmt.Sprintf("%02d_a_orig.html", i)), SamplePage(i))
	}
}

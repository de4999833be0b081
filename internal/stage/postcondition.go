package stage

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Postcondition is the structural check a stage runs on its own output before
// writing it. Zero fields are not checked.
type Postcondition struct {
	MinLength  int // character count must exceed this
	MinLines   int // line count must exceed this
	ExactLines int
	Prefix     string
	Suffix     string
	Contains   string
}

var (
	// PageShape guards raw downloaded pages.
	PageShape = Postcondition{
		MinLength: 300,
		MinLines:  100,
		Prefix:    "<!DOCTYPE html><html><head>",
		Suffix:    "</body></html>",
		Contains:  "<div class='storytext xcontrast_txt nocopy' id='storytext'>",
	}
	// FragmentShape guards extracted and markup-normalized fragments.
	FragmentShape = Postcondition{
		MinLength:  300,
		ExactLines: 2,
		Prefix:     "<div><h1>",
		Suffix:     "</p>\n</div>\n",
	}
	// TypesetShape guards converted and typeset-normalized fragments.
	TypesetShape = Postcondition{
		MinLength: 300,
		MinLines:  100,
	}
)

// Check returns a description of the first violated constraint.
func (p Postcondition) Check(text string) error {
	if length := utf8.RuneCountInString(text); p.MinLength > 0 && length <= p.MinLength {
		return fmt.Errorf("length %d, want more than %d", length, p.MinLength)
	}
	lines := CountLines(text)
	if p.MinLines > 0 && lines <= p.MinLines {
		return fmt.Errorf("%d lines, want more than %d", lines, p.MinLines)
	}
	if p.ExactLines > 0 && lines != p.ExactLines {
		return fmt.Errorf("%d lines, want exactly %d", lines, p.ExactLines)
	}
	if p.Prefix != "" && !strings.HasPrefix(text, p.Prefix) {
		return fmt.Errorf("does not start with %q (starts %q)", p.Prefix, head(text, len(p.Prefix)))
	}
	if p.Suffix != "" && !strings.HasSuffix(text, p.Suffix) {
		return fmt.Errorf("does not end with %q (ends %q)", p.Suffix, tail(text, 20))
	}
	if p.Contains != "" && !strings.Contains(text, p.Contains) {
		return fmt.Errorf("missing marker %q", p.Contains)
	}
	return nil
}

// CountLines counts lines the way a universal line splitter does: a trailing
// break does not start a new line and \r\n counts once. Besides \n and \r,
// \v, \f, the \x1c-\x1e separators, NEL, U+2028 and U+2029 all end a line.
func CountLines(text string) int {
	if text == "" {
		return 0
	}
	n := 0
	endsWithBreak := false
	for i, r := range text {
		if r == '\n' && i > 0 && text[i-1] == '\r' {
			continue
		}
		endsWithBreak = isLineBreak(r)
		if endsWithBreak {
			n++
		}
	}
	if !endsWithBreak {
		n++
	}
	return n
}

func isLineBreak(r rune) bool {
	switch r {
	case '\n', '\r', '\v', '\f', '\x1c', '\x1d', '\x1e', '\u0085', '\u2028', '\u2029':
		return true
	}
	return false
}

func head(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}

package aggregate

import (
	"fmt"
	"os"
	"strings"

	"quire/internal/stage"
)

// Separator precedes every chapter in the composite document.
const Separator = "\n%%%%%%%%%%%%%%%%%%% NEW CHAPTER %%%%%%%%%%%%%%%%%%%%%%%%\n\n"

// Compose joins the preamble, each chapter prefixed with Separator, and the
// postamble with newlines. Chapters appear in the order given.
func Compose(preamble string, chapters []string, postamble string) string {
	parts := make([]string, 0, len(chapters)+2)
	parts = append(parts, preamble)
	for _, ch := range chapters {
		parts = append(parts, Separator+ch)
	}
	parts = append(parts, postamble)
	return strings.Join(parts, "\n")
}

// ComposeFiles reads the boilerplate and chapter files verbatim and composes
// them.
func ComposeFiles(headerPath, footerPath string, chapterPaths []string) (string, error) {
	header, err := readPart("read header", headerPath)
	if err != nil {
		return "", err
	}
	footer, err := readPart("read footer", footerPath)
	if err != nil {
		return "", err
	}
	chapters := make([]string, 0, len(chapterPaths))
	for _, p := range chapterPaths {
		text, err := readPart("read chapter", p)
		if err != nil {
			return "", err
		}
		chapters = append(chapters, text)
	}
	return Compose(header, chapters, footer), nil
}

func readPart(op, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", stage.Fail(stage.Aggregate, 0, op, fmt.Errorf("%s: %w", path, err))
	}
	return string(data), nil
}

package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"quire/internal/services"
)

// ContentSelector locates the story body on a chapter page.
const ContentSelector = "#storytext"

var titlePattern = regexp.MustCompile(`Chapter \d+: (.*), a superman fanfic`)

var lineBreaks = regexp.MustCompile(`\s*\n\s*`)

// Result is an extracted chapter fragment.
type Result struct {
	ChapterName string
	Fragment    string
}

// Extract pulls the content node out of a full chapter page, strips its
// attributes, and prepends an <h1> carrying the chapter name parsed from the
// page title. The fragment is serialized on a single line followed by the
// closing tag on its own line and a trailing newline.
func Extract(page string) (Result, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return Result{}, services.Wrap(services.ErrExtraction, "extract", "parse page", "", err)
	}

	story := doc.Find(ContentSelector).First()
	if story.Length() == 0 {
		return Result{}, services.Wrap(services.ErrExtraction, "extract", "locate content", "no element matches "+ContentSelector, nil)
	}

	title := doc.Find("title").First().Text()
	match := titlePattern.FindStringSubmatch(title)
	if match == nil {
		return Result{}, services.Wrap(services.ErrExtraction, "extract", "parse title", "title does not name a chapter: "+truncate(title, 120), nil)
	}
	name := match[1]

	node := story.Get(0)
	node.Attr = nil
	flattenText(node)
	terminate(node)

	heading := &html.Node{Type: html.ElementNode, Data: "h1", DataAtom: atom.H1}
	heading.AppendChild(&html.Node{Type: html.TextNode, Data: name})
	story.PrependNodes(heading)

	var b strings.Builder
	render(&b, node)
	b.WriteByte('\n')
	return Result{ChapterName: name, Fragment: b.String()}, nil
}

// flattenText collapses whitespace runs that contain a line break into one
// space so the fragment body stays on one line.
func flattenText(n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			if strings.ContainsAny(c.Data, "\r\n") {
				c.Data = lineBreaks.ReplaceAllString(strings.ReplaceAll(c.Data, "\r", "\n"), " ")
			}
		case html.ElementNode:
			if !rawText(c) {
				flattenText(c)
			}
		}
	}
}

// terminate drops trailing whitespace before the closing tag and replaces it
// with a single newline.
func terminate(n *html.Node) {
	for c := n.LastChild; c != nil && c.Type == html.TextNode; c = n.LastChild {
		trimmed := strings.TrimRight(c.Data, " \t\r\n\f")
		if trimmed != "" {
			c.Data = trimmed
			break
		}
		n.RemoveChild(c)
	}
	n.AppendChild(&html.Node{Type: html.TextNode, Data: "\n"})
}

func truncate(s string, limit int) string {
	s = strings.TrimSpace(s)
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}

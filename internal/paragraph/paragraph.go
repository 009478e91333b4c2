// Package paragraph rebuilds running paragraphs from the lines of an
// assembled document and renders them as HTML.
package paragraph

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/platinummonkey/zoneorder/internal/structure"
)

// StyleKey identifies the visual style of a span: font name and size
// rounded to the nearest half point
func StyleKey(span structure.Span) string {
	size := math.Floor(span.Size*2+0.5) / 2
	return span.Font + "-" + strconv.FormatFloat(size, 'f', -1, 64)
}

// Lines flattens every line of every zone of every page, in document order
func Lines(doc structure.Document) []structure.Line {
	var lines []structure.Line
	for _, page := range doc {
		for _, zone := range page.Zones {
			for _, block := range zone.Blocks {
				lines = append(lines, block.Lines...)
			}
		}
	}
	return lines
}

// Build joins lines into paragraphs. A line continues the running paragraph
// only when its first span has the style of the previous line's last span
// and the paragraph text ends in a space or a tab marker. Tabs become "|".
func Build(doc structure.Document) []string {
	var paragraphs []string
	var current strings.Builder
	lastStyle := ""

	for _, line := range Lines(doc) {
		if len(line.Spans) == 0 {
			continue
		}

		style := StyleKey(line.Spans[0])
		if current.Len() > 0 {
			text := current.String()
			open := strings.HasSuffix(text, " ") || strings.HasSuffix(text, "|")
			if lastStyle != style || !open {
				paragraphs = append(paragraphs, text)
				current.Reset()
			}
		}

		for _, span := range line.Spans {
			current.WriteString(strings.ReplaceAll(span.Text, "\t", "|"))
		}

		lastStyle = StyleKey(line.Spans[len(line.Spans)-1])
	}

	if current.Len() > 0 {
		paragraphs = append(paragraphs, current.String())
	}
	return paragraphs
}

// Options controls the HTML page
type Options struct {
	// Title is the document title; defaults to "Paragraphs"
	Title string

	// Lang sets the html lang attribute when non-empty
	Lang string
}

// RenderHTML writes a complete HTML page with one <p> per paragraph
func RenderHTML(w io.Writer, paragraphs []string, opts Options) error {
	title := opts.Title
	if title == "" {
		title = "Paragraphs"
	}

	root := &html.Node{Type: html.ElementNode, Data: "html", DataAtom: atom.Html}
	if opts.Lang != "" {
		root.Attr = append(root.Attr, html.Attribute{Key: "lang", Val: opts.Lang})
	}

	head := element(atom.Head)
	head.AppendChild(&html.Node{
		Type:     html.ElementNode,
		Data:     "meta",
		DataAtom: atom.Meta,
		Attr:     []html.Attribute{{Key: "charset", Val: "utf-8"}},
	})
	titleNode := element(atom.Title)
	titleNode.AppendChild(text(title))
	head.AppendChild(titleNode)
	root.AppendChild(head)

	body := element(atom.Body)
	for _, p := range paragraphs {
		body.AppendChild(text("\n"))
		para := element(atom.P)
		para.AppendChild(text(p))
		body.AppendChild(para)
	}
	body.AppendChild(text("\n"))
	root.AppendChild(body)

	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})
	doc.AppendChild(root)

	if err := html.Render(w, doc); err != nil {
		return fmt.Errorf("failed to render HTML: %w", err)
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func element(a atom.Atom) *html.Node {
	return &html.Node{Type: html.ElementNode, Data: a.String(), DataAtom: a}
}

func text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

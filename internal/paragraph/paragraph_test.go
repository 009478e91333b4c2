package paragraph

import (
	"bytes"
	"strings"
	"testing"

	"github.com/platinummonkey/zoneorder/internal/structure"
)

func span(text, font string, size float64) structure.Span {
	return structure.Span{Text: text, Font: font, Size: size, Alpha: 1}
}

func line(spans ...structure.Span) structure.Line {
	return structure.Line{Spans: spans}
}

// doc puts each group of lines into its own block of a single zone per page
func doc(pages ...[]structure.Line) structure.Document {
	out := make(structure.Document, 0, len(pages))
	for i, lines := range pages {
		out = append(out, structure.Page{
			Page: i + 1,
			Zones: []structure.Zone{{
				ZoneNumber: 1,
				Blocks:     []structure.Block{{Lines: lines}},
			}},
		})
	}
	return out
}

func assertParagraphs(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d paragraphs %q, want %d %q", len(got), got, len(want), want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("paragraph %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestStyleKey(t *testing.T) {
	tests := []struct {
		font string
		size float64
		want string
	}{
		{"Helvetica", 10, "Helvetica-10"},
		{"Helvetica", 10.2, "Helvetica-10"},
		{"Helvetica", 10.25, "Helvetica-10.5"},
		{"Helvetica", 10.74, "Helvetica-10.5"},
		{"Helvetica", 10.75, "Helvetica-11"},
		{"", 0, "-0"},
	}

	for _, tt := range tests {
		if got := StyleKey(span("", tt.font, tt.size)); got != tt.want {
			t.Errorf("StyleKey(%q, %g) = %q, want %q", tt.font, tt.size, got, tt.want)
		}
	}
}

func TestBuild_ContinuesOnTrailingSpace(t *testing.T) {
	got := Build(doc([]structure.Line{
		line(span("Left column opens ", "Helvetica", 10)),
		line(span("and\tcontinues ", "Helvetica", 10.2), span("here.", "Helvetica-Oblique", 10)),
	}))

	assertParagraphs(t, got, []string{"Left column opens and|continues here."})
}

func TestBuild_ClosesWithoutTrailingSpace(t *testing.T) {
	got := Build(doc([]structure.Line{
		line(span("First sentence.", "Helvetica", 10)),
		line(span("Second sentence.", "Helvetica", 10)),
	}))

	assertParagraphs(t, got, []string{"First sentence.", "Second sentence."})
}

func TestBuild_ClosesOnStyleChange(t *testing.T) {
	got := Build(doc([]structure.Line{
		line(span("Heading ", "Helvetica-Bold", 18)),
		line(span("Body text", "Helvetica", 10)),
	}))

	assertParagraphs(t, got, []string{"Heading ", "Body text"})
}

func TestBuild_StyleComparesLastSpan(t *testing.T) {
	got := Build(doc([]structure.Line{
		line(span("Plain ", "Helvetica", 10), span("bold ", "Helvetica-Bold", 10)),
		line(span("still bold", "Helvetica-Bold", 10)),
	}))

	assertParagraphs(t, got, []string{"Plain bold still bold"})
}

func TestBuild_TabMarkerKeepsParagraphOpen(t *testing.T) {
	got := Build(doc([]structure.Line{
		line(span("cell\t", "Helvetica", 10)),
		line(span("next", "Helvetica", 10)),
	}))

	assertParagraphs(t, got, []string{"cell|next"})
}

func TestBuild_SpansPagesAndSkipsEmptyLines(t *testing.T) {
	got := Build(doc(
		[]structure.Line{line(span("runs across ", "Times", 12)), {}},
		[]structure.Line{line(span("pages", "Times", 12))},
	))

	assertParagraphs(t, got, []string{"runs across pages"})
}

func TestBuild_Empty(t *testing.T) {
	if got := Build(nil); len(got) != 0 {
		t.Errorf("Build(nil) = %q, want none", got)
	}

	got := Build(doc([]structure.Line{line(span("", "Helvetica", 10))}))
	if len(got) != 0 {
		t.Errorf("Build() = %q, want none for empty text", got)
	}
}

func TestLines_Order(t *testing.T) {
	d := structure.Document{{Zones: []structure.Zone{
		{ZoneNumber: 1, Blocks: []structure.Block{{Lines: []structure.Line{line(span("a", "", 0))}}}},
		{ZoneNumber: 0, Blocks: []structure.Block{{Lines: []structure.Line{line(span("b", "", 0))}}}},
	}}}

	lines := Lines(d)
	if len(lines) != 2 || lines[0].Spans[0].Text != "a" || lines[1].Spans[0].Text != "b" {
		t.Errorf("Lines() = %+v, want a then b", lines)
	}
}

func TestRenderHTML(t *testing.T) {
	var buf bytes.Buffer
	err := RenderHTML(&buf, []string{"読み順", "a < b & c"}, Options{Title: "Sample", Lang: "ja"})
	if err != nil {
		t.Fatalf("RenderHTML() error = %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"<!DOCTYPE html>",
		`<html lang="ja">`,
		`<meta charset="utf-8"/>`,
		"<title>Sample</title>",
		"<p>読み順</p>\n<p>a &lt; b &amp; c</p>",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("HTML missing %q:\n%s", want, out)
		}
	}
}

func TestRenderHTML_Defaults(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderHTML(&buf, nil, Options{}); err != nil {
		t.Fatalf("RenderHTML() error = %v", err)
	}
	out := buf.String()

	if !strings.Contains(out, "<title>Paragraphs</title>") {
		t.Errorf("default title missing:\n%s", out)
	}
	if strings.Contains(out, "lang=") {
		t.Errorf("lang attribute should be omitted:\n%s", out)
	}
	if strings.Contains(out, "<p>") {
		t.Errorf("no paragraphs expected:\n%s", out)
	}
}

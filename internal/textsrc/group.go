package textsrc

import (
	"math"
	"strings"

	"github.com/platinummonkey/zoneorder/internal/geometry"
)

// Font style bits, PyMuPDF convention
const (
	FlagItalic = 1 << 1
	FlagBold   = 1 << 4
)

// glyph is a positioned piece of text in top-left page coordinates
type glyph struct {
	BBox  geometry.Rect
	Text  string
	Font  string
	Size  float64
	Color int
}

func (g glyph) sameStyle(o glyph) bool {
	return g.Font == o.Font && g.Size == o.Size && g.Color == o.Color
}

// FontFlags derives the style bitmask from a font name
func FontFlags(font string) int {
	name := strings.ToLower(font)
	flags := 0
	if strings.Contains(name, "bold") || strings.Contains(name, "black") || strings.Contains(name, "heavy") {
		flags |= FlagBold
	}
	if strings.Contains(name, "italic") || strings.Contains(name, "oblique") {
		flags |= FlagItalic
	}
	return flags
}

// FontName strips the subset tag (ABCDEF+) from an embedded font name
func FontName(base string) string {
	if i := strings.IndexByte(base, '+'); i == 6 {
		return base[i+1:]
	}
	return base
}

// groupGlyphs builds text blocks from glyphs given in content stream order.
// A glyph starts a new line when its vertical centre leaves the current line
// band or when it jumps back to the left; lines merge into a block while they
// overlap horizontally and the vertical gap stays under a line height.
func groupGlyphs(glyphs []glyph) []Block {
	lines := groupLines(glyphs)

	var blocks []Block
	for _, line := range lines {
		if n := len(blocks); n > 0 {
			last := &blocks[n-1]
			gap := line.BBox.Y0 - last.BBox.Y1
			if last.BBox.OverlapsX(line.BBox) && gap <= line.BBox.Height() && gap > -line.BBox.Height() {
				last.Lines = append(last.Lines, line)
				last.BBox = last.BBox.Union(line.BBox)
				continue
			}
		}
		blocks = append(blocks, Block{
			Number: len(blocks),
			Type:   BlockText,
			BBox:   line.BBox,
			Lines:  []Line{line},
		})
	}
	return blocks
}

func groupLines(glyphs []glyph) []Line {
	var lines []Line
	var current []glyph
	var band geometry.Rect

	flush := func() {
		if len(current) > 0 {
			lines = append(lines, buildLine(current))
		}
		current = nil
	}

	for _, g := range glyphs {
		if g.BBox.IsEmpty() && strings.TrimSpace(g.Text) == "" {
			continue
		}
		if len(current) > 0 {
			last := current[len(current)-1]
			_, cy := g.BBox.Center()
			backwards := g.BBox.X0 < last.BBox.X0-math.Max(g.Size, 1)
			if cy < band.Y0 || cy > band.Y1 || backwards {
				flush()
			}
		}
		if len(current) == 0 {
			band = g.BBox
		} else {
			band = band.Union(g.BBox)
		}
		current = append(current, g)
	}
	flush()

	return lines
}

func buildLine(glyphs []glyph) Line {
	line := Line{BBox: glyphs[0].BBox}

	var text strings.Builder
	span := glyphs[0]
	text.WriteString(span.Text)

	emit := func() {
		line.Spans = append(line.Spans, Span{
			BBox:  span.BBox,
			Text:  text.String(),
			Font:  span.Font,
			Size:  span.Size,
			Color: span.Color,
			Flags: FontFlags(span.Font),
		})
		text.Reset()
	}

	for _, g := range glyphs[1:] {
		line.BBox = line.BBox.Union(g.BBox)
		if !g.sameStyle(span) {
			emit()
			span = g
			text.WriteString(g.Text)
			continue
		}
		span.BBox = span.BBox.Union(g.BBox)
		text.WriteString(g.Text)
	}
	emit()

	return line
}

// Package textsrc provides raw page text (blocks, lines and spans with their
// bounding boxes) from PDF files and from pre-extracted document dumps.
//
// Coordinates always use a top-left origin with y growing downwards.
package textsrc

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/platinummonkey/zoneorder/internal/geometry"
	"github.com/platinummonkey/zoneorder/internal/logger"
)

// Block types
const (
	BlockText  = 0
	BlockImage = 1
)

// ErrUnsupportedFormat is returned by Open for unknown input extensions
var ErrUnsupportedFormat = errors.New("unsupported input format")

// Source yields raw pages of one document
type Source interface {
	// PageCount returns the number of pages
	PageCount() int

	// Page returns the raw content of page n (1-based)
	Page(n int) (*Page, error)

	// Close releases the underlying document
	Close() error
}

// Page is the raw, unordered content of one page
type Page struct {
	Number int
	Width  float64
	Height float64
	Blocks []Block
}

// Rect returns the page rectangle
func (p *Page) Rect() geometry.Rect {
	return geometry.Rect{X1: p.Width, Y1: p.Height}
}

// TextBlocks returns the blocks of type BlockText
func (p *Page) TextBlocks() []Block {
	var blocks []Block
	for _, b := range p.Blocks {
		if b.Type == BlockText {
			blocks = append(blocks, b)
		}
	}
	return blocks
}

// ImageBlocks returns the blocks of type BlockImage
func (p *Page) ImageBlocks() []Block {
	var blocks []Block
	for _, b := range p.Blocks {
		if b.Type == BlockImage {
			blocks = append(blocks, b)
		}
	}
	return blocks
}

// Block is a text or image block as produced by the extractor
type Block struct {
	Number int
	Type   int
	BBox   geometry.Rect
	Lines  []Line
}

// Line is one line of a text block
type Line struct {
	BBox  geometry.Rect
	Spans []Span
}

// Span is a run of text sharing one style
type Span struct {
	BBox  geometry.Rect
	Text  string
	Font  string
	Size  float64
	Color int

	// Alpha is nil when the extractor did not report opacity
	Alpha *float64

	// Flags is the style bitmask (2 = italic, 16 = bold)
	Flags int
}

// HasText reports whether any span of the block carries non-blank text
func (b Block) HasText() bool {
	for _, l := range b.Lines {
		for _, s := range l.Spans {
			if strings.TrimSpace(s.Text) != "" {
				return true
			}
		}
	}
	return false
}

// Open opens path as a PDF or a document dump, chosen by extension
func Open(path string, log *logger.Logger) (Source, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return OpenPDF(path, log)
	case ".json", ".yaml", ".yml":
		return OpenDump(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

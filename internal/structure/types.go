// Package structure defines the page → zone → block → line → span document
// tree and fills it from raw extractor blocks.
package structure

import (
	"github.com/platinummonkey/zoneorder/internal/geometry"
	"github.com/platinummonkey/zoneorder/internal/textsrc"
)

// SentinelZone is the zone number collecting blocks outside every zone
const SentinelZone = 0

// Document is the ordered list of pages
type Document []Page

// Page is one assembled page
type Page struct {
	Page   int     `json:"page" yaml:"page"`
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
	Zones  []Zone  `json:"zones" yaml:"zones"`
}

// Zone is a numbered reading region; Rect is nil for the sentinel zone
type Zone struct {
	ZoneNumber int            `json:"zone_number" yaml:"zone_number"`
	Rect       *geometry.Rect `json:"rect" yaml:"rect"`
	Blocks     []Block        `json:"blocks" yaml:"blocks"`
}

// IsSentinel reports whether z collects unassigned blocks
func (z Zone) IsSentinel() bool {
	return z.ZoneNumber == SentinelZone
}

// Block is a text block with at least one span
type Block struct {
	BBox   Box    `json:"block_bbox" yaml:"block_bbox"`
	Number int    `json:"block_number" yaml:"block_number"`
	Lines  []Line `json:"lines" yaml:"lines"`
}

// Line holds the non-empty list of spans of a block line
type Line struct {
	BBox  Box    `json:"line_bbox" yaml:"line_bbox"`
	Spans []Span `json:"spans" yaml:"spans"`
}

// Span is a styled run of text
type Span struct {
	BBox   Box     `json:"span_bbox" yaml:"span_bbox"`
	Text   string  `json:"text" yaml:"text"`
	Font   string  `json:"font" yaml:"font"`
	Size   float64 `json:"size" yaml:"size"`
	Color  int     `json:"color" yaml:"color"`
	Alpha  float64 `json:"alpha" yaml:"alpha"`
	Bold   bool    `json:"bold" yaml:"bold"`
	Italic bool    `json:"italic" yaml:"italic"`
}

// Box is a bounding box serialized as [x0, y0, x1, y1]
type Box [4]float64

// BoxOf converts a rectangle
func BoxOf(r geometry.Rect) Box {
	return Box(r.Array())
}

// Rect converts the box back to a rectangle
func (b Box) Rect() geometry.Rect {
	return geometry.FromArray(b)
}

// StyleFlags is the font style bitmask of a span
type StyleFlags int

// Italic reports the textsrc.FlagItalic bit
func (f StyleFlags) Italic() bool {
	return f&textsrc.FlagItalic != 0
}

// Bold reports the textsrc.FlagBold bit
func (f StyleFlags) Bold() bool {
	return f&textsrc.FlagBold != 0
}

// Counts returns the numbered zones, all blocks and the blocks of the sentinel zone
func (p Page) Counts() (zones, blocks, unassigned int) {
	for _, z := range p.Zones {
		if z.IsSentinel() {
			unassigned += len(z.Blocks)
		} else {
			zones++
		}
		blocks += len(z.Blocks)
	}
	return zones, blocks, unassigned
}

package structure

import (
	"github.com/platinummonkey/zoneorder/internal/geometry"
	"github.com/platinummonkey/zoneorder/internal/textsrc"
)

// Registry numbers ordered zones and routes blocks to them
type Registry struct {
	zones    []Zone
	sentinel int
}

// NewRegistry numbers zones 1..n in the given order, each with no blocks
func NewRegistry(ordered []geometry.Rect) *Registry {
	r := &Registry{
		zones:    make([]Zone, 0, len(ordered)),
		sentinel: -1,
	}
	for i, rect := range ordered {
		rect := rect
		r.zones = append(r.zones, Zone{
			ZoneNumber: i + 1,
			Rect:       &rect,
			Blocks:     []Block{},
		})
	}
	return r
}

// Add appends a block to the first zone containing its bbox, or to the
// sentinel zone, which is created on first use. It returns the zone number.
// Bboxes are compared unrounded: a block sticking out of a zone by less than
// one unit goes to the sentinel zone even though its integer-rounded bbox
// would fit.
func (r *Registry) Add(block Block) int {
	bbox := block.BBox.Rect()
	for i := range r.zones {
		if i == r.sentinel {
			continue
		}
		if r.zones[i].Rect.Contains(bbox) {
			r.zones[i].Blocks = append(r.zones[i].Blocks, block)
			return r.zones[i].ZoneNumber
		}
	}

	if r.sentinel < 0 {
		r.sentinel = len(r.zones)
		r.zones = append(r.zones, Zone{ZoneNumber: SentinelZone, Blocks: []Block{}})
	}
	r.zones[r.sentinel].Blocks = append(r.zones[r.sentinel].Blocks, block)
	return SentinelZone
}

// Assign builds every raw block and adds those with at least one span
func (r *Registry) Assign(raw []textsrc.Block) {
	for _, rb := range raw {
		if block, ok := BuildBlock(rb); ok {
			r.Add(block)
		}
	}
}

// Zones returns the zones in numbering order, sentinel last
func (r *Registry) Zones() []Zone {
	return r.zones
}

// BuildBlock converts a raw block. Lines without spans are dropped, spans are
// always kept; ok is false when no line survives.
func BuildBlock(raw textsrc.Block) (Block, bool) {
	block := Block{
		BBox:   BoxOf(raw.BBox),
		Number: raw.Number,
	}

	for _, rl := range raw.Lines {
		if len(rl.Spans) == 0 {
			continue
		}
		line := Line{
			BBox:  BoxOf(rl.BBox),
			Spans: make([]Span, 0, len(rl.Spans)),
		}
		for _, rs := range rl.Spans {
			line.Spans = append(line.Spans, BuildSpan(rs))
		}
		block.Lines = append(block.Lines, line)
	}

	return block, len(block.Lines) > 0
}

// BuildSpan decodes a raw span; a missing alpha becomes fully opaque
func BuildSpan(raw textsrc.Span) Span {
	alpha := 1.0
	if raw.Alpha != nil {
		alpha = *raw.Alpha
	}
	flags := StyleFlags(raw.Flags)

	return Span{
		BBox:   BoxOf(raw.BBox),
		Text:   raw.Text,
		Font:   raw.Font,
		Size:   raw.Size,
		Color:  raw.Color,
		Alpha:  alpha,
		Bold:   flags.Bold(),
		Italic: flags.Italic(),
	}
}

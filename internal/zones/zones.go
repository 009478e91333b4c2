// Package zones detects the rectangular reading regions of a page.
package zones

import (
	"fmt"
	"sort"

	"github.com/platinummonkey/zoneorder/internal/geometry"
	"github.com/platinummonkey/zoneorder/internal/textsrc"
)

// Options controls zone detection
type Options struct {
	// FooterMargin is the height excluded at the bottom of the page
	FooterMargin float64

	// HeaderMargin is the height excluded at the top of the page
	HeaderMargin float64

	// NoImageText ignores text lying on top of images
	NoImageText bool
}

// Validate rejects negative margins
func (o Options) Validate() error {
	if o.FooterMargin < 0 {
		return fmt.Errorf("footer margin must be non-negative, got %g", o.FooterMargin)
	}
	if o.HeaderMargin < 0 {
		return fmt.Errorf("header margin must be non-negative, got %g", o.HeaderMargin)
	}
	return nil
}

// Detector finds the zones of a page, in no particular order
type Detector interface {
	Detect(page *textsrc.Page, opts Options) ([]geometry.Rect, error)
}

// DetectorFunc adapts a function to the Detector interface
type DetectorFunc func(page *textsrc.Page, opts Options) ([]geometry.Rect, error)

// Detect calls f
func (f DetectorFunc) Detect(page *textsrc.Page, opts Options) ([]geometry.Rect, error) {
	return f(page, opts)
}

// ColumnBoxes groups text blocks into column-shaped zones: blocks are stacked
// into the first horizontally overlapping zone as long as the grown zone runs
// into neither another zone nor a block still waiting to be placed.
type ColumnBoxes struct{}

// Detect implements Detector
func (ColumnBoxes) Detect(page *textsrc.Page, opts Options) ([]geometry.Rect, error) {
	if page == nil {
		return nil, fmt.Errorf("nil page")
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	clip := page.Rect().Inset(opts.HeaderMargin, opts.FooterMargin)

	var images []geometry.Rect
	if opts.NoImageText {
		for _, b := range page.ImageBlocks() {
			images = append(images, b.BBox)
		}
	}

	candidates := textRects(page.TextBlocks(), clip, images)
	sortRects(candidates)

	var zones []geometry.Rect
	for k, c := range candidates {
		if i := mergeTarget(zones, c, candidates[k+1:]); i >= 0 {
			zones[i] = zones[i].Union(c)
			continue
		}
		zones = append(zones, c)
	}

	zones = dropContained(zones)
	sortRects(zones)
	return zones, nil
}

// textRects returns the line-box union of every block that has text, lies in
// clip and is not covered by an image
func textRects(blocks []textsrc.Block, clip geometry.Rect, images []geometry.Rect) []geometry.Rect {
	var rects []geometry.Rect
	for _, b := range blocks {
		if !b.HasText() {
			continue
		}

		lineBoxes := make([]geometry.Rect, 0, len(b.Lines))
		for _, l := range b.Lines {
			if len(l.Spans) > 0 {
				lineBoxes = append(lineBoxes, l.BBox)
			}
		}
		r, ok := geometry.Bounds(lineBoxes)
		if !ok || !clip.Contains(r) {
			continue
		}

		if onImage(r, images) {
			continue
		}
		rects = append(rects, r)
	}
	return rects
}

func onImage(r geometry.Rect, images []geometry.Rect) bool {
	for _, img := range images {
		if img.Contains(r) {
			return true
		}
	}
	return false
}

// mergeTarget returns the index of the first zone c can be merged into, or -1
func mergeTarget(zones []geometry.Rect, c geometry.Rect, pending []geometry.Rect) int {
	for i, z := range zones {
		if !z.OverlapsX(c) {
			continue
		}
		grown := z.Union(c)
		if collides(grown, zones, i) || collides(grown, pending, -1) {
			continue
		}
		return i
	}
	return -1
}

func collides(r geometry.Rect, zones []geometry.Rect, skip int) bool {
	for j, other := range zones {
		if j != skip && r.Intersects(other) {
			return true
		}
	}
	return false
}

// dropContained removes zones lying inside another zone; of identical zones
// the first one is kept
func dropContained(zones []geometry.Rect) []geometry.Rect {
	out := make([]geometry.Rect, 0, len(zones))
	for i, z := range zones {
		inside := false
		for j, other := range zones {
			if i == j || !other.Contains(z) {
				continue
			}
			if other != z || j < i {
				inside = true
				break
			}
		}
		if !inside {
			out = append(out, z)
		}
	}
	return out
}

func sortRects(rects []geometry.Rect) {
	sort.SliceStable(rects, func(i, j int) bool {
		if rects[i].Y0 != rects[j].Y0 {
			return rects[i].Y0 < rects[j].Y0
		}
		return rects[i].X0 < rects[j].X0
	})
}

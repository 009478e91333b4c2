// Package readingorder turns an unordered set of page zones into a single
// heading-delimited reading sequence.
//
// Wide zones (zones spanning most of the page width) are treated as headings.
// Every heading, taken top to bottom, claims all still-unclaimed zones that
// start below it; the claimed zones are split into columns by their left edges
// and interleaved row by row. A heading therefore owns everything beneath it,
// including content under later headings, and rows are cut to the length of
// the shortest column.
package readingorder

import (
	"math"
	"slices"
	"sort"

	"github.com/platinummonkey/zoneorder/internal/geometry"
	"github.com/platinummonkey/zoneorder/internal/logger"
)

const (
	// DefaultWideRatio is the width/page-width ratio above which a zone is a heading
	DefaultWideRatio = 0.6

	// DefaultColumnGap is the minimum distance between distinct left edges that
	// separates two columns
	DefaultColumnGap = 30.0
)

// Options holds the tunables of the reading order heuristics
type Options struct {
	// WideRatio is the exclusive width/page-width ratio for wide zones
	WideRatio float64

	// ColumnGap is the exclusive x0 gap that starts a new column
	ColumnGap float64
}

// DefaultOptions returns the standard heuristics
func DefaultOptions() Options {
	return Options{
		WideRatio: DefaultWideRatio,
		ColumnGap: DefaultColumnGap,
	}
}

// Group is one heading together with the zones it claimed, already in reading order
type Group struct {
	// Heading is the wide zone that opens the group
	Heading geometry.Rect

	// Columns is the estimated column count of the claimed zones
	Columns int

	// Claimed is the number of zones the heading took from the remaining set
	Claimed int

	// Zones are the claimed zones after column interleaving
	Zones []geometry.Rect
}

// Dropped returns how many claimed zones were cut by the shortest-column rule
func (g Group) Dropped() int {
	return g.Claimed - len(g.Zones)
}

// Sorter orders zones for reading
type Sorter struct {
	opts   Options
	logger *logger.Logger
}

// NewSorter creates a sorter; a nil logger falls back to the global one
func NewSorter(opts Options, log *logger.Logger) *Sorter {
	if log == nil {
		log = logger.Get()
	}
	return &Sorter{opts: opts, logger: log}
}

// Sort returns zones in reading order: each heading followed by its group.
// A pageWidth <= 0 means the page width is unknown.
func (s *Sorter) Sort(zones []geometry.Rect, pageWidth float64) []geometry.Rect {
	groups := s.Groups(zones, pageWidth)

	ordered := make([]geometry.Rect, 0, len(zones))
	for _, g := range groups {
		ordered = append(ordered, g.Heading)
		ordered = append(ordered, g.Zones...)
	}
	return ordered
}

// Groups runs the heading/column analysis and returns one group per wide zone
func (s *Sorter) Groups(zones []geometry.Rect, pageWidth float64) []Group {
	if len(zones) == 0 {
		return nil
	}

	wide := WideZones(zones, pageWidth, s.opts.WideRatio)

	remaining := slices.Clone(zones)
	sort.SliceStable(remaining, func(i, j int) bool {
		if remaining[i].Y0 != remaining[j].Y0 {
			return remaining[i].Y0 < remaining[j].Y0
		}
		return remaining[i].X0 < remaining[j].X0
	})

	groups := make([]Group, 0, len(wide))
	for _, heading := range wide {
		// remaining shrinks across headings: an earlier heading keeps what it took
		var claimed []geometry.Rect
		kept := remaining[:0]
		for _, z := range remaining {
			if z.Y0 > heading.Y0 {
				claimed = append(claimed, z)
			} else {
				kept = append(kept, z)
			}
		}
		remaining = kept

		columns := ColumnCount(claimed, s.opts.ColumnGap)
		group := Group{
			Heading: heading,
			Columns: columns,
			Claimed: len(claimed),
			Zones:   interleave(claimed, columns),
		}

		s.logger.WithFields(
			"heading", heading.String(),
			"columns", group.Columns,
			"claimed", group.Claimed,
			"dropped", group.Dropped(),
		).Debug("Detected columns under wide zone")

		groups = append(groups, group)
	}

	return groups
}

// Sort orders zones with the given options and no logging
func Sort(zones []geometry.Rect, pageWidth float64, opts Options) []geometry.Rect {
	return NewSorter(opts, logger.Nop()).Sort(zones, pageWidth)
}

// WideZones returns the zones whose width exceeds ratio times the page width,
// ordered top to bottom (stable). A pageWidth <= 0 falls back to the largest
// right edge among the zones.
func WideZones(zones []geometry.Rect, pageWidth, ratio float64) []geometry.Rect {
	wide := []geometry.Rect{}
	if len(zones) == 0 {
		return wide
	}

	if pageWidth <= 0 {
		pageWidth = zones[0].X1
		for _, z := range zones[1:] {
			pageWidth = math.Max(pageWidth, z.X1)
		}
	}
	if pageWidth <= 0 {
		return wide
	}

	for _, z := range zones {
		if z.Width()/pageWidth > ratio {
			wide = append(wide, z)
		}
	}

	sort.SliceStable(wide, func(i, j int) bool {
		return wide[i].Y0 < wide[j].Y0
	})
	return wide
}

// ColumnCount estimates how many columns the zones form from their distinct
// left edges: one column plus one for every sorted gap wider than gap.
func ColumnCount(zones []geometry.Rect, gap float64) int {
	seen := make(map[float64]struct{}, len(zones))
	edges := make([]float64, 0, len(zones))
	for _, z := range zones {
		if _, ok := seen[z.X0]; ok {
			continue
		}
		seen[z.X0] = struct{}{}
		edges = append(edges, z.X0)
	}

	if len(edges) < 2 {
		return 1
	}

	sort.Float64s(edges)

	count := 1
	for i := 1; i < len(edges); i++ {
		if edges[i]-edges[i-1] > gap {
			count++
		}
	}
	return count
}

// interleave distributes zones (top to bottom) into columns buckets by nearest
// last left edge, then reads the non-empty buckets row by row. Rows stop at the
// shortest bucket; the rest of the longer buckets is discarded.
func interleave(zones []geometry.Rect, columns int) []geometry.Rect {
	if columns < 1 {
		columns = 1
	}

	byY := slices.Clone(zones)
	sort.SliceStable(byY, func(i, j int) bool {
		return byY[i].Y0 < byY[j].Y0
	})

	buckets := make([][]geometry.Rect, columns)
	for _, z := range byY {
		best, bestDist := 0, math.Inf(1)
		for i, bucket := range buckets {
			ref := 0.0
			if len(bucket) > 0 {
				ref = bucket[len(bucket)-1].X0
			}
			// strict comparison keeps the lowest index on ties
			if d := math.Abs(z.X0 - ref); d < bestDist {
				best, bestDist = i, d
			}
		}
		buckets[best] = append(buckets[best], z)
	}

	var filled [][]geometry.Rect
	rows := 0
	for _, bucket := range buckets {
		if len(bucket) == 0 {
			continue
		}
		if len(filled) == 0 || len(bucket) < rows {
			rows = len(bucket)
		}
		filled = append(filled, bucket)
	}

	out := make([]geometry.Rect, 0, rows*len(filled))
	for row := 0; row < rows; row++ {
		for _, bucket := range filled {
			out = append(out, bucket[row])
		}
	}
	return out
}

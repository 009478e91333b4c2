package readingorder

import (
	"slices"
	"testing"

	"github.com/platinummonkey/zoneorder/internal/geometry"
	"github.com/platinummonkey/zoneorder/internal/logger"
)

var (
	heading1 = geometry.Rect{X0: 100, Y0: 20, X1: 500, Y1: 60}
	body1    = geometry.Rect{X0: 50, Y0: 80, X1: 150, Y1: 130}
	body3    = geometry.Rect{X0: 200, Y0: 80, X1: 300, Y1: 130}
	body4    = geometry.Rect{X0: 350, Y0: 80, X1: 450, Y1: 130}
	body5    = geometry.Rect{X0: 360, Y0: 140, X1: 450, Y1: 150}
	body2    = geometry.Rect{X0: 50, Y0: 140, X1: 150, Y1: 150}
	heading2 = geometry.Rect{X0: 100, Y0: 160, X1: 500, Y1: 200}
	body6    = geometry.Rect{X0: 50, Y0: 220, X1: 200, Y1: 270}
	body8    = geometry.Rect{X0: 250, Y0: 220, X1: 400, Y1: 340}
	body7    = geometry.Rect{X0: 45, Y0: 280, X1: 160, Y1: 350}
)

// twoSectionPage is a page with two headings over a three column and a two
// column section, listed in scrambled order.
func twoSectionPage() []geometry.Rect {
	return []geometry.Rect{
		heading1, body1, body3, body4, body5, body2,
		heading2, body6, body8, body7,
	}
}

func newTestSorter() *Sorter {
	return NewSorter(DefaultOptions(), logger.Nop())
}

func assertRects(t *testing.T, got, want []geometry.Rect) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d rects %v, want %d rects %v", len(got), got, len(want), want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestSort_TwoSectionPage(t *testing.T) {
	got := newTestSorter().Sort(twoSectionPage(), 550)

	// The first heading claims every zone below it, including the second
	// heading, so the second heading appears twice and body8 is cut off by
	// the shortest column.
	want := []geometry.Rect{
		heading1, body1, body2, body3, heading2, body4, body6, body5, body7,
		heading2,
	}
	assertRects(t, got, want)
}

func TestGroups_TwoSectionPage(t *testing.T) {
	groups := newTestSorter().Groups(twoSectionPage(), 550)

	if len(groups) != 2 {
		t.Fatalf("len(groups) = %d, want 2", len(groups))
	}

	first := groups[0]
	if first.Heading != heading1 {
		t.Errorf("groups[0].Heading = %v, want %v", first.Heading, heading1)
	}
	if first.Columns != 5 {
		t.Errorf("groups[0].Columns = %d, want 5", first.Columns)
	}
	if first.Claimed != 9 {
		t.Errorf("groups[0].Claimed = %d, want 9", first.Claimed)
	}
	if first.Dropped() != 1 {
		t.Errorf("groups[0].Dropped() = %d, want 1", first.Dropped())
	}

	second := groups[1]
	if second.Heading != heading2 {
		t.Errorf("groups[1].Heading = %v, want %v", second.Heading, heading2)
	}
	if second.Claimed != 0 || len(second.Zones) != 0 {
		t.Errorf("groups[1] claimed %d zones %v, want none", second.Claimed, second.Zones)
	}
	if second.Columns != 1 {
		t.Errorf("groups[1].Columns = %d, want 1", second.Columns)
	}
}

func TestSort_Empty(t *testing.T) {
	if got := newTestSorter().Sort(nil, 550); len(got) != 0 {
		t.Errorf("Sort(nil) = %v, want empty", got)
	}
	if got := newTestSorter().Sort([]geometry.Rect{}, 0); len(got) != 0 {
		t.Errorf("Sort([]) = %v, want empty", got)
	}
}

func TestSort_NoWideZones(t *testing.T) {
	zones := []geometry.Rect{body1, body3, body4}

	if got := newTestSorter().Sort(zones, 550); len(got) != 0 {
		t.Errorf("Sort() = %v, want empty when nothing is wide", got)
	}
}

func TestSort_ZonesAboveFirstHeadingAreOmitted(t *testing.T) {
	above := geometry.Rect{X0: 50, Y0: 0, X1: 150, Y1: 10}
	zones := []geometry.Rect{above, heading1, body1}

	got := newTestSorter().Sort(zones, 550)
	assertRects(t, got, []geometry.Rect{heading1, body1})
}

func TestSort_SingleColumn(t *testing.T) {
	a := geometry.Rect{X0: 50, Y0: 100, X1: 200, Y1: 150}
	b := geometry.Rect{X0: 55, Y0: 200, X1: 200, Y1: 250}
	c := geometry.Rect{X0: 60, Y0: 300, X1: 200, Y1: 350}

	got := newTestSorter().Sort([]geometry.Rect{c, heading1, a, b}, 550)
	assertRects(t, got, []geometry.Rect{heading1, a, b, c})
}

func TestSort_Truncation(t *testing.T) {
	right1 := geometry.Rect{X0: 300, Y0: 100, X1: 450, Y1: 150}
	left1 := geometry.Rect{X0: 50, Y0: 150, X1: 200, Y1: 200}
	left2 := geometry.Rect{X0: 50, Y0: 200, X1: 200, Y1: 250}
	left3 := geometry.Rect{X0: 50, Y0: 300, X1: 200, Y1: 350}

	got := newTestSorter().Sort([]geometry.Rect{left1, right1, left2, left3, heading1}, 550)

	// right1 opens the first bucket, the left zones sit nearer the empty
	// second bucket's origin; one row survives
	assertRects(t, got, []geometry.Rect{heading1, right1, left1})
}

func TestSort_PageWidthFallback(t *testing.T) {
	// without a page width the widest right edge (500) stands in, so the
	// 400 wide heading is still wide and the 150 wide body is not
	zones := []geometry.Rect{body6, heading1}

	got := newTestSorter().Sort(zones, 0)
	assertRects(t, got, []geometry.Rect{heading1, body6})
}

func TestSort_Deterministic(t *testing.T) {
	s := newTestSorter()
	first := s.Sort(twoSectionPage(), 550)
	again := s.Sort(twoSectionPage(), 550)

	assertRects(t, again, first)
}

func TestSort_ResortKeepsHeadingOrder(t *testing.T) {
	s := newTestSorter()
	first := s.Sort(twoSectionPage(), 550)
	second := s.Sort(first, 550)

	// headings repeat when an earlier heading claims a later one, so runs of
	// the same heading are collapsed before comparing
	want := []geometry.Rect{heading1, heading2}

	tests := []struct {
		name string
		got  []geometry.Rect
	}{
		{"first pass output", wideInOrder(first, 550)},
		{"second pass output", wideInOrder(second, 550)},
		{"first pass wide zones", slices.Compact(WideZones(first, 550, DefaultWideRatio))},
		{"second pass wide zones", slices.Compact(WideZones(second, 550, DefaultWideRatio))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertRects(t, tt.got, want)
		})
	}
}

// wideInOrder keeps the wide zones of ordered in place and collapses repeats
func wideInOrder(ordered []geometry.Rect, pageWidth float64) []geometry.Rect {
	var wide []geometry.Rect
	for _, z := range ordered {
		if z.Width()/pageWidth > DefaultWideRatio {
			wide = append(wide, z)
		}
	}
	return slices.Compact(wide)
}

func TestSort_PackageHelper(t *testing.T) {
	got := Sort(twoSectionPage(), 550, DefaultOptions())
	want := newTestSorter().Sort(twoSectionPage(), 550)

	assertRects(t, got, want)
}

func TestWideZones(t *testing.T) {
	tests := []struct {
		name      string
		zones     []geometry.Rect
		pageWidth float64
		ratio     float64
		want      []geometry.Rect
	}{
		{
			name:      "sorted by top edge",
			zones:     []geometry.Rect{heading2, body1, heading1},
			pageWidth: 550,
			ratio:     0.6,
			want:      []geometry.Rect{heading1, heading2},
		},
		{
			name:      "ratio is exclusive",
			zones:     []geometry.Rect{{X0: 0, Y0: 0, X1: 60, Y1: 10}},
			pageWidth: 100,
			ratio:     0.6,
			want:      []geometry.Rect{},
		},
		{
			name:      "fallback to max right edge",
			zones:     []geometry.Rect{{X0: 0, Y0: 0, X1: 100, Y1: 10}, {X0: 0, Y0: 20, X1: 50, Y1: 30}},
			pageWidth: 0,
			ratio:     0.6,
			want:      []geometry.Rect{{X0: 0, Y0: 0, X1: 100, Y1: 10}},
		},
		{
			name:      "empty",
			zones:     nil,
			pageWidth: 550,
			ratio:     0.6,
			want:      []geometry.Rect{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertRects(t, WideZones(tt.zones, tt.pageWidth, tt.ratio), tt.want)
		})
	}
}

func TestColumnCount(t *testing.T) {
	tests := []struct {
		name  string
		edges []float64
		want  int
	}{
		{"none", nil, 1},
		{"single edge", []float64{50}, 1},
		{"repeated edge", []float64{50, 50, 50}, 1},
		{"within gap", []float64{50, 60, 80}, 1},
		{"gap is exclusive", []float64{50, 80}, 1},
		{"two columns", []float64{50, 300}, 2},
		{"three columns unsorted", []float64{350, 50, 200}, 3},
		{"mixed", []float64{45, 50, 250}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			zones := make([]geometry.Rect, 0, len(tt.edges))
			for _, x := range tt.edges {
				zones = append(zones, geometry.Rect{X0: x, Y0: 0, X1: x + 10, Y1: 10})
			}
			if got := ColumnCount(zones, DefaultColumnGap); got != tt.want {
				t.Errorf("ColumnCount(%v) = %d, want %d", tt.edges, got, tt.want)
			}
		})
	}
}

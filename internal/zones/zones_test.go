package zones

import (
	"errors"
	"testing"

	"github.com/platinummonkey/zoneorder/internal/geometry"
	"github.com/platinummonkey/zoneorder/internal/textsrc"
)

func textBlock(r geometry.Rect, text string) textsrc.Block {
	return textsrc.Block{
		Type: textsrc.BlockText,
		BBox: r,
		Lines: []textsrc.Line{{
			BBox:  r,
			Spans: []textsrc.Span{{BBox: r, Text: text}},
		}},
	}
}

var (
	heading = geometry.Rect{X0: 100, Y0: 20, X1: 500, Y1: 60}
	left    = geometry.Rect{X0: 50, Y0: 80, X1: 250, Y1: 130}
	leftMid = geometry.Rect{X0: 50, Y0: 140, X1: 240, Y1: 180}
	right   = geometry.Rect{X0: 300, Y0: 80, X1: 500, Y1: 100}
	footer  = geometry.Rect{X0: 50, Y0: 660, X1: 500, Y1: 680}
)

func twoColumnPage() *textsrc.Page {
	return &textsrc.Page{
		Number: 1,
		Width:  550,
		Height: 700,
		Blocks: []textsrc.Block{
			textBlock(footer, "Page 1"),
			textBlock(right, "Right column."),
			textBlock(leftMid, "more left"),
			textBlock(heading, "Reading Order"),
			textBlock(left, "Left column"),
		},
	}
}

func assertZones(t *testing.T, got, want []geometry.Rect) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d zones %v, want %d zones %v", len(got), got, len(want), want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("zone %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestColumnBoxes_TwoColumns(t *testing.T) {
	got, err := ColumnBoxes{}.Detect(twoColumnPage(), Options{})
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}

	// the heading cannot absorb the left column without covering the right one
	assertZones(t, got, []geometry.Rect{
		heading,
		left.Union(leftMid),
		right,
		footer,
	})
}

func TestColumnBoxes_FooterMargin(t *testing.T) {
	got, err := ColumnBoxes{}.Detect(twoColumnPage(), Options{FooterMargin: 30})
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}

	assertZones(t, got, []geometry.Rect{heading, left.Union(leftMid), right})
}

func TestColumnBoxes_HeaderMargin(t *testing.T) {
	got, err := ColumnBoxes{}.Detect(twoColumnPage(), Options{HeaderMargin: 70, FooterMargin: 30})
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}

	assertZones(t, got, []geometry.Rect{left.Union(leftMid), right})
}

func TestColumnBoxes_NoImageText(t *testing.T) {
	page := twoColumnPage()
	page.Blocks = append(page.Blocks, textsrc.Block{
		Type: textsrc.BlockImage,
		BBox: geometry.Rect{X0: 290, Y0: 70, X1: 510, Y1: 110},
	})

	withText, err := ColumnBoxes{}.Detect(page, Options{FooterMargin: 30})
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	if len(withText) != 3 {
		t.Errorf("got %d zones, want 3 when image text is kept", len(withText))
	}

	got, err := ColumnBoxes{}.Detect(page, Options{FooterMargin: 30, NoImageText: true})
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	// with the right column gone nothing stops the heading from growing down
	assertZones(t, got, []geometry.Rect{heading.Union(left).Union(leftMid)})
}

func TestColumnBoxes_SkipsBlankBlocks(t *testing.T) {
	page := &textsrc.Page{
		Width:  550,
		Height: 700,
		Blocks: []textsrc.Block{
			textBlock(left, "   "),
			{Type: textsrc.BlockText, BBox: right, Lines: []textsrc.Line{{BBox: right}}},
		},
	}

	got, err := ColumnBoxes{}.Detect(page, Options{})
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Detect() = %v, want no zones", got)
	}
}

func TestColumnBoxes_IdenticalBlocksMerge(t *testing.T) {
	outer := geometry.Rect{X0: 50, Y0: 100, X1: 300, Y1: 300}
	page := &textsrc.Page{
		Width:  550,
		Height: 700,
		Blocks: []textsrc.Block{
			textBlock(outer, "outer"),
			textBlock(outer, "duplicate"),
		},
	}

	got, err := ColumnBoxes{}.Detect(page, Options{})
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	assertZones(t, got, []geometry.Rect{outer})
}

func TestDropContained(t *testing.T) {
	outer := geometry.Rect{X0: 0, Y0: 0, X1: 100, Y1: 100}
	inner := geometry.Rect{X0: 10, Y0: 10, X1: 20, Y1: 20}
	apart := geometry.Rect{X0: 200, Y0: 0, X1: 300, Y1: 100}

	got := dropContained([]geometry.Rect{inner, outer, apart, outer})
	assertZones(t, got, []geometry.Rect{outer, apart})
}

func TestColumnBoxes_Errors(t *testing.T) {
	if _, err := (ColumnBoxes{}).Detect(nil, Options{}); err == nil {
		t.Error("Detect(nil) should fail")
	}
	if _, err := (ColumnBoxes{}).Detect(twoColumnPage(), Options{FooterMargin: -1}); err == nil {
		t.Error("Detect() should reject a negative margin")
	}
}

func TestOptions_Validate(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{"zero", Options{}, false},
		{"positive", Options{FooterMargin: 10, HeaderMargin: 5}, false},
		{"negative footer", Options{FooterMargin: -1}, true},
		{"negative header", Options{HeaderMargin: -0.5}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.opts.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDetectorFunc(t *testing.T) {
	errBoom := errors.New("boom")
	var d Detector = DetectorFunc(func(*textsrc.Page, Options) ([]geometry.Rect, error) {
		return nil, errBoom
	})

	if _, err := d.Detect(&textsrc.Page{}, Options{}); !errors.Is(err, errBoom) {
		t.Errorf("Detect() error = %v, want %v", err, errBoom)
	}
}

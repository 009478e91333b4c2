package textsrc

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/platinummonkey/zoneorder/internal/geometry"
)

// Dump formats
const (
	DumpJSON = "json"
	DumpYAML = "yaml"
)

// dumpDocument mirrors the page text dictionary layout of PyMuPDF, one entry per page
type dumpDocument struct {
	Pages []dumpPage `json:"pages" yaml:"pages"`
}

type dumpPage struct {
	Number int         `json:"number" yaml:"number"`
	Width  float64     `json:"width" yaml:"width"`
	Height float64     `json:"height" yaml:"height"`
	Blocks []dumpBlock `json:"blocks" yaml:"blocks"`
}

type dumpBlock struct {
	Number int        `json:"number" yaml:"number"`
	Type   int        `json:"type" yaml:"type"`
	BBox   [4]float64 `json:"bbox" yaml:"bbox"`
	Lines  []dumpLine `json:"lines" yaml:"lines"`
}

type dumpLine struct {
	BBox  [4]float64 `json:"bbox" yaml:"bbox"`
	Spans []dumpSpan `json:"spans" yaml:"spans"`
}

type dumpSpan struct {
	BBox  [4]float64 `json:"bbox" yaml:"bbox"`
	Text  string     `json:"text" yaml:"text"`
	Font  string     `json:"font" yaml:"font"`
	Size  float64    `json:"size" yaml:"size"`
	Color int        `json:"color" yaml:"color"`
	Alpha *float64   `json:"alpha" yaml:"alpha"`
	Flags int        `json:"flags" yaml:"flags"`
}

// DumpSource serves pages from a decoded document dump
type DumpSource struct {
	pages []Page
}

// OpenDump reads a JSON or YAML document dump from disk
func OpenDump(path string) (*DumpSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dump: %w", err)
	}
	defer f.Close()

	return ReadDump(f, DumpFormat(path))
}

// DumpFormat returns the dump format implied by a file name
func DumpFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return DumpYAML
	default:
		return DumpJSON
	}
}

// ReadDump decodes a document dump in the given format
func ReadDump(r io.Reader, format string) (*DumpSource, error) {
	var doc dumpDocument

	switch format {
	case DumpJSON:
		if err := json.NewDecoder(r).Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode JSON dump: %w", err)
		}
	case DumpYAML:
		if err := yaml.NewDecoder(r).Decode(&doc); err != nil && err != io.EOF {
			return nil, fmt.Errorf("failed to decode YAML dump: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: dump format %q", ErrUnsupportedFormat, format)
	}

	return NewDumpSource(doc.toPages()), nil
}

// NewDumpSource serves the given pages; pages are numbered by position when
// their Number is unset
func NewDumpSource(pages []Page) *DumpSource {
	for i := range pages {
		if pages[i].Number == 0 {
			pages[i].Number = i + 1
		}
	}
	return &DumpSource{pages: pages}
}

// PageCount returns the number of pages in the dump
func (d *DumpSource) PageCount() int {
	return len(d.pages)
}

// Page returns page n (1-based)
func (d *DumpSource) Page(n int) (*Page, error) {
	if n < 1 || n > len(d.pages) {
		return nil, fmt.Errorf("invalid page number %d (dump has %d pages)", n, len(d.pages))
	}
	page := d.pages[n-1]
	return &page, nil
}

// Close is a no-op
func (d *DumpSource) Close() error {
	return nil
}

func (d dumpDocument) toPages() []Page {
	pages := make([]Page, 0, len(d.Pages))
	for _, dp := range d.Pages {
		page := Page{
			Number: dp.Number,
			Width:  dp.Width,
			Height: dp.Height,
			Blocks: make([]Block, 0, len(dp.Blocks)),
		}
		for _, db := range dp.Blocks {
			block := Block{
				Number: db.Number,
				Type:   db.Type,
				BBox:   geometry.FromArray(db.BBox),
			}
			for _, dl := range db.Lines {
				line := Line{BBox: geometry.FromArray(dl.BBox)}
				for _, ds := range dl.Spans {
					line.Spans = append(line.Spans, Span{
						BBox:  geometry.FromArray(ds.BBox),
						Text:  ds.Text,
						Font:  ds.Font,
						Size:  ds.Size,
						Color: ds.Color,
						Alpha: ds.Alpha,
						Flags: ds.Flags,
					})
				}
				block.Lines = append(block.Lines, line)
			}
			page.Blocks = append(page.Blocks, block)
		}
		pages = append(pages, page)
	}
	return pages
}

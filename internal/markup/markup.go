// Package markup draws the detected zones, blocks and reading order of an
// assembled document onto PDF pages for visual inspection.
package markup

import (
	"bytes"
	"fmt"
	"os"

	"github.com/signintech/gopdf"

	"github.com/platinummonkey/zoneorder/internal/logger"
	"github.com/platinummonkey/zoneorder/internal/structure"
)

// A4 in points, used for pages without a size
const (
	fallbackWidth  = 595.0
	fallbackHeight = 842.0
)

// Color is an RGB stroke color
type Color struct {
	R, G, B uint8
}

var (
	blockColor    = Color{160, 160, 160}
	sentinelColor = Color{220, 30, 30}
	orderColor    = Color{30, 30, 30}
)

// Palette cycles through zone colors by zone number
var Palette = []Color{
	{31, 119, 180},
	{44, 160, 44},
	{255, 127, 14},
	{148, 103, 189},
	{23, 190, 207},
	{188, 189, 34},
	{227, 119, 194},
	{140, 86, 75},
}

// ZoneColor returns the palette color of a zone number
func ZoneColor(zoneNumber int) Color {
	if zoneNumber <= 0 {
		return sentinelColor
	}
	return Palette[(zoneNumber-1)%len(Palette)]
}

// Options controls the drawing
type Options struct {
	// Background is a PDF whose pages are drawn underneath the markup
	Background string

	// ZoneLineWidth is the stroke width of zone rectangles
	ZoneLineWidth float64

	// BlockLineWidth is the stroke width of block outlines
	BlockLineWidth float64
}

// DefaultOptions returns the standard stroke widths without background
func DefaultOptions() *Options {
	return &Options{
		ZoneLineWidth:  1.5,
		BlockLineWidth: 0.5,
	}
}

// Renderer draws documents to PDF
type Renderer struct {
	options *Options
	logger  *logger.Logger
}

// NewRenderer creates a renderer; nil options use the defaults
func NewRenderer(opts *Options, log *logger.Logger) *Renderer {
	if opts == nil {
		opts = DefaultOptions()
	}
	if log == nil {
		log = logger.Get()
	}
	return &Renderer{options: opts, logger: log}
}

// Render returns the PDF bytes of the marked up document, one page per page
func (r *Renderer) Render(doc structure.Document) ([]byte, error) {
	if len(doc) == 0 {
		return nil, fmt.Errorf("document has no pages")
	}

	pdf := gopdf.GoPdf{}
	pdf.Start(gopdf.Config{
		PageSize: gopdf.Rect{W: fallbackWidth, H: fallbackHeight},
	})

	for i, page := range doc {
		w, h := pageSize(page)
		pdf.AddPageWithOption(gopdf.PageOption{
			PageSize: &gopdf.Rect{W: w, H: h},
		})

		if r.options.Background != "" {
			tpl := pdf.ImportPage(r.options.Background, i+1, "/MediaBox")
			pdf.UseImportedTemplate(tpl, 0, 0, w, h)
		}

		r.renderPage(&pdf, page)
	}

	var buf bytes.Buffer
	if err := pdf.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write PDF: %w", err)
	}

	r.logger.WithFields("pages", len(doc), "bytes", buf.Len()).Debug("Rendered markup")
	return buf.Bytes(), nil
}

// WriteFile renders the document and writes it to path
func (r *Renderer) WriteFile(path string, doc structure.Document) error {
	data, err := r.Render(doc)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write markup PDF: %w", err)
	}
	return nil
}

func (r *Renderer) renderPage(pdf *gopdf.GoPdf, page structure.Page) {
	var centers [][2]float64

	for _, zone := range page.Zones {
		if zone.Rect != nil {
			setStroke(pdf, ZoneColor(zone.ZoneNumber), r.options.ZoneLineWidth)
			rect := *zone.Rect
			pdf.RectFromUpperLeftWithStyle(rect.X0, rect.Y0, rect.Width(), rect.Height(), "D")

			cx, cy := rect.Center()
			centers = append(centers, [2]float64{cx, cy})
		}

		color := blockColor
		if zone.IsSentinel() {
			color = sentinelColor
		}
		setStroke(pdf, color, r.options.BlockLineWidth)
		for _, block := range zone.Blocks {
			b := block.BBox.Rect()
			pdf.RectFromUpperLeftWithStyle(b.X0, b.Y0, b.Width(), b.Height(), "D")
		}
	}

	// reading order path through the zone centres
	setStroke(pdf, orderColor, r.options.BlockLineWidth)
	for i := 1; i < len(centers); i++ {
		pdf.Line(centers[i-1][0], centers[i-1][1], centers[i][0], centers[i][1])
	}
}

func setStroke(pdf *gopdf.GoPdf, c Color, width float64) {
	pdf.SetStrokeColor(c.R, c.G, c.B)
	pdf.SetLineWidth(width)
}

func pageSize(page structure.Page) (float64, float64) {
	w, h := page.Width, page.Height
	if w <= 0 {
		w = fallbackWidth
	}
	if h <= 0 {
		h = fallbackHeight
	}
	return w, h
}

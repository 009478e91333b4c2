package textsrc

import (
	"fmt"
	"image/color"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"github.com/unidoc/unipdf/v3/common"
	"github.com/unidoc/unipdf/v3/common/license"
	"github.com/unidoc/unipdf/v3/extractor"
	unipdf "github.com/unidoc/unipdf/v3/model"

	"github.com/platinummonkey/zoneorder/internal/geometry"
	"github.com/platinummonkey/zoneorder/internal/logger"
)

func init() {
	common.SetLogger(common.NewConsoleLogger(common.LogLevelError))
}

// SetLicenseKey registers a metered unidoc key, required for text extraction
// by recent unipdf releases
func SetLicenseKey(key string) error {
	if key == "" {
		return nil
	}
	if err := license.SetMeteredKey(key); err != nil {
		return fmt.Errorf("failed to set unidoc license key: %w", err)
	}
	return nil
}

// PDFSource extracts raw page text from a PDF file. Page geometry comes from
// pdfcpu, text marks from unipdf.
type PDFSource struct {
	path   string
	ctx    *model.Context
	file   *os.File
	reader *unipdf.PdfReader
	logger *logger.Logger
}

// OpenPDF validates and opens a PDF; a nil logger falls back to the global one
func OpenPDF(path string, log *logger.Logger) (*PDFSource, error) {
	if log == nil {
		log = logger.Get()
	}
	log = log.WithFields("pdf_path", path)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("PDF file does not exist: %s", path)
	}

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	if err := api.ValidateFile(path, conf); err != nil {
		return nil, fmt.Errorf("PDF validation failed: %w", err)
	}

	ctx, err := api.ReadContextFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF: %w", err)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}

	reader, err := unipdf.NewPdfReaderLazy(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create PDF reader: %w", err)
	}

	if encrypted, err := reader.IsEncrypted(); err == nil && encrypted {
		if ok, err := reader.Decrypt([]byte("")); err != nil || !ok {
			f.Close()
			return nil, fmt.Errorf("PDF is encrypted and cannot be opened without a password")
		}
	}

	log.WithFields("page_count", ctx.PageCount).Debug("Opened PDF")

	return &PDFSource{
		path:   path,
		ctx:    ctx,
		file:   f,
		reader: reader,
		logger: log,
	}, nil
}

// PageCount returns the number of pages
func (s *PDFSource) PageCount() int {
	return s.ctx.PageCount
}

// Page extracts the raw blocks of page n (1-based)
func (s *PDFSource) Page(n int) (*Page, error) {
	if n < 1 || n > s.ctx.PageCount {
		return nil, fmt.Errorf("invalid page number %d (PDF has %d pages)", n, s.ctx.PageCount)
	}

	_, _, inheritedAttrs, err := s.ctx.PageDict(n, false)
	if err != nil {
		return nil, fmt.Errorf("failed to get page dictionary: %w", err)
	}
	box := pageBox(inheritedAttrs)
	if box == nil {
		return nil, fmt.Errorf("page %d has no media box", n)
	}

	page, err := s.reader.GetPage(n)
	if err != nil {
		return nil, fmt.Errorf("failed to get page %d: %w", n, err)
	}

	ex, err := extractor.New(page)
	if err != nil {
		return nil, fmt.Errorf("failed to create extractor for page %d: %w", n, err)
	}

	pageText, _, _, err := ex.ExtractPageText()
	if err != nil {
		return nil, fmt.Errorf("failed to extract text of page %d: %w", n, err)
	}

	// PDF space has a bottom-left origin
	originX, top := box.LL.X, box.UR.Y

	marks := pageText.Marks().Elements()
	glyphs := make([]glyph, 0, len(marks))
	for _, m := range marks {
		font := ""
		if m.Font != nil {
			font = FontName(m.Font.BaseFont())
		}
		glyphs = append(glyphs, glyph{
			BBox:  geometry.NewRect(m.BBox.Llx-originX, top-m.BBox.Ury, m.BBox.Urx-originX, top-m.BBox.Lly),
			Text:  m.Text,
			Font:  font,
			Size:  m.FontSize,
			Color: rgb(m.FillColor),
		})
	}

	raw := &Page{
		Number: n,
		Width:  box.Width(),
		Height: box.Height(),
		Blocks: groupGlyphs(glyphs),
	}

	s.logger.WithFields("page", n, "marks", len(marks), "blocks", len(raw.Blocks)).Debug("Extracted page text")
	return raw, nil
}

// pageBox returns the visible page area: the crop box when set, else the media box
func pageBox(attrs *model.InheritedPageAttrs) *types.Rectangle {
	if attrs == nil {
		return nil
	}
	if attrs.CropBox != nil {
		return attrs.CropBox
	}
	return attrs.MediaBox
}

// Close releases the PDF file
func (s *PDFSource) Close() error {
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}

// rgb packs a color into a 0xRRGGBB integer
func rgb(c color.Color) int {
	if c == nil {
		return 0
	}
	r, g, b, _ := c.RGBA()
	return int(r>>8)<<16 | int(g>>8)<<8 | int(b>>8)
}

package assemble

import (
	"fmt"
	"strings"
	"time"

	"github.com/platinummonkey/zoneorder/internal/structure"
)

// Result contains the assembled document and its counters
type Result struct {
	Document   structure.Document
	Pages      int
	Zones      int
	Blocks     int
	Unassigned int
	Duration   time.Duration
}

// NewResult creates an empty result sized for pageCount pages
func NewResult(pageCount int) *Result {
	return &Result{
		Document: make(structure.Document, 0, pageCount),
	}
}

// AddPage appends a page and updates the counters
func (r *Result) AddPage(page structure.Page) {
	zones, blocks, unassigned := page.Counts()

	r.Document = append(r.Document, page)
	r.Pages++
	r.Zones += zones
	r.Blocks += blocks
	r.Unassigned += unassigned
}

// HasUnassigned returns true if any block fell outside every zone
func (r *Result) HasUnassigned() bool {
	return r.Unassigned > 0
}

// Summary returns a human-readable summary of the run
func (r *Result) Summary() string {
	var sb strings.Builder

	sb.WriteString("Extraction Summary:\n")
	sb.WriteString(fmt.Sprintf("  Pages: %d\n", r.Pages))
	sb.WriteString(fmt.Sprintf("  Zones: %d\n", r.Zones))
	sb.WriteString(fmt.Sprintf("  Blocks: %d\n", r.Blocks))
	sb.WriteString(fmt.Sprintf("  Unassigned Blocks: %d\n", r.Unassigned))
	sb.WriteString(fmt.Sprintf("  Duration: %v\n", r.Duration))

	if r.HasUnassigned() {
		sb.WriteString("\nUnassigned blocks by page:\n")
		for _, page := range r.Document {
			if _, _, unassigned := page.Counts(); unassigned > 0 {
				sb.WriteString(fmt.Sprintf("  - page %d: %d\n", page.Page, unassigned))
			}
		}
	}

	return sb.String()
}

// String returns a string representation of the result
func (r *Result) String() string {
	return r.Summary()
}

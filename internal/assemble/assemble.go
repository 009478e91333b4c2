// Package assemble runs the per-page pipeline (zone detection, reading order,
// zone numbering and block assignment) over a whole document.
package assemble

import (
	"context"
	"fmt"
	"time"

	"github.com/platinummonkey/zoneorder/internal/logger"
	"github.com/platinummonkey/zoneorder/internal/readingorder"
	"github.com/platinummonkey/zoneorder/internal/structure"
	"github.com/platinummonkey/zoneorder/internal/textsrc"
	"github.com/platinummonkey/zoneorder/internal/zones"
)

// Assembler coordinates detection, ordering and assignment for each page
type Assembler struct {
	detector zones.Detector
	zoneOpts zones.Options
	sorter   *readingorder.Sorter
	logger   *logger.Logger
}

// Config holds configuration for the assembler
type Config struct {
	// Detector finds page zones; defaults to zones.ColumnBoxes
	Detector zones.Detector

	// Zones is passed to the detector for every page
	Zones zones.Options

	// Order tunes the reading order heuristics; zero values use the defaults
	Order readingorder.Options

	Logger *logger.Logger
}

// New creates an assembler
func New(cfg *Config) (*Assembler, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	log := cfg.Logger
	if log == nil {
		log = logger.Get()
	}

	if err := cfg.Zones.Validate(); err != nil {
		return nil, fmt.Errorf("invalid zone options: %w", err)
	}

	order := cfg.Order
	defaults := readingorder.DefaultOptions()
	if order.WideRatio == 0 {
		order.WideRatio = defaults.WideRatio
	}
	if order.ColumnGap == 0 {
		order.ColumnGap = defaults.ColumnGap
	}
	if order.WideRatio < 0 || order.WideRatio > 1 {
		return nil, fmt.Errorf("wide ratio must be in (0, 1], got %g", order.WideRatio)
	}
	if order.ColumnGap < 0 {
		return nil, fmt.Errorf("column gap must be non-negative, got %g", order.ColumnGap)
	}

	detector := cfg.Detector
	if detector == nil {
		detector = zones.ColumnBoxes{}
	}

	return &Assembler{
		detector: detector,
		zoneOpts: cfg.Zones,
		sorter:   readingorder.NewSorter(order, log),
		logger:   log,
	}, nil
}

// Page assembles one raw page into its zone tree
func (a *Assembler) Page(raw *textsrc.Page) (structure.Page, error) {
	if raw == nil {
		return structure.Page{}, fmt.Errorf("page cannot be nil")
	}

	detected, err := a.detector.Detect(raw, a.zoneOpts)
	if err != nil {
		return structure.Page{}, fmt.Errorf("failed to detect zones on page %d: %w", raw.Number, err)
	}

	ordered := a.sorter.Sort(detected, raw.Width)

	registry := structure.NewRegistry(ordered)
	registry.Assign(raw.Blocks)

	page := structure.Page{
		Page:   raw.Number,
		Width:  raw.Width,
		Height: raw.Height,
		Zones:  registry.Zones(),
	}

	zoneCount, blockCount, unassigned := page.Counts()
	a.logger.WithPage(raw.Number).WithFields(
		"detected", len(detected),
		"zones", zoneCount,
		"blocks", blockCount,
		"unassigned", unassigned,
	).Debug("Assembled page")

	return page, nil
}

// Document assembles every page of src in order. The context is checked
// between pages; any error discards the pages built so far.
func (a *Assembler) Document(ctx context.Context, src textsrc.Source) (*Result, error) {
	if src == nil {
		return nil, fmt.Errorf("source cannot be nil")
	}

	startTime := time.Now()
	total := src.PageCount()
	result := NewResult(total)

	a.logger.WithFields("pages", total).Info("Assembling document")

	for n := 1; n <= total; n++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("assembly cancelled before page %d: %w", n, err)
		}

		raw, err := src.Page(n)
		if err != nil {
			return nil, fmt.Errorf("failed to read page %d: %w", n, err)
		}

		page, err := a.Page(raw)
		if err != nil {
			return nil, err
		}
		// dumps may carry 0-based or missing page numbers
		page.Page = n

		result.AddPage(page)
	}

	result.Duration = time.Since(startTime)

	a.logger.WithFields(
		"pages", result.Pages,
		"zones", result.Zones,
		"blocks", result.Blocks,
		"unassigned", result.Unassigned,
		"duration", result.Duration,
	).Info("Document assembled")

	return result, nil
}

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/platinummonkey/zoneorder/internal/assemble"
	"github.com/platinummonkey/zoneorder/internal/logger"
	"github.com/platinummonkey/zoneorder/internal/markup"
	"github.com/platinummonkey/zoneorder/internal/output"
	"github.com/platinummonkey/zoneorder/internal/paragraph"
	"github.com/platinummonkey/zoneorder/internal/readingorder"
	"github.com/platinummonkey/zoneorder/internal/structure"
	"github.com/platinummonkey/zoneorder/internal/textsrc"
)

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract <input>",
	Short: "Extract the zone-ordered structure of a document",
	Long: `Extract detects the zones of every page, orders them for reading and
assigns the text blocks to zones.

The input is a PDF or a JSON/YAML page dump. Without -o the structure is
written next to the input as <name>_structure.json (or .yaml).

Examples:
  # Write report_structure.json next to the input
  zoneorder extract report.pdf

  # Ignore the bottom 40 points of every page, print YAML to stdout
  zoneorder extract report.pdf --footer-margin 40 --format yaml -o -

  # Also draw the zones over the original pages and rebuild paragraphs
  zoneorder extract report.pdf --markup report_zones.pdf --paragraphs report.html`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringP("output", "o", "", "structure output path (\"-\" for stdout)")
	extractCmd.Flags().String("format", "json", "structure format (json, yaml)")
	extractCmd.Flags().String("markup", "", "also write a PDF with zones and blocks drawn")
	extractCmd.Flags().String("paragraphs", "", "also write the rebuilt paragraphs as HTML")
	extractCmd.Flags().Float64("footer-margin", 0, "height excluded at the bottom of each page")
	extractCmd.Flags().Float64("header-margin", 0, "height excluded at the top of each page")
	extractCmd.Flags().Bool("no-image-text", false, "ignore text lying on images")
	extractCmd.Flags().Float64("wide-ratio", readingorder.DefaultWideRatio, "width/page-width ratio above which a zone is a heading")
	extractCmd.Flags().Float64("column-gap", readingorder.DefaultColumnGap, "left-edge distance separating columns")
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup(cmd)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	input := args[0]
	log = log.WithInput(input)
	outPath, _ := cmd.Flags().GetString("output")
	markupPath, _ := cmd.Flags().GetString("markup")
	htmlPath, _ := cmd.Flags().GetString("paragraphs")

	src, err := textsrc.Open(input, log)
	if err != nil {
		return fmt.Errorf("failed to open input: %w", err)
	}
	defer src.Close()

	a, err := assemble.New(&assemble.Config{
		Zones:  cfg.ZoneOptions(),
		Order:  cfg.OrderOptions(),
		Logger: log,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := a.Document(ctx, src)
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}

	// Keep stdout clean when it carries the structure
	report := cmd.OutOrStdout()
	if outPath == "-" {
		report = cmd.ErrOrStderr()
		if err := output.Encode(cmd.OutOrStdout(), result.Document, cfg.Format); err != nil {
			return err
		}
	} else {
		if outPath == "" {
			outPath = output.DefaultPath(input, cfg.Format)
		}
		if err := output.WriteFile(outPath, result.Document, cfg.Format); err != nil {
			return err
		}
		log.WithFields("path", outPath).Info("Wrote structure")
	}

	if markupPath != "" {
		if err := writeMarkup(markupPath, input, result.Document, log); err != nil {
			return err
		}
		log.WithFields("path", markupPath).Info("Wrote markup")
	}

	if htmlPath != "" {
		if err := writeParagraphs(htmlPath, result.Document, cfg.HTMLLang, filepath.Base(input), cmd.OutOrStdout()); err != nil {
			return err
		}
		log.WithFields("path", htmlPath).Info("Wrote paragraphs")
	}

	fmt.Fprintln(report)
	fmt.Fprintln(report, result.Summary())
	if outPath != "-" {
		fmt.Fprintf(report, "Structure written to: %s\n", outPath)
	}

	return nil
}

// writeMarkup draws the document; PDF inputs are used as the page background
func writeMarkup(path, input string, doc structure.Document, log *logger.Logger) error {
	opts := markup.DefaultOptions()
	if strings.EqualFold(filepath.Ext(input), ".pdf") {
		opts.Background = input
	}
	return markup.NewRenderer(opts, log).WriteFile(path, doc)
}

// writeParagraphs renders the paragraphs of doc to path ("-" for stdout)
func writeParagraphs(path string, doc structure.Document, lang, title string, stdout io.Writer) error {
	opts := paragraph.Options{Title: title, Lang: lang}
	paragraphs := paragraph.Build(doc)

	if path == "-" {
		return paragraph.RenderHTML(stdout, paragraphs, opts)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create paragraphs file: %w", err)
	}
	if err := paragraph.RenderHTML(f, paragraphs, opts); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close paragraphs file: %w", err)
	}
	return nil
}

package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/platinummonkey/zoneorder/internal/output"
)

// paragraphsCmd represents the paragraphs command
var paragraphsCmd = &cobra.Command{
	Use:   "paragraphs <structure>",
	Short: "Rebuild paragraphs from a structure file as HTML",
	Long: `Paragraphs reads a structure file written by extract and joins its
lines, in reading order, into paragraphs. A line continues the running
paragraph when it keeps the font and size of the previous line and that
line ended in a space or a tab.

Without -o the page is written next to the structure file with an .html
extension.

Examples:
  zoneorder paragraphs report_structure.json
  zoneorder paragraphs report_structure.yaml -o - | less`,
	Args: cobra.ExactArgs(1),
	RunE: runParagraphs,
}

func init() {
	rootCmd.AddCommand(paragraphsCmd)

	paragraphsCmd.Flags().StringP("output", "o", "", "HTML output path (\"-\" for stdout)")
	paragraphsCmd.Flags().String("html-lang", "", "lang attribute of the generated page")
}

func runParagraphs(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup(cmd)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	input := args[0]
	outPath, _ := cmd.Flags().GetString("output")
	if outPath == "" {
		outPath = strings.TrimSuffix(input, filepath.Ext(input)) + ".html"
	}

	doc, err := output.Load(input)
	if err != nil {
		return err
	}

	if err := writeParagraphs(outPath, doc, cfg.HTMLLang, filepath.Base(input), cmd.OutOrStdout()); err != nil {
		return err
	}

	if outPath != "-" {
		log.WithFields("path", outPath, "pages", len(doc)).Info("Wrote paragraphs")
		fmt.Fprintf(cmd.OutOrStdout(), "Paragraphs written to: %s\n", outPath)
	}
	return nil
}

// Package output encodes assembled documents and writes them to disk.
package output

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/platinummonkey/zoneorder/internal/structure"
)

// Output formats
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// ErrUnknownFormat is returned for formats other than json and yaml
var ErrUnknownFormat = errors.New("unknown output format")

// ParseFormat normalizes a format name; "yml" is accepted for yaml
func ParseFormat(format string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatYAML, "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q (expected json or yaml)", ErrUnknownFormat, format)
	}
}

// ContentType returns the media type of a format
func ContentType(format string) string {
	if format == FormatYAML {
		return "application/yaml"
	}
	return "application/json"
}

// Encode writes doc to w. JSON is indented by two spaces and keeps
// non-ASCII text and HTML characters verbatim.
func Encode(w io.Writer, doc structure.Document, format string) error {
	format, err := ParseFormat(format)
	if err != nil {
		return err
	}

	if doc == nil {
		doc = structure.Document{}
	}

	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("failed to encode YAML: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("failed to flush YAML: %w", err)
		}
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("failed to encode JSON: %w", err)
		}
	}
	return nil
}

// WriteFile writes doc to path atomically: the document is written to a
// temporary file next to path and renamed into place.
func WriteFile(path string, doc structure.Document, format string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp output file: %w", err)
	}
	tmpPath := tmp.Name()

	if err := Encode(tmp, doc, format); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp output file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to set output file mode: %w", err)
	}

	// Atomic rename
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp output file: %w", err)
	}

	return nil
}

// Load reads a structure file written by WriteFile; the format follows the extension
func Load(path string) (structure.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open structure file: %w", err)
	}
	defer f.Close()

	return Decode(f, FormatFromPath(path))
}

// Decode reads a document in the given format
func Decode(r io.Reader, format string) (structure.Document, error) {
	format, err := ParseFormat(format)
	if err != nil {
		return nil, err
	}

	var doc structure.Document
	switch format {
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to parse YAML structure: %w", err)
		}
	default:
		if err := json.NewDecoder(r).Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to parse JSON structure: %w", err)
		}
	}
	return doc, nil
}

// FormatFromPath returns yaml for .yaml/.yml files and json otherwise
func FormatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// DefaultPath derives the structure file name from the input file:
// <input without extension>_structure.<format>
func DefaultPath(input, format string) string {
	ext := FormatJSON
	if format == FormatYAML {
		ext = FormatYAML
	}
	base := strings.TrimSuffix(input, filepath.Ext(input))
	return base + "_structure." + ext
}

// Package render writes reconciliation reports and snapshots for people and
// for other tools.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"gopkg.in/yaml.v3"

	"github.com/Tiliavir/trivial-time-reconciler/internal/reconcile"
)

// Format is a report output format.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
	FormatHTML  Format = "html"
)

// Formats lists every supported format.
var Formats = []Format{FormatTable, FormatJSON, FormatYAML, FormatHTML}

// ParseFormat parses a format name. The empty string is not a format.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case FormatTable, FormatJSON, FormatYAML, FormatHTML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unknown format %q (want table, json, yaml or html)", s)
}

// DefaultFormat is table when out is a terminal and JSON otherwise.
func DefaultFormat(out *os.File) Format {
	fd := out.Fd()
	if isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd) {
		return FormatTable
	}
	return FormatJSON
}

// Report writes r to w in format f.
func Report(w io.Writer, r reconcile.Report, f Format) error {
	switch f {
	case FormatTable:
		return ReportTable(w, r)
	case FormatJSON:
		return JSON(w, r)
	case FormatYAML:
		return YAML(w, r)
	case FormatHTML:
		return ReportHTML(w, r)
	}
	return fmt.Errorf("unknown format %q", f)
}

// JSON writes v as indented JSON.
func JSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// YAML writes v as a YAML document.
func YAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

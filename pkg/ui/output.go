// Package ui renders reports for people and for scripts.
package ui

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/srodi/appmem/pkg/types"
)

// Format selects the report encoding.
type Format string

const (
	FormatTable Format = "table"
	FormatYAML  Format = "yaml"
)

// ParseFormat validates an --output value. The empty string means table.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case "", FormatTable:
		return FormatTable, nil
	case FormatYAML, "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("%w: unknown output format %q (want table or yaml)", types.ErrConfig, s)
}

// RenderYAML writes the report as a YAML document.
func RenderYAML(w io.Writer, rep types.Report) error {
	if rep.Rows == nil {
		rep.Rows = []types.RankedRow{}
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(rep); err != nil {
		return fmt.Errorf("encoding yaml report: %w", err)
	}
	return enc.Close()
}

// Render writes rep in the requested format.
func Render(w io.Writer, format Format, rep types.Report, opts TableOptions) error {
	if format == FormatYAML {
		return RenderYAML(w, rep)
	}
	return RenderTable(w, rep, opts)
}

// isTerminal and terminalSize allow tests to stub terminal detection.
var (
	isTerminal   = term.IsTerminal
	terminalSize = term.GetSize
)

// DetectTerminal reports whether fd is a terminal and its width in columns.
// The width is zero when fd is not a terminal or its size is unknown.
func DetectTerminal(fd int) (bool, int) {
	if !isTerminal(fd) {
		return false, 0
	}
	width, _, err := terminalSize(fd)
	if err != nil {
		return true, 0
	}
	return true, width
}

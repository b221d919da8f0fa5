// Package report encodes score summaries for files and terminals.
//
// [Encode] writes any value with json, yaml and toml struct tags in one of
// the structured formats. [Table] draws measures as a bordered terminal
// table.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"gopkg.in/yaml.v3"

	apperr "github.com/matzehuels/netalign/pkg/errors"
	"github.com/matzehuels/netalign/pkg/score"
)

// Structured formats.
const (
	FormatJSON  = "json"
	FormatYAML  = "yaml"
	FormatTOML  = "toml"
	FormatTable = "table"
)

// Formats lists the formats [Encode] accepts.
var Formats = []string{FormatJSON, FormatYAML, FormatTOML}

// IsFormat reports whether [Encode] handles f.
func IsFormat(f string) bool { return slices.Contains(Formats, f) }

// Encode writes v to w in the given format.
func Encode(w io.Writer, format string, v any) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	case FormatTOML:
		if err := toml.NewEncoder(w).Encode(v); err != nil {
			return fmt.Errorf("encode toml: %w", err)
		}
		return nil
	}
	return apperr.New(apperr.ErrCodeInvalidFormat, "unknown report format %q (must be one of: json, yaml, toml)", format)
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("36")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	numStyle    = cellStyle.Align(lipgloss.Right)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// Table draws one row per measure: short name, long name and value.
func Table(measures []score.Measure) string {
	rows := make([][]string, len(measures))
	for i, m := range measures {
		rows[i] = []string{m.Name, m.Label(), strconv.FormatFloat(m.Value, 'f', 4, 64)}
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers("MEASURE", "NAME", "VALUE").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 2:
				return numStyle
			}
			return cellStyle
		}).
		String()
}

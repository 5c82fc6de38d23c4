// Package render writes concordance reports and adjusted rank matrices for
// people (styled text) and for tools (JSON, YAML).
package render

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/oplozada/estadistica/internal/domain/types"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"gopkg.in/yaml.v3"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Verdict lines of the text report.
const (
	VerdictConcordant    = "concordance is significant (reject H0)"
	VerdictNotConcordant = "no significant concordance (H0 not rejected)"
)

// ErrUnknownFormat is returned for an output format other than text, json or yaml.
var ErrUnknownFormat = errors.New("unknown output format")

// Report is one evaluation ready to be written.
type Report struct {
	Title  string       `json:"title,omitempty" yaml:"title,omitempty"`
	Source string       `json:"source,omitempty" yaml:"source,omitempty"`
	Order  string       `json:"rank_order,omitempty" yaml:"rank_order,omitempty"`
	Result types.Result `json:"result" yaml:"result"`
}

// Formats lists the accepted format names.
func Formats() []string {
	return []string{FormatText, FormatJSON, FormatYAML}
}

// Write renders report to w in the given format.
func Write(w io.Writer, format string, report Report) error { //nolint:gocritic // hugeParam: report is read only
	switch strings.ToLower(format) {
	case FormatText, "":
		return writeText(w, report)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return fmt.Errorf("encode json report: %w", err)
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			return fmt.Errorf("encode yaml report: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("encode yaml report: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// Verdict returns the verdict line for a result.
func Verdict(res types.Result) string { //nolint:gocritic // hugeParam: result is read only
	if res.Concordant {
		return VerdictConcordant
	}
	return VerdictNotConcordant
}

func writeText(w io.Writer, report Report) error { //nolint:gocritic // hugeParam: report is read only
	r := lipgloss.NewRenderer(w)
	title := r.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	label := r.NewStyle().Width(28).Foreground(lipgloss.Color("#AAAAAA"))
	good := r.NewStyle().Bold(true).Foreground(lipgloss.Color("#3FB950"))
	bad := r.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF6B6B"))

	res := report.Result
	heading := report.Title
	if heading == "" {
		heading = "Kendall's coefficient of concordance"
	}

	rows := [][2]string{
		{"objects (N)", strconv.Itoa(res.N)},
		{"raters (k)", strconv.Itoa(res.Raters)},
		{"degrees of freedom", strconv.Itoa(res.DegreesOfFreedom)},
		{"W", fmt.Sprintf("%.4f", res.W)},
		{"K (chi-square)", fmt.Sprintf("%.4f", res.K)},
		{fmt.Sprintf("critical value (alpha=%g)", res.Alpha), fmt.Sprintf("%.4f", res.Critical)},
		{"p-value", fmt.Sprintf("%.14f", res.PValue)},
	}
	if report.Source != "" {
		rows = append([][2]string{{"source", report.Source}}, rows...)
	}
	if report.Order != "" {
		rows = append(rows, [2]string{"rank order", report.Order})
	}

	lines := []string{title.Render(heading)}
	for _, row := range rows {
		lines = append(lines, label.Render(row[0])+row[1])
	}
	if res.Concordant {
		lines = append(lines, good.Render(Verdict(res)))
	} else {
		lines = append(lines, bad.Render(Verdict(res)))
	}

	if _, err := io.WriteString(w, lipgloss.JoinVertical(lipgloss.Left, lines...)+"\n"); err != nil {
		return fmt.Errorf("write text report: %w", err)
	}
	return nil
}

// WriteMatrix writes adjusted rows as a table with one line per rater, one
// column per object and a trailing T column.
func WriteMatrix(w io.Writer, matrix []types.AdjustedRow) error {
	objects := 0
	for _, row := range matrix {
		objects = max(objects, row.Objects())
	}

	headers := make([]string, 0, objects+2)
	headers = append(headers, "rater")
	for j := 1; j <= objects; j++ {
		headers = append(headers, "o"+strconv.Itoa(j))
	}
	headers = append(headers, "T")

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...)
	for i, row := range matrix {
		cells := make([]string, 0, objects+2)
		cells = append(cells, strconv.Itoa(i+1))
		ranks := row.Ranks()
		for j := 0; j < objects; j++ {
			if j < len(ranks) {
				cells = append(cells, formatRank(ranks[j]))
			} else {
				cells = append(cells, "")
			}
		}
		cells = append(cells, formatRank(row.TieCorrection()))
		t.Row(cells...)
	}

	if _, err := io.WriteString(w, t.String()+"\n"); err != nil {
		return fmt.Errorf("write rank matrix: %w", err)
	}
	return nil
}

func formatRank(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

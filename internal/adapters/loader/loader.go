// Package loader turns delimited text and decoded JSON cells into score rows.
// Each record is one rater; each column is one object.
package loader

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/oplozada/estadistica/internal/domain/types"
)

const (
	opParseCSV   = "loader.csv"
	opFromValues = "loader.values"
)

// ErrEmpty reports input without any score row.
var ErrEmpty = fmt.Errorf("%w: no score rows", types.ErrInvalidInput)

// Option configures ParseCSV.
type Option func(*options)

type options struct {
	comma   rune
	comment rune
	header  bool
}

// WithComma sets the field delimiter. Defaults to ','.
func WithComma(r rune) Option {
	return func(o *options) {
		if r != 0 {
			o.comma = r
		}
	}
}

// WithComment sets the rune that starts a comment line. Disabled by default.
func WithComment(r rune) Option {
	return func(o *options) {
		o.comment = r
	}
}

// WithHeader skips the first record when set.
func WithHeader(header bool) Option {
	return func(o *options) {
		o.header = header
	}
}

// ParseCSV reads one score row per record. Rows may differ in length; the
// evaluator reports the mismatch. Cells that are blank, non-numeric or not
// finite fail with types.ErrInvalidInput naming the 1-based row and column.
func ParseCSV(r io.Reader, opts ...Option) ([]types.ScoreRow, error) {
	o := options{comma: ','}
	for _, opt := range opts {
		opt(&o)
	}

	reader := csv.NewReader(r)
	reader.Comma = o.comma
	reader.Comment = o.comment
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var rows []types.ScoreRow
	skipHeader := o.header
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				return nil, &types.InputError{Op: opParseCSV, Row: pe.Line, Position: pe.Column, Reason: pe.Err.Error()}
			}
			return nil, fmt.Errorf("%s: read: %w", opParseCSV, err)
		}
		if skipHeader {
			skipHeader = false
			continue
		}

		row := make(types.ScoreRow, len(record))
		for j, cell := range record {
			v, err := parseCell(cell)
			if err != nil {
				return nil, &types.InputError{Op: opParseCSV, Row: len(rows) + 1, Position: j + 1, Reason: err.Error()}
			}
			row[j] = v
		}
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return nil, ErrEmpty
	}
	return rows, nil
}

func parseCell(cell string) (float64, error) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return 0, errors.New("missing value")
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-numeric value %q", cell)
	}
	return v, nil
}

// FromValues converts JSON-decoded cells into score rows. Numbers decoded as
// float64 or json.Number and Go integer kinds are accepted; anything else
// (strings, booleans, null, nested values) is a non-numeric entry.
func FromValues(values [][]any) ([]types.ScoreRow, error) {
	if len(values) == 0 {
		return nil, ErrEmpty
	}
	rows := make([]types.ScoreRow, len(values))
	for i, cells := range values {
		row := make(types.ScoreRow, len(cells))
		for j, cell := range cells {
			v, ok := number(cell)
			if !ok {
				return nil, &types.InputError{Op: opFromValues, Row: i + 1, Position: j + 1,
					Reason: fmt.Sprintf("non-numeric value %v (%T)", cell, cell)}
			}
			row[j] = v
		}
		rows[i] = row
	}
	return rows, nil
}

// FromRow converts a single JSON-decoded row.
func FromRow(cells []any) (types.ScoreRow, error) {
	rows, err := FromValues([][]any{cells})
	if err != nil {
		var ie *types.InputError
		if errors.As(err, &ie) {
			ie.Row = 0
		}
		return nil, err
	}
	return rows[0], nil
}

func number(cell any) (float64, bool) {
	var v float64
	switch n := cell.(type) {
	case float64:
		v = n
	case float32:
		v = float64(n)
	case int:
		v = float64(n)
	case int64:
		v = float64(n)
	case int32:
		v = float64(n)
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		v = f
	default:
		return 0, false
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

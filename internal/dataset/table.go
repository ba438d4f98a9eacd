// Package dataset reads the input tables from CSV and writes the output
// snapshot tables back to CSV.
package dataset

import (
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/fortuna/moneta/internal/valuation"
)

// ErrMissingColumn wraps header failures so callers can test for them
// without inspecting the column.
var ErrMissingColumn = errors.New("missing required column")

var dateLayouts = []string{"2006-01-02", "2006-01-02T15:04:05", time.RFC3339, "01/02/2006"}

// table is a parsed CSV with header lookup.
type table struct {
	name    string
	columns map[string]int
	rows    [][]string
}

func readTable(r io.Reader, name string, required ...string) (*table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%s: %w", name, valuation.ErrEmptyInput)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s header: %w", name, err)
	}

	t := &table{name: name, columns: make(map[string]int, len(header))}
	for i, h := range header {
		t.columns[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	for _, col := range required {
		if _, ok := t.columns[col]; !ok {
			return nil, fmt.Errorf("%w: %w", ErrMissingColumn, &valuation.ColumnError{Table: name, Column: col, Row: -1})
		}
	}

	t.rows, err = reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s rows: %w", name, err)
	}
	if len(t.rows) == 0 {
		return nil, fmt.Errorf("%s: %w", name, valuation.ErrEmptyInput)
	}
	return t, nil
}

// record is one data row of a table.
type record struct {
	t      *table
	index  int
	fields []string
}

func (t *table) each(fn func(rec record) error) error {
	for i, fields := range t.rows {
		if err := fn(record{t: t, index: i, fields: fields}); err != nil {
			return err
		}
	}
	return nil
}

func (r record) str(col string) string {
	i, ok := r.t.columns[col]
	if !ok || i >= len(r.fields) {
		return ""
	}
	return strings.TrimSpace(r.fields[i])
}

func (r record) columnError(col string) error {
	return &valuation.ColumnError{Table: r.t.name, Column: col, Row: r.index}
}

// requiredStr returns a non-blank string or a ColumnError.
func (r record) requiredStr(col string) (string, error) {
	v := r.str(col)
	if v == "" {
		return "", r.columnError(col)
	}
	return v, nil
}

// requiredInt parses an integer id. Float forms like "1628369.0" are accepted.
func (r record) requiredInt(col string) (int64, error) {
	v := r.str(col)
	if v == "" {
		return 0, r.columnError(col)
	}
	if n, err := strconv.ParseInt(v, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, r.columnError(col)
	}
	return int64(f), nil
}

// float reads an optional numeric column. Blank or unparseable values are
// missing, not errors.
func (r record) float(col string) sql.NullFloat64 {
	v := strings.NewReplacer("$", "", ",", "", "%", "").Replace(r.str(col))
	if v == "" {
		return sql.NullFloat64{}
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: f, Valid: true}
}

func (r record) int(col string) sql.NullInt64 {
	f := r.float(col)
	if !f.Valid {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(f.Float64), Valid: true}
}

// requiredDate parses a date in any of dateLayouts. Blank or unparseable
// values are a ColumnError.
func (r record) requiredDate(col string) (time.Time, error) {
	v := r.str(col)
	if v == "" {
		return time.Time{}, r.columnError(col)
	}
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, v); err == nil {
			return d, nil
		}
	}
	return time.Time{}, r.columnError(col)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatNullFloat(v sql.NullFloat64) string {
	if !v.Valid {
		return ""
	}
	return formatFloat(v.Float64)
}

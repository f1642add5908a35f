// Package market holds the tabular data model, the data-source fallback
// dispatcher, and the service layer that maps tool operations onto the
// upstream data-source clients.
package market

import (
	"fmt"
	"strconv"
)

// Table is the tabular value exchanged between data-source clients, the
// fallback dispatcher, and the output encoders. Columns are ordered. Cells
// are plain Go values (string, float64, int, bool, time.Time or nil).
type Table struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// NewTable creates an empty table with the given column names.
func NewTable(columns ...string) *Table {
	return &Table{Columns: columns}
}

// Append adds a row. Short rows are padded with nil, long rows truncated,
// so a malformed upstream record never skews the column alignment.
func (t *Table) Append(cells ...any) {
	row := make([]any, len(t.Columns))
	copy(row, cells)
	t.Rows = append(t.Rows, row)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Empty reports whether the table is nil or has no rows.
func (t *Table) Empty() bool {
	return t.Len() == 0
}

// Head returns a table with at most the first n rows.
func (t *Table) Head(n int) *Table {
	if n < 0 || n >= len(t.Rows) {
		return t
	}
	return &Table{Columns: t.Columns, Rows: t.Rows[:n]}
}

// Tail returns a table with at most the last n rows.
func (t *Table) Tail(n int) *Table {
	if n < 0 || n >= len(t.Rows) {
		return t
	}
	return &Table{Columns: t.Columns, Rows: t.Rows[len(t.Rows)-n:]}
}

// ColumnIndex returns the index of the named column, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Floats extracts the named column as float64 values. String and integer
// cells are converted; nil cells become 0.
func (t *Table) Floats(name string) ([]float64, error) {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return nil, fmt.Errorf("column %q not found", name)
	}

	out := make([]float64, len(t.Rows))
	for i, row := range t.Rows {
		v, err := toFloat(row[idx])
		if err != nil {
			return nil, fmt.Errorf("column %q row %d: %w", name, i, err)
		}
		out[i] = v
	}
	return out, nil
}

// AddFloatColumn appends a float64 column. The value count must match the
// row count.
func (t *Table) AddFloatColumn(name string, values []float64) error {
	if len(values) != len(t.Rows) {
		return fmt.Errorf("column %q has %d values for %d rows", name, len(values), len(t.Rows))
	}
	t.Columns = append(t.Columns, name)
	for i := range t.Rows {
		t.Rows[i] = append(t.Rows[i], values[i])
	}
	return nil
}

// ConcatPart labels a table for Concat.
type ConcatPart struct {
	Label string
	Table *Table
}

// Concat merges labeled tables row-wise into a single table. Columns are
// the union of all part columns in first-seen order, followed by a
// discriminator column holding each part's label. Cells absent from a part
// are nil. Empty parts are skipped.
func Concat(labelColumn string, parts []ConcatPart) *Table {
	var columns []string
	index := map[string]int{}
	for _, p := range parts {
		if p.Table.Empty() {
			continue
		}
		for _, c := range p.Table.Columns {
			if _, ok := index[c]; !ok {
				index[c] = len(columns)
				columns = append(columns, c)
			}
		}
	}

	out := NewTable(append(columns, labelColumn)...)
	for _, p := range parts {
		if p.Table.Empty() {
			continue
		}
		for _, row := range p.Table.Rows {
			merged := make([]any, len(columns)+1)
			for i, c := range p.Table.Columns {
				if i < len(row) {
					merged[index[c]] = row[i]
				}
			}
			merged[len(columns)] = p.Label
			out.Rows = append(out.Rows, merged)
		}
	}
	return out
}

func toFloat(v any) (float64, error) {
	switch x := v.(type) {
	case nil:
		return 0, nil
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case string:
		if x == "" || x == "-" || x == "N/A" {
			return 0, nil
		}
		return strconv.ParseFloat(x, 64)
	default:
		return 0, fmt.Errorf("cannot convert %T to float64", v)
	}
}

package domain

import (
	"fmt"
	"sort"
	"strconv"
	"time"
)

// Table is an ordered grid of scalar values with unique column names.
// Cell values are string, float64, int64, bool, time.Time or nil.
// Row order is insertion order.
type Table struct {
	columns []string
	index   map[string]int
	rows    [][]any
}

// NewTable creates an empty table with the given columns.
// Duplicate names are ignored after their first occurrence.
func NewTable(columns ...string) *Table {
	t := &Table{index: make(map[string]int)}
	for _, c := range columns {
		t.AddColumn(c)
	}
	return t
}

// Columns returns a copy of the column names in order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Width returns the number of columns.
func (t *Table) Width() int {
	return len(t.columns)
}

// IsEmpty reports whether the table has no rows.
func (t *Table) IsEmpty() bool {
	return t == nil || len(t.rows) == 0
}

// HasColumn reports whether a column exists.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// AddColumn appends a column, back-filling existing rows with nil.
// Returns false if the column already exists.
func (t *Table) AddColumn(name string) bool {
	if _, ok := t.index[name]; ok {
		return false
	}
	t.index[name] = len(t.columns)
	t.columns = append(t.columns, name)
	for i := range t.rows {
		t.rows[i] = append(t.rows[i], nil)
	}
	return true
}

// AppendRow appends a row whose values line up with Columns.
func (t *Table) AppendRow(values ...any) error {
	if len(values) != len(t.columns) {
		return fmt.Errorf("%w: row has %d values, table has %d columns",
			ErrValidation, len(values), len(t.columns))
	}
	row := make([]any, len(values))
	copy(row, values)
	t.rows = append(t.rows, row)
	return nil
}

// AppendRecord appends a row keyed by column name.
// Unseen keys become new columns, added in sorted key order.
func (t *Table) AppendRecord(record map[string]any) {
	keys := make([]string, 0, len(record))
	for k := range record {
		if !t.HasColumn(k) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	t.AppendOrderedRecord(keys, record)
}

// AppendOrderedRecord appends a row keyed by column name.
// Unseen keys become new columns in the order given by keys.
func (t *Table) AppendOrderedRecord(keys []string, record map[string]any) {
	for _, k := range keys {
		t.AddColumn(k)
	}
	for k := range record {
		t.AddColumn(k)
	}
	row := make([]any, len(t.columns))
	for k, v := range record {
		row[t.index[k]] = v
	}
	t.rows = append(t.rows, row)
}

// Row returns a copy of row i.
func (t *Table) Row(i int) []any {
	out := make([]any, len(t.rows[i]))
	copy(out, t.rows[i])
	return out
}

// Value returns the cell at row i in the named column.
func (t *Table) Value(i int, column string) any {
	j, ok := t.index[column]
	if !ok {
		return nil
	}
	return t.rows[i][j]
}

// Set writes the cell at row i in the named column.
func (t *Table) Set(i int, column string, v any) error {
	j, ok := t.index[column]
	if !ok {
		return fmt.Errorf("%w: column %q", ErrNotFound, column)
	}
	t.rows[i][j] = v
	return nil
}

// Column returns the values of the named column.
func (t *Table) Column(name string) ([]any, bool) {
	j, ok := t.index[name]
	if !ok {
		return nil, false
	}
	out := make([]any, len(t.rows))
	for i, row := range t.rows {
		out[i] = row[j]
	}
	return out, true
}

// Record returns row i keyed by column name.
func (t *Table) Record(i int) map[string]any {
	rec := make(map[string]any, len(t.columns))
	for j, c := range t.columns {
		rec[c] = t.rows[i][j]
	}
	return rec
}

// Filter returns a new table holding the rows for which keep returns true.
func (t *Table) Filter(keep func(i int) bool) *Table {
	out := NewTable(t.columns...)
	for i, row := range t.rows {
		if keep(i) {
			r := make([]any, len(row))
			copy(r, row)
			out.rows = append(out.rows, r)
		}
	}
	return out
}

// RenameColumns replaces every column name. Names must stay unique.
func (t *Table) RenameColumns(names []string) error {
	if len(names) != len(t.columns) {
		return fmt.Errorf("%w: %d names for %d columns", ErrValidation, len(names), len(t.columns))
	}
	index := make(map[string]int, len(names))
	for i, n := range names {
		if _, dup := index[n]; dup {
			return fmt.Errorf("%w: duplicate column %q", ErrValidation, n)
		}
		index[n] = i
	}
	t.columns = append([]string(nil), names...)
	t.index = index
	return nil
}

// Concat stacks tables vertically. The result holds the union of columns
// in first-seen order; cells missing from a part are nil.
func Concat(tables ...*Table) *Table {
	out := NewTable()
	for _, part := range tables {
		if part == nil {
			continue
		}
		for _, c := range part.columns {
			out.AddColumn(c)
		}
	}
	for _, part := range tables {
		if part == nil {
			continue
		}
		for _, row := range part.rows {
			r := make([]any, len(out.columns))
			for j, c := range part.columns {
				r[out.index[c]] = row[j]
			}
			out.rows = append(out.rows, r)
		}
	}
	return out
}

// NamedTable pairs a table with a sheet or file name.
type NamedTable struct {
	Name  string
	Table *Table
}

// FormatValue renders a cell as text.
// nil renders as the empty string.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(x, 10)
	case int:
		return strconv.Itoa(x)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		return x.Format("2006-01-02 15:04:05")
	default:
		return fmt.Sprint(x)
	}
}

// Package dataset holds the in-memory table the cleaners operate on: an
// ordered column list, rows of typed cells, and a row index. It also owns the
// column normalizer, the sparse/duplicate row filters, and the CSV/XLSX
// loaders used by the CLI.
//
// A Dataset is not safe for concurrent use. Each stage takes it for the
// duration of one call and mutates it in place.
package dataset

import (
	"fmt"
	"strings"
)

// Dataset is an ordered set of named columns over rows of cells.
type Dataset struct {
	columns   []string
	rows      [][]Value
	index     []int
	nextLabel int
}

// New creates an empty dataset with the given columns.
func New(columns ...string) *Dataset {
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Dataset{columns: cols}
}

// Append adds a row. The row receives the next index label.
func (d *Dataset) Append(cells ...Value) error {
	if len(cells) != len(d.columns) {
		return fmt.Errorf("append row %d: got %d cells for %d columns: %w", len(d.rows), len(cells), len(d.columns), ErrRowWidth)
	}
	row := make([]Value, len(cells))
	copy(row, cells)
	d.rows = append(d.rows, row)
	d.index = append(d.index, d.nextLabel)
	d.nextLabel++
	return nil
}

// Columns returns a copy of the column names in order.
func (d *Dataset) Columns() []string {
	out := make([]string, len(d.columns))
	copy(out, d.columns)
	return out
}

// Len returns the number of rows.
func (d *Dataset) Len() int { return len(d.rows) }

// Width returns the number of columns.
func (d *Dataset) Width() int { return len(d.columns) }

// Index returns a copy of the row labels. Labels start contiguous at load time
// and keep gaps after FilterSparse until Deduplicate renumbers them.
func (d *Dataset) Index() []int {
	out := make([]int, len(d.index))
	copy(out, d.index)
	return out
}

// ColumnIndex returns the position of the first column called name.
func (d *Dataset) ColumnIndex(name string) (int, error) {
	for i, c := range d.columns {
		if c == name {
			return i, nil
		}
	}
	return -1, &ColumnNotFoundError{Column: name}
}

// Column returns a snapshot of a column's cells.
func (d *Dataset) Column(name string) ([]Value, error) {
	j, err := d.ColumnIndex(name)
	if err != nil {
		return nil, err
	}
	out := make([]Value, len(d.rows))
	for i, row := range d.rows {
		out[i] = row[j]
	}
	return out, nil
}

// Row returns a copy of the i-th row (by position, not label).
func (d *Dataset) Row(i int) []Value {
	out := make([]Value, len(d.columns))
	copy(out, d.rows[i])
	return out
}

// Cell returns the value at row position i in the named column.
func (d *Dataset) Cell(i int, column string) (Value, error) {
	j, err := d.ColumnIndex(column)
	if err != nil {
		return Missing, err
	}
	if i < 0 || i >= len(d.rows) {
		return Missing, fmt.Errorf("row %d out of range [0,%d)", i, len(d.rows))
	}
	return d.rows[i][j], nil
}

// UpdateColumn rewrites every cell of a column with fn(position, current).
func (d *Dataset) UpdateColumn(column string, fn func(i int, v Value) Value) error {
	j, err := d.ColumnIndex(column)
	if err != nil {
		return err
	}
	for i, row := range d.rows {
		row[j] = fn(i, row[j])
	}
	return nil
}

// RenameColumn renames the first column called from. It reports whether a
// column was renamed.
func (d *Dataset) RenameColumn(from, to string) bool {
	j, err := d.ColumnIndex(from)
	if err != nil {
		return false
	}
	d.columns[j] = to
	return true
}

// NullCountsByRow returns the number of missing cells per row position.
func (d *Dataset) NullCountsByRow() []int {
	out := make([]int, len(d.rows))
	for i, row := range d.rows {
		for _, v := range row {
			if v.IsMissing() {
				out[i]++
			}
		}
	}
	return out
}

// NullCountsByColumn returns the number of missing cells per column, aligned
// with Columns().
func (d *Dataset) NullCountsByColumn() []int {
	out := make([]int, len(d.columns))
	for _, row := range d.rows {
		for j, v := range row {
			if v.IsMissing() {
				out[j]++
			}
		}
	}
	return out
}

// Head returns up to n rows rendered as strings, for previews.
func (d *Dataset) Head(n int) [][]string {
	if n > len(d.rows) {
		n = len(d.rows)
	}
	out := make([][]string, 0, n)
	for _, row := range d.rows[:n] {
		rec := make([]string, len(row))
		for j, v := range row {
			rec[j] = v.String()
		}
		out = append(out, rec)
	}
	return out
}

func (d *Dataset) rowKey(i int) string {
	var b strings.Builder
	for _, v := range d.rows[i] {
		v.key(&b)
	}
	return b.String()
}

func (d *Dataset) keepRows(keep []bool) int {
	rows := d.rows[:0]
	index := d.index[:0]
	removed := 0
	for i, row := range d.rows {
		if !keep[i] {
			removed++
			continue
		}
		rows = append(rows, row)
		index = append(index, d.index[i])
	}
	for i := len(rows); i < len(d.rows); i++ {
		d.rows[i] = nil
	}
	d.rows = rows
	d.index = index
	return removed
}

func (d *Dataset) keepColumns(keep []bool) int {
	removed := 0
	cols := make([]string, 0, len(d.columns))
	for j, c := range d.columns {
		if keep[j] {
			cols = append(cols, c)
		} else {
			removed++
		}
	}
	if removed == 0 {
		return 0
	}
	for i, row := range d.rows {
		nr := make([]Value, 0, len(cols))
		for j, v := range row {
			if keep[j] {
				nr = append(nr, v)
			}
		}
		d.rows[i] = nr
	}
	d.columns = cols
	return removed
}

func (d *Dataset) resetIndex() {
	for i := range d.index {
		d.index[i] = i
	}
	d.nextLabel = len(d.index)
}

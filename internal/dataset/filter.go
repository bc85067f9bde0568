package dataset

// FilterResult reports what FilterSparse removed.
type FilterResult struct {
	RowsRemoved    int `json:"rows_removed"`
	ColumnsRemoved int `json:"columns_removed"`
}

// FilterSparse drops rows with fewer than rowMinNonNull non-missing cells,
// then drops columns with fewer than colMinNonNull non-missing cells counted
// over the surviving rows. Row labels are kept as-is.
func FilterSparse(d *Dataset, rowMinNonNull, colMinNonNull int) FilterResult {
	var res FilterResult

	keep := make([]bool, len(d.rows))
	for i, nulls := range d.NullCountsByRow() {
		keep[i] = len(d.columns)-nulls >= rowMinNonNull
	}
	res.RowsRemoved = d.keepRows(keep)

	keepCols := make([]bool, len(d.columns))
	for j, nulls := range d.NullCountsByColumn() {
		keepCols[j] = len(d.rows)-nulls >= colMinNonNull
	}
	res.ColumnsRemoved = d.keepColumns(keepCols)
	return res
}

// DuplicateCount returns how many rows repeat an earlier row exactly.
func DuplicateCount(d *Dataset) int {
	n := 0
	for _, dup := range duplicated(d) {
		if dup {
			n++
		}
	}
	return n
}

// Deduplicate removes rows equal to an earlier row across all columns,
// keeping the first occurrence, and renumbers the index from zero. It
// returns the number of rows removed.
func Deduplicate(d *Dataset) int {
	dups := duplicated(d)
	keep := make([]bool, len(dups))
	for i, dup := range dups {
		keep[i] = !dup
	}
	removed := d.keepRows(keep)
	d.resetIndex()
	return removed
}

func duplicated(d *Dataset) []bool {
	seen := make(map[string]struct{}, len(d.rows))
	out := make([]bool, len(d.rows))
	for i := range d.rows {
		k := d.rowKey(i)
		if _, ok := seen[k]; ok {
			out[i] = true
			continue
		}
		seen[k] = struct{}{}
	}
	return out
}

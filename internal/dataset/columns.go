package dataset

import "strings"

// Rename maps a normalized column name to its final name.
type Rename struct {
	From string `mapstructure:"from" yaml:"from" validate:"required"`
	To   string `mapstructure:"to" yaml:"to" validate:"required"`
}

// NormalizeColumnName trims, replaces spaces with underscores, and lowercases.
func NormalizeColumnName(name string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), " ", "_"))
}

// NormalizeColumns rewrites every column name with NormalizeColumnName and
// then applies renames in order. A rename whose From is not among the
// normalized names is skipped. It returns the resulting column list.
func NormalizeColumns(d *Dataset, renames []Rename) []string {
	for j, c := range d.columns {
		d.columns[j] = NormalizeColumnName(c)
	}
	for _, r := range renames {
		d.RenameColumn(r.From, r.To)
	}
	return d.Columns()
}

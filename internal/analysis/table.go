package analysis

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/KaramelBytes/incidentclean-cli/internal/dataset"
)

// Options controls the dataset overview.
type Options struct {
	// HeadRows is how many leading rows to include in the report.
	HeadRows int
	// TopValues caps the listed values per categorical column.
	TopValues int
	// Outlier detection via robust Z-score (MAD). If Outliers is true, counts |z|>threshold.
	Outliers         bool
	OutlierThreshold float64
}

// DefaultOptions returns reasonable defaults for the overview.
func DefaultOptions() Options {
	return Options{
		HeadRows:         10,
		TopValues:        8,
		Outliers:         true,
		OutlierThreshold: 3.5,
	}
}

// Report is a markdown-friendly overview of a dataset.
type Report struct {
	Name       string          `json:"name"`
	Rows       int             `json:"rows"`
	Cols       []ColumnSummary `json:"columns"`
	Head       [][]string      `json:"head"`
	RowNulls   []NullBucket    `json:"row_nulls"`
	Duplicates int             `json:"duplicates"`
	Warnings   []string        `json:"warnings,omitempty"`
}

// ColumnSummary captures inferred kind and statistics per column.
type ColumnSummary struct {
	Name    string `json:"name"`
	Kind    string `json:"kind"` // numeric|datetime|categorical|text|mixed|empty
	NonNull int    `json:"non_null"`
	Missing int    `json:"missing"`
	Unique  int    `json:"unique"`
	// Numeric stats
	Min  float64 `json:"min,omitempty"`
	Max  float64 `json:"max,omitempty"`
	Mean float64 `json:"mean,omitempty"`
	Std  float64 `json:"std,omitempty"`
	// Outliers (robust Z via MAD)
	OutliersCount    int     `json:"outliers,omitempty"`
	OutliersMaxAbsZ  float64 `json:"outliers_max_abs_z,omitempty"`
	OutlierThreshold float64 `json:"outlier_threshold,omitempty"`
	// Categorical top values
	TopValues    []CategoryCount `json:"top_values,omitempty"`
	ExampleTexts []string        `json:"examples,omitempty"`
}

type CategoryCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// NullBucket says how many rows have exactly Missing missing cells.
type NullBucket struct {
	Missing int `json:"missing"`
	Rows    int `json:"rows"`
}

// Overview summarizes ds without modifying it.
func Overview(ds *dataset.Dataset, name string, opt Options) *Report {
	rep := &Report{Name: name, Rows: ds.Len()}
	headRows := opt.HeadRows
	if headRows <= 0 {
		headRows = 10
	}
	topN := opt.TopValues
	if topN <= 0 {
		topN = 8
	}
	rep.Head = ds.Head(headRows)
	rep.Duplicates = dataset.DuplicateCount(ds)
	rep.RowNulls = nullHistogram(ds.NullCountsByRow())

	for _, col := range ds.Columns() {
		vals, err := ds.Column(col)
		if err != nil {
			continue
		}
		rep.Cols = append(rep.Cols, summarize(col, vals, topN, opt))
	}
	if rep.Duplicates > 0 {
		rep.Warnings = append(rep.Warnings, fmt.Sprintf("%d duplicate row(s); clean removes them", rep.Duplicates))
	}
	return rep
}

func summarize(name string, vals []dataset.Value, topN int, opt Options) ColumnSummary {
	s := ColumnSummary{Name: name}
	var (
		nums     []float64
		mean, m2 float64
		lo, hi   = math.Inf(1), math.Inf(-1)
		dtCnt    int
		cats     = map[string]int{}
		exText   []string
	)
	for _, v := range vals {
		if v.IsMissing() {
			s.Missing++
			continue
		}
		s.NonNull++
		cats[v.String()]++
		if x, ok := v.Number(); ok {
			// Welford update
			nums = append(nums, x)
			delta := x - mean
			mean += delta / float64(len(nums))
			m2 += delta * (x - mean)
			lo = math.Min(lo, x)
			hi = math.Max(hi, x)
			continue
		}
		t, _ := v.Text()
		if _, ok := parseTimeMaybe(strings.TrimSpace(t)); ok {
			dtCnt++
			continue
		}
		if len(exText) < 3 {
			exText = append(exText, t)
		}
	}
	s.Unique = len(cats)

	switch {
	case s.NonNull == 0:
		s.Kind = "empty"
	case len(nums) == s.NonNull:
		s.Kind = "numeric"
		s.Min, s.Max, s.Mean = lo, hi, mean
		if len(nums) > 1 {
			s.Std = math.Sqrt(m2 / float64(len(nums)-1))
		}
		if opt.Outliers && len(nums) >= 8 {
			s.OutliersCount, s.OutliersMaxAbsZ, s.OutlierThreshold = outliers(nums, opt.OutlierThreshold)
		}
	case dtCnt == s.NonNull:
		s.Kind = "datetime"
	case s.Unique <= maxCategories(s.NonNull):
		s.Kind = "categorical"
		if len(nums) > 0 {
			s.Kind = "mixed"
		}
		s.TopValues = topValues(cats, topN)
	default:
		s.Kind = "text"
		s.ExampleTexts = exText
		if len(nums) > 0 || dtCnt > 0 {
			s.Kind = "mixed"
			s.TopValues = topValues(cats, topN)
		}
	}
	return s
}

// maxCategories is the distinct-value ceiling for a column to count as
// categorical rather than free text.
func maxCategories(nonNull int) int {
	return max(20, nonNull/2)
}

func topValues(cats map[string]int, n int) []CategoryCount {
	tops := make([]CategoryCount, 0, len(cats))
	for k, v := range cats {
		tops = append(tops, CategoryCount{Value: k, Count: v})
	}
	sort.Slice(tops, func(i, j int) bool {
		if tops[i].Count == tops[j].Count {
			return tops[i].Value < tops[j].Value
		}
		return tops[i].Count > tops[j].Count
	})
	if len(tops) > n {
		tops = tops[:n]
	}
	return tops
}

func outliers(vals []float64, thr float64) (int, float64, float64) {
	if thr <= 0 {
		thr = 3.5
	}
	median, mad := medianMAD(vals)
	var cnt int
	maxAbsZ := 0.0
	if mad > 0 {
		for _, v := range vals {
			az := math.Abs(0.6745 * (v - median) / mad)
			if az > thr {
				cnt++
			}
			if az > maxAbsZ {
				maxAbsZ = az
			}
		}
	}
	return cnt, maxAbsZ, thr
}

func nullHistogram(perRow []int) []NullBucket {
	counts := map[int]int{}
	for _, n := range perRow {
		counts[n]++
	}
	out := make([]NullBucket, 0, len(counts))
	for k, v := range counts {
		out = append(out, NullBucket{Missing: k, Rows: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Missing < out[j].Missing })
	return out
}

func parseTimeMaybe(s string) (time.Time, bool) {
	layouts := []string{
		time.RFC3339, "2006-01-02", "2006/01/02", "02/01/2006", "01/02/2006",
		"02-Jan-2006", "2-Jan-2006", "02-Jan-06", "Jan-2006",
		"2006-01-02 15:04", "2006-01-02 15:04:05", "1/2/2006 15:04", "1/2/2006 15:04:05",
	}
	for _, l := range layouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Markdown renders the overview: schema, null check, duplicate check, and
// the leading rows.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if r.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", r.Name))
	}
	b.WriteString(fmt.Sprintf("Dimensions: %d rows x %d columns\n", r.Rows, len(r.Cols)))
	b.WriteString("Columns: ")
	for i, c := range r.Cols {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(safeName(c.Name))
	}
	b.WriteString("\n\n")

	b.WriteString("[SCHEMA]\n")
	for _, c := range r.Cols {
		total := c.NonNull + c.Missing
		missPct := 0.0
		if total > 0 {
			missPct = float64(c.Missing) * 100.0 / float64(total)
		}
		b.WriteString(fmt.Sprintf("- %s: %s (non-null %d, missing %.1f%%)", safeName(c.Name), c.Kind, c.NonNull, missPct))
		switch c.Kind {
		case "numeric":
			b.WriteString(fmt.Sprintf("; min %.4g, max %.4g, mean %.4g, std %.4g", c.Min, c.Max, c.Mean, c.Std))
			if c.OutlierThreshold > 0 {
				b.WriteString(fmt.Sprintf("; outliers: %d above |z|>%.1f", c.OutliersCount, c.OutlierThreshold))
				if c.OutliersMaxAbsZ > 0 {
					b.WriteString(fmt.Sprintf(" (max |z|≈%.2f)", c.OutliersMaxAbsZ))
				}
			}
		case "categorical", "mixed":
			if len(c.TopValues) > 0 {
				b.WriteString("; top: ")
				for i, kv := range c.TopValues {
					if i > 0 {
						b.WriteString(", ")
					}
					b.WriteString(fmt.Sprintf("%s(%d)", safeVal(kv.Value), kv.Count))
				}
				if c.Unique > len(c.TopValues) {
					b.WriteString(fmt.Sprintf("; unique=%d", c.Unique))
				}
			}
		case "text":
			if len(c.ExampleTexts) > 0 {
				b.WriteString("; e.g., ")
				for i, ex := range c.ExampleTexts {
					if i > 0 {
						b.WriteString(" | ")
					}
					b.WriteString(safeVal(ex))
				}
			}
		}
		b.WriteString("\n")
	}

	b.WriteString("\n[NULL CHECK]\n")
	b.WriteString("Missing per column:\n")
	for _, c := range r.Cols {
		b.WriteString(fmt.Sprintf("- %s: %d\n", safeName(c.Name), c.Missing))
	}
	b.WriteString("Rows by missing-cell count:\n")
	for _, nb := range r.RowNulls {
		b.WriteString(fmt.Sprintf("- %d missing: %d rows\n", nb.Missing, nb.Rows))
	}

	b.WriteString("\n[DUPLICATE CHECK]\n")
	b.WriteString(fmt.Sprintf("Duplicates found: %t\n", r.Duplicates > 0))
	b.WriteString(fmt.Sprintf("Number of duplicates: %d\n", r.Duplicates))

	if len(r.Head) > 0 {
		b.WriteString("\n[HEAD ROWS]\n")
		b.WriteString("| ")
		for i, c := range r.Cols {
			if i > 0 {
				b.WriteString(" | ")
			}
			b.WriteString(safeVal(safeName(c.Name)))
		}
		b.WriteString(" |\n")
		b.WriteString("| ")
		for i := range r.Cols {
			if i > 0 {
				b.WriteString(" | ")
			}
			b.WriteString("---")
		}
		b.WriteString(" |\n")
		for _, row := range r.Head {
			b.WriteString("| ")
			for i := range r.Cols {
				if i > 0 {
					b.WriteString(" | ")
				}
				val := ""
				if i < len(row) {
					val = row[i]
				}
				if len(val) > 80 {
					val = val[:77] + "..."
				}
				b.WriteString(safeVal(val))
			}
			b.WriteString(" |\n")
		}
	}
	if len(r.Warnings) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, w := range r.Warnings {
			b.WriteString("- ")
			b.WriteString(w)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}
func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }

// medianMAD computes median and MAD (median absolute deviation) of values.
func medianMAD(vals []float64) (median, mad float64) {
	if len(vals) == 0 {
		return 0, 0
	}
	cp := make([]float64, len(vals))
	copy(cp, vals)
	sort.Float64s(cp)
	median = quantile(cp, 0.5)
	dev := make([]float64, len(cp))
	for i, v := range cp {
		d := v - median
		if d < 0 {
			d = -d
		}
		dev[i] = d
	}
	sort.Float64s(dev)
	mad = quantile(dev, 0.5)
	return
}

func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}

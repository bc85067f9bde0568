package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ReadOptions controls how raw cells become Values.
type ReadOptions struct {
	// Delimiter for CSV. If 0, picks '\t' for .tsv and ',' otherwise.
	Delimiter rune
	// MissingTokens are raw cell contents read as missing. Matching is exact;
	// surrounding whitespace is significant.
	MissingTokens []string
	// SheetName selects an XLSX sheet by name (case-insensitive).
	SheetName string
	// SheetIndex selects an XLSX sheet by 1-based index when SheetName is empty.
	SheetIndex int
}

// DefaultMissingTokens mirrors the usual spreadsheet/dataframe null spellings.
var DefaultMissingTokens = []string{"", "NaN", "NA", "N/A", "NULL", "null", "#N/A"}

// DefaultReadOptions returns reasonable defaults for loading the incident file.
func DefaultReadOptions() ReadOptions {
	toks := make([]string, len(DefaultMissingTokens))
	copy(toks, DefaultMissingTokens)
	return ReadOptions{MissingTokens: toks, SheetIndex: 1}
}

type cellParser struct {
	missing map[string]struct{}
}

func newCellParser(opt ReadOptions) cellParser {
	m := make(map[string]struct{}, len(opt.MissingTokens))
	for _, t := range opt.MissingTokens {
		m[t] = struct{}{}
	}
	return cellParser{missing: m}
}

// parse turns a raw cell into missing, a number, or text. Only plain decimal
// literals become numbers; padded values such as " N" stay text.
func (p cellParser) parse(raw string) Value {
	if _, ok := p.missing[raw]; ok {
		return Missing
	}
	if f, ok := parseNumber(raw); ok {
		return Number(f)
	}
	return Text(raw)
}

func (p cellParser) text(raw string) Value {
	if _, ok := p.missing[raw]; ok {
		return Missing
	}
	return Text(raw)
}

func parseNumber(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && c != '.' && c != '-' && c != '+' && c != 'e' && c != 'E' {
			return 0, false
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// ReadCSV loads a delimited file. The first record is the header.
func ReadCSV(path string, opt ReadOptions) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	delim := opt.Delimiter
	if delim == 0 {
		delim = sniffDelimiter(path)
	}
	return readCSV(f, delim, opt)
}

func readCSV(src io.Reader, delim rune, opt ReadOptions) (*Dataset, error) {
	r := csv.NewReader(src)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.Comma = delim

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return New(), nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	ds := New(headerNames(header)...)
	cp := newCellParser(opt)
	for line := 2; ; line++ {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", line, err)
		}
		if len(rec) > ds.Width() {
			if !blankTail(rec[ds.Width():]) {
				return nil, fmt.Errorf("read row %d: %d cells for %d columns: %w", line, len(rec), ds.Width(), ErrRowWidth)
			}
			rec = rec[:ds.Width()]
		}
		cells := make([]Value, ds.Width())
		for j := range cells {
			if j < len(rec) {
				cells[j] = cp.parse(rec[j])
			}
		}
		if err := ds.Append(cells...); err != nil {
			return nil, err
		}
	}
	return ds, nil
}

// headerNames fills blank header cells the way dataframe loaders do.
func headerNames(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		if strings.TrimSpace(h) == "" {
			h = fmt.Sprintf("Unnamed: %d", i)
		}
		out[i] = h
	}
	return out
}

func blankTail(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func sniffDelimiter(path string) rune {
	if strings.HasSuffix(strings.ToLower(path), ".tsv") {
		return '\t'
	}
	return ','
}

// WriteCSV writes the header and rows. Missing cells are written empty.
func WriteCSV(w io.Writer, d *Dataset) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(d.Columns()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	rec := make([]string, d.Width())
	for i, row := range d.rows {
		for j, v := range row {
			rec[j] = v.String()
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Load picks a reader by file extension.
func Load(path string, opt ReadOptions) (*Dataset, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return ReadXLSX(path, opt)
	case ".csv", ".tsv", ".txt":
		return ReadCSV(path, opt)
	default:
		return nil, fmt.Errorf("load %s: %w", filepath.Base(path), ErrUnsupported)
	}
}

// ErrUnsupported indicates a file format with no reader.
var ErrUnsupported = errors.New("unsupported dataset format")

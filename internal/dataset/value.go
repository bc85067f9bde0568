package dataset

import (
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

// Kind tags the variant held by a Value.
type Kind uint8

const (
	KindMissing Kind = iota
	KindText
	KindNumber
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindNumber:
		return "number"
	default:
		return "missing"
	}
}

// Value is a single cell. The zero Value is the missing marker.
type Value struct {
	kind Kind
	text string
	num  float64
}

// Missing is the dataset's null marker.
var Missing = Value{}

// Text wraps s as a text cell. Empty strings are kept as text; loaders decide
// which raw tokens mean missing.
func Text(s string) Value { return Value{kind: KindText, text: s} }

// Number wraps f as a numeric cell.
func Number(f float64) Value { return Value{kind: KindNumber, num: f} }

func (v Value) Kind() Kind { return v.kind }
func (v Value) IsMissing() bool { return v.kind == KindMissing }
func (v Value) IsText() bool { return v.kind == KindText }
func (v Value) IsNumber() bool { return v.kind == KindNumber }

// Text returns the text content and whether the cell holds text.
func (v Value) Text() (string, bool) {
	if v.kind != KindText {
		return "", false
	}
	return v.text, true
}

// Number returns the numeric content and whether the cell holds a number.
func (v Value) Number() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	return v.num, true
}

// String renders the cell the way it is written to CSV: missing is empty,
// numbers use their shortest exact form (2017, 0.5).
func (v Value) String() string {
	switch v.kind {
	case KindText:
		return v.text
	case KindNumber:
		return cast.ToString(v.num)
	default:
		return ""
	}
}

// Equal reports whether two cells hold the same variant and content.
// Missing equals missing.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindText:
		return v.text == o.text
	case KindNumber:
		return v.num == o.num
	default:
		return true
	}
}

// key is an unambiguous encoding used for row hashing.
func (v Value) key(b *strings.Builder) {
	switch v.kind {
	case KindText:
		b.WriteByte('t')
		b.WriteString(strconv.Itoa(len(v.text)))
		b.WriteByte(':')
		b.WriteString(v.text)
	case KindNumber:
		b.WriteByte('n')
		b.WriteString(strconv.FormatFloat(v.num, 'g', -1, 64))
		b.WriteByte(';')
	default:
		b.WriteByte('_')
	}
}

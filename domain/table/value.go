package table

import (
	"strconv"
)

// ValueKind discriminates the states a cell can hold
type ValueKind int

const (
	KindMissing ValueKind = iota
	KindNumeric
	KindString
)

// Value is a single typed cell. The zero value is missing.
type Value struct {
	Kind ValueKind
	Num  float64
	Str  string
}

// Missing returns the missing value
func Missing() Value {
	return Value{}
}

// Num returns a numeric value
func Num(v float64) Value {
	return Value{Kind: KindNumeric, Num: v}
}

// Str returns a text value
func Str(s string) Value {
	return Value{Kind: KindString, Str: s}
}

// IsMissing reports whether the value is missing
func (v Value) IsMissing() bool {
	return v.Kind == KindMissing
}

// IsNumeric reports whether the value holds a number
func (v Value) IsNumeric() bool {
	return v.Kind == KindNumeric
}

// IsString reports whether the value holds text
func (v Value) IsString() bool {
	return v.Kind == KindString
}

// Text returns the canonical string form of the value.
// Numeric values use the shortest exact decimal representation,
// so 1.0 and 1 both render as "1". Missing renders as "".
func (v Value) Text() string {
	switch v.Kind {
	case KindNumeric:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case KindString:
		return v.Str
	default:
		return ""
	}
}

// Equal compares two values for identity
func (v Value) Equal(other Value) bool {
	if v.Kind != other.Kind {
		return false
	}
	switch v.Kind {
	case KindNumeric:
		return v.Num == other.Num
	case KindString:
		return v.Str == other.Str
	default:
		return true
	}
}

package domain

import (
	"strconv"
	"strings"
)

// Kind discriminates the scalar types a registry cell can carry.
type Kind uint8

const (
	KindString Kind = iota
	KindInt
	KindFloat
	KindNull
)

// Value is a typed registry cell after catalogue translation and numeric
// coercion. Exactly one of the payload fields is meaningful, selected by Kind.
type Value struct {
	Kind  Kind
	Str   string
	Int   int64
	Float float64
}

func StringValue(s string) Value { return Value{Kind: KindString, Str: s} }
func IntValue(n int64) Value     { return Value{Kind: KindInt, Int: n} }
func FloatValue(f float64) Value { return Value{Kind: KindFloat, Float: f} }
func NullValue() Value           { return Value{Kind: KindNull} }

// Numeric returns the cell as a float64 if it holds a number.
func (v Value) Numeric() (float64, bool) {
	switch v.Kind {
	case KindInt:
		return float64(v.Int), true
	case KindFloat:
		return v.Float, true
	default:
		return 0, false
	}
}

// Interface returns the cell as a plain Go value for JSON serialization:
// string, int64, float64, or nil.
func (v Value) Interface() any {
	switch v.Kind {
	case KindString:
		return v.Str
	case KindInt:
		return v.Int
	case KindFloat:
		return v.Float
	default:
		return nil
	}
}

// Text renders the cell for use in address queries. Numbers are formatted the
// shortest way that round-trips.
func (v Value) Text() string {
	switch v.Kind {
	case KindString:
		return v.Str
	case KindInt:
		return strconv.FormatInt(v.Int, 10)
	case KindFloat:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	default:
		return ""
	}
}

// ClassifyCell turns a raw CSV cell into a typed Value. Priority order:
// catalogue label, numeric coercion, plain string.
//
// Numeric coercion accepts only digits with at most one decimal point; a cell
// like "1.2.3" deliberately stays a string rather than raising an error, to
// match the upstream registry's permissive handling.
func ClassifyCell(c Catalogue, raw string) Value {
	if label, ok := c[raw]; ok {
		return StringValue(label)
	}
	if !numericLike(raw) {
		return StringValue(raw)
	}
	if strings.Contains(raw, ".") {
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return StringValue(raw)
		}
		return FloatValue(f)
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		// Digits beyond int64 range still count as numeric.
		f, ferr := strconv.ParseFloat(raw, 64)
		if ferr != nil {
			return StringValue(raw)
		}
		return FloatValue(f)
	}
	return IntValue(n)
}

// numericLike reports whether s consists of at least one digit and at most one
// decimal point, with no other characters.
func numericLike(s string) bool {
	digits, dots := 0, 0
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '.':
			dots++
		default:
			return false
		}
	}
	return digits > 0 && dots <= 1
}

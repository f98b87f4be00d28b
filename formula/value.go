package formula

import (
	"strconv"
	"strings"
	"time"
)

// Kind indicates the type of a Value.
type Kind int

const (
	// KindNull represents an empty cell or missing result.
	KindNull Kind = iota

	// KindNumber represents a floating-point numeric value.
	KindNumber

	// KindText represents a string value.
	KindText

	// KindBool represents a boolean value.
	KindBool

	// KindDate represents a timestamp value.
	KindDate

	// KindArray represents a list of values produced by a range reference.
	// Arrays are valid only as direct function arguments, never as the
	// final result of a standalone evaluation.
	KindArray
)

// String returns a string representation of the value kind.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "Null"
	case KindNumber:
		return "Number"
	case KindText:
		return "Text"
	case KindBool:
		return "Boolean"
	case KindDate:
		return "Date"
	case KindArray:
		return "Array"
	default:
		return "Unknown"
	}
}

// Value represents any value the engine can produce or consume.
// Exactly one payload field is meaningful based on Kind.
type Value struct {
	Kind Kind
	Num  float64
	Str  string
	Flag bool
	Time time.Time
	List []Value
}

// Null is the zero Value, representing an empty cell.
var Null = Value{}

// Number creates a numeric value.
func Number(f float64) Value {
	return Value{Kind: KindNumber, Num: f}
}

// Text creates a string value.
func Text(s string) Value {
	return Value{Kind: KindText, Str: s}
}

// Boolean creates a boolean value.
func Boolean(b bool) Value {
	return Value{Kind: KindBool, Flag: b}
}

// Date creates a timestamp value.
func Date(t time.Time) Value {
	return Value{Kind: KindDate, Time: t}
}

// Array creates an array value from the given elements.
func Array(items ...Value) Value {
	return Value{Kind: KindArray, List: items}
}

// IsNull reports whether the value is the null value.
func (v Value) IsNull() bool { return v.Kind == KindNull }

// AsNumber coerces the value to a number, reporting whether the value is
// numeric-coercible. Text coerces via a plain float parse; booleans map to
// 1 and 0; dates map to their Unix timestamp in milliseconds.
func (v Value) AsNumber() (float64, bool) {
	switch v.Kind {
	case KindNumber:
		return v.Num, true

	case KindBool:
		if v.Flag {
			return 1, true
		}

		return 0, true

	case KindText:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.Str), 64)
		if err != nil {
			return 0, false
		}

		return f, true

	case KindDate:
		return float64(v.Time.UnixMilli()), true

	default:
		return 0, false
	}
}

// NumberOr coerces the value to a number using the arithmetic policy:
// coercion failures (unparseable text, null, arrays) yield the fallback.
func (v Value) NumberOr(fallback float64) float64 {
	f, ok := v.AsNumber()
	if !ok {
		return fallback
	}

	return f
}

// AsText coerces the value to its text representation.
func (v Value) AsText() string {
	switch v.Kind {
	case KindNull:
		return ""

	case KindNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)

	case KindText:
		return v.Str

	case KindBool:
		if v.Flag {
			return "TRUE"
		}

		return "FALSE"

	case KindDate:
		return v.Time.Format(time.RFC3339)

	case KindArray:
		part := make([]string, len(v.List))
		for i, item := range v.List {
			part[i] = item.AsText()
		}

		return strings.Join(part, ",")

	default:
		return ""
	}
}

// AsBool coerces the value to a boolean. Numbers are true when nonzero.
// The strings "true" and "false" convert case-insensitively; any other
// non-empty string is true.
func (v Value) AsBool() bool {
	switch v.Kind {
	case KindNumber:
		return v.Num != 0

	case KindBool:
		return v.Flag

	case KindText:
		switch strings.ToLower(v.Str) {
		case "true":
			return true
		case "false", "":
			return false
		default:
			return true
		}

	case KindDate:
		return !v.Time.IsZero()

	default:
		return false
	}
}

// IsEmpty reports whether the value counts as empty for COUNTA purposes:
// null, or text of length zero.
func (v Value) IsEmpty() bool {
	return v.Kind == KindNull || (v.Kind == KindText && v.Str == "")
}

// String returns a display representation of the value.
func (v Value) String() string {
	if v.Kind == KindNull {
		return "<null>"
	}

	return v.AsText()
}

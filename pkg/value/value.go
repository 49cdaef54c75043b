// Package value implements the tagged datum and column-type model used
// throughout relstore: every cell a table stores, and every literal the
// parser produces, is a Value.
package value

import (
	"fmt"
	"strconv"
)

// Kind tags the runtime type carried by a Value.
type Kind int

const (
	// Null is the absent value. A null Value carries no payload.
	Null Kind = iota
	Int
	Float
	Text
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "NULL"
	case Int:
		return "INTEGER"
	case Float:
		return "FLOAT"
	case Text:
		return "TEXT"
	default:
		return "UNKNOWN"
	}
}

// Value is a tagged datum: integer, floating-point, text, or null.
// Equality and ordering are only defined between Values of the same Kind.
type Value struct {
	Kind Kind
	I    int64
	F    float64
	S    string
}

// NewNull returns the absent value.
func NewNull() Value { return Value{Kind: Null} }

// NewInt wraps an integer.
func NewInt(i int64) Value { return Value{Kind: Int, I: i} }

// NewFloat wraps a floating-point number.
func NewFloat(f float64) Value { return Value{Kind: Float, F: f} }

// NewText wraps a text datum.
func NewText(s string) Value { return Value{Kind: Text, S: s} }

// IsNull reports whether v is the absent value.
func (v Value) IsNull() bool { return v.Kind == Null }

// Equal reports whether v and other carry the same tag and payload.
// Nulls compare equal to nulls (spec.md §9: no three-valued logic).
func (v Value) Equal(other Value) bool {
	if v.Kind != other.Kind {
		return false
	}
	switch v.Kind {
	case Null:
		return true
	case Int:
		return v.I == other.I
	case Float:
		return v.F == other.F
	case Text:
		return v.S == other.S
	default:
		return false
	}
}

// Less defines the natural total order within one Kind. Comparing values of
// differing kinds (or involving null) is undefined per spec.md §4.5 and
// returns false.
func (v Value) Less(other Value) bool {
	if v.Kind != other.Kind {
		return false
	}
	switch v.Kind {
	case Int:
		return v.I < other.I
	case Float:
		return v.F < other.F
	case Text:
		return v.S < other.S
	default:
		return false
	}
}

// Compare returns the builtin comparison result (-1, 0, 1) used by ordering
// and the scalar operators; the operator itself decides what to do with it.
func (v Value) Compare(other Value) (int, bool) {
	if v.Kind != other.Kind {
		return 0, false
	}
	switch v.Kind {
	case Null:
		return 0, true
	case Int:
		switch {
		case v.I < other.I:
			return -1, true
		case v.I > other.I:
			return 1, true
		default:
			return 0, true
		}
	case Float:
		switch {
		case v.F < other.F:
			return -1, true
		case v.F > other.F:
			return 1, true
		default:
			return 0, true
		}
	case Text:
		switch {
		case v.S < other.S:
			return -1, true
		case v.S > other.S:
			return 1, true
		default:
			return 0, true
		}
	default:
		return 0, false
	}
}

// Interface returns a host-language value suitable for JSON encoding or
// display; never exposed inside the engine's own data path.
func (v Value) Interface() interface{} {
	switch v.Kind {
	case Null:
		return nil
	case Int:
		return v.I
	case Float:
		return v.F
	case Text:
		return v.S
	default:
		return nil
	}
}

func (v Value) String() string {
	switch v.Kind {
	case Null:
		return "NULL"
	case Int:
		return strconv.FormatInt(v.I, 10)
	case Float:
		return strconv.FormatFloat(v.F, 'g', -1, 64)
	case Text:
		return v.S
	default:
		return ""
	}
}

// ColumnType is the declared type of a schema column: one of integer,
// float, text (spec.md §3).
type ColumnType int

const (
	Integer ColumnType = iota
	FloatType
	TextType
)

func (t ColumnType) String() string {
	switch t {
	case Integer:
		return "INT"
	case FloatType:
		return "FLOAT"
	case TextType:
		return "TEXT"
	default:
		return "TEXT"
	}
}

// ColumnTypeFromWord maps a DDL type word to a ColumnType. Unknown words
// default to text (spec.md §4.2).
func ColumnTypeFromWord(word string) ColumnType {
	switch word {
	case "INT", "INTEGER":
		return Integer
	case "FLOAT":
		return FloatType
	case "TEXT":
		return TextType
	default:
		return TextType
	}
}

// Coerce re-tags a parser-produced literal Value to the declared column
// type (spec.md §4.6). Null is always preserved. Float-to-int truncates;
// text-to-numeric parses and fails on malformed input.
func Coerce(v Value, to ColumnType) (Value, error) {
	if v.IsNull() {
		return NewNull(), nil
	}

	switch to {
	case Integer:
		switch v.Kind {
		case Int:
			return v, nil
		case Float:
			return NewInt(int64(v.F)), nil
		case Text:
			i, err := strconv.ParseInt(v.S, 10, 64)
			if err != nil {
				return Value{}, fmt.Errorf("cannot coerce %q to INT: %w", v.S, err)
			}
			return NewInt(i), nil
		}
	case FloatType:
		switch v.Kind {
		case Float:
			return v, nil
		case Int:
			return NewFloat(float64(v.I)), nil
		case Text:
			f, err := strconv.ParseFloat(v.S, 64)
			if err != nil {
				return Value{}, fmt.Errorf("cannot coerce %q to FLOAT: %w", v.S, err)
			}
			return NewFloat(f), nil
		}
	case TextType:
		return NewText(v.String()), nil
	}

	return Value{}, fmt.Errorf("unsupported coercion target %v", to)
}

// MatchesType reports whether v's runtime tag matches the declared column
// type, without performing any conversion. Used by insert/update's
// completeness-and-type check (spec.md §4.4); null always matches.
func (v Value) MatchesType(t ColumnType) bool {
	if v.IsNull() {
		return true
	}
	switch t {
	case Integer:
		return v.Kind == Int
	case FloatType:
		return v.Kind == Float
	case TextType:
		return v.Kind == Text
	default:
		return false
	}
}

package chart

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Value is a numeric measurement decoded with loose coercion.
//
// Numbers are taken as-is, null is 0, booleans are 1 or 0, and strings are
// trimmed and parsed (the empty string is 0). Anything else, including a
// missing field, is NaN.
type Value float64

// NaN returns the Value used for missing or non-numeric input.
func NaN() Value { return Value(math.NaN()) }

// Float returns v as a float64.
func (v Value) Float() float64 { return float64(v) }

// Valid reports whether v is a finite number.
func (v Value) Valid() bool { return isFinite(float64(v)) }

// String formats v the way it appears in tooltips.
func (v Value) String() string {
	f := float64(v)
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// MarshalJSON encodes non-finite values as null.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.Valid() {
		return []byte("null"), nil
	}
	return json.Marshal(float64(v))
}

// UnmarshalJSON decodes any JSON scalar with [Coerce].
func (v *Value) UnmarshalJSON(b []byte) error {
	var raw any
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	*v = Coerce(raw)
	return nil
}

// Coerce converts a decoded scalar into a Value.
func Coerce(x any) Value {
	switch t := x.(type) {
	case nil:
		return 0
	case Value:
		return t
	case float64:
		return Value(t)
	case float32:
		return Value(t)
	case int:
		return Value(t)
	case int64:
		return Value(t)
	case uint64:
		return Value(t)
	case json.Number:
		return parseNumeric(t.String())
	case bool:
		if t {
			return 1
		}
		return 0
	case string:
		return parseNumeric(t)
	default:
		return NaN()
	}
}

func parseNumeric(s string) Value {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return NaN()
	}
	return Value(f)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// ID is an opaque record or entry identifier. It accepts a JSON string or
// number and encodes back to the same JSON kind. The zero ID encodes as null.
type ID struct {
	text    string
	numeric bool
}

// StringID returns an ID that encodes as a JSON string.
func StringID(s string) ID { return ID{text: s} }

// NumericID returns an ID that encodes as a JSON number.
func NumericID(n int64) ID { return ID{text: strconv.FormatInt(n, 10), numeric: true} }

// String returns the identifier text.
func (id ID) String() string { return id.text }

// IsZero reports whether the ID is unset.
func (id ID) IsZero() bool { return id.text == "" && !id.numeric }

// MarshalJSON implements json.Marshaler.
func (id ID) MarshalJSON() ([]byte, error) {
	if id.IsZero() {
		return []byte("null"), nil
	}
	if id.numeric {
		return []byte(id.text), nil
	}
	return json.Marshal(id.text)
}

// UnmarshalJSON implements json.Unmarshaler.
func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*id = ID{}
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = StringID(s)
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return err
		}
		*id = ID{text: n.String(), numeric: true}
	}
	return nil
}

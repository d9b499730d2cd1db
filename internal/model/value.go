package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind tags the dynamic type held by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindNumber
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	default:
		return "null"
	}
}

// Value is a single cell: a number, a string or absent.
// The zero Value is absent.
type Value struct {
	kind Kind
	num  float64
	str  string
}

// Null returns the absent marker.
func Null() Value { return Value{} }

// Number wraps a float64.
func Number(f float64) Value { return Value{kind: KindNumber, num: f} }

// String wraps a string. The empty string is a present value that still counts as missing.
func String(s string) Value { return Value{kind: KindString, str: s} }

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsNull() bool { return v.kind == KindNull }

// IsMissing reports whether the cell is absent or an empty string.
func (v Value) IsMissing() bool {
	return v.kind == KindNull || (v.kind == KindString && v.str == "")
}

// Float returns the numeric reading of the value. Strings are parsed after
// trimming; NaN and infinities never count as numeric.
func (v Value) Float() (float64, bool) {
	switch v.kind {
	case KindNumber:
		if math.IsNaN(v.num) || math.IsInf(v.num, 0) {
			return 0, false
		}
		return v.num, true
	case KindString:
		return ParseNumber(v.str)
	default:
		return 0, false
	}
}

// Text renders the value for display; absent values render as placeholder.
func (v Value) Text(placeholder string) string {
	if v.IsMissing() {
		return placeholder
	}
	if v.kind == KindNumber {
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	}
	return v.str
}

// Interface returns nil, float64 or string.
func (v Value) Interface() interface{} {
	switch v.kind {
	case KindNumber:
		return v.num
	case KindString:
		return v.str
	default:
		return nil
	}
}

func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNumber:
		return v.num == o.num || (math.IsNaN(v.num) && math.IsNaN(o.num))
	case KindString:
		return v.str == o.str
	default:
		return true
	}
}

func (v Value) String() string { return v.Text("null") }

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNumber:
		if math.IsNaN(v.num) || math.IsInf(v.num, 0) {
			// JSON has no representation for these
			return []byte("null"), nil
		}
		return json.Marshal(v.num)
	case KindString:
		return json.Marshal(v.str)
	default:
		return []byte("null"), nil
	}
}

func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*v = Null()
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = String(s)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("value must be a number, a string or null: %w", err)
	}
	*v = Number(f)
	return nil
}

// ParseNumber parses s as a float after trimming whitespace.
// Empty input, NaN and infinities ("inf", "Infinity") are rejected.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// FromInterface converts a decoded JSON/any value into a Value.
func FromInterface(x interface{}) Value {
	switch val := x.(type) {
	case nil:
		return Null()
	case Value:
		return val
	case float64:
		return Number(val)
	case float32:
		return Number(float64(val))
	case int:
		return Number(float64(val))
	case int64:
		return Number(float64(val))
	case string:
		return String(val)
	case bool:
		if val {
			return Number(1)
		}
		return Number(0)
	default:
		return String(fmt.Sprintf("%v", val))
	}
}

package command

import (
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// Kind identifies the type carried by a Value.
type Kind int

const (
	KindString Kind = iota
	KindNumber
	KindBool
	KindNull
	KindUndefined
	KindArray
	KindObject
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindNull:
		return "null"
	case KindUndefined:
		return "undefined"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Value is a tagged option value. Coercion happens once, at parse time;
// consumers switch on Kind instead of re-inspecting raw strings.
type Value struct {
	kind Kind
	str  string
	num  float64
	b    bool
	arr  []any
	obj  map[string]any
}

// StringValue creates a string Value.
func StringValue(s string) Value { return Value{kind: KindString, str: s} }

// NumberValue creates a number Value.
func NumberValue(n float64) Value { return Value{kind: KindNumber, num: n} }

// BoolValue creates a boolean Value.
func BoolValue(b bool) Value { return Value{kind: KindBool, b: b} }

// NullValue creates a null Value.
func NullValue() Value { return Value{kind: KindNull} }

// UndefinedValue creates an undefined Value.
func UndefinedValue() Value { return Value{kind: KindUndefined} }

// Kind returns the kind tag of the value.
func (v Value) Kind() Kind { return v.kind }

// Str returns the string payload. Valid only for KindString.
func (v Value) Str() string { return v.str }

// Num returns the numeric payload. Valid only for KindNumber.
func (v Value) Num() float64 { return v.num }

// Bool returns the boolean payload. Valid only for KindBool.
func (v Value) Bool() bool { return v.b }

// Array returns the array payload. Valid only for KindArray.
func (v Value) Array() []any { return v.arr }

// Object returns the object payload. Valid only for KindObject.
func (v Value) Object() map[string]any { return v.obj }

// Interface returns the value as a plain Go value suitable for JSON
// serialization. Undefined maps to nil, same as null.
func (v Value) Interface() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return v.num
	case KindBool:
		return v.b
	case KindArray:
		return v.arr
	case KindObject:
		return v.obj
	default:
		return nil
	}
}

// Coerce converts a raw option string into a tagged Value.
//
// Coercion order: integer literal, decimal literal, true/false
// (case-insensitive), null, undefined, bracketed structured data (array or
// object, falling back to the literal string when it does not parse), and
// finally plain string.
func Coerce(raw string) Value {
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return NumberValue(float64(n))
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return NumberValue(f)
	}
	switch strings.ToLower(raw) {
	case "true":
		return BoolValue(true)
	case "false":
		return BoolValue(false)
	case "null":
		return NullValue()
	case "undefined":
		return UndefinedValue()
	}
	if isBracketed(raw) {
		if v, ok := parseStructured(raw); ok {
			return v
		}
	}
	return StringValue(raw)
}

func isBracketed(s string) bool {
	if len(s) < 2 {
		return false
	}
	switch {
	case s[0] == '[' && s[len(s)-1] == ']':
		return true
	case s[0] == '{' && s[len(s)-1] == '}':
		return true
	}
	return false
}

// parseStructured attempts to decode a bracketed token as JSON. It returns
// ok=false when the token is not valid structured data, so the caller keeps
// the literal string.
func parseStructured(raw string) (Value, bool) {
	if !gjson.Valid(raw) {
		return Value{}, false
	}
	parsed := gjson.Parse(raw)
	switch val := parsed.Value().(type) {
	case []any:
		return Value{kind: KindArray, arr: val}, true
	case map[string]any:
		return Value{kind: KindObject, obj: val}, true
	default:
		return Value{}, false
	}
}

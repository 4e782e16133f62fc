// Package value provides a tagged JSON value with explicit path descent and typed
// accessors. Accessors return an error on a type mismatch instead of a zero value.
package value

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Kind identifies the variant held by a Value.
type Kind int

const (
	// Null is JSON null and the zero Kind.
	Null Kind = iota
	// Bool is true or false.
	Bool
	// Number is any JSON number, held as float64.
	Number
	// String is a JSON string.
	String
	// Array is an ordered list of values.
	Array
	// Object is a set of named values.
	Object
)

// String returns the type name used in assertion phrases.
func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Bool:
		return "boolean"
	case Number:
		return "number"
	case String:
		return "string"
	case Array:
		return "array"
	case Object:
		return "object"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Value is an immutable JSON value. The zero Value is JSON null.
type Value struct {
	kind Kind
	b    bool
	n    float64
	s    string
	arr  []Value
	obj  map[string]Value
}

// Parse decodes a JSON document.
func Parse(data []byte) (Value, error) {
	var raw any
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&raw); err != nil {
		return Value{}, fmt.Errorf("body is not valid JSON: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return Value{}, fmt.Errorf("body is not valid JSON: trailing data after top-level value")
	}
	return FromInterface(raw), nil
}

// FromInterface converts the output of encoding/json (or plain Go scalars,
// slices and maps) into a Value. Unsupported types become their fmt string.
func FromInterface(v any) Value {
	switch t := v.(type) {
	case nil:
		return Value{}
	case Value:
		return t
	case bool:
		return BoolValue(t)
	case float64:
		return NumberValue(t)
	case float32:
		return NumberValue(float64(t))
	case int:
		return NumberValue(float64(t))
	case int64:
		return NumberValue(float64(t))
	case int32:
		return NumberValue(float64(t))
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return StringValue(t.String())
		}
		return NumberValue(f)
	case string:
		return StringValue(t)
	case []any:
		items := make([]Value, len(t))
		for i, item := range t {
			items[i] = FromInterface(item)
		}
		return ArrayValue(items)
	case []Value:
		return ArrayValue(t)
	case map[string]any:
		fields := make(map[string]Value, len(t))
		for k, item := range t {
			fields[k] = FromInterface(item)
		}
		return ObjectValue(fields)
	case map[string]Value:
		return ObjectValue(t)
	default:
		return StringValue(fmt.Sprintf("%v", t))
	}
}

// BoolValue wraps a boolean.
func BoolValue(b bool) Value { return Value{kind: Bool, b: b} }

// NumberValue wraps a number.
func NumberValue(n float64) Value { return Value{kind: Number, n: n} }

// StringValue wraps a string.
func StringValue(s string) Value { return Value{kind: String, s: s} }

// ArrayValue wraps items. The slice is not copied.
func ArrayValue(items []Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{kind: Array, arr: items}
}

// ObjectValue wraps fields. The map is not copied.
func ObjectValue(fields map[string]Value) Value {
	if fields == nil {
		fields = map[string]Value{}
	}
	return Value{kind: Object, obj: fields}
}

func (v Value) Kind() Kind     { return v.kind }
func (v Value) IsNull() bool   { return v.kind == Null }
func (v Value) IsArray() bool  { return v.kind == Array }
func (v Value) IsObject() bool { return v.kind == Object }

// TypeError reports an accessor used on the wrong variant.
type TypeError struct {
	Want Kind
	Got  Kind
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("expected %s, got %s", e.Want, e.Got)
}

// FieldError reports a path segment that could not be resolved.
type FieldError struct {
	Path    string
	Segment string
	Reason  string
}

func (e *FieldError) Error() string {
	if e.Path == e.Segment {
		return fmt.Sprintf("field %q %s", e.Segment, e.Reason)
	}
	return fmt.Sprintf("field %q of %q %s", e.Segment, e.Path, e.Reason)
}

// AsBool returns the boolean, or a *TypeError when v is not a Bool.
func (v Value) AsBool() (bool, error) {
	if v.kind != Bool {
		return false, &TypeError{Want: Bool, Got: v.kind}
	}
	return v.b, nil
}

// AsNumber returns the number, or a *TypeError when v is not a Number.
func (v Value) AsNumber() (float64, error) {
	if v.kind != Number {
		return 0, &TypeError{Want: Number, Got: v.kind}
	}
	return v.n, nil
}

// AsString returns the string, or a *TypeError when v is not a String.
func (v Value) AsString() (string, error) {
	if v.kind != String {
		return "", &TypeError{Want: String, Got: v.kind}
	}
	return v.s, nil
}

// AsArray returns the array items, or a *TypeError when v is not an Array.
func (v Value) AsArray() ([]Value, error) {
	if v.kind != Array {
		return nil, &TypeError{Want: Array, Got: v.kind}
	}
	return v.arr, nil
}

// AsObject returns the object fields, or a *TypeError when v is not an Object.
func (v Value) AsObject() (map[string]Value, error) {
	if v.kind != Object {
		return nil, &TypeError{Want: Object, Got: v.kind}
	}
	return v.obj, nil
}

// Len returns the number of array items, object keys, or string characters.
func (v Value) Len() (int, error) {
	switch v.kind {
	case Array:
		return len(v.arr), nil
	case Object:
		return len(v.obj), nil
	case String:
		return utf8.RuneCountInString(v.s), nil
	default:
		return 0, fmt.Errorf("%s has no length", v.kind)
	}
}

// Has reports whether an object holds the top-level key.
func (v Value) Has(name string) bool {
	if v.kind != Object {
		return false
	}
	_, ok := v.obj[name]
	return ok
}

// Field returns a top-level object field.
func (v Value) Field(name string) (Value, error) {
	if v.kind != Object {
		return Value{}, &FieldError{Path: name, Segment: name, Reason: "cannot be read from " + v.kind.String()}
	}
	f, ok := v.obj[name]
	if !ok {
		return Value{}, &FieldError{Path: name, Segment: name, Reason: "is missing"}
	}
	return f, nil
}

// Index returns an array item.
func (v Value) Index(i int) (Value, error) {
	if v.kind != Array {
		return Value{}, &TypeError{Want: Array, Got: v.kind}
	}
	if i < 0 || i >= len(v.arr) {
		return Value{}, fmt.Errorf("index %d out of range (length %d)", i, len(v.arr))
	}
	return v.arr[i], nil
}

// Path descends a dotted path one segment at a time and fails at the first
// segment that cannot be resolved. Numeric segments index into arrays.
func (v Value) Path(path string) (Value, error) {
	if path == "" {
		return v, nil
	}
	current := v
	for _, seg := range strings.Split(path, ".") {
		switch current.kind {
		case Object:
			next, ok := current.obj[seg]
			if !ok {
				return Value{}, &FieldError{Path: path, Segment: seg, Reason: "is missing"}
			}
			current = next
		case Array:
			idx, err := strconv.Atoi(seg)
			if err != nil || idx < 0 || idx >= len(current.arr) {
				return Value{}, &FieldError{Path: path, Segment: seg, Reason: "is not a valid index"}
			}
			current = current.arr[idx]
		default:
			return Value{}, &FieldError{Path: path, Segment: seg, Reason: "cannot be read from " + current.kind.String()}
		}
	}
	return current, nil
}

// Keys returns object keys (or array indices) in sorted order.
func (v Value) Keys() []string {
	switch v.kind {
	case Object:
		keys := make([]string, 0, len(v.obj))
		for k := range v.obj {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return keys
	case Array:
		keys := make([]string, len(v.arr))
		for i := range v.arr {
			keys[i] = strconv.Itoa(i)
		}
		return keys
	default:
		return nil
	}
}

// Interface converts back to plain Go values as produced by encoding/json.
func (v Value) Interface() any {
	switch v.kind {
	case Bool:
		return v.b
	case Number:
		return v.n
	case String:
		return v.s
	case Array:
		out := make([]any, len(v.arr))
		for i, item := range v.arr {
			out[i] = item.Interface()
		}
		return out
	case Object:
		out := make(map[string]any, len(v.obj))
		for k, item := range v.obj {
			out[k] = item.Interface()
		}
		return out
	default:
		return nil
	}
}

// MarshalJSON encodes the value; object keys are sorted.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

// Canonical returns the compact JSON form with sorted object keys. Two values
// are equal exactly when their canonical forms are equal.
func (v Value) Canonical() string {
	data, err := json.Marshal(v.Interface())
	if err != nil {
		return fmt.Sprintf("%v", v.Interface())
	}
	return string(data)
}

// String returns the text used for placeholder substitution: strings are raw,
// integral numbers have no exponent or fraction, everything else is canonical JSON.
func (v Value) String() string {
	switch v.kind {
	case String:
		return v.s
	case Number:
		return FormatNumber(v.n)
	default:
		return v.Canonical()
	}
}

// Equal compares two values structurally.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case Null:
		return true
	case Bool:
		return v.b == o.b
	case Number:
		return v.n == o.n
	case String:
		return v.s == o.s
	default:
		return v.Canonical() == o.Canonical()
	}
}

// Compare orders two numbers or two strings. Other combinations are an error.
func Compare(a, b Value) (int, error) {
	switch {
	case a.kind == Number && b.kind == Number:
		switch {
		case a.n < b.n:
			return -1, nil
		case a.n > b.n:
			return 1, nil
		}
		return 0, nil
	case a.kind == String && b.kind == String:
		return strings.Compare(a.s, b.s), nil
	default:
		return 0, fmt.Errorf("cannot compare %s with %s", a.kind, b.kind)
	}
}

// FormatNumber renders integral values without a fraction.
func FormatNumber(n float64) string {
	if n == math.Trunc(n) && math.Abs(n) < 1e15 {
		return strconv.FormatInt(int64(n), 10)
	}
	return strconv.FormatFloat(n, 'f', -1, 64)
}

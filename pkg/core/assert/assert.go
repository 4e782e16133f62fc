// Package assert implements the response checks used by scenario steps. Every
// check returns nil or an *Error naming the field, the expected value, and the
// actual value.
package assert

import (
	"errors"
	"fmt"
	"strings"

	"github.com/blackcoderx/apicheck/pkg/core/value"
)

// Error is an assertion failure.
type Error struct {
	// Check names the rule, e.g. "status" or "unique".
	Check string
	// Field is the path or header name involved; empty for whole-body checks.
	Field    string
	Expected any
	Actual   any
	// Detail carries extra context such as a diff.
	Detail string
}

func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Check)
	if e.Field != "" {
		sb.WriteString(fmt.Sprintf(" %q", e.Field))
	}
	sb.WriteString(fmt.Sprintf(": expected %s, got %s", describe(e.Expected), describe(e.Actual)))
	if e.Detail != "" {
		sb.WriteString("\n")
		sb.WriteString(e.Detail)
	}
	return sb.String()
}

// IsAssertion reports whether err is, or wraps, an assertion failure.
func IsAssertion(err error) bool {
	var ae *Error
	return errors.As(err, &ae)
}

func fail(check, field string, expected, actual any) *Error {
	return &Error{Check: check, Field: field, Expected: expected, Actual: actual}
}

func describe(v any) string {
	switch t := v.(type) {
	case nil:
		return "nothing"
	case value.Value:
		if t.Kind() == value.String {
			return fmt.Sprintf("%q", t.String())
		}
		return t.Canonical()
	case string:
		return t
	default:
		return fmt.Sprintf("%v", t)
	}
}

// lookup resolves a dotted path and turns resolution errors into assertion
// failures that name the path.
func lookup(check string, body value.Value, path string) (value.Value, error) {
	v, err := body.Path(path)
	if err != nil {
		return value.Value{}, &Error{Check: check, Field: path, Expected: "field to exist", Actual: err.Error()}
	}
	return v, nil
}

// items returns the array elements of body or an assertion failure.
func items(check string, body value.Value) ([]value.Value, error) {
	arr, err := body.AsArray()
	if err != nil {
		return nil, fail(check, "", "a JSON array", body.Kind().String())
	}
	return arr, nil
}

package assert

import (
	"fmt"
	"strings"

	"github.com/blackcoderx/apicheck/pkg/core/value"
)

// Status checks exact status equality.
func Status(actual, expected int) error {
	if actual != expected {
		return fail("status code", "", expected, actual)
	}
	return nil
}

// StatusIn checks that the status is one of the allowed codes.
func StatusIn(actual int, allowed []int) error {
	for _, code := range allowed {
		if actual == code {
			return nil
		}
	}
	parts := make([]string, len(allowed))
	for i, code := range allowed {
		parts[i] = fmt.Sprintf("%d", code)
	}
	return fail("status code", "", "one of "+strings.Join(parts, ", "), actual)
}

// IsArray checks that the body is a JSON array.
func IsArray(body value.Value) error {
	if !body.IsArray() {
		return fail("body type", "", "array", body.Kind().String())
	}
	return nil
}

// IsObject checks that the body is a JSON object.
func IsObject(body value.Value) error {
	if !body.IsObject() {
		return fail("body type", "", "object", body.Kind().String())
	}
	return nil
}

// MinItems checks len(array) >= n.
func MinItems(body value.Value, n int) error {
	arr, err := items("array length", body)
	if err != nil {
		return err
	}
	if len(arr) < n {
		return fail("array length", "", fmt.Sprintf("at least %d", n), len(arr))
	}
	return nil
}

// MaxItems checks len(array) <= n.
func MaxItems(body value.Value, n int) error {
	arr, err := items("array length", body)
	if err != nil {
		return err
	}
	if len(arr) > n {
		return fail("array length", "", fmt.Sprintf("at most %d", n), len(arr))
	}
	return nil
}

// ItemCount checks len(array) == n.
func ItemCount(body value.Value, n int) error {
	arr, err := items("array length", body)
	if err != nil {
		return err
	}
	if len(arr) != n {
		return fail("array length", "", n, len(arr))
	}
	return nil
}

// Empty checks that the array has no items.
func Empty(body value.Value) error {
	return ItemCount(body, 0)
}

// NotEmpty checks that the array has at least one item.
func NotEmpty(body value.Value) error {
	arr, err := items("array length", body)
	if err != nil {
		return err
	}
	if len(arr) == 0 {
		return fail("array length", "", "more than 0", 0)
	}
	return nil
}

// MinKeys checks that an object has at least n top-level keys.
func MinKeys(body value.Value, n int) error {
	obj, err := body.AsObject()
	if err != nil {
		return fail("field count", "", "an object", body.Kind().String())
	}
	if len(obj) < n {
		return fail("field count", "", fmt.Sprintf("at least %d", n), len(obj))
	}
	return nil
}

package assert

import (
	"fmt"

	"github.com/blackcoderx/apicheck/pkg/core/value"
)

// HasField checks that a dotted path resolves, descending one segment at a
// time and failing at the first missing segment.
func HasField(body value.Value, path string) error {
	_, err := lookup("field presence", body, path)
	return err
}

// HasFields checks every path in fields.
func HasFields(body value.Value, fields []string) error {
	for _, f := range fields {
		if err := HasField(body, f); err != nil {
			return err
		}
	}
	return nil
}

// FieldType checks the JSON type of a field. typeName is one of number,
// string, boolean, object, array or null.
func FieldType(body value.Value, path, typeName string) error {
	v, err := lookup("field type", body, path)
	if err != nil {
		return err
	}
	if v.Kind().String() != typeName {
		return fail("field type", path, typeName, v.Kind().String())
	}
	return nil
}

// FieldEquals checks a field against an expected value. Numbers compare
// numerically, everything else structurally.
func FieldEquals(body value.Value, path string, expected value.Value) error {
	v, err := lookup("field value", body, path)
	if err != nil {
		return err
	}
	if !v.Equal(expected) {
		return fail("field value", path, expected, v)
	}
	return nil
}

// FieldNotNull checks that a field exists and is not null.
func FieldNotNull(body value.Value, path string) error {
	v, err := lookup("not null", body, path)
	if err != nil {
		return err
	}
	if v.IsNull() {
		return fail("not null", path, "a non-null value", v)
	}
	return nil
}

// PositiveNumber checks that a field is a number greater than zero.
func PositiveNumber(body value.Value, path string) error {
	v, err := lookup("positive number", body, path)
	if err != nil {
		return err
	}
	n, err := v.AsNumber()
	if err != nil {
		return fail("positive number", path, "number", v.Kind().String())
	}
	if n <= 0 {
		return fail("positive number", path, "greater than 0", v)
	}
	return nil
}

// GreaterThan checks field > threshold. Both sides must be numbers or both strings.
func GreaterThan(body value.Value, path string, threshold value.Value) error {
	v, err := lookup("greater than", body, path)
	if err != nil {
		return err
	}
	c, err := value.Compare(v, threshold)
	if err != nil {
		return fail("greater than", path, fmt.Sprintf("a value comparable with %s", threshold.Kind()), v.Kind().String())
	}
	if c <= 0 {
		return fail("greater than", path, "greater than "+describe(threshold), v)
	}
	return nil
}

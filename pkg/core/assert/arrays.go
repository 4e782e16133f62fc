package assert

import (
	"context"
	"fmt"
	"strings"

	"github.com/blackcoderx/apicheck/pkg/core/value"
)

// Order is a sort direction for Sorted.
type Order int

const (
	Ascending Order = iota
	Descending
)

// ParseOrder accepts "ascending"/"asc" and "descending"/"desc".
func ParseOrder(s string) (Order, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ascending", "asc":
		return Ascending, nil
	case "descending", "desc":
		return Descending, nil
	default:
		return 0, fmt.Errorf("unknown sort order %q (want ascending or descending)", s)
	}
}

func (o Order) String() string {
	if o == Descending {
		return "descending"
	}
	return "ascending"
}

// itemField resolves path on the i-th array item.
func itemField(check string, item value.Value, i int, path string) (value.Value, error) {
	v, err := item.Path(path)
	if err != nil {
		return value.Value{}, &Error{
			Check:    check,
			Field:    fmt.Sprintf("[%d].%s", i, path),
			Expected: "field to exist",
			Actual:   err.Error(),
		}
	}
	return v, nil
}

// EachHasFields checks that every array item has every named field.
func EachHasFields(body value.Value, fields []string) error {
	arr, err := items("required fields", body)
	if err != nil {
		return err
	}
	for i, item := range arr {
		for _, f := range fields {
			if _, err := itemField("required fields", item, i, f); err != nil {
				return err
			}
		}
	}
	return nil
}

// EachFieldType checks that every item's field has the named JSON type.
func EachFieldType(body value.Value, path, typeName string) error {
	arr, err := items("field type", body)
	if err != nil {
		return err
	}
	for i, item := range arr {
		v, err := itemField("field type", item, i, path)
		if err != nil {
			return err
		}
		if v.Kind().String() != typeName {
			return fail("field type", fmt.Sprintf("[%d].%s", i, path), typeName, v.Kind().String())
		}
	}
	return nil
}

// EachPositive checks that every item's field is a number greater than zero.
func EachPositive(body value.Value, path string) error {
	arr, err := items("positive number", body)
	if err != nil {
		return err
	}
	for i, item := range arr {
		if err := PositiveNumber(item, path); err != nil {
			return reindex(err, i)
		}
	}
	return nil
}

// EachNonEmptyString checks that every item's field is a non-empty string.
func EachNonEmptyString(body value.Value, path string) error {
	arr, err := items("non-empty string", body)
	if err != nil {
		return err
	}
	for i, item := range arr {
		if err := NonEmptyString(item, path); err != nil {
			return reindex(err, i)
		}
	}
	return nil
}

// EachUnique checks that the field values are pairwise distinct: the number of
// distinct canonical forms must equal the array length.
func EachUnique(body value.Value, path string) error {
	arr, err := items("unique", body)
	if err != nil {
		return err
	}
	seen := make(map[string]int, len(arr))
	var dup []string
	for i, item := range arr {
		v, err := itemField("unique", item, i, path)
		if err != nil {
			return err
		}
		key := v.Canonical()
		if first, ok := seen[key]; ok {
			dup = append(dup, fmt.Sprintf("%s at [%d] and [%d]", key, first, i))
			continue
		}
		seen[key] = i
	}
	if len(seen) != len(arr) {
		e := fail("unique", path, fmt.Sprintf("%d distinct values", len(arr)), len(seen))
		e.Detail = "duplicates: " + strings.Join(dup, "; ")
		return e
	}
	return nil
}

// Sorted checks adjacent pairs: a[i] <= a[i+1] ascending, a[i] >= a[i+1]
// descending. Equal neighbours pass.
func Sorted(body value.Value, path string, order Order) error {
	arr, err := items("sorted", body)
	if err != nil {
		return err
	}
	for i := 0; i+1 < len(arr); i++ {
		a, err := itemField("sorted", arr[i], i, path)
		if err != nil {
			return err
		}
		b, err := itemField("sorted", arr[i+1], i+1, path)
		if err != nil {
			return err
		}
		c, err := value.Compare(a, b)
		if err != nil {
			return fail("sorted", fmt.Sprintf("[%d].%s", i, path), "comparable values", err.Error())
		}
		if (order == Ascending && c > 0) || (order == Descending && c < 0) {
			e := fail("sorted", path, order.String()+" order", fmt.Sprintf("%s before %s", describe(a), describe(b)))
			e.Detail = fmt.Sprintf("items [%d] and [%d] are out of order", i, i+1)
			return e
		}
	}
	return nil
}

// NoneIn checks that no item "id" of the current array appears in the stored
// array.
func NoneIn(body value.Value, stored value.Value) error {
	arr, err := items("excluded ids", body)
	if err != nil {
		return err
	}
	storedItems, err := stored.AsArray()
	if err != nil {
		return fail("excluded ids", "", "a stored array", stored.Kind().String())
	}
	excluded := make(map[string]bool, len(storedItems))
	for _, s := range storedItems {
		excluded[s.Canonical()] = true
	}
	var overlap []string
	for _, item := range arr {
		id, err := item.Field("id")
		if err != nil {
			continue
		}
		if excluded[id.Canonical()] {
			overlap = append(overlap, id.Canonical())
		}
	}
	if len(overlap) > 0 {
		return fail("excluded ids", "id", "no overlap with stored values", "["+strings.Join(overlap, ", ")+"]")
	}
	return nil
}

// StatusLookup performs a GET on path and returns the status code.
type StatusLookup func(ctx context.Context, path string) (int, error)

// ForeignKeys checks that every item's field resolves to an existing resource:
// a GET on resource/value must return 200. One request per item.
func ForeignKeys(ctx context.Context, body value.Value, path, resource string, lookup StatusLookup) error {
	arr, err := items("foreign key", body)
	if err != nil {
		return err
	}
	resource = strings.TrimRight(resource, "/")
	for i, item := range arr {
		v, err := itemField("foreign key", item, i, path)
		if err != nil {
			return err
		}
		target := resource + "/" + v.String()
		status, err := lookup(ctx, target)
		if err != nil {
			return fmt.Errorf("foreign key lookup %s: %w", target, err)
		}
		if status != 200 {
			e := fail("foreign key", fmt.Sprintf("[%d].%s", i, path), "status 200 from "+target, status)
			return e
		}
	}
	return nil
}

// reindex prefixes the field of an item-level failure with its array index.
func reindex(err error, i int) error {
	if ae, ok := err.(*Error); ok {
		ae.Field = fmt.Sprintf("[%d].%s", i, ae.Field)
		return ae
	}
	return err
}

package assert

import (
	"fmt"
	"strings"
)

// HeaderGetter is a case-insensitive header lookup.
type HeaderGetter interface {
	Get(name string) (string, bool)
}

// HasHeader checks that a header is present.
func HasHeader(h HeaderGetter, name string) error {
	if _, ok := h.Get(name); !ok {
		return fail("header", name, "header to be present", "absent")
	}
	return nil
}

// HeaderContains checks that a header value contains substr.
func HeaderContains(h HeaderGetter, name, substr string) error {
	v, ok := h.Get(name)
	if !ok {
		return fail("header", name, fmt.Sprintf("a value containing %q", substr), "absent")
	}
	if !strings.Contains(v, substr) {
		return fail("header", name, fmt.Sprintf("a value containing %q", substr), fmt.Sprintf("%q", v))
	}
	return nil
}

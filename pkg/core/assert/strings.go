package assert

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/blackcoderx/apicheck/pkg/core/value"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	// Tab, LF and CR are allowed.
	controlCharPattern = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F\x7F]`)
)

// IsEmail reports whether s has the shape local@domain.tld.
func IsEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// HasControlChars reports whether s contains a forbidden control character.
func HasControlChars(s string) bool {
	return controlCharPattern.MatchString(s)
}

// stringField resolves path and requires a string.
func stringField(check string, body value.Value, path string) (string, error) {
	v, err := lookup(check, body, path)
	if err != nil {
		return "", err
	}
	s, err := v.AsString()
	if err != nil {
		return "", fail(check, path, "string", v.Kind().String())
	}
	return s, nil
}

// NonEmptyString checks that a field is a string of length > 0.
func NonEmptyString(body value.Value, path string) error {
	s, err := stringField("non-empty string", body, path)
	if err != nil {
		return err
	}
	if s == "" {
		return fail("non-empty string", path, "a non-empty string", `""`)
	}
	return nil
}

// NotEmptyString checks that a field is not the empty string. Non-string
// values pass.
func NotEmptyString(body value.Value, path string) error {
	v, err := lookup("not empty", body, path)
	if err != nil {
		return err
	}
	if s, err := v.AsString(); err == nil && s == "" {
		return fail("not empty", path, "a value other than the empty string", `""`)
	}
	return nil
}

// NoLeadingWhitespace checks value == TrimLeft(value).
func NoLeadingWhitespace(body value.Value, path string) error {
	s, err := stringField("leading whitespace", body, path)
	if err != nil {
		return err
	}
	if trimmed := strings.TrimLeftFunc(s, unicode.IsSpace); trimmed != s {
		return fail("leading whitespace", path, fmt.Sprintf("%q", trimmed), fmt.Sprintf("%q", s))
	}
	return nil
}

// NoTrailingWhitespace checks value == TrimRight(value).
func NoTrailingWhitespace(body value.Value, path string) error {
	s, err := stringField("trailing whitespace", body, path)
	if err != nil {
		return err
	}
	if trimmed := strings.TrimRightFunc(s, unicode.IsSpace); trimmed != s {
		return fail("trailing whitespace", path, fmt.Sprintf("%q", trimmed), fmt.Sprintf("%q", s))
	}
	return nil
}

// NoSpaces checks that a field has no space character.
func NoSpaces(body value.Value, path string) error {
	s, err := stringField("no spaces", body, path)
	if err != nil {
		return err
	}
	if strings.Contains(s, " ") {
		return fail("no spaces", path, "no space characters", fmt.Sprintf("%q", s))
	}
	return nil
}

// EmailFormat checks a field against the email shape.
func EmailFormat(body value.Value, path string) error {
	s, err := stringField("email format", body, path)
	if err != nil {
		return err
	}
	if !IsEmail(s) {
		return fail("email format", path, "an address like name@domain.tld", fmt.Sprintf("%q", s))
	}
	return nil
}

// NoControlChars checks that a field has no control characters other than
// tab, LF and CR.
func NoControlChars(body value.Value, path string) error {
	s, err := stringField("control characters", body, path)
	if err != nil {
		return err
	}
	if loc := controlCharPattern.FindStringIndex(s); loc != nil {
		return fail("control characters", path, "none", fmt.Sprintf("%q at byte %d", s[loc[0]:loc[1]], loc[0]))
	}
	return nil
}

// LengthGreaterThan checks len(field) > n. Strings count characters, arrays items.
func LengthGreaterThan(body value.Value, path string, n int) error {
	v, err := lookup("length", body, path)
	if err != nil {
		return err
	}
	l, err := v.Len()
	if err != nil || v.Kind() == value.Object {
		return fail("length", path, "a string or array", v.Kind().String())
	}
	if l <= n {
		return fail("length", path, fmt.Sprintf("greater than %d", n), l)
	}
	return nil
}

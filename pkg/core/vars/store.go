// Package vars holds values captured during one scenario and substitutes them
// into later request templates.
package vars

import (
	"errors"
	"fmt"
	"regexp"
	"sort"

	"github.com/blackcoderx/apicheck/pkg/core/value"
)

var (
	// ErrMissingVariable is returned by Get for a name that was never stored.
	ErrMissingVariable = errors.New("missing variable")
	// ErrUnresolvedPlaceholder is returned by Substitute for an unknown {name}.
	ErrUnresolvedPlaceholder = errors.New("unresolved placeholder")
)

// placeholderPattern matches {name}. Names follow identifier rules so JSON
// bodies and query strings are left alone.
var placeholderPattern = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Store maps variable names to captured values. It is owned by one scenario
// and is not safe for concurrent use.
type Store struct {
	values map[string]value.Value
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{values: make(map[string]value.Value)}
}

// Set stores v under name, replacing any previous value.
func (s *Store) Set(name string, v value.Value) {
	s.values[name] = v
}

// Get returns the value stored under name.
func (s *Store) Get(name string) (value.Value, error) {
	v, ok := s.values[name]
	if !ok {
		return value.Value{}, fmt.Errorf("%w %q", ErrMissingVariable, name)
	}
	return v, nil
}

// Has reports whether name was stored.
func (s *Store) Has(name string) bool {
	_, ok := s.values[name]
	return ok
}

// Names returns stored names in sorted order.
func (s *Store) Names() []string {
	names := make([]string, 0, len(s.values))
	for k := range s.values {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of stored variables.
func (s *Store) Len() int {
	return len(s.values)
}

// Substitute replaces every {name} in template with the string form of the
// stored value. Any placeholder without a stored value fails the whole
// substitution rather than leaking a literal {name} into a URL.
func (s *Store) Substitute(template string) (string, error) {
	var missing []string
	out := placeholderPattern.ReplaceAllStringFunc(template, func(match string) string {
		name := match[1 : len(match)-1]
		v, ok := s.values[name]
		if !ok {
			missing = append(missing, name)
			return match
		}
		return v.String()
	})
	if len(missing) > 0 {
		return "", fmt.Errorf("%w %q in %q", ErrUnresolvedPlaceholder, missing[0], template)
	}
	return out, nil
}

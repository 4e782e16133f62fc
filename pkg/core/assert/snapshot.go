package assert

import (
	"encoding/json"

	"github.com/aymanbagabas/go-udiff"

	"github.com/blackcoderx/apicheck/pkg/core/value"
)

// MatchesSnapshot compares the canonical form of body with a stored canonical
// snapshot. A mismatch carries a unified diff of the indented documents.
func MatchesSnapshot(body value.Value, snapshot string) error {
	current := body.Canonical()
	if current == snapshot {
		return nil
	}
	e := fail("snapshot", "", "the stored response", "a different response")
	e.Detail = udiff.Unified("stored", "current", indent(snapshot), indent(current))
	return e
}

func indent(canonical string) string {
	var v any
	if err := json.Unmarshal([]byte(canonical), &v); err != nil {
		return canonical + "\n"
	}
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return canonical + "\n"
	}
	return string(out) + "\n"
}

package assert

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// MatchesSchemaFile validates a raw JSON body against the schema at path.
func MatchesSchemaFile(body []byte, path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve schema path: %w", err)
	}
	return matchesSchema(body, gojsonschema.NewReferenceLoader("file://"+filepath.ToSlash(abs)), path)
}

// MatchesSchema validates a raw JSON body against an in-memory schema document.
func MatchesSchema(body, schema []byte) error {
	return matchesSchema(body, gojsonschema.NewBytesLoader(schema), "inline schema")
}

func matchesSchema(body []byte, schema gojsonschema.JSONLoader, name string) error {
	result, err := gojsonschema.Validate(schema, gojsonschema.NewBytesLoader(body))
	if err != nil {
		return fmt.Errorf("validate against %s: %w", name, err)
	}
	if result.Valid() {
		return nil
	}
	lines := make([]string, 0, len(result.Errors()))
	for _, re := range result.Errors() {
		lines = append(lines, fmt.Sprintf("- %s: %s", re.Field(), re.Description()))
	}
	e := fail("json schema", "", "a document valid against "+name, fmt.Sprintf("%d violation(s)", len(lines)))
	e.Detail = strings.Join(lines, "\n")
	return e
}

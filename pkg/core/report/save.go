package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Save writes the run as JSON and Markdown into dir and returns the JSON
// file's path.
func Save(dir string, r *Run) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create results directory: %w", err)
	}

	base := filepath.Join(dir, fileStem(r))
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal run: %w", err)
	}
	if err := os.WriteFile(base+".json", data, 0644); err != nil {
		return "", fmt.Errorf("failed to write run: %w", err)
	}
	if err := os.WriteFile(base+".md", []byte(Markdown(r)), 0644); err != nil {
		return "", fmt.Errorf("failed to write summary: %w", err)
	}
	return base + ".json", nil
}

// Load reads a run saved by Save.
func Load(path string) (*Run, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read run: %w", err)
	}
	var r Run
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to parse run %s: %w", path, err)
	}
	return &r, nil
}

// fileStem is <name>-<timestamp>-<short id>.
func fileStem(r *Run) string {
	name := strings.ToLower(strings.Join(strings.Fields(r.Name), "-"))
	if name == "" {
		name = "run"
	}
	id := r.ID
	if len(id) > 8 {
		id = id[:8]
	}
	return fmt.Sprintf("%s-%s-%s", name, r.StartTime.Format("2006-01-02-15-04-05"), id)
}

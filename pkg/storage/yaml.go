package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrNotFound is returned when a named request or fixture does not exist.
var ErrNotFound = errors.New("not found")

// SaveRequest writes req to requests/<req.Name>.yaml under baseDir.
func SaveRequest(baseDir string, req Request) error {
	if req.Name == "" {
		return fmt.Errorf("request name is required")
	}
	path, err := ConfinePath(filepath.Join(requestsDir, req.Name+".yaml"), baseDir)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	data, err := yaml.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// LoadRequest reads the saved request called name. The name defaults when
// the file omits it.
func LoadRequest(baseDir, name string) (*Request, error) {
	data, err := readNamed(baseDir, requestsDir, name)
	if err != nil {
		return nil, fmt.Errorf("request %q: %w", name, err)
	}

	var req Request
	if err := yaml.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request %q: %w", name, err)
	}
	if req.Name == "" {
		req.Name = name
	}
	if req.Method == "" {
		req.Method = "GET"
	}
	return &req, nil
}

// ListRequests returns saved request names (paths relative to requests/,
// without extension), sorted.
func ListRequests(baseDir string) ([]string, error) {
	return listYAML(GetRequestsDir(baseDir))
}

// LoadFixture reads fixtures/<name>.yaml, .yml or .json and returns the
// decoded document. Fixtures are JSON-compatible payloads for write requests.
func LoadFixture(baseDir, name string) (any, error) {
	data, err := readNamed(baseDir, fixturesDir, name, ".json")
	if err != nil {
		return nil, fmt.Errorf("fixture %q: %w", name, err)
	}
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse fixture %q: %w", name, err)
	}
	return doc, nil
}

// Subdirectories of the project folder.
const (
	requestsDir     = "requests"
	environmentsDir = "environments"
	fixturesDir     = "fixtures"
	schemasDir      = "schemas"
)

// GetRequestsDir returns the requests directory path
func GetRequestsDir(baseDir string) string {
	return filepath.Join(baseDir, requestsDir)
}

// GetEnvironmentsDir returns the environments directory path
func GetEnvironmentsDir(baseDir string) string {
	return filepath.Join(baseDir, environmentsDir)
}

// GetFixturesDir returns the fixtures directory path
func GetFixturesDir(baseDir string) string {
	return filepath.Join(baseDir, fixturesDir)
}

// GetSchemasDir returns the schemas directory path
func GetSchemasDir(baseDir string) string {
	return filepath.Join(baseDir, schemasDir)
}

// readNamed finds sub/name under baseDir with a YAML extension (or one of
// extra) and reads it. The resolved path must stay inside baseDir.
func readNamed(baseDir, sub, name string, extra ...string) ([]byte, error) {
	exts := append([]string{".yaml", ".yml"}, extra...)
	for _, ext := range exts {
		path, err := ConfinePath(filepath.Join(sub, name+ext), baseDir)
		if err != nil {
			return nil, err
		}
		data, err := os.ReadFile(path)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}
	return nil, ErrNotFound
}

func listYAML(dir string) ([]string, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return []string{}, nil
	}

	var names []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		ext := filepath.Ext(path)
		if d.IsDir() || (ext != ".yaml" && ext != ".yml") {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		names = append(names, filepath.ToSlash(strings.TrimSuffix(rel, ext)))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}
	sort.Strings(names)
	return names, nil
}

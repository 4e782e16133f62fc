package core

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/blackcoderx/apicheck/pkg/storage"
)

const ProjectFolderName = ".apicheck"

// InitOptions controls what InitializeProject writes.
type InitOptions struct {
	BaseURL string
	// AuthStyle adds an auth placeholder to config.json: "bearer", "api_key"
	// or empty for none.
	AuthStyle string
	// Example writes a sample feature file and saved request.
	Example bool
}

// InitializeProject creates the .apicheck folder under root with default
// files. It reports whether the folder was created; an existing folder only
// gets its missing subdirectories.
func InitializeProject(root string, opts InitOptions) (bool, error) {
	dir := filepath.Join(root, ProjectFolderName)
	subdirs := []string{
		storage.GetEnvironmentsDir(dir),
		storage.GetRequestsDir(dir),
		storage.GetFixturesDir(dir),
		storage.GetSchemasDir(dir),
	}

	if _, err := os.Stat(dir); err == nil {
		for _, sub := range subdirs {
			if err := os.MkdirAll(sub, 0755); err != nil {
				return false, fmt.Errorf("failed to create %s: %w", sub, err)
			}
		}
		return false, nil
	}

	for _, sub := range subdirs {
		if err := os.MkdirAll(sub, 0755); err != nil {
			return false, fmt.Errorf("failed to create %s: %w", sub, err)
		}
	}
	if opts.BaseURL == "" {
		opts.BaseURL = "https://jsonplaceholder.typicode.com"
	}
	if err := createDefaultConfig(dir, opts); err != nil {
		return false, err
	}
	if err := createDefaultEnvironment(dir, opts.BaseURL); err != nil {
		return false, err
	}
	if opts.Example {
		if err := createExample(root, dir); err != nil {
			return false, err
		}
	}
	return true, nil
}

func createDefaultConfig(dir string, opts InitOptions) error {
	authCfg := map[string]any{
		"bearer_token": "",
		"api_key":      "",
	}
	switch opts.AuthStyle {
	case "bearer":
		authCfg["bearer_token"] = "{{API_TOKEN}}"
	case "api_key":
		authCfg["api_key"] = "{{API_KEY}}"
	}

	config := map[string]any{
		"base_url":        "{{BASE_URL}}",
		"environment":     "dev",
		"features":        []string{"features"},
		"tags":            "",
		"concurrency":     1,
		"format":          "pretty",
		"step_timeout":    "30s",
		"request_timeout": "10s",
		"rate_limit_rps":  0,
		"default_headers": map[string]string{"Accept": "application/json"},
		"save_results":    false,
		"results_dir":     filepath.ToSlash(filepath.Join(ProjectFolderName, "results")),
		"schemas_dir":     filepath.ToSlash(filepath.Join(ProjectFolderName, "schemas")),
		"log_level":       "info",
		"auth":            authCfg,
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.json"), data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func createDefaultEnvironment(dir, baseURL string) error {
	env := &storage.Environment{
		Name: "dev",
		Variables: map[string]string{
			"BASE_URL":  baseURL,
			"API_TOKEN": "{{env:API_TOKEN}}",
			"API_KEY":   "{{env:API_KEY}}",
		},
	}
	if err := storage.SaveEnvironment(dir, env); err != nil {
		return fmt.Errorf("failed to write dev environment: %w", err)
	}
	return nil
}

const exampleFeature = `Feature: Example
  Scenario: Fetch the first post
    When I send a GET request to "/posts/1"
    Then the response status code should be 200
    And the response should have property "id" with value 1

  Scenario: Run a saved request
    When I send the saved request "first-post"
    Then the response status code should be 200
`

func createExample(root, dir string) error {
	req := storage.Request{
		Name:        "first-post",
		Description: "Fetch the first post",
		Method:      "GET",
		Path:        "/posts/1",
		Headers:     map[string]string{"Accept": "application/json"},
	}
	if err := storage.SaveRequest(dir, req); err != nil {
		return fmt.Errorf("failed to write example request: %w", err)
	}

	featuresDir := filepath.Join(root, "features")
	if err := os.MkdirAll(featuresDir, 0755); err != nil {
		return fmt.Errorf("failed to create features folder: %w", err)
	}
	path := filepath.Join(featuresDir, "example.feature")
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	if err := os.WriteFile(path, []byte(exampleFeature), 0644); err != nil {
		return fmt.Errorf("failed to write example feature: %w", err)
	}
	return nil
}

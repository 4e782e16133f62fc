package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackcoderx/apicheck/pkg/storage"
	"github.com/blackcoderx/apicheck/pkg/testutil/fakeapi"
)

const passingFeature = `Feature: Smoke
  Scenario: First post
    When I send a GET request to "/posts/1"
    Then the response status code should be 200
`

const failingFeature = `Feature: Broken
  Scenario: Wrong status
    When I send a GET request to "/posts/1"
    Then the response status code should be 418
`

// newProject writes a config pointing at a fresh fake API and returns the
// config path and the project directory.
func newProject(t *testing.T, extra string) (string, string) {
	t.Helper()
	_, srv := fakeapi.NewServer(t)
	dir := t.TempDir()
	cfg := fmt.Sprintf(`{"base_url": %q, "format": "progress", "results_dir": %q%s}`,
		srv.URL, filepath.Join(dir, "results"), extra)
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0644))
	return path, dir
}

func writeFeature(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "smoke.feature")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func execute(args ...string) error {
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

func TestRunCommand(t *testing.T) {
	cfgPath, dir := newProject(t, `, "save_results": true`)
	feature := writeFeature(t, dir, passingFeature)

	require.NoError(t, execute("--config", cfgPath, "run", feature))

	matches, err := filepath.Glob(filepath.Join(dir, "results", "apicheck-*.json"))
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestRunCommand_Failure(t *testing.T) {
	cfgPath, dir := newProject(t, "")
	feature := writeFeature(t, dir, failingFeature)

	err := execute("--config", cfgPath, "run", feature)
	assert.ErrorIs(t, err, errScenariosFailed)
}

func TestRunCommand_MissingEnvironment(t *testing.T) {
	cfgPath, dir := newProject(t, "")
	feature := writeFeature(t, dir, passingFeature)
	require.NoError(t, storage.SaveEnvironment(dir, &storage.Environment{Name: "dev", Variables: map[string]string{"A": "1"}}))
	require.NoError(t, storage.SaveEnvironment(dir, &storage.Environment{Name: "prod", Variables: map[string]string{"A": "2"}}))
	t.Cleanup(func() { runFlags.env = "" })

	err := execute("--config", cfgPath, "run", "--env", "staging", feature)
	require.Error(t, err, "an explicitly named environment must exist")
	assert.Contains(t, err.Error(), "available: dev, prod")
}

func TestReportCommand(t *testing.T) {
	cfgPath, dir := newProject(t, `, "save_results": true`)
	feature := writeFeature(t, dir, failingFeature)
	require.ErrorIs(t, execute("--config", cfgPath, "run", feature), errScenariosFailed)

	var out bytes.Buffer
	reportCmd.SetOut(&out)
	t.Cleanup(func() { reportCmd.SetOut(nil) })

	require.NoError(t, execute("--config", cfgPath, "report"))
	assert.Contains(t, out.String(), "FAIL")
	assert.Contains(t, out.String(), "1 scenarios")

	err := execute("--config", cfgPath, "report", filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestStepsCommand(t *testing.T) {
	var out bytes.Buffer
	stepsCmd.SetOut(&out)
	t.Cleanup(func() { stepsCmd.SetOut(nil); stepsFilter = "" })

	require.NoError(t, execute("steps", "--filter", "status code"))
	assert.Contains(t, out.String(), "the response status code should be {int}")
	assert.NotContains(t, out.String(), "bearer token")
}

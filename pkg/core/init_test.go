package core

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackcoderx/apicheck/pkg/storage"
)

func TestInitializeProject(t *testing.T) {
	root := t.TempDir()

	created, err := InitializeProject(root, InitOptions{
		BaseURL:   "http://localhost:3000",
		AuthStyle: "bearer",
		Example:   true,
	})
	require.NoError(t, err)
	assert.True(t, created)

	dir := filepath.Join(root, ProjectFolderName)
	for _, sub := range []string{"environments", "requests", "fixtures", "schemas"} {
		info, err := os.Stat(filepath.Join(dir, sub))
		require.NoError(t, err, sub)
		assert.True(t, info.IsDir())
	}

	v, err := NewViper(filepath.Join(dir, "config.json"))
	require.NoError(t, err)
	cfg, err := LoadConfig(v)
	require.NoError(t, err)
	assert.Equal(t, "{{BASE_URL}}", cfg.BaseURL)
	assert.Equal(t, "{{API_TOKEN}}", cfg.Auth.BearerToken)

	t.Setenv("API_TOKEN", "from-shell")
	env, err := storage.LoadEnvironment(dir, cfg.Environment)
	require.NoError(t, err)
	require.NoError(t, cfg.ApplyEnvironment(env))
	assert.Equal(t, "http://localhost:3000", cfg.BaseURL)
	assert.Equal(t, "from-shell", cfg.Auth.BearerToken)

	req, err := storage.LoadRequest(dir, "first-post")
	require.NoError(t, err)
	assert.Equal(t, "/posts/1", req.Path)
	_, err = os.Stat(filepath.Join(root, "features", "example.feature"))
	assert.NoError(t, err)
}

func TestInitializeProject_Existing(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, ProjectFolderName)
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte(`{"base_url":"keep"}`), 0644))

	created, err := InitializeProject(root, InitOptions{})
	require.NoError(t, err)
	assert.False(t, created)

	data, err := os.ReadFile(filepath.Join(dir, "config.json"))
	require.NoError(t, err)
	assert.Equal(t, `{"base_url":"keep"}`, string(data), "existing config is left alone")
	_, err = os.Stat(filepath.Join(dir, "fixtures"))
	assert.NoError(t, err, "missing subdirectories are added")
}

package core

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackcoderx/apicheck/pkg/storage"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadConfig_FileAndDefaults(t *testing.T) {
	path := writeConfig(t, `{
		"base_url": "http://localhost:3000",
		"step_timeout": "5s",
		"rate_limit_rps": 2.5,
		"default_headers": {"Accept": "application/json"},
		"auth": {"oauth2": {"token_url": "/oauth/token", "client_id": "c", "scopes": ["read"]}}
	}`)

	v, err := NewViper(path)
	require.NoError(t, err)
	cfg, err := LoadConfig(v)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:3000", cfg.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.StepTimeout)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout, "default")
	assert.Equal(t, 2.5, cfg.RateLimitRPS)
	assert.Equal(t, 1, cfg.Concurrency)
	assert.Equal(t, "application/json", cfg.DefaultHeaders["accept"])
	assert.Equal(t, []string{"features"}, cfg.Features)
	assert.Equal(t, "/oauth/token", cfg.Auth.OAuth2.TokenURL)
	assert.Equal(t, []string{"read"}, cfg.Auth.OAuth2.Scopes)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	path := writeConfig(t, `{"base_url": "http://from-file"}`)
	t.Setenv("APICHECK_BASE_URL", "http://from-env")
	t.Setenv("APICHECK_AUTH_BEARER_TOKEN", "tok")
	t.Setenv("APICHECK_CONCURRENCY", "4")

	v, err := NewViper(path)
	require.NoError(t, err)
	cfg, err := LoadConfig(v)
	require.NoError(t, err)

	assert.Equal(t, "http://from-env", cfg.BaseURL)
	assert.Equal(t, "tok", cfg.Auth.BearerToken)
	assert.Equal(t, 4, cfg.Concurrency)
}

func TestNewViper_MissingExplicitFile(t *testing.T) {
	_, err := NewViper(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"negative step timeout", func(c *Config) { c.StepTimeout = -time.Second }, "step_timeout"},
		{"negative request timeout", func(c *Config) { c.RequestTimeout = -time.Second }, "request_timeout"},
		{"negative rate", func(c *Config) { c.RateLimitRPS = -1 }, "rate_limit_rps"},
		{"zero concurrency", func(c *Config) { c.Concurrency = 0 }, "concurrency"},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{Concurrency: 1, LogLevel: "info"}
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestConfig_ApplyEnvironment(t *testing.T) {
	env := &storage.Environment{Name: "dev", Variables: map[string]string{
		"BASE_URL":  "http://localhost:8080",
		"API_TOKEN": "abc",
	}}
	cfg := Config{
		BaseURL:        "{{BASE_URL}}/v1",
		DefaultHeaders: map[string]string{"x-token": "{{API_TOKEN}}"},
		Auth:           AuthConfig{BearerToken: "{{API_TOKEN}}"},
	}
	require.NoError(t, cfg.ApplyEnvironment(env))
	assert.Equal(t, "http://localhost:8080/v1", cfg.BaseURL)
	assert.Equal(t, "abc", cfg.DefaultHeaders["x-token"])
	assert.Equal(t, "abc", cfg.Auth.BearerToken)

	cfg = Config{BaseURL: "{{HOST}}"}
	assert.ErrorContains(t, cfg.ApplyEnvironment(env), "HOST")
}

func TestConfig_ScenarioOptions(t *testing.T) {
	cfg := Config{
		BaseURL:        "http://api",
		RequestTimeout: time.Second,
		SchemasDir:     "schemas",
		Auth:           AuthConfig{APIKey: "k"},
	}
	opts := cfg.ScenarioOptions(".apicheck", nil, slog.Default())
	assert.Equal(t, "http://api", opts.BaseURL)
	assert.Equal(t, time.Second, opts.RequestTimeout)
	assert.Equal(t, ".apicheck", opts.ProjectDir)
	assert.Equal(t, "schemas", opts.SchemasDir)
	assert.Equal(t, "k", opts.APIKey)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(&buf, "warn", false)
	require.NoError(t, err)
	logger.Info("hidden")
	logger.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")

	buf.Reset()
	logger, err = NewLogger(&buf, "error", true)
	require.NoError(t, err)
	logger.Debug("verbose wins")
	assert.Contains(t, buf.String(), "verbose wins")

	_, err = NewLogger(&buf, "chatty", false)
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{
		"":      slog.LevelInfo,
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"Warn":  slog.LevelWarn,
		"error": slog.LevelError,
	} {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

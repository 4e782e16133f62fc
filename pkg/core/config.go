// Package core loads the runner configuration, sets up logging and creates the
// .apicheck project folder.
package core

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/blackcoderx/apicheck/pkg/core/auth"
	"github.com/blackcoderx/apicheck/pkg/core/scenario"
	"github.com/blackcoderx/apicheck/pkg/storage"
)

// EnvPrefix is prepended to environment variable overrides, e.g.
// APICHECK_BASE_URL or APICHECK_AUTH_BEARER_TOKEN.
const EnvPrefix = "APICHECK"

// Config is the runner configuration read from .apicheck/config.json.
type Config struct {
	BaseURL        string            `mapstructure:"base_url"`
	StepTimeout    time.Duration     `mapstructure:"step_timeout"`
	RequestTimeout time.Duration     `mapstructure:"request_timeout"`
	RateLimitRPS   float64           `mapstructure:"rate_limit_rps"`
	DefaultHeaders map[string]string `mapstructure:"default_headers"`
	Environment    string            `mapstructure:"environment"`
	Features       []string          `mapstructure:"features"`
	Tags           string            `mapstructure:"tags"`
	Concurrency    int               `mapstructure:"concurrency"`
	Format         string            `mapstructure:"format"`
	SaveResults    bool              `mapstructure:"save_results"`
	ResultsDir     string            `mapstructure:"results_dir"`
	SchemasDir     string            `mapstructure:"schemas_dir"`
	LogLevel       string            `mapstructure:"log_level"`
	Auth           AuthConfig        `mapstructure:"auth"`
}

// AuthConfig seeds scenario credentials.
type AuthConfig struct {
	BearerToken string                 `mapstructure:"bearer_token"`
	APIKey      string                 `mapstructure:"api_key"`
	OAuth2      auth.ClientCredentials `mapstructure:"oauth2"`
}

// SetDefaults registers every key so environment overrides apply even when
// the config file omits them.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("base_url", "https://jsonplaceholder.typicode.com")
	v.SetDefault("step_timeout", "30s")
	v.SetDefault("request_timeout", "10s")
	v.SetDefault("rate_limit_rps", 0)
	v.SetDefault("default_headers", map[string]string{})
	v.SetDefault("environment", "dev")
	v.SetDefault("features", []string{"features"})
	v.SetDefault("tags", "")
	v.SetDefault("concurrency", 1)
	v.SetDefault("format", "pretty")
	v.SetDefault("save_results", false)
	v.SetDefault("results_dir", ProjectFolderName+"/results")
	v.SetDefault("schemas_dir", ProjectFolderName+"/schemas")
	v.SetDefault("log_level", "info")
	v.SetDefault("auth.bearer_token", "")
	v.SetDefault("auth.api_key", "")
	v.SetDefault("auth.oauth2.token_url", "")
	v.SetDefault("auth.oauth2.client_id", "")
	v.SetDefault("auth.oauth2.client_secret", "")
	v.SetDefault("auth.oauth2.scopes", []string{})
}

// NewViper returns a viper instance reading cfgFile, or config.json inside
// the project folder when cfgFile is empty. A missing file is not an error.
func NewViper(cfgFile string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(ProjectFolderName)
		v.SetConfigType("json")
		v.SetConfigName("config")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}
	return v, nil
}

// LoadConfig decodes and validates the configuration held by v.
func LoadConfig(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks ranges that the decoder cannot.
func (c *Config) Validate() error {
	switch {
	case c.StepTimeout < 0:
		return fmt.Errorf("step_timeout must not be negative, got %s", c.StepTimeout)
	case c.RequestTimeout < 0:
		return fmt.Errorf("request_timeout must not be negative, got %s", c.RequestTimeout)
	case c.RateLimitRPS < 0:
		return fmt.Errorf("rate_limit_rps must not be negative, got %g", c.RateLimitRPS)
	case c.Concurrency < 1:
		return fmt.Errorf("concurrency must be at least 1, got %d", c.Concurrency)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// ApplyEnvironment substitutes {{VAR}} references in the string settings
// with values from env. A base URL that still holds a reference is an error.
func (c *Config) ApplyEnvironment(env *storage.Environment) error {
	c.BaseURL = env.Substitute(c.BaseURL)
	for k, val := range c.DefaultHeaders {
		c.DefaultHeaders[k] = env.Substitute(val)
	}
	c.Auth.BearerToken = env.Substitute(c.Auth.BearerToken)
	c.Auth.APIKey = env.Substitute(c.Auth.APIKey)
	c.Auth.OAuth2.TokenURL = env.Substitute(c.Auth.OAuth2.TokenURL)
	c.Auth.OAuth2.ClientID = env.Substitute(c.Auth.OAuth2.ClientID)
	c.Auth.OAuth2.ClientSecret = env.Substitute(c.Auth.OAuth2.ClientSecret)

	if missing := storage.Unresolved(c.BaseURL); len(missing) > 0 {
		return fmt.Errorf("base_url references undefined variables: %s", strings.Join(missing, ", "))
	}
	return nil
}

// ScenarioOptions maps the configuration onto per-scenario options.
func (c *Config) ScenarioOptions(projectDir string, env *storage.Environment, logger *slog.Logger) scenario.Options {
	return scenario.Options{
		BaseURL:        c.BaseURL,
		RequestTimeout: c.RequestTimeout,
		RateLimit:      c.RateLimitRPS,
		DefaultHeaders: c.DefaultHeaders,
		Logger:         logger,
		ProjectDir:     projectDir,
		SchemasDir:     c.SchemasDir,
		Environment:    env,
		BearerToken:    c.Auth.BearerToken,
		APIKey:         c.Auth.APIKey,
		OAuth2:         c.Auth.OAuth2,
	}
}

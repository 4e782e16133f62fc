package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/blackcoderx/apicheck/pkg/core"
	"github.com/blackcoderx/apicheck/pkg/storage"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

var (
	cfgFile  string
	verbose  bool
	cfgViper *viper.Viper
	cfgErr   error
)

var rootCmd = &cobra.Command{
	Use:   "apicheck",
	Short: "apicheck - behavior-driven REST API checks",
	Long: `apicheck runs Gherkin feature files against a REST API. Each step is
matched against a catalogue of phrases that send requests, capture values
and assert on status codes, JSON shape, headers and timing.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .apicheck/config.json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

func initConfig() {
	// Load .env file if it exists (optional, warn if malformed)
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Warning: Failed to load .env file: %v\n", err)
	}
	cfgViper, cfgErr = core.NewViper(cfgFile)
}

// project is the loaded configuration shared by the commands.
type project struct {
	dir    string
	cfg    *core.Config
	env    *storage.Environment
	logger *slog.Logger
}

// loadProject decodes the configuration and applies the selected
// environment. The configured default environment may be missing; one named
// on the command line may not.
func loadProject(envName string) (*project, error) {
	if cfgErr != nil {
		return nil, cfgErr
	}
	cfg, err := core.LoadConfig(cfgViper)
	if err != nil {
		return nil, err
	}
	logger, err := core.NewLogger(os.Stderr, cfg.LogLevel, verbose)
	if err != nil {
		return nil, err
	}

	dir := core.ProjectFolderName
	if cfgFile != "" {
		dir = filepath.Dir(cfgFile)
	}

	name := envName
	if name == "" {
		name = cfg.Environment
	}
	var env *storage.Environment
	if name != "" {
		env, err = storage.LoadEnvironment(dir, name)
		switch {
		case err == nil:
			logger.Debug("environment loaded", "name", name, "variables", len(env.Variables))
		case envName == "" && errors.Is(err, fs.ErrNotExist):
			logger.Debug("default environment not found", "name", name)
		case errors.Is(err, fs.ErrNotExist):
			if names, lerr := storage.ListEnvironments(dir); lerr == nil && len(names) > 0 {
				return nil, fmt.Errorf("%w (available: %s)", err, strings.Join(names, ", "))
			}
			return nil, err
		default:
			return nil, err
		}
	}
	if err := cfg.ApplyEnvironment(env); err != nil {
		return nil, err
	}
	return &project{dir: dir, cfg: cfg, env: env, logger: logger}, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/cucumber/godog"
	"github.com/spf13/cobra"

	"github.com/blackcoderx/apicheck/pkg/core/report"
	"github.com/blackcoderx/apicheck/pkg/core/scenario"
	"github.com/blackcoderx/apicheck/pkg/core/steps"
)

var errScenariosFailed = errors.New("one or more scenarios failed")

var runFlags struct {
	tags        string
	concurrency int
	format      string
	env         string
	baseURL     string
	save        bool
}

func init() {
	rootCmd.AddCommand(runCmd)
	f := runCmd.Flags()
	f.StringVarP(&runFlags.tags, "tags", "t", "", `tag expression, e.g. "@smoke && ~@stateful"`)
	f.IntVarP(&runFlags.concurrency, "concurrency", "c", 1, "scenarios to run in parallel")
	f.StringVarP(&runFlags.format, "format", "f", "pretty", "godog formatter: pretty, progress, junit, cucumber")
	f.StringVarP(&runFlags.env, "env", "e", "", "environment to use for variable substitution")
	f.StringVar(&runFlags.baseURL, "base-url", "", "override the configured base URL")
	f.BoolVar(&runFlags.save, "save", false, "save a run report to the results directory")
}

var runCmd = &cobra.Command{
	Use:   "run [paths...]",
	Short: "Run feature files against the API",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loadProject(runFlags.env)
		if err != nil {
			return err
		}

		flags := cmd.Flags()
		if flags.Changed("tags") {
			p.cfg.Tags = runFlags.tags
		}
		if flags.Changed("concurrency") {
			p.cfg.Concurrency = runFlags.concurrency
		}
		if flags.Changed("format") {
			p.cfg.Format = runFlags.format
		}
		if flags.Changed("base-url") {
			p.cfg.BaseURL = runFlags.baseURL
		}
		if flags.Changed("save") {
			p.cfg.SaveResults = runFlags.save
		}
		if err := p.cfg.Validate(); err != nil {
			return err
		}

		paths := args
		if len(paths) == 0 {
			paths = p.cfg.Features
		}
		return runFeatures(p, paths)
	},
}

func runFeatures(p *project, paths []string) error {
	d := steps.NewDispatcher(steps.NewAPIRegistry(), func() *scenario.Context {
		return scenario.New(p.cfg.ScenarioOptions(p.dir, p.env, p.logger))
	}, steps.WithStepTimeout(p.cfg.StepTimeout), steps.WithLogger(p.logger))

	format := p.cfg.Format
	var cucumberPath string
	if p.cfg.SaveResults {
		f, err := os.CreateTemp("", "apicheck-*.json")
		if err != nil {
			return fmt.Errorf("failed to create report file: %w", err)
		}
		f.Close()
		cucumberPath = f.Name()
		defer os.Remove(cucumberPath)
		format += ",cucumber:" + cucumberPath
	}

	p.logger.Debug("running features", "paths", paths, "base_url", p.cfg.BaseURL, "tags", p.cfg.Tags)
	start := time.Now()
	status := godog.TestSuite{
		Name: "apicheck",
		ScenarioInitializer: func(sc *godog.ScenarioContext) {
			steps.Bind(sc, d)
		},
		Options: &godog.Options{
			Format:      format,
			Paths:       paths,
			Tags:        p.cfg.Tags,
			Concurrency: p.cfg.Concurrency,
			Strict:      true,
		},
	}.Run()

	if cucumberPath != "" {
		if err := saveRun(p, cucumberPath, start); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to save test results: %v\n", err)
		}
	}
	if status != 0 {
		return errScenariosFailed
	}
	return nil
}

func saveRun(p *project, cucumberPath string, start time.Time) error {
	data, err := os.ReadFile(cucumberPath)
	if err != nil {
		return err
	}
	run, err := report.ParseCucumber("apicheck", data)
	if err != nil {
		return err
	}
	run.StartTime = start

	path, err := report.Save(p.cfg.ResultsDir, run)
	if err != nil {
		return err
	}
	fmt.Println()
	fmt.Println(report.Render(report.Markdown(run), 100))
	fmt.Println(report.StatusLine(run))
	fmt.Fprintf(os.Stderr, "Results saved to %s\n", path)
	return nil
}

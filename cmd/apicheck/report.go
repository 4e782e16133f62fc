package main

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/blackcoderx/apicheck/pkg/core/report"
)

func init() {
	rootCmd.AddCommand(reportCmd)
}

var reportCmd = &cobra.Command{
	Use:   "report [file]",
	Short: "Show a saved run, the most recent one by default",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var path string
		if len(args) == 1 {
			path = args[0]
		} else {
			p, err := loadProject("")
			if err != nil {
				return err
			}
			if path, err = latestRun(p.cfg.ResultsDir); err != nil {
				return err
			}
		}

		run, err := report.Load(path)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, report.Render(report.Markdown(run), 100))
		fmt.Fprintln(out, report.StatusLine(run))
		return nil
	},
}

// latestRun picks the newest saved run; file names sort by start time.
func latestRun(dir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("no saved runs in %s", dir)
	}
	sort.Strings(matches)
	return matches[len(matches)-1], nil
}

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/blackcoderx/apicheck/pkg/core/steps"
)

var stepsFilter string

func init() {
	rootCmd.AddCommand(stepsCmd)
	stepsCmd.Flags().StringVar(&stepsFilter, "filter", "", "only list phrases containing this text")
}

var stepsCmd = &cobra.Command{
	Use:   "steps",
	Short: "List the phrases available in feature files",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		for _, def := range steps.NewAPIRegistry().Definitions() {
			if stepsFilter != "" && !strings.Contains(strings.ToLower(def.Template), strings.ToLower(stepsFilter)) {
				continue
			}
			if def.Table {
				fmt.Fprintf(out, "%s  (data table)\n", def.Template)
				continue
			}
			fmt.Fprintln(out, def.Template)
		}
	},
}

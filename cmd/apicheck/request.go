package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackcoderx/apicheck/pkg/core/report"
	"github.com/blackcoderx/apicheck/pkg/core/scenario"
	"github.com/blackcoderx/apicheck/pkg/storage"
)

var (
	requestEnv  string
	requestList bool
)

func init() {
	rootCmd.AddCommand(requestCmd)
	requestCmd.Flags().StringVarP(&requestEnv, "env", "e", "", "environment to use for variable substitution")
	requestCmd.Flags().BoolVarP(&requestList, "list", "l", false, "list saved requests")
}

var requestCmd = &cobra.Command{
	Use:   "request [name]",
	Short: "Send a saved request and print the response",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loadProject(requestEnv)
		if err != nil {
			return err
		}
		if requestList || len(args) == 0 {
			names, err := storage.ListRequests(p.dir)
			if err != nil {
				return err
			}
			for _, n := range names {
				fmt.Fprintln(cmd.OutOrStdout(), n)
			}
			return nil
		}

		sc := scenario.New(p.cfg.ScenarioOptions(p.dir, p.env, p.logger))
		defer sc.Close()
		resp, err := sc.SendSaved(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("request %q failed: %w", args[0], err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), report.Render(resp.Format(), 100))
		return nil
	},
}

package main

import (
	"fmt"
	"net/url"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/blackcoderx/apicheck/pkg/core"
)

var initFlags struct {
	baseURL string
	auth    string
	example bool
	yes     bool
}

func init() {
	rootCmd.AddCommand(initCmd)
	f := initCmd.Flags()
	f.StringVar(&initFlags.baseURL, "base-url", "https://jsonplaceholder.typicode.com", "API base URL")
	f.StringVar(&initFlags.auth, "auth", "", "auth placeholder: bearer, api_key or empty")
	f.BoolVar(&initFlags.example, "example", true, "write an example feature and saved request")
	f.BoolVarP(&initFlags.yes, "yes", "y", false, "skip the interactive form and use the flags")
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the .apicheck project folder",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := core.InitOptions{
			BaseURL:   initFlags.baseURL,
			AuthStyle: initFlags.auth,
			Example:   initFlags.example,
		}
		if !initFlags.yes {
			if err := initForm(&opts).Run(); err != nil {
				return err
			}
		}

		created, err := core.InitializeProject(".", opts)
		if err != nil {
			return fmt.Errorf("error initializing %s: %w", core.ProjectFolderName, err)
		}
		if !created {
			fmt.Printf("%s already exists; added any missing folders.\n", core.ProjectFolderName)
			return nil
		}
		fmt.Printf("✓ %s initialized. Run `apicheck run` to execute the feature files.\n", core.ProjectFolderName)
		return nil
	},
}

func initForm(opts *core.InitOptions) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("API base URL").
				Value(&opts.BaseURL).
				Validate(func(s string) error {
					u, err := url.Parse(s)
					if err != nil || u.Scheme == "" || u.Host == "" {
						return fmt.Errorf("enter an absolute URL like https://api.example.com")
					}
					return nil
				}),
			huh.NewSelect[string]().
				Title("Authentication").
				Options(
					huh.NewOption("None", ""),
					huh.NewOption("Bearer token (API_TOKEN)", "bearer"),
					huh.NewOption("API key (API_KEY)", "api_key"),
				).
				Value(&opts.AuthStyle),
			huh.NewConfirm().
				Title("Write an example feature?").
				Value(&opts.Example),
		),
	)
}

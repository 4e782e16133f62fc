package main

import (
	"fmt"
	"os"

	"github.com/blang/semver"
	"github.com/rhysd/go-github-selfupdate/selfupdate"
	"github.com/spf13/cobra"
)

const releaseRepo = "blackcoderx/apicheck"

func init() {
	rootCmd.AddCommand(updateCmd)
}

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update apicheck to the latest release",
	RunE: func(cmd *cobra.Command, args []string) error {
		if version == "dev" {
			fmt.Println("You are running a development build of apicheck. Update is not supported.")
			return nil
		}

		current, err := semver.ParseTolerant(version)
		if err != nil {
			return fmt.Errorf("parsing current version %q: %w", version, err)
		}
		latest, found, err := selfupdate.DetectLatest(releaseRepo)
		if err != nil {
			return fmt.Errorf("detecting latest version: %w", err)
		}
		if !found || latest.Version.LTE(current) {
			fmt.Println("Current version is the latest")
			return nil
		}

		fmt.Print("Do you want to update to ", latest.Version, "? (y/n): ")
		var input string
		fmt.Scanln(&input)
		if input != "y" {
			return nil
		}

		exe, err := os.Executable()
		if err != nil {
			return fmt.Errorf("could not locate executable path: %w", err)
		}
		if err := selfupdate.UpdateTo(latest.AssetURL, exe); err != nil {
			return fmt.Errorf("updating binary: %w", err)
		}
		fmt.Println("Successfully updated to version", latest.Version)
		return nil
	},
}

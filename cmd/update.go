package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/blang/semver"
	"github.com/creativeprojects/go-selfupdate"
	"github.com/spf13/cobra"
)

const updateRepo = "kodayn/osukit"

var checkOnly bool

// updateCmd represents the update command
var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update osukit to the latest version",
	Long:  `Check GitHub for a newer release and replace the running binary with it.`,
	RunE:  runUpdate,
}

func init() {
	rootCmd.AddCommand(updateCmd)

	updateCmd.Flags().BoolVar(&checkOnly, "check", false, "check for a new version without installing it")
}

func runUpdate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	// Source builds carry "dev" and cannot be compared against releases
	if _, err := semver.ParseTolerant(appVersion); err != nil {
		return fmt.Errorf("cannot update a non-release build (%s), download a release instead", appVersion)
	}

	latest, found, err := selfupdate.DetectLatest(ctx, selfupdate.ParseSlug(updateRepo))
	if err != nil {
		return fmt.Errorf("failed to check for updates: %w", err)
	}

	if !found || latest.LessOrEqual(appVersion) {
		fmt.Printf("✓ osukit %s is up to date\n", appVersion)
		return nil
	}

	if checkOnly {
		fmt.Printf("New version available: %s (current %s)\n", latest.Version(), appVersion)
		return nil
	}

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("could not locate executable: %w", err)
	}

	if err := selfupdate.UpdateTo(ctx, latest.AssetURL, latest.AssetName, exe); err != nil {
		return fmt.Errorf("failed to update binary: %w", err)
	}

	fmt.Printf("✓ Updated to version %s\n", latest.Version())
	return nil
}

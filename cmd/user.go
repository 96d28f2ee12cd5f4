package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kodayn/osukit/tracker"
)

var (
	bestCount   int
	recentCount int
	eventDays   int
)

// userCmd represents the user command
var userCmd = &cobra.Command{
	Use:   "user <username>",
	Short: "Show a player's profile with their best and recent plays",
	Long: `Look up a player by username or user ID and display their profile:
rank, pp, accuracy, play count, and their best and recent plays.`,
	Args:    cobra.ExactArgs(1),
	PreRunE: initializeApp,
	RunE:    runUser,
}

func init() {
	rootCmd.AddCommand(userCmd)

	userCmd.Flags().StringVarP(&modeFlag, "mode", "m", "", "game mode (osu, taiko, catch, mania)")
	userCmd.Flags().IntVar(&bestCount, "best", 10, "number of best plays to include")
	userCmd.Flags().IntVar(&recentCount, "recent", 10, "number of recent plays to include")
	userCmd.Flags().IntVar(&eventDays, "event-days", 1, "include profile events from the last N days (1-31)")
}

func runUser(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	mode, err := resolveMode()
	if err != nil {
		return err
	}

	profile, err := operations.FetchProfile(ctx, args[0], mode, tracker.ProfileOptions{
		BestCount:   bestCount,
		RecentCount: recentCount,
		EventDays:   eventDays,
	})
	if err != nil {
		return err
	}

	if jsonOutput() {
		return printJSON(profile)
	}

	fmt.Println(operations.Formatter().FormatProfile(profile, formatOptions(cmd)))
	return nil
}

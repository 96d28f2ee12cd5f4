package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// matchCmd represents the match command
var matchCmd = &cobra.Command{
	Use:     "match <match-id>",
	Short:   "Show a multiplayer match",
	Long:    `Look up a multiplayer match by its ID and display its games and scores.`,
	Args:    cobra.ExactArgs(1),
	PreRunE: initializeApp,
	RunE:    runMatch,
}

func init() {
	rootCmd.AddCommand(matchCmd)
}

func runMatch(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	matchID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid match id '%s'", args[0])
	}

	match, err := osuClient.GetMatch(ctx, matchID)
	if err != nil {
		return err
	}
	if match == nil {
		fmt.Printf("Match %d was not found.\n", matchID)
		return nil
	}

	if jsonOutput() {
		return printJSON(match)
	}

	fmt.Println(operations.Formatter().FormatMatch(match))
	return nil
}

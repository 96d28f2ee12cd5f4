package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/kodayn/osukit/osuapi"
	"github.com/kodayn/osukit/tracker"
)

var (
	scoresUser string
	scoresMods string
)

// bestCmd represents the best command
var bestCmd = &cobra.Command{
	Use:   "best <username>",
	Short: "List a player's best plays",
	Long: `List a player's highest-pp plays, enriched with beatmap metadata.
Results can be narrowed with a filter expression, for example:

  osukit best peppy -f 'hasMod("HD") and Stars > 5.5'`,
	Args:    cobra.ExactArgs(1),
	PreRunE: initializeApp,
	RunE:    runBest,
}

// recentCmd represents the recent command
var recentCmd = &cobra.Command{
	Use:     "recent <username>",
	Short:   "List a player's recent plays",
	Long:    `List a player's plays from the last 24 hours, newest first.`,
	Args:    cobra.ExactArgs(1),
	PreRunE: initializeApp,
	RunE:    runRecent,
}

// scoresCmd represents the scores command
var scoresCmd = &cobra.Command{
	Use:     "scores <beatmap-id>",
	Short:   "Show the leaderboard of a beatmap",
	Long:    `Show the top scores on a beatmap together with the map's metadata.`,
	Args:    cobra.ExactArgs(1),
	PreRunE: initializeApp,
	RunE:    runScores,
}

func init() {
	rootCmd.AddCommand(bestCmd)
	rootCmd.AddCommand(recentCmd)
	rootCmd.AddCommand(scoresCmd)

	for _, cmd := range []*cobra.Command{bestCmd, recentCmd} {
		cmd.Flags().StringVarP(&modeFlag, "mode", "m", "", "game mode (osu, taiko, catch, mania)")
		cmd.Flags().IntVarP(&limitFlag, "limit", "l", 10, "number of plays to fetch (1-100)")
		cmd.Flags().StringVarP(&filterExpr, "filter", "f", "", "filter expression")
		cmd.Flags().StringVarP(&preset, "preset", "p", "", "use a preset filter from config")
		cmd.Flags().BoolVar(&showStats, "stats", false, "print aggregate statistics for the listed plays")
	}

	scoresCmd.Flags().StringVarP(&modeFlag, "mode", "m", "", "game mode (osu, taiko, catch, mania)")
	scoresCmd.Flags().StringVarP(&scoresUser, "user", "u", "", "only show scores by this player")
	scoresCmd.Flags().StringVar(&scoresMods, "mods", "", "only show scores with this exact mod combination, e.g. HDDT")
	scoresCmd.Flags().IntVarP(&limitFlag, "limit", "l", 10, "number of scores to fetch (1-100)")
}

func runBest(cmd *cobra.Command, args []string) error {
	return runUserScores(cmd, args[0], operations.TopScores)
}

func runRecent(cmd *cobra.Command, args []string) error {
	return runUserScores(cmd, args[0], operations.RecentScores)
}

// runUserScores drives both the best and recent commands
func runUserScores(cmd *cobra.Command, user string, fetch func(context.Context, string, osuapi.GameMode, int) ([]tracker.ScoreInfo, error)) error {
	ctx := context.Background()

	mode, err := resolveMode()
	if err != nil {
		return err
	}

	plays, err := fetch(ctx, user, mode, resolveLimit(cmd))
	if err != nil {
		return err
	}

	plays, err = applyFilter(ctx, plays)
	if err != nil {
		return err
	}

	if jsonOutput() {
		return printJSON(plays)
	}

	fmt.Println(operations.Formatter().FormatScores(plays, formatOptions(cmd)))

	if showStats && len(plays) > 0 {
		fmt.Println(operations.Formatter().FormatSummary(tracker.Summarize(plays)))
	}

	return nil
}

func runScores(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	beatmapID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid beatmap id '%s'", args[0])
	}

	opts := tracker.LeaderboardOptions{
		User:  scoresUser,
		Limit: resolveLimit(cmd),
	}
	if modeFlag != "" {
		parsed, err := osuapi.ParseGameMode(modeFlag)
		if err != nil {
			return err
		}
		opts.Mode = parsed.Null()
	}
	if scoresMods != "" {
		mods, err := osuapi.ParseMods(scoresMods)
		if err != nil {
			return err
		}
		opts.Mods = mods.Null()
	}

	beatmap, scores, err := operations.Leaderboard(ctx, beatmapID, opts)
	if err != nil {
		return err
	}

	if jsonOutput() {
		return printJSON(struct {
			Beatmap *osuapi.Beatmap `json:"beatmap"`
			Scores  osuapi.Scores   `json:"scores"`
		}{beatmap, scores})
	}

	fmt.Println(operations.Formatter().FormatLeaderboard(beatmap, scores))
	return nil
}

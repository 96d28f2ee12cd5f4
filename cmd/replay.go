package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/guregu/null/v6"
	"github.com/spf13/cobra"

	"github.com/kodayn/osukit/osuapi"
)

var (
	replayScoreID   int64
	replayBeatmapID int64
	replayUser      string
	replayMods      string
)

// replayCmd represents the replay command
var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Download a replay",
	Long: `Download the replay of a score, either by score ID or by beatmap and
user. The replay is saved as raw LZMA-compressed replay data, without
the .osr envelope.

Note that the osu! API limits replay downloads to 10 per minute.`,
	PreRunE: initializeApp,
	RunE:    runReplay,
}

func init() {
	rootCmd.AddCommand(replayCmd)

	replayCmd.Flags().Int64VarP(&replayScoreID, "score", "s", 0, "score ID")
	replayCmd.Flags().Int64VarP(&replayBeatmapID, "beatmap", "b", 0, "beatmap ID")
	replayCmd.Flags().StringVarP(&replayUser, "user", "u", "", "username or user ID")
	replayCmd.Flags().StringVarP(&modeFlag, "mode", "m", "", "game mode (osu, taiko, catch, mania)")
	replayCmd.Flags().StringVar(&replayMods, "mods", "", "mod string, e.g. HDHR")
	replayCmd.Flags().StringVarP(&outputPath, "output", "o", "replay.lzma", "output path")
}

func runReplay(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	query := osuapi.ReplayQuery{User: replayUser}
	if replayScoreID > 0 {
		query.ScoreID = null.IntFrom(replayScoreID)
	}
	if replayBeatmapID > 0 {
		query.BeatmapID = null.IntFrom(replayBeatmapID)
	}
	if modeFlag != "" {
		mode, err := osuapi.ParseGameMode(modeFlag)
		if err != nil {
			return err
		}
		query.Mode = mode.Null()
	}
	if replayMods != "" {
		mods, err := osuapi.ParseMods(replayMods)
		if err != nil {
			return err
		}
		query.Mods = mods.Null()
	}

	replay, err := osuClient.GetReplay(ctx, query)
	if err != nil {
		if errors.Is(err, osuapi.ErrReplayUnavailable) {
			fmt.Println("Replay is not available for this score.")
			return nil
		}
		return err
	}

	data, err := replay.Bytes()
	if err != nil {
		return fmt.Errorf("failed to decode replay: %w", err)
	}

	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write replay: %w", err)
	}

	fmt.Printf("✓ Saved %d bytes to %s\n", len(data), outputPath)
	return nil
}

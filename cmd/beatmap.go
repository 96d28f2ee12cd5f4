package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/guregu/null/v6"
	"github.com/spf13/cobra"

	"github.com/kodayn/osukit/osuapi"
)

var (
	beatmapSet   bool
	beatmapSince string
)

// beatmapCmd represents the beatmap command
var beatmapCmd = &cobra.Command{
	Use:   "beatmap [id]",
	Short: "Show beatmap details",
	Long: `Look up a beatmap by its ID and display its metadata, difficulty
settings and play counts. With --set the ID is treated as a beatmapset
ID and every difficulty in the set is listed. With --since no ID is
needed and the beatmaps ranked after the given date are listed instead.`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: initializeApp,
	RunE:    runBeatmap,
}

// beatmapFileCmd represents the beatmap file command
var beatmapFileCmd = &cobra.Command{
	Use:     "file <id>",
	Short:   "Download a beatmap's .osu file",
	Long:    `Download the raw .osu file of a beatmap and save it to disk.`,
	Args:    cobra.ExactArgs(1),
	PreRunE: initializeApp,
	RunE:    runBeatmapFile,
}

func init() {
	rootCmd.AddCommand(beatmapCmd)
	beatmapCmd.AddCommand(beatmapFileCmd)

	beatmapCmd.Flags().BoolVar(&beatmapSet, "set", false, "treat the ID as a beatmapset ID")
	beatmapCmd.Flags().StringVar(&beatmapSince, "since", "", "list beatmaps ranked after this date (YYYY-MM-DD)")
	beatmapCmd.Flags().StringVarP(&modeFlag, "mode", "m", "", "game mode (osu, taiko, catch, mania)")
	beatmapCmd.Flags().IntVarP(&limitFlag, "limit", "l", 10, "number of beatmaps to fetch (1-500)")

	beatmapFileCmd.Flags().StringVarP(&outputPath, "output", "o", "", "output path (default <id>.osu)")
}

func runBeatmap(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	var mode null.Int
	if modeFlag != "" {
		parsed, err := osuapi.ParseGameMode(modeFlag)
		if err != nil {
			return err
		}
		mode = parsed.Null()
	}

	if beatmapSince != "" {
		if len(args) > 0 {
			return fmt.Errorf("--since lists recently ranked beatmaps and takes no id")
		}
		return runBeatmapsSince(cmd, mode)
	}
	if len(args) == 0 {
		return fmt.Errorf("a beatmap id or --since is required")
	}

	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid beatmap id '%s'", args[0])
	}

	var beatmaps []osuapi.Beatmap
	if beatmapSet {
		beatmaps, err = osuClient.GetBeatmaps(ctx, osuapi.BeatmapsQuery{
			BeatmapsetID: null.IntFrom(id),
			Mode:         mode,
			Limit:        null.IntFrom(int64(resolveLimit(cmd))),
		})
		if err != nil {
			return err
		}
	} else {
		beatmap, err := osuClient.GetBeatmap(ctx, id)
		if err != nil {
			return err
		}
		if beatmap != nil {
			beatmaps = append(beatmaps, *beatmap)
		}
	}

	if len(beatmaps) == 0 {
		fmt.Printf("Beatmap %d was not found.\n", id)
		return nil
	}

	if jsonOutput() {
		return printJSON(beatmaps)
	}

	fmt.Println(operations.Formatter().FormatBeatmaps(beatmaps))
	return nil
}

func runBeatmapsSince(cmd *cobra.Command, mode null.Int) error {
	ctx := context.Background()

	since, err := parseRankedSince(beatmapSince)
	if err != nil {
		return err
	}

	beatmaps, err := osuClient.GetBeatmaps(ctx, osuapi.BeatmapsQuery{
		Since: since,
		Mode:  mode,
		Limit: null.IntFrom(int64(resolveLimit(cmd))),
	})
	if err != nil {
		return err
	}

	if len(beatmaps) == 0 {
		fmt.Printf("No beatmaps ranked since %s.\n", since.Format("2006-01-02"))
		return nil
	}

	if jsonOutput() {
		return printJSON(beatmaps)
	}

	fmt.Println(operations.Formatter().FormatBeatmaps(beatmaps))
	return nil
}

// parseRankedSince accepts a plain date or a full timestamp.
func parseRankedSince(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", osuapi.TimeLayout} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date '%s', expected YYYY-MM-DD", s)
}

func runBeatmapFile(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	beatmapID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid beatmap id '%s'", args[0])
	}

	file, err := osuClient.GetBeatmapFile(ctx, beatmapID)
	if err != nil {
		return err
	}

	path := outputPath
	if path == "" {
		path = fmt.Sprintf("%d.osu", beatmapID)
	}

	if err := os.WriteFile(path, []byte(file.Content), 0o644); err != nil {
		return fmt.Errorf("failed to write beatmap file: %w", err)
	}

	if version, err := file.FormatVersion(); err == nil {
		fmt.Printf("✓ Saved %s (osu file format v%d)\n", path, version)
	} else {
		fmt.Printf("✓ Saved %s\n", path)
	}

	return nil
}

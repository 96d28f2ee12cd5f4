package tracker

import (
	"context"

	"github.com/kodayn/osukit/osuapi"
)

// ScoreEnricher defines the interface for supplementing plays with data
// from additional endpoints
type ScoreEnricher interface {
	EnrichScores(ctx context.Context, scores []ScoreInfo) error
}

// ScoreFormatter defines the interface for formatting tracker output
type ScoreFormatter interface {
	FormatProfile(profile *Profile, options FormatOptions) string
	FormatScores(scores []ScoreInfo, options FormatOptions) string
	FormatLeaderboard(beatmap *osuapi.Beatmap, scores osuapi.Scores) string
	FormatBeatmaps(beatmaps []osuapi.Beatmap) string
	FormatMatch(match *osuapi.Match) string
	FormatSummary(summary Summary) string
}

// FormatOptions contains options for formatting output
type FormatOptions struct {
	ShowDetails bool
	ShowDate    bool
}

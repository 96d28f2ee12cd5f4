package tracker

import (
	"context"
	"fmt"

	"github.com/guregu/null/v6"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/kodayn/osukit/osuapi"
)

// ProfileOptions contains options for fetching a profile
type ProfileOptions struct {
	BestCount   int
	RecentCount int
	EventDays   int
}

// Tracker handles profile and score lookups
type Tracker struct {
	client    *osuapi.Client
	logger    zerolog.Logger
	formatter ScoreFormatter
	enrichers []ScoreEnricher
}

// New creates a new Tracker instance
func New(client *osuapi.Client, logger zerolog.Logger) *Tracker {
	t := &Tracker{
		client:    client,
		logger:    logger,
		formatter: NewConsoleFormatter(),
	}
	t.enrichers = append(t.enrichers, &beatmapEnricher{tracker: t})
	return t
}

// Formatter returns the formatter used for console output.
func (t *Tracker) Formatter() ScoreFormatter {
	return t.formatter
}

// FetchProfile fetches a user's profile together with their best and
// recent plays. The three lookups run concurrently.
func (t *Tracker) FetchProfile(ctx context.Context, user string, mode osuapi.GameMode, opts ProfileOptions) (*Profile, error) {
	if opts.BestCount <= 0 {
		opts.BestCount = 10
	}
	if opts.RecentCount <= 0 {
		opts.RecentCount = 10
	}

	userQuery := osuapi.UserQuery{User: user, Mode: mode.Null()}
	if opts.EventDays > 0 {
		userQuery.EventDays = null.IntFrom(int64(opts.EventDays))
	}

	var (
		fetchedUser *osuapi.User
		best        osuapi.UserScores
		recent      osuapi.UserScores
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		u, err := t.client.GetUser(gctx, userQuery)
		if err != nil {
			return err
		}
		if u == nil {
			return fmt.Errorf("user %q was not found", user)
		}
		fetchedUser = u
		return nil
	})
	g.Go(func() error {
		scores, err := t.client.GetUserBest(gctx, osuapi.UserScoresQuery{
			User:  user,
			Mode:  mode.Null(),
			Limit: null.IntFrom(int64(opts.BestCount)),
		})
		if err != nil {
			return err
		}
		best = scores
		return nil
	})
	g.Go(func() error {
		scores, err := t.client.GetUserRecent(gctx, osuapi.UserScoresQuery{
			User:  user,
			Mode:  mode.Null(),
			Limit: null.IntFrom(int64(opts.RecentCount)),
		})
		if err != nil {
			return err
		}
		recent = scores
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	profile := &Profile{
		User:       fetchedUser,
		Mode:       mode,
		Best:       t.buildScoreInfos(best, mode),
		Recent:     t.buildScoreInfos(recent, mode),
		WeightedPP: best.WeightedPP(),
	}

	t.enrich(ctx, profile.Best)
	t.enrich(ctx, profile.Recent)

	t.logger.Info().
		Str("user", fetchedUser.Username).
		Int("best", len(profile.Best)).
		Int("recent", len(profile.Recent)).
		Msg("Fetched profile")
	return profile, nil
}

// TopScores fetches a user's best plays with beatmap metadata attached.
func (t *Tracker) TopScores(ctx context.Context, user string, mode osuapi.GameMode, limit int) ([]ScoreInfo, error) {
	if limit <= 0 {
		limit = 10
	}

	scores, err := t.client.GetUserBest(ctx, osuapi.UserScoresQuery{
		User:  user,
		Mode:  mode.Null(),
		Limit: null.IntFrom(int64(limit)),
	})
	if err != nil {
		return nil, err
	}

	infos := t.buildScoreInfos(scores, mode)
	t.enrich(ctx, infos)

	t.logger.Info().Msgf("Found %d top plays", len(infos))
	return infos, nil
}

// RecentScores fetches a user's plays from the last 24 hours with beatmap
// metadata attached.
func (t *Tracker) RecentScores(ctx context.Context, user string, mode osuapi.GameMode, limit int) ([]ScoreInfo, error) {
	if limit <= 0 {
		limit = 10
	}

	scores, err := t.client.GetUserRecent(ctx, osuapi.UserScoresQuery{
		User:  user,
		Mode:  mode.Null(),
		Limit: null.IntFrom(int64(limit)),
	})
	if err != nil {
		return nil, err
	}

	infos := t.buildScoreInfos(scores, mode)
	t.enrich(ctx, infos)

	t.logger.Info().Msgf("Found %d recent plays", len(infos))
	return infos, nil
}

// LeaderboardOptions narrows a leaderboard lookup to a mode, a mod
// combination or a single player.
type LeaderboardOptions struct {
	Mode  null.Int
	Mods  null.Int
	User  string
	Limit int
}

// Leaderboard fetches a beatmap and its top scores concurrently. An
// unset mode leaves the mode choice to the API, which defaults to the
// map's own mode.
func (t *Tracker) Leaderboard(ctx context.Context, beatmapID int64, opts LeaderboardOptions) (*osuapi.Beatmap, osuapi.Scores, error) {
	if opts.Limit <= 0 {
		opts.Limit = 10
	}

	var (
		beatmap *osuapi.Beatmap
		scores  osuapi.Scores
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		b, err := t.client.GetBeatmap(gctx, beatmapID)
		if err != nil {
			return err
		}
		beatmap = b
		return nil
	})
	g.Go(func() error {
		s, err := t.client.GetScores(gctx, osuapi.ScoresQuery{
			BeatmapID: beatmapID,
			User:      opts.User,
			Mode:      opts.Mode,
			Mods:      opts.Mods,
			Limit:     null.IntFrom(int64(opts.Limit)),
		})
		if err != nil {
			return err
		}
		scores = s
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	if beatmap == nil {
		return nil, nil, fmt.Errorf("beatmap %d was not found", beatmapID)
	}

	t.logger.Info().Msgf("Found %d scores on %s", len(scores), beatmap.DisplayTitle())
	return beatmap, scores, nil
}

func (t *Tracker) buildScoreInfos(scores osuapi.UserScores, mode osuapi.GameMode) []ScoreInfo {
	infos := make([]ScoreInfo, 0, len(scores))
	for i, score := range scores {
		infos = append(infos, newScoreInfo(score, i+1, mode))
	}
	return infos
}

// enrich runs every configured enricher over the plays. Enrichment is
// best-effort; failures are logged and leave the plain play data intact.
func (t *Tracker) enrich(ctx context.Context, scores []ScoreInfo) {
	for _, enricher := range t.enrichers {
		if err := enricher.EnrichScores(ctx, scores); err != nil {
			t.logger.Warn().Err(err).Msg("Failed to enrich scores")
		}
	}
}

package tracker

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/kodayn/osukit/osuapi"
)

// maxConcurrentLookups caps how many beatmap lookups run at once
const maxConcurrentLookups = 4

// beatmapEnricher fills beatmap metadata into plays. Each distinct
// beatmap is fetched once no matter how many plays reference it.
type beatmapEnricher struct {
	tracker *Tracker
}

func (e *beatmapEnricher) EnrichScores(ctx context.Context, scores []ScoreInfo) error {
	if len(scores) == 0 {
		return nil
	}

	seen := make(map[int64]struct{}, len(scores))
	ids := make([]int64, 0, len(scores))
	for i := range scores {
		id := scores[i].BeatmapID
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentLookups)

	// Use mutex to protect concurrent writes
	var mu sync.Mutex
	beatmaps := make(map[int64]*osuapi.Beatmap, len(ids))

	for _, id := range ids {
		g.Go(func() error {
			beatmap, err := e.tracker.client.GetBeatmap(gctx, id)
			if err != nil {
				e.tracker.logger.Warn().
					Err(err).
					Int64("beatmap_id", id).
					Msg("Failed to get beatmap details")
				// Continue enriching the remaining plays
				return nil
			}
			if beatmap == nil {
				return nil
			}

			mu.Lock()
			beatmaps[id] = beatmap
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i := range scores {
		if beatmap, ok := beatmaps[scores[i].BeatmapID]; ok {
			scores[i].attachBeatmap(beatmap)
		}
	}
	return nil
}

package tracker

import (
	"fmt"
	"time"

	"github.com/kodayn/osukit/osuapi"
)

// ScoreInfo combines a play with the metadata of the beatmap it was set
// on, flattened into a shape that filter expressions and formatters can
// reach into directly. Beatmap fields stay zero until an enricher fills
// them in.
type ScoreInfo struct {
	Score   osuapi.UserScore
	Beatmap *osuapi.Beatmap

	// Position is the 1-based rank of the play within the list it came
	// from (top plays or recent plays).
	Position  int
	BeatmapID int64
	UserID    int64

	Title   string
	Artist  string
	Version string
	Creator string
	Stars   float64
	BPM     float64
	Status  osuapi.ApprovalStatus

	Mode      osuapi.GameMode
	Mods      osuapi.Mods
	Rank      string
	Accuracy  float64
	PP        float64
	MaxCombo  int
	Misses    int
	FullCombo bool
	Date      time.Time
}

// newScoreInfo flattens a play into a ScoreInfo. Accuracy is computed
// under mode's rules since the API does not send it.
func newScoreInfo(score osuapi.UserScore, position int, mode osuapi.GameMode) ScoreInfo {
	return ScoreInfo{
		Score:     score,
		Position:  position,
		BeatmapID: score.BeatmapID.ValueOrZero(),
		UserID:    score.UserID.ValueOrZero(),
		Mode:      mode,
		Mods:      score.EnabledMods,
		Rank:      score.Rank,
		Accuracy:  score.Accuracy(mode),
		PP:        score.PP.ValueOrZero(),
		MaxCombo:  int(score.MaxCombo.ValueOrZero()),
		Misses:    int(score.CountMiss.ValueOrZero()),
		FullCombo: score.Perfect.ValueOrZero(),
		Date:      score.Date.ValueOrZero(),
	}
}

// attachBeatmap copies the interesting beatmap metadata into the flat
// fields. The play's mode is kept as-is since converts play in a
// different mode than the map was made for.
func (s *ScoreInfo) attachBeatmap(beatmap *osuapi.Beatmap) {
	s.Beatmap = beatmap
	s.Title = beatmap.Title
	s.Artist = beatmap.Artist
	s.Version = beatmap.Version
	s.Creator = beatmap.Creator
	s.Stars = beatmap.DifficultyRating.ValueOrZero()
	s.BPM = beatmap.BPM.ValueOrZero()
	s.Status = beatmap.Approved
}

// DisplayTitle renders the play's map as "Artist - Title [Version]",
// falling back to the beatmap ID when no metadata has been attached.
func (s *ScoreInfo) DisplayTitle() string {
	if s.Title == "" {
		return fmt.Sprintf("beatmap %d", s.BeatmapID)
	}
	return fmt.Sprintf("%s - %s [%s]", s.Artist, s.Title, s.Version)
}

// Profile bundles everything one user lookup produces: the profile
// itself plus the user's best and recent plays.
type Profile struct {
	User   *osuapi.User
	Mode   osuapi.GameMode
	Best   []ScoreInfo
	Recent []ScoreInfo

	// WeightedPP is the decayed sum over the fetched best plays. It
	// approaches the profile's raw pp as more plays are fetched.
	WeightedPP float64
}

package osuapi

import (
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScalarUnmarshal(t *testing.T) {
	t.Run("int from string", func(t *testing.T) {
		var v Int
		require.NoError(t, json.Unmarshal([]byte(`"9000"`), &v))
		assert.True(t, v.Valid)
		assert.Equal(t, int64(9000), v.Int64)
	})

	t.Run("int from bare number", func(t *testing.T) {
		var v Int
		require.NoError(t, json.Unmarshal([]byte(`42`), &v))
		assert.Equal(t, int64(42), v.Int64)
	})

	t.Run("int from null", func(t *testing.T) {
		v := IntFrom(7)
		require.NoError(t, json.Unmarshal([]byte(`null`), &v))
		assert.False(t, v.Valid)
		assert.Equal(t, int64(0), v.ValueOrZero())
	})

	t.Run("int from empty string", func(t *testing.T) {
		var v Int
		require.NoError(t, json.Unmarshal([]byte(`""`), &v))
		assert.False(t, v.Valid)
	})

	t.Run("int rejects garbage", func(t *testing.T) {
		var v Int
		assert.Error(t, json.Unmarshal([]byte(`"abc"`), &v))
	})

	t.Run("float from string", func(t *testing.T) {
		var v Float
		require.NoError(t, json.Unmarshal([]byte(`"5.06232"`), &v))
		assert.InDelta(t, 5.06232, v.Float64, 1e-9)
	})

	t.Run("bool from zero and one strings", func(t *testing.T) {
		var v Bool
		require.NoError(t, json.Unmarshal([]byte(`"1"`), &v))
		assert.True(t, v.ValueOrZero())
		require.NoError(t, json.Unmarshal([]byte(`"0"`), &v))
		assert.True(t, v.Valid)
		assert.False(t, v.ValueOrZero())
	})

	t.Run("bool from null", func(t *testing.T) {
		var v Bool
		require.NoError(t, json.Unmarshal([]byte(`null`), &v))
		assert.False(t, v.Valid)
	})

	t.Run("timestamp from api layout", func(t *testing.T) {
		var v Timestamp
		require.NoError(t, json.Unmarshal([]byte(`"2013-06-22 09:32:31"`), &v))
		assert.Equal(t, time.Date(2013, 6, 22, 9, 32, 31, 0, time.UTC), v.ValueOrZero())
	})

	t.Run("timestamp from null", func(t *testing.T) {
		var v Timestamp
		require.NoError(t, json.Unmarshal([]byte(`null`), &v))
		assert.False(t, v.Valid)
	})

	t.Run("timestamp rejects other layouts", func(t *testing.T) {
		var v Timestamp
		assert.Error(t, json.Unmarshal([]byte(`"2013-06-22T09:32:31Z"`), &v))
	})
}

func TestGameMode(t *testing.T) {
	assert.Equal(t, "osu!", ModeOsu.String())
	assert.Equal(t, "mania", ModeMania.String())

	tests := []struct {
		input string
		want  GameMode
	}{
		{"osu", ModeOsu},
		{"std", ModeOsu},
		{"0", ModeOsu},
		{"taiko", ModeTaiko},
		{"CTB", ModeCatch},
		{"fruits", ModeCatch},
		{"2", ModeCatch},
		{"mania", ModeMania},
	}
	for _, tt := range tests {
		mode, err := ParseGameMode(tt.input)
		require.NoError(t, err)
		assert.Equal(t, tt.want, mode, "input %q", tt.input)
	}

	_, err := ParseGameMode("chess")
	assert.Error(t, err)
}

func TestApprovalStatus(t *testing.T) {
	assert.Equal(t, "ranked", StatusRanked.String())
	assert.Equal(t, "graveyard", StatusGraveyard.String())
	assert.Equal(t, "loved", StatusLoved.String())
	assert.Equal(t, "unknown", ApprovalStatus(99).String())
}

func TestMods(t *testing.T) {
	t.Run("string form", func(t *testing.T) {
		assert.Equal(t, "NM", ModNone.String())
		assert.Equal(t, "HDDT", (ModHidden | ModDoubleTime).String())
		assert.Equal(t, "HDHR", (ModHidden | ModHardRock).String())
		// Nightcore implies DoubleTime, Perfect implies SuddenDeath.
		assert.Equal(t, "HDNC", (ModHidden | ModDoubleTime | ModNightcore).String())
		assert.Equal(t, "PF", (ModSuddenDeath | ModPerfect).String())
	})

	t.Run("parse", func(t *testing.T) {
		mods, err := ParseMods("HDDT")
		require.NoError(t, err)
		assert.Equal(t, ModHidden|ModDoubleTime, mods)

		mods, err = ParseMods("hdnc")
		require.NoError(t, err)
		assert.True(t, mods.Has(ModNightcore))
		assert.True(t, mods.Has(ModDoubleTime))

		mods, err = ParseMods("")
		require.NoError(t, err)
		assert.Equal(t, ModNone, mods)

		_, err = ParseMods("XY")
		assert.Error(t, err)
		_, err = ParseMods("HDX")
		assert.Error(t, err)
	})

	t.Run("has", func(t *testing.T) {
		mods := ModHidden | ModDoubleTime
		assert.True(t, mods.Has(ModHidden))
		assert.True(t, mods.Has(ModHidden|ModDoubleTime))
		assert.False(t, mods.Has(ModFlashlight))
		assert.False(t, mods.Has(ModHidden|ModFlashlight))
	})

	t.Run("unmarshal", func(t *testing.T) {
		var mods Mods
		require.NoError(t, json.Unmarshal([]byte(`"72"`), &mods))
		assert.Equal(t, ModHidden|ModDoubleTime, mods)

		require.NoError(t, json.Unmarshal([]byte(`24`), &mods))
		assert.Equal(t, ModHidden|ModHardRock, mods)

		require.NoError(t, json.Unmarshal([]byte(`null`), &mods))
		assert.Equal(t, ModNone, mods)

		require.NoError(t, json.Unmarshal([]byte(`""`), &mods))
		assert.Equal(t, ModNone, mods)
	})
}

func TestBeatmapUnmarshal(t *testing.T) {
	payload := `{
		"beatmapset_id": "1",
		"beatmap_id": "75",
		"approved": "1",
		"total_length": "142",
		"hit_length": "139",
		"version": "Normal",
		"file_md5": "a5b99395a42bd55bc5eb1d2411cbdf8b",
		"diff_size": "4",
		"diff_overall": "6",
		"diff_approach": "6",
		"diff_drain": "6",
		"mode": "0",
		"approved_date": "2007-10-06 17:46:31",
		"last_update": "2007-10-06 17:46:31",
		"artist": "Kenji Ninuma",
		"title": "DISCO PRINCE",
		"creator": "peppy",
		"creator_id": "2",
		"bpm": "119.999",
		"source": "",
		"tags": "katamari",
		"genre_id": "7",
		"language_id": "3",
		"favourite_count": "1358",
		"playcount": "527383",
		"passcount": "80187",
		"max_combo": "314",
		"storyboard": "0",
		"video": "0",
		"download_unavailable": "0",
		"audio_unavailable": "0",
		"difficultyrating": "2.2904"
	}`

	var beatmap Beatmap
	require.NoError(t, json.Unmarshal([]byte(payload), &beatmap))

	assert.Equal(t, StatusRanked, beatmap.Approved)
	assert.Equal(t, ModeOsu, beatmap.Mode)
	assert.Equal(t, int64(75), beatmap.BeatmapID.Int64)
	assert.Equal(t, "peppy", beatmap.Creator)
	assert.InDelta(t, 119.999, beatmap.BPM.Float64, 1e-9)
	assert.Equal(t, time.Date(2007, 10, 6, 17, 46, 31, 0, time.UTC), beatmap.ApprovedDate.ValueOrZero())
	assert.False(t, beatmap.Video.ValueOrZero())
	assert.False(t, beatmap.SubmitDate.Valid)
	assert.Equal(t, "Kenji Ninuma - DISCO PRINCE [Normal]", beatmap.DisplayTitle())
}

func TestAccuracy(t *testing.T) {
	t.Run("osu", func(t *testing.T) {
		perfect := Score{Count300: IntFrom(100)}
		assert.InDelta(t, 100, perfect.Accuracy(ModeOsu), 1e-9)

		mixed := Score{Count300: IntFrom(95), Count100: IntFrom(4), Count50: IntFrom(1)}
		assert.InDelta(t, 96.5, mixed.Accuracy(ModeOsu), 1e-9)
	})

	t.Run("taiko", func(t *testing.T) {
		s := Score{Count300: IntFrom(90), Count100: IntFrom(10)}
		assert.InDelta(t, 95, s.Accuracy(ModeTaiko), 1e-9)
	})

	t.Run("catch", func(t *testing.T) {
		s := Score{Count300: IntFrom(100), Count100: IntFrom(20), Count50: IntFrom(30), CountMiss: IntFrom(10), CountKatu: IntFrom(5)}
		assert.InDelta(t, 100*150.0/165.0, s.Accuracy(ModeCatch), 1e-9)
	})

	t.Run("mania", func(t *testing.T) {
		s := Score{CountGeki: IntFrom(50), Count300: IntFrom(50)}
		assert.InDelta(t, 100, s.Accuracy(ModeMania), 1e-9)

		withKatu := Score{CountGeki: IntFrom(90), CountKatu: IntFrom(10)}
		assert.InDelta(t, 100*(300*90.0+200*10.0)/(300*100.0), withKatu.Accuracy(ModeMania), 1e-9)
	})

	t.Run("no judgements", func(t *testing.T) {
		var s Score
		assert.Zero(t, s.Accuracy(ModeOsu))
	})
}

func TestMatchUnmarshal(t *testing.T) {
	t.Run("missing match decodes with nil info", func(t *testing.T) {
		var match Match
		require.NoError(t, json.Unmarshal([]byte(`{"match":0,"games":[]}`), &match))
		assert.Nil(t, match.Info)
		assert.Empty(t, match.Games)
	})

	t.Run("full match", func(t *testing.T) {
		payload := `{
			"match": {
				"match_id": "105537044",
				"name": "OWC2023: (United States) vs (South Korea)",
				"start_time": "2023-11-11 12:00:00",
				"end_time": null
			},
			"games": [{
				"game_id": "1",
				"start_time": "2023-11-11 12:05:00",
				"end_time": "2023-11-11 12:10:00",
				"beatmap_id": "4041962",
				"play_mode": "0",
				"match_type": "0",
				"scoring_type": "3",
				"team_type": "2",
				"mods": "0",
				"scores": [{
					"slot": "0",
					"team": "1",
					"user_id": "4787150",
					"score": "985422",
					"maxcombo": "1201",
					"count50": "0",
					"count100": "12",
					"count300": "1502",
					"countmiss": "0",
					"countgeki": "320",
					"countkatu": "10",
					"perfect": "0",
					"pass": "1",
					"enabled_mods": "8"
				}]
			}]
		}`

		var match Match
		require.NoError(t, json.Unmarshal([]byte(payload), &match))
		require.NotNil(t, match.Info)
		assert.Equal(t, int64(105537044), match.Info.MatchID.Int64)
		assert.False(t, match.Info.EndTime.Valid)
		require.Len(t, match.Games, 1)

		game := match.Games[0]
		assert.Equal(t, ModeOsu, game.PlayMode)
		require.Len(t, game.Scores, 1)
		assert.Equal(t, ModHidden, game.Scores[0].EnabledMods)
		assert.True(t, game.Scores[0].Pass.ValueOrZero())
	})
}

func TestReplayBytes(t *testing.T) {
	replay := Replay{Content: "b3N1IHJlcGxheQ==", Encoding: "base64"}
	data, err := replay.Bytes()
	require.NoError(t, err)
	assert.Equal(t, []byte("osu replay"), data)

	bad := Replay{Content: "not base64!!!"}
	_, err = bad.Bytes()
	assert.Error(t, err)
}

func TestBeatmapFileFormatVersion(t *testing.T) {
	file := BeatmapFile{BeatmapID: 75, Content: "osu file format v14\n\n[General]\n"}
	version, err := file.FormatVersion()
	require.NoError(t, err)
	assert.Equal(t, 14, version)

	upper := BeatmapFile{Content: "OSU FILE FORMAT V9"}
	version, err = upper.FormatVersion()
	require.NoError(t, err)
	assert.Equal(t, 9, version)

	empty := BeatmapFile{Content: "[General]\nAudioFilename: audio.mp3"}
	_, err = empty.FormatVersion()
	assert.ErrorIs(t, err, ErrNoFormatHeader)
}

func TestUserScoresCollection(t *testing.T) {
	scores := UserScores{
		{PP: FloatFrom(100), Rank: "SS"},
		{Rank: "S"},
		{PP: FloatFrom(50), Rank: "A"},
	}

	t.Run("pp values skip absent", func(t *testing.T) {
		assert.Equal(t, []float64{100, 50}, scores.PPValues())
	})

	t.Run("weighted pp decays in order", func(t *testing.T) {
		assert.InDelta(t, 100+50*0.95, scores.WeightedPP(), 1e-9)
	})

	t.Run("filter preserves order", func(t *testing.T) {
		kept := scores.Filter(func(s UserScore) bool { return s.PP.Valid })
		require.Len(t, kept, 2)
		assert.Equal(t, "SS", kept[0].Rank)
		assert.Equal(t, "A", kept[1].Rank)
	})

	t.Run("top clamps to length", func(t *testing.T) {
		assert.Len(t, scores.Top(2), 2)
		assert.Len(t, scores.Top(10), 3)
		assert.Empty(t, scores.Top(0))
	})
}

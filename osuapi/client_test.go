package osuapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/guregu/null/v6"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	logger := zerolog.Nop()

	t.Run("valid configuration", func(t *testing.T) {
		client, err := NewClient("test-key", logger)
		require.NoError(t, err)
		require.NotNil(t, client)
		assert.Equal(t, DefaultBaseURL, client.baseURL)
	})

	t.Run("missing api key", func(t *testing.T) {
		_, err := NewClient("", logger)
		assert.ErrorIs(t, err, ErrMissingAPIKey)
	})

	t.Run("base urls get a trailing slash", func(t *testing.T) {
		client, err := NewClient("test-key", logger,
			WithBaseURL("http://127.0.0.1:9999/api"),
			WithFileBaseURL("http://127.0.0.1:9999"),
		)
		require.NoError(t, err)
		assert.Equal(t, "http://127.0.0.1:9999/api/", client.baseURL)
		assert.Equal(t, "http://127.0.0.1:9999/", client.fileBaseURL)
	})

	t.Run("user agent is sent", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "osukit-test/1.0", r.Header.Get("User-Agent"))
			_, _ = w.Write([]byte(`[]`))
		}))
		defer server.Close()

		client, err := NewClient("test-key", zerolog.Nop(),
			WithBaseURL(server.URL),
			WithUserAgent("osukit-test/1.0"),
		)
		require.NoError(t, err)
		_, err = client.GetBeatmaps(context.Background(), BeatmapsQuery{})
		require.NoError(t, err)
	})
}

func newTestClient(t *testing.T, server *httptest.Server, opts ...Option) *Client {
	t.Helper()
	opts = append([]Option{WithBaseURL(server.URL), WithFileBaseURL(server.URL), WithRetries(1)}, opts...)
	client, err := NewClient("test-key", zerolog.Nop(), opts...)
	require.NoError(t, err)
	return client
}

func TestGetUser(t *testing.T) {
	t.Run("fetches a profile", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/get_user", r.URL.Path)
			query := r.URL.Query()
			assert.Equal(t, "test-key", query.Get("k"))
			assert.Equal(t, "peppy", query.Get("u"))
			assert.Equal(t, "string", query.Get("type"))
			assert.Equal(t, "0", query.Get("m"))
			_, _ = w.Write([]byte(`[{
				"user_id": "2",
				"username": "peppy",
				"join_date": "2007-08-28 00:00:00",
				"playcount": "9226",
				"pp_rank": "1087",
				"level": "96.1365",
				"pp_raw": "4588.71",
				"accuracy": "98.605",
				"country": "AU",
				"pp_country_rank": "17",
				"events": [{
					"display_html": "<b>peppy</b> achieved rank #1",
					"beatmap_id": "75",
					"beatmapset_id": "1",
					"date": "2013-06-22 09:32:31",
					"epicfactor": "1"
				}]
			}]`))
		}))
		defer server.Close()

		client := newTestClient(t, server)
		user, err := client.GetUser(context.Background(), UserQuery{
			User: "peppy",
			Type: "string",
			Mode: ModeOsu.Null(),
		})
		require.NoError(t, err)
		require.NotNil(t, user)

		assert.Equal(t, "peppy", user.Username)
		assert.Equal(t, int64(2), user.UserID.Int64)
		assert.InDelta(t, 4588.71, user.PPRaw.Float64, 1e-9)
		assert.Equal(t, time.Date(2007, 8, 28, 0, 0, 0, 0, time.UTC), user.JoinDate.ValueOrZero())
		require.Len(t, user.Events, 1)
		assert.Equal(t, int64(75), user.Events[0].BeatmapID.Int64)
	})

	t.Run("unknown user is nil", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`[]`))
		}))
		defer server.Close()

		client := newTestClient(t, server)
		user, err := client.GetUser(context.Background(), UserQuery{User: "nobody-here"})
		require.NoError(t, err)
		assert.Nil(t, user)
	})

	t.Run("user is required", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		defer server.Close()

		client := newTestClient(t, server)
		_, err := client.GetUser(context.Background(), UserQuery{})
		assert.Error(t, err)
	})
}

func TestGetBeatmaps(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/get_beatmaps", r.URL.Path)
		query := r.URL.Query()
		assert.Equal(t, "1", query.Get("s"))
		assert.Equal(t, "10", query.Get("limit"))
		assert.False(t, query.Has("b"))
		_, _ = w.Write([]byte(`[
			{"beatmap_id": "75", "beatmapset_id": "1", "approved": "1", "mode": "0", "title": "DISCO PRINCE", "version": "Normal", "difficultyrating": "2.29"},
			{"beatmap_id": "76", "beatmapset_id": "1", "approved": "1", "mode": "0", "title": "DISCO PRINCE", "version": "Hard", "difficultyrating": "3.1"}
		]`))
	}))
	defer server.Close()

	client := newTestClient(t, server)
	beatmaps, err := client.GetBeatmaps(context.Background(), BeatmapsQuery{
		BeatmapsetID: null.IntFrom(1),
		Limit:        null.IntFrom(10),
	})
	require.NoError(t, err)
	require.Len(t, beatmaps, 2)
	assert.Equal(t, "Normal", beatmaps[0].Version)
	assert.Equal(t, StatusRanked, beatmaps[1].Approved)
}

func TestGetBeatmap(t *testing.T) {
	t.Run("first match wins", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "75", r.URL.Query().Get("b"))
			_, _ = w.Write([]byte(`[{"beatmap_id": "75", "title": "DISCO PRINCE"}]`))
		}))
		defer server.Close()

		client := newTestClient(t, server)
		beatmap, err := client.GetBeatmap(context.Background(), 75)
		require.NoError(t, err)
		require.NotNil(t, beatmap)
		assert.Equal(t, "DISCO PRINCE", beatmap.Title)
	})

	t.Run("unknown id is nil", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`[]`))
		}))
		defer server.Close()

		client := newTestClient(t, server)
		beatmap, err := client.GetBeatmap(context.Background(), 999999999)
		require.NoError(t, err)
		assert.Nil(t, beatmap)
	})
}

func TestGetScores(t *testing.T) {
	t.Run("beatmap id is required", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		defer server.Close()

		client := newTestClient(t, server)
		_, err := client.GetScores(context.Background(), ScoresQuery{})
		assert.Error(t, err)
	})

	t.Run("fetches a leaderboard", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/get_scores", r.URL.Path)
			assert.Equal(t, "129891", r.URL.Query().Get("b"))
			_, _ = w.Write([]byte(`[{
				"score_id": "2085025208",
				"score": "132478651",
				"username": "Cookiezi",
				"maxcombo": "2385",
				"count300": "2358",
				"count100": "27",
				"count50": "0",
				"countmiss": "0",
				"perfect": "1",
				"enabled_mods": "24",
				"user_id": "124493",
				"date": "2015-08-15 11:25:58",
				"rank": "SH",
				"pp": "727.67",
				"replay_available": "1"
			}]`))
		}))
		defer server.Close()

		client := newTestClient(t, server)
		scores, err := client.GetScores(context.Background(), ScoresQuery{BeatmapID: 129891})
		require.NoError(t, err)
		require.Len(t, scores, 1)

		assert.Equal(t, "Cookiezi", scores[0].Username)
		assert.Equal(t, ModHidden|ModHardRock, scores[0].EnabledMods)
		assert.True(t, scores[0].Perfect.ValueOrZero())
		assert.InDelta(t, 727.67, scores[0].PP.Float64, 1e-9)
	})
}

func TestGetUserScores(t *testing.T) {
	t.Run("best carries pp", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/get_user_best", r.URL.Path)
			assert.Equal(t, "2", r.URL.Query().Get("limit"))
			_, _ = w.Write([]byte(`[
				{"beatmap_id": "129891", "score_id": "1", "score": "132478651", "maxcombo": "2385", "count300": "2358", "count100": "27", "count50": "0", "countmiss": "0", "perfect": "1", "enabled_mods": "72", "user_id": "124493", "date": "2019-03-01 12:00:00", "rank": "SH", "pp": "800.5", "replay_available": "1"},
				{"beatmap_id": "39804", "score_id": "2", "score": "81296456", "maxcombo": "1601", "count300": "1143", "count100": "12", "count50": "0", "countmiss": "0", "perfect": "1", "enabled_mods": "0", "user_id": "124493", "date": "2019-03-02 12:00:00", "rank": "SS", "pp": "600", "replay_available": "0"}
			]`))
		}))
		defer server.Close()

		client := newTestClient(t, server)
		scores, err := client.GetUserBest(context.Background(), UserScoresQuery{
			User:  "Cookiezi",
			Limit: null.IntFrom(2),
		})
		require.NoError(t, err)
		require.Len(t, scores, 2)
		assert.InDelta(t, 800.5+600*0.95, scores.WeightedPP(), 1e-9)
	})

	t.Run("recent has no pp", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/get_user_recent", r.URL.Path)
			_, _ = w.Write([]byte(`[
				{"beatmap_id": "75", "score": "1000", "maxcombo": "10", "count300": "5", "count100": "0", "count50": "0", "countmiss": "2", "perfect": "0", "enabled_mods": "0", "user_id": "2", "date": "2024-05-05 10:00:00", "rank": "F"}
			]`))
		}))
		defer server.Close()

		client := newTestClient(t, server)
		scores, err := client.GetUserRecent(context.Background(), UserScoresQuery{User: "peppy"})
		require.NoError(t, err)
		require.Len(t, scores, 1)
		assert.False(t, scores[0].PP.Valid)
		assert.Empty(t, scores.PPValues())
	})

	t.Run("user is required", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		defer server.Close()

		client := newTestClient(t, server)
		_, err := client.GetUserBest(context.Background(), UserScoresQuery{})
		assert.Error(t, err)
		_, err = client.GetUserRecent(context.Background(), UserScoresQuery{})
		assert.Error(t, err)
	})
}

func TestGetMatch(t *testing.T) {
	t.Run("unknown match is nil", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "12345", r.URL.Query().Get("mp"))
			_, _ = w.Write([]byte(`{"match":0,"games":[]}`))
		}))
		defer server.Close()

		client := newTestClient(t, server)
		match, err := client.GetMatch(context.Background(), 12345)
		require.NoError(t, err)
		assert.Nil(t, match)
	})

	t.Run("fetches a match", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{
				"match": {"match_id": "105537044", "name": "OWC2023: (US) vs (KR)", "start_time": "2023-11-11 12:00:00", "end_time": null},
				"games": [{"game_id": "1", "beatmap_id": "4041962", "play_mode": "0", "mods": "0", "scores": []}]
			}`))
		}))
		defer server.Close()

		client := newTestClient(t, server)
		match, err := client.GetMatch(context.Background(), 105537044)
		require.NoError(t, err)
		require.NotNil(t, match)
		assert.Equal(t, "OWC2023: (US) vs (KR)", match.Info.Name)
		assert.Len(t, match.Games, 1)
	})
}

func TestGetReplay(t *testing.T) {
	t.Run("needs a score id or a beatmap and user", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		defer server.Close()

		client := newTestClient(t, server)
		_, err := client.GetReplay(context.Background(), ReplayQuery{})
		assert.Error(t, err)
		_, err = client.GetReplay(context.Background(), ReplayQuery{BeatmapID: null.IntFrom(75)})
		assert.Error(t, err)
	})

	t.Run("fetches replay data", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/get_replay", r.URL.Path)
			assert.Equal(t, "2085025208", r.URL.Query().Get("s"))
			_, _ = w.Write([]byte(`{"content": "b3N1", "encoding": "base64"}`))
		}))
		defer server.Close()

		client := newTestClient(t, server)
		replay, err := client.GetReplay(context.Background(), ReplayQuery{ScoreID: null.IntFrom(2085025208)})
		require.NoError(t, err)
		require.NotNil(t, replay)

		data, err := replay.Bytes()
		require.NoError(t, err)
		assert.Equal(t, []byte("osu"), data)
	})

	t.Run("unavailable replay keeps its error type", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"error": "Replay not available."}`))
		}))
		defer server.Close()

		client := newTestClient(t, server)
		_, err := client.GetReplay(context.Background(), ReplayQuery{ScoreID: null.IntFrom(1)})
		assert.ErrorIs(t, err, ErrReplayUnavailable)
	})
}

func TestGetBeatmapFile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/osu/75", r.URL.Path)
		assert.Empty(t, r.URL.RawQuery)
		_, _ = w.Write([]byte("osu file format v14\n\n[Metadata]\nTitle:DISCO PRINCE\n"))
	}))
	defer server.Close()

	client := newTestClient(t, server)
	file, err := client.GetBeatmapFile(context.Background(), 75)
	require.NoError(t, err)
	require.NotNil(t, file)

	assert.Equal(t, int64(75), file.BeatmapID)
	version, err := file.FormatVersion()
	require.NoError(t, err)
	assert.Equal(t, 14, version)

	_, err = client.GetBeatmapFile(context.Background(), 0)
	assert.Error(t, err)
}

func TestTestConnection(t *testing.T) {
	t.Run("reachable", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "1", r.URL.Query().Get("limit"))
			_, _ = w.Write([]byte(`[]`))
		}))
		defer server.Close()

		client := newTestClient(t, server)
		require.NoError(t, client.TestConnection(context.Background()))
	})

	t.Run("bad key", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error": "Please provide a valid API key."}`))
		}))
		defer server.Close()

		client := newTestClient(t, server)
		err := client.TestConnection(context.Background())
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrWrongAPIKey)
	})
}

func TestClientCircuitBreaker(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(t, server, WithCircuitBreaker())

	for i := 0; i < 5; i++ {
		_, err := client.GetBeatmaps(context.Background(), BeatmapsQuery{})
		var httpErr *HTTPError
		require.ErrorAs(t, err, &httpErr)
	}

	// Five consecutive server faults trip the breaker; the next call fails
	// fast without reaching the server.
	_, err := client.GetBeatmaps(context.Background(), BeatmapsQuery{})
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, int32(5), calls.Load())
}

package osuapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/guregu/null/v6"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
)

// Client talks to the osu! API v1. All endpoints share one API key, one
// HTTP session and one retry budget; the building blocks underneath
// (Route, Request) remain usable on their own.
type Client struct {
	baseURL     string
	fileBaseURL string
	apiKey      string
	httpClient  *http.Client
	logger      zerolog.Logger
	retryCount  int
	breaker     *gobreaker.CircuitBreaker[any]
}

// NewClient creates a client for the given API key. Options override the
// endpoints, timeout, retry budget and transport.
func NewClient(apiKey string, logger zerolog.Logger, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	httpClient := options.httpClient
	if httpClient == nil {
		httpClient = NewSession(options.timeout)
		httpClient.Transport = &userAgentTransport{agent: options.userAgent, next: http.DefaultTransport}
	}

	client := &Client{
		baseURL:     ensureTrailingSlash(options.baseURL),
		fileBaseURL: ensureTrailingSlash(options.fileBaseURL),
		apiKey:      apiKey,
		httpClient:  httpClient,
		logger:      logger,
		retryCount:  options.retryCount,
	}

	if options.breaker {
		client.breaker = gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
			Name: "osuapi",
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
			IsSuccessful: func(err error) bool {
				return err == nil || !serverFault(err)
			},
		})
	}

	return client, nil
}

// serverFault reports whether err points at server or transport trouble,
// the only failures that should count against the circuit breaker.
// Application-level errors (bad key, missing route, no replay) say nothing
// about the server's health.
func serverFault(err error) bool {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode >= 500 || httpErr.IsRateLimited()
	}
	if errors.Is(err, ErrInvalidArgument) ||
		errors.Is(err, ErrWrongAPIKey) ||
		errors.Is(err, ErrRouteNotFound) ||
		errors.Is(err, ErrReplayUnavailable) {
		return false
	}
	return true
}

func ensureTrailingSlash(url string) string {
	if strings.HasSuffix(url, "/") {
		return url
	}
	return url + "/"
}

// userAgentTransport stamps a User-Agent on requests that lack one.
type userAgentTransport struct {
	agent string
	next  http.RoundTripper
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	if clone.Header.Get("User-Agent") == "" {
		clone.Header.Set("User-Agent", t.agent)
	}
	return t.next.RoundTrip(clone)
}

func (c *Client) newRoute(path string) *Route {
	return NewRouteWithBase(c.baseURL, path, c.apiKey)
}

// fetch executes req on the client's session, through the circuit breaker
// when one is configured.
func (c *Client) fetch(ctx context.Context, req *Request) (any, error) {
	if c.breaker == nil {
		return req.FetchWithSession(ctx, c.httpClient)
	}
	return c.breaker.Execute(func() (any, error) {
		return req.FetchWithSession(ctx, c.httpClient)
	})
}

// do fetches req and decodes the raw body into dest when one is given.
func (c *Client) do(ctx context.Context, req *Request, dest any) error {
	if _, err := c.fetch(ctx, req); err != nil {
		return err
	}
	if dest == nil || len(req.Raw()) == 0 {
		return nil
	}
	if err := json.Unmarshal(req.Raw(), dest); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// UserQuery selects a user for GetUser. User is required; it holds either
// a username or a numeric ID, disambiguated by Type ("string" or "id").
type UserQuery struct {
	User      string
	Type      string
	Mode      null.Int
	EventDays null.Int
}

// GetUser fetches a user profile. A user the API does not know comes back
// as nil with no error.
func (c *Client) GetUser(ctx context.Context, query UserQuery) (*User, error) {
	if query.User == "" {
		return nil, errors.New("user is required")
	}

	route := c.newRoute("get_user")
	route.AddParam("u", query.User)
	if query.Type != "" {
		route.AddParam("type", query.Type)
	}
	route.AddParam("m", query.Mode)
	route.AddParam("event_days", query.EventDays)

	var users []User
	if err := c.do(ctx, NewRequestWithOptions(route, c.retryCount, true), &users); err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, nil
	}

	c.logger.Debug().Str("username", users[0].Username).Msg("Retrieved user")
	return &users[0], nil
}

// BeatmapsQuery narrows a GetBeatmaps listing. Every field is optional;
// the zero query asks for the 500 most recently ranked maps.
type BeatmapsQuery struct {
	Since            time.Time
	BeatmapsetID     null.Int
	BeatmapID        null.Int
	User             string
	Type             string
	Mode             null.Int
	IncludeConverted null.Bool
	Hash             string
	Limit            null.Int
	Mods             null.Int
}

// GetBeatmaps lists beatmaps matching the query.
func (c *Client) GetBeatmaps(ctx context.Context, query BeatmapsQuery) ([]Beatmap, error) {
	route := c.newRoute("get_beatmaps")
	route.AddParam("since", query.Since)
	route.AddParam("s", query.BeatmapsetID)
	route.AddParam("b", query.BeatmapID)
	if query.User != "" {
		route.AddParam("u", query.User)
	}
	if query.Type != "" {
		route.AddParam("type", query.Type)
	}
	route.AddParam("m", query.Mode)
	route.AddParam("a", query.IncludeConverted)
	if query.Hash != "" {
		route.AddParam("h", query.Hash)
	}
	route.AddParam("limit", query.Limit)
	route.AddParam("mods", query.Mods)

	var beatmaps []Beatmap
	if err := c.do(ctx, NewRequestWithOptions(route, c.retryCount, true), &beatmaps); err != nil {
		return nil, err
	}

	c.logger.Debug().Int("count", len(beatmaps)).Msg("Retrieved beatmaps")
	return beatmaps, nil
}

// GetBeatmap fetches a single difficulty by ID. An unknown ID comes back
// as nil with no error.
func (c *Client) GetBeatmap(ctx context.Context, beatmapID int64) (*Beatmap, error) {
	beatmaps, err := c.GetBeatmaps(ctx, BeatmapsQuery{BeatmapID: null.IntFrom(beatmapID)})
	if err != nil {
		return nil, err
	}
	if len(beatmaps) == 0 {
		return nil, nil
	}
	return &beatmaps[0], nil
}

// ScoresQuery selects a beatmap leaderboard. BeatmapID is required; User
// narrows the board to one player's scores on the map.
type ScoresQuery struct {
	BeatmapID int64
	User      string
	Type      string
	Mode      null.Int
	Mods      null.Int
	Limit     null.Int
}

// GetScores fetches the top scores on a beatmap.
func (c *Client) GetScores(ctx context.Context, query ScoresQuery) (Scores, error) {
	if query.BeatmapID <= 0 {
		return nil, errors.New("beatmap id is required")
	}

	route := c.newRoute("get_scores")
	route.AddParam("b", query.BeatmapID)
	if query.User != "" {
		route.AddParam("u", query.User)
	}
	if query.Type != "" {
		route.AddParam("type", query.Type)
	}
	route.AddParam("m", query.Mode)
	route.AddParam("mods", query.Mods)
	route.AddParam("limit", query.Limit)

	var scores Scores
	if err := c.do(ctx, NewRequestWithOptions(route, c.retryCount, true), &scores); err != nil {
		return nil, err
	}

	c.logger.Debug().Int("count", len(scores)).Msg("Retrieved scores")
	return scores, nil
}

// UserScoresQuery selects a user's plays for GetUserBest and
// GetUserRecent. User is required.
type UserScoresQuery struct {
	User  string
	Type  string
	Mode  null.Int
	Limit null.Int
}

// GetUserBest fetches a user's top plays, highest pp first.
func (c *Client) GetUserBest(ctx context.Context, query UserScoresQuery) (UserScores, error) {
	scores, err := c.userScores(ctx, "get_user_best", query)
	if err != nil {
		return nil, err
	}
	c.logger.Debug().Int("count", len(scores)).Msg("Retrieved best scores")
	return scores, nil
}

// GetUserRecent fetches a user's plays from the last 24 hours, newest
// first. Recent plays carry no pp values.
func (c *Client) GetUserRecent(ctx context.Context, query UserScoresQuery) (UserScores, error) {
	scores, err := c.userScores(ctx, "get_user_recent", query)
	if err != nil {
		return nil, err
	}
	c.logger.Debug().Int("count", len(scores)).Msg("Retrieved recent scores")
	return scores, nil
}

func (c *Client) userScores(ctx context.Context, path string, query UserScoresQuery) (UserScores, error) {
	if query.User == "" {
		return nil, errors.New("user is required")
	}

	route := c.newRoute(path)
	route.AddParam("u", query.User)
	if query.Type != "" {
		route.AddParam("type", query.Type)
	}
	route.AddParam("m", query.Mode)
	route.AddParam("limit", query.Limit)

	var scores UserScores
	if err := c.do(ctx, NewRequestWithOptions(route, c.retryCount, true), &scores); err != nil {
		return nil, err
	}
	return scores, nil
}

// GetMatch fetches a multiplayer match by ID. An unknown match comes back
// as nil with no error.
func (c *Client) GetMatch(ctx context.Context, matchID int64) (*Match, error) {
	route := c.newRoute("get_match")
	route.AddParam("mp", matchID)

	var match Match
	if err := c.do(ctx, NewRequestWithOptions(route, c.retryCount, true), &match); err != nil {
		return nil, err
	}
	if match.Info == nil {
		return nil, nil
	}

	c.logger.Debug().Int("games", len(match.Games)).Msg("Retrieved match")
	return &match, nil
}

// ReplayQuery selects a replay. Either ScoreID alone or BeatmapID plus
// User identifies the score.
type ReplayQuery struct {
	ScoreID   null.Int
	BeatmapID null.Int
	User      string
	Type      string
	Mode      null.Int
	Mods      null.Int
}

// GetReplay fetches the replay data for a score. When the server has no
// replay the error satisfies errors.Is against ErrReplayUnavailable.
func (c *Client) GetReplay(ctx context.Context, query ReplayQuery) (*Replay, error) {
	if !query.ScoreID.Valid && (!query.BeatmapID.Valid || query.User == "") {
		return nil, errors.New("either a score id or a beatmap id and user are required")
	}

	route := c.newRoute("get_replay")
	route.AddParam("s", query.ScoreID)
	route.AddParam("b", query.BeatmapID)
	if query.User != "" {
		route.AddParam("u", query.User)
	}
	if query.Type != "" {
		route.AddParam("type", query.Type)
	}
	route.AddParam("m", query.Mode)
	route.AddParam("mods", query.Mods)

	var replay Replay
	if err := c.do(ctx, NewRequestWithOptions(route, c.retryCount, true), &replay); err != nil {
		return nil, err
	}

	c.logger.Debug().Int("bytes", len(replay.Content)).Msg("Retrieved replay")
	return &replay, nil
}

// GetBeatmapFile downloads the raw .osu file for a difficulty. This goes
// through the main site, needs no API key and is never parsed as JSON.
func (c *Client) GetBeatmapFile(ctx context.Context, beatmapID int64) (*BeatmapFile, error) {
	if beatmapID <= 0 {
		return nil, errors.New("beatmap id is required")
	}

	route := NewRouteWithBase(c.fileBaseURL, fmt.Sprintf("osu/%d", beatmapID), "")
	req := NewRequestWithOptions(route, c.retryCount, false)

	payload, err := c.fetch(ctx, req)
	if err != nil {
		return nil, err
	}
	content, _ := payload.(string)

	c.logger.Debug().Int64("beatmap_id", beatmapID).Int("bytes", len(content)).Msg("Retrieved beatmap file")
	return &BeatmapFile{BeatmapID: beatmapID, Content: content}, nil
}

// TestConnection verifies the API is reachable and the key is accepted.
func (c *Client) TestConnection(ctx context.Context) error {
	if _, err := c.GetBeatmaps(ctx, BeatmapsQuery{Limit: null.IntFrom(1)}); err != nil {
		return fmt.Errorf("failed to connect to osu! API: %w", err)
	}
	return nil
}

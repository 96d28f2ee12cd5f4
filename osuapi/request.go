package osuapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/goccy/go-json"
)

// DefaultRetryCount is the number of attempts a request makes before giving
// up on retryable failures.
const DefaultRetryCount = 5

const (
	initialBackoff = 500 * time.Millisecond
	maxBackoff     = 8 * time.Second
)

// replayUnavailableMessage is the exact error string the API returns when a
// replay cannot be served.
const replayUnavailableMessage = "Replay not available."

// Request executes a single logical GET against a Route and translates the
// outcome into a parsed payload or a typed error.
//
// Only transport failures, 429 and 5xx responses are retried; every other
// outcome is terminal on the first attempt. The retry budget covers all
// attempts, so a count of 1 (or 0) means a single attempt.
type Request struct {
	route        *Route
	retryCount   int
	jsonResponse bool
	data         any
	raw          []byte
}

// NewRequest wraps route with the default retry budget and JSON response
// handling.
func NewRequest(route *Route) *Request {
	return NewRequestWithOptions(route, DefaultRetryCount, true)
}

// NewRequestWithOptions wraps route with an explicit retry budget and
// response mode. With jsonResponse false the body is kept as plain text and
// never parsed, which beatmap file downloads rely on.
func NewRequestWithOptions(route *Route, retryCount int, jsonResponse bool) *Request {
	return &Request{
		route:        route,
		retryCount:   retryCount,
		jsonResponse: jsonResponse,
		data:         []any{},
	}
}

// Route returns the underlying route.
func (r *Request) Route() *Route {
	return r.route
}

// Data returns the payload of the last successful fetch. Before any fetch
// it is an empty list; failed fetches leave it untouched.
func (r *Request) Data() any {
	return r.data
}

// Raw returns the response body of the last successful fetch.
func (r *Request) Raw() []byte {
	return r.raw
}

// Fetch executes the request on a session scoped to this call alone. The
// session's idle connections are released before Fetch returns, so nothing
// lingers after one-shot use. Callers doing several requests should hold a
// session themselves and use FetchWithSession.
func (r *Request) Fetch(ctx context.Context) (any, error) {
	session := NewSession(0)
	defer session.CloseIdleConnections()
	return r.FetchWithSession(ctx, session)
}

// NewSession builds an http.Client suitable for this API: redirects are
// surfaced rather than followed, so a 302 keeps its status and can be
// classified as a missing route. A zero timeout means no timeout.
func NewSession(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// FetchWithSession executes the request on the supplied session. The route
// is validated first, then the response is classified by status code and,
// for 200 responses in JSON mode, by the presence of a remote error field.
// On success the payload is stored and returned.
func (r *Request) FetchWithSession(ctx context.Context, session *http.Client) (any, error) {
	if err := r.route.CheckParams(); err != nil {
		return nil, err
	}

	url := r.route.URL()
	attempts := max(r.retryCount, 1)
	backoff := initialBackoff

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		payload, body, err := r.dispatch(ctx, session, url)
		if err == nil {
			r.data = payload
			r.raw = body
			return payload, nil
		}

		var transient *transientError
		if !errors.As(err, &transient) {
			return nil, err
		}
		lastErr = transient.err
		if attempt == attempts {
			break
		}

		delay := backoff
		var httpErr *HTTPError
		if errors.As(lastErr, &httpErr) && httpErr.RetryAfter > 0 {
			delay = httpErr.RetryAfter
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
		backoff = min(backoff*2, maxBackoff)
	}
	return nil, lastErr
}

// dispatch performs one attempt and classifies the outcome. Retryable
// failures come back wrapped in transientError; everything else is final.
func (r *Request) dispatch(ctx context.Context, session *http.Client, url string) (any, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := session.Do(req)
	if err != nil {
		return nil, nil, &transientError{fmt.Errorf("request failed: %w", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, &transientError{fmt.Errorf("failed to read response body: %w", err)}
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, nil, &WrongAPIKeyError{Message: r.errorMessage(body)}
	case resp.StatusCode == http.StatusFound || resp.StatusCode == http.StatusNotFound:
		return nil, nil, &RouteNotFoundError{URL: url, StatusCode: resp.StatusCode}
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, nil, &transientError{&HTTPError{
			StatusCode: resp.StatusCode,
			Message:    r.errorMessage(body),
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		}}
	case resp.StatusCode != http.StatusOK:
		return nil, nil, &HTTPError{StatusCode: resp.StatusCode, Message: r.errorMessage(body)}
	}

	payload, err := r.GetJSON(body)
	if err != nil {
		return nil, nil, err
	}

	// A 200 can still carry a remote error as a JSON object with an
	// "error" field. The replay message gets its own type so callers can
	// tell "no replay" from a bad request.
	if m, ok := payload.(map[string]any); ok {
		if msg, ok := m["error"]; ok {
			text := fmt.Sprint(msg)
			if text == replayUnavailableMessage {
				return nil, nil, &ReplayUnavailableError{Message: text}
			}
			return nil, nil, &HTTPError{StatusCode: http.StatusBadRequest, Message: text}
		}
	}

	return payload, body, nil
}

// GetJSON interprets a response body according to the request's response
// mode. In text mode the body is returned verbatim, error branches
// included. In JSON mode an empty body yields an empty map, and optional
// keys descend into the parsed structure; a key missing at any level (or a
// level that is not an object) yields an empty string rather than an error.
func (r *Request) GetJSON(body []byte, keys ...string) (any, error) {
	if !r.jsonResponse {
		return string(body), nil
	}
	if len(body) == 0 {
		return map[string]any{}, nil
	}
	var parsed any
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse response JSON: %w", err)
	}
	for _, key := range keys {
		m, ok := parsed.(map[string]any)
		if !ok {
			return "", nil
		}
		parsed, ok = m[key]
		if !ok {
			return "", nil
		}
	}
	return parsed, nil
}

// errorMessage extracts the remote error field from an error response body,
// falling back to the raw text when the body is not the JSON shape the API
// promises. In text mode the raw body comes back as-is.
func (r *Request) errorMessage(body []byte) string {
	v, err := r.GetJSON(body, "error")
	if err != nil {
		return string(body)
	}
	return fmt.Sprint(v)
}

// parseRetryAfter reads the delay-seconds form of a Retry-After header.
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	secs, err := strconv.Atoi(value)
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

package osuapi

import (
	"errors"
	"fmt"
	"time"
)

// ErrMissingAPIKey is returned by NewClient when no API key is supplied.
var ErrMissingAPIKey = errors.New("API key is required")

// Sentinel errors for errors.Is checks against the typed errors below.
var (
	// ErrInvalidArgument indicates a query parameter name the API does not know.
	ErrInvalidArgument = errors.New("invalid query parameter")
	// ErrWrongAPIKey indicates the server rejected the API key.
	ErrWrongAPIKey = errors.New("wrong api key")
	// ErrRouteNotFound indicates the requested URL does not exist.
	ErrRouteNotFound = errors.New("route not found")
	// ErrReplayUnavailable indicates the server has no replay for the score.
	ErrReplayUnavailable = errors.New("replay not available")
)

// InvalidArgumentError reports a query parameter name outside the set the
// API recognizes. It is raised during route validation, before any request
// is sent.
type InvalidArgumentError struct {
	Param string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("invalid query parameter %q", e.Param)
}

func (e *InvalidArgumentError) Is(target error) bool {
	return target == ErrInvalidArgument
}

// WrongAPIKeyError indicates an HTTP 401 response. Message carries the
// server's error field when one was present.
type WrongAPIKeyError struct {
	Message string
}

func (e *WrongAPIKeyError) Error() string {
	if e.Message == "" {
		return "wrong api key"
	}
	return fmt.Sprintf("wrong api key: %s", e.Message)
}

func (e *WrongAPIKeyError) Is(target error) bool {
	return target == ErrWrongAPIKey
}

// RouteNotFoundError indicates an HTTP 302 or 404 response. It keeps the
// full request URL and the status code that triggered it.
type RouteNotFoundError struct {
	URL        string
	StatusCode int
}

func (e *RouteNotFoundError) Error() string {
	return fmt.Sprintf("route %s was not found (status %d)", e.URL, e.StatusCode)
}

func (e *RouteNotFoundError) Is(target error) bool {
	return target == ErrRouteNotFound
}

// HTTPError represents any other failed response: a non-200 status outside
// the cases above, or a 200 whose body carries a remote error field (those
// surface with StatusCode 400). RetryAfter is non-zero when the server sent
// a Retry-After header on a 429 or 5xx.
type HTTPError struct {
	StatusCode int
	Message    string
	RetryAfter time.Duration
}

func (e *HTTPError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("osu! API error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("osu! API error: status %d: %s", e.StatusCode, e.Message)
}

// IsRateLimited reports whether the server throttled the request.
func (e *HTTPError) IsRateLimited() bool {
	return e.StatusCode == 429
}

// ReplayUnavailableError indicates the API answered a replay request with
// its literal "Replay not available." error.
type ReplayUnavailableError struct {
	Message string
}

func (e *ReplayUnavailableError) Error() string {
	if e.Message == "" {
		return "replay not available"
	}
	return fmt.Sprintf("replay unavailable: %s", e.Message)
}

func (e *ReplayUnavailableError) Is(target error) bool {
	return target == ErrReplayUnavailable
}

// transientError marks outcomes the retry loop may attempt again: transport
// failures, 429 and 5xx responses. It never escapes the request pipeline.
type transientError struct {
	err error
}

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

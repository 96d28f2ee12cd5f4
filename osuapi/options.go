package osuapi

import (
	"net/http"
	"time"
)

// Option configures optional client behavior.
type Option func(*clientOptions)

type clientOptions struct {
	baseURL     string
	fileBaseURL string
	timeout     time.Duration
	retryCount  int
	userAgent   string
	httpClient  *http.Client
	breaker     bool
}

func defaultOptions() *clientOptions {
	return &clientOptions{
		baseURL:     DefaultBaseURL,
		fileBaseURL: DefaultFileBaseURL,
		timeout:     30 * time.Second,
		retryCount:  DefaultRetryCount,
		userAgent:   "osukit",
	}
}

// WithBaseURL overrides the API endpoint, mainly for tests.
func WithBaseURL(baseURL string) Option {
	return func(o *clientOptions) {
		if baseURL != "" {
			o.baseURL = baseURL
		}
	}
}

// WithFileBaseURL overrides the site endpoint used for .osu downloads.
func WithFileBaseURL(baseURL string) Option {
	return func(o *clientOptions) {
		if baseURL != "" {
			o.fileBaseURL = baseURL
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(o *clientOptions) {
		if timeout > 0 {
			o.timeout = timeout
		}
	}
}

// WithRetries sets how many attempts each request gets before giving up.
// Zero means a single attempt with no retries.
func WithRetries(count int) Option {
	return func(o *clientOptions) {
		if count >= 0 {
			o.retryCount = count
		}
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(userAgent string) Option {
	return func(o *clientOptions) {
		if userAgent != "" {
			o.userAgent = userAgent
		}
	}
}

// WithHTTPClient substitutes a custom HTTP client, for tests or for
// callers that need their own transport settings.
func WithHTTPClient(client *http.Client) Option {
	return func(o *clientOptions) {
		if client != nil {
			o.httpClient = client
		}
	}
}

// WithCircuitBreaker trips the client open after repeated transport
// failures instead of hammering a struggling server.
func WithCircuitBreaker() Option {
	return func(o *clientOptions) {
		o.breaker = true
	}
}

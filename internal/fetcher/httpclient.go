package fetcher

import (
	"log/slog"
	"time"

	"resty.dev/v3"
)

const (
	// Default retry configuration
	defaultRetryCount       = 2
	defaultRetryWaitTime    = 1 * time.Second
	defaultRetryMaxWaitTime = 10 * time.Second
	defaultTimeout          = 15 * time.Second
)

// ClientOptions tunes the HTTP client shared by the price sources.
type ClientOptions struct {
	// RetryCount is the number of retries after the first attempt.
	// Negative values select the default.
	RetryCount int
	// Timeout bounds a single attempt. Zero selects the default.
	Timeout time.Duration
	// UserAgent, when set, is sent with every request.
	UserAgent string
	// Accept is the Accept header value. Empty selects application/json.
	Accept string
}

// DefaultClientOptions returns the options used when nothing is configured.
func DefaultClientOptions() ClientOptions {
	return ClientOptions{
		RetryCount: defaultRetryCount,
		Timeout:    defaultTimeout,
	}
}

// NewHTTPClient creates a new HTTP client with retry logic and exponential backoff
func NewHTTPClient(baseURL string, opts ClientOptions) *resty.Client {
	if opts.RetryCount < 0 {
		opts.RetryCount = defaultRetryCount
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.Accept == "" {
		opts.Accept = "application/json"
	}

	client := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Accept", opts.Accept).
		SetTimeout(opts.Timeout).
		SetRetryCount(opts.RetryCount).
		SetRetryWaitTime(defaultRetryWaitTime).
		SetRetryMaxWaitTime(defaultRetryMaxWaitTime).
		AddRetryConditions(retryCondition).
		AddRetryHooks(retryHook)

	if opts.UserAgent != "" {
		client.SetHeader("User-Agent", opts.UserAgent)
	}

	return client
}

// retryCondition determines whether a request should be retried based on the response and error
func retryCondition(r *resty.Response, err error) bool {
	// Retry on network errors
	if err != nil {
		return true
	}

	// Retry on server errors (5xx)
	if r.StatusCode() >= 500 {
		return true
	}

	// Retry on rate limit (429)
	if r.StatusCode() == 429 {
		return true
	}

	// Retry on request timeout (408)
	if r.StatusCode() == 408 {
		return true
	}

	return false
}

// retryHook logs retry attempts for observability
func retryHook(r *resty.Response, err error) {
	if err != nil {
		slog.Debug("retrying request due to error",
			"url", r.Request.URL,
			"attempt", r.Request.Attempt,
			"error", err.Error())
		return
	}

	slog.Debug("retrying request due to status code",
		"url", r.Request.URL,
		"attempt", r.Request.Attempt,
		"status_code", r.StatusCode())
}

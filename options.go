package visgate

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Option configures a Client.
type Option func(*Client)

// WithAPIKey sets the visgate API key explicitly, bypassing the
// VISGATE_API_KEY environment variable.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithBaseURL overrides the API base URL. Useful for staging deployments
// and test servers.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithTimeout sets the per-attempt request timeout. Defaults to 120s.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithMaxRetries sets the number of automatic retries for transient
// failures (429, 5xx, network errors). Defaults to 2; 0 disables retries.
func WithMaxRetries(n int) Option {
	return func(c *Client) {
		c.maxRetries = n
	}
}

// WithHTTPClient sets a custom HTTP client. The client's connection pool
// must be safe for concurrent use.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger attaches a zerolog logger. Request attempts log at debug
// level, retry waits at info level. Logging is disabled by default.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithFalKey sets a Fal.ai API key for BYOK mode.
func WithFalKey(key string) Option {
	return func(c *Client) {
		c.initialKeys.fal = key
	}
}

// WithReplicateKey sets a Replicate API key for BYOK mode.
func WithReplicateKey(key string) Option {
	return func(c *Client) {
		c.initialKeys.replicate = key
	}
}

// WithRunwayKey sets a Runway API key for BYOK mode.
func WithRunwayKey(key string) Option {
	return func(c *Client) {
		c.initialKeys.runway = key
	}
}

// WithEnvFile loads the given dotenv files into the process environment
// before the API key is resolved.
func WithEnvFile(files ...string) Option {
	return func(c *Client) {
		c.envFiles = append(c.envFiles, files...)
	}
}

// WithEnvLookup replaces the environment lookup used to resolve the API
// key. Intended for tests.
func WithEnvLookup(lookup func(string) string) Option {
	return func(c *Client) {
		c.envLookup = lookup
	}
}

// WithUserAgent overrides the User-Agent header sent on every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

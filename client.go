package visgate

import (
	"net/http"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

const (
	// DefaultBaseURL is the production visgate API endpoint.
	DefaultBaseURL = "https://visgateai.com/api/v1"

	// APIKeyEnvVar is the environment variable consulted when no explicit
	// API key is configured.
	APIKeyEnvVar = "VISGATE_API_KEY"

	defaultTimeout    = 120 * time.Second
	defaultMaxRetries = 2
)

// providerKeys is an immutable snapshot of BYOK provider credentials.
// Updating keys swaps the whole snapshot; in-flight requests keep the
// snapshot they started with.
type providerKeys struct {
	fal       string
	replicate string
	runway    string
}

// Client is the visgate API client.
//
// A Client is safe for concurrent use by multiple goroutines. Each method
// call is independent; the only shared mutable state is the underlying
// HTTP connection pool and the BYOK header snapshot, both of which handle
// their own synchronization.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	timeout    time.Duration
	maxRetries int
	userAgent  string
	logger     zerolog.Logger
	keys       atomic.Pointer[providerKeys]

	// construction-time state, set by options
	envLookup   func(string) string
	envFiles    []string
	initialKeys providerKeys
}

// NewClient creates a new visgate client.
//
// The API key is resolved from [WithAPIKey] first, then from the
// VISGATE_API_KEY environment variable. When neither is set, NewClient
// returns an [AuthenticationError].
//
//	client, err := visgate.NewClient(
//	    visgate.WithAPIKey("vg-..."),
//	    visgate.WithTimeout(2*time.Minute),
//	)
func NewClient(opts ...Option) (*Client, error) {
	c := &Client{
		baseURL:    DefaultBaseURL,
		timeout:    defaultTimeout,
		maxRetries: defaultMaxRetries,
		userAgent:  "visgate-go/" + Version,
		logger:     zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if len(c.envFiles) > 0 {
		if err := godotenv.Load(c.envFiles...); err != nil {
			return nil, &GatewayError{
				Code:    CodeGatewayError,
				Message: "failed to load env file",
				Cause:   err,
			}
		}
	}

	key, err := resolveAPIKey(c.apiKey, c.envLookup)
	if err != nil {
		return nil, err
	}
	c.apiKey = key

	c.baseURL = strings.TrimRight(c.baseURL, "/")
	if c.httpClient == nil {
		// Per-attempt deadlines are enforced with contexts in do(), so the
		// transport itself carries no timeout.
		c.httpClient = &http.Client{}
	}
	c.keys.Store(&c.initialKeys)

	return c, nil
}

// resolveAPIKey returns the explicit key when non-empty, falling back to
// the environment. lookup defaults to os.Getenv; tests inject their own.
func resolveAPIKey(explicit string, lookup func(string) string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if lookup == nil {
		lookup = os.Getenv
	}
	if key := lookup(APIKeyEnvVar); key != "" {
		return key, nil
	}
	return "", newAuthenticationError(
		"no API key provided: pass visgate.WithAPIKey or set the " + APIKeyEnvVar + " environment variable")
}

// SetProviderKeys replaces the BYOK provider credentials used on
// subsequent requests. Empty strings put the corresponding provider back
// in managed mode.
//
// The keys are swapped atomically; requests already in flight finish with
// the credentials they started with.
func (c *Client) SetProviderKeys(falKey, replicateKey, runwayKey string) {
	c.keys.Store(&providerKeys{
		fal:       falKey,
		replicate: replicateKey,
		runway:    runwayKey,
	})
}

// Close releases idle connections held by the underlying HTTP client.
// The Client must not be used after Close.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

// BaseURL returns the configured API base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

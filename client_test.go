package visgate_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	visgate "github.com/visgate-ai/visgate-go"
)

// noEnv is an environment lookup that finds nothing, so tests never pick
// up a real VISGATE_API_KEY from the host.
func noEnv(string) string { return "" }

// mustEncode encodes v as JSON and writes it to w.
// Panics on error - safe in tests since errors indicate test bugs.
func mustEncode(w http.ResponseWriter, v interface{}) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		panic("failed to encode response: " + err.Error())
	}
}

// mustDecode decodes JSON from r.Body into v.
// Panics on error - safe in tests since errors indicate test bugs.
func mustDecode(r *http.Request, v interface{}) {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		panic("failed to decode request: " + err.Error())
	}
}

// newTestClient builds a client pointed at the mock server.
func newTestClient(t *testing.T, server *httptest.Server, opts ...visgate.Option) *visgate.Client {
	t.Helper()
	base := []visgate.Option{
		visgate.WithAPIKey("vg-test-key"),
		visgate.WithBaseURL(server.URL),
		visgate.WithEnvLookup(noEnv),
	}
	client, err := visgate.NewClient(append(base, opts...)...)
	require.NoError(t, err)
	return client
}

// TestNewClient_ExplicitKey verifies an explicit API key wins over the
// environment.
func TestNewClient_ExplicitKey(t *testing.T) {
	client, err := visgate.NewClient(
		visgate.WithAPIKey("vg-explicit"),
		visgate.WithEnvLookup(func(name string) string {
			assert.Equal(t, visgate.APIKeyEnvVar, name)
			return "vg-from-env"
		}),
	)
	require.NoError(t, err)
	assert.NotNil(t, client)
}

// TestNewClient_EnvKey verifies the key falls back to VISGATE_API_KEY.
func TestNewClient_EnvKey(t *testing.T) {
	client, err := visgate.NewClient(
		visgate.WithEnvLookup(func(name string) string {
			if name == visgate.APIKeyEnvVar {
				return "vg-from-env"
			}
			return ""
		}),
	)
	require.NoError(t, err)
	assert.NotNil(t, client)
}

// TestNewClient_MissingKey verifies a typed AuthenticationError when no
// key can be resolved.
func TestNewClient_MissingKey(t *testing.T) {
	client, err := visgate.NewClient(visgate.WithEnvLookup(noEnv))

	assert.Nil(t, client)
	var authErr *visgate.AuthenticationError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, visgate.CodeAuthentication, authErr.Code)
}

// TestNewClient_TrimsBaseURL verifies trailing slashes do not produce
// double-slash request paths.
func TestNewClient_TrimsBaseURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		mustEncode(w, map[string]string{"status": "ok", "version": "1.0.0"})
	}))
	defer server.Close()

	client := newTestClient(t, server, visgate.WithBaseURL(server.URL+"/"))
	_, err := client.Health(context.Background())
	require.NoError(t, err)
}

// TestClient_DefaultHeaders verifies every request carries auth,
// content-type, user-agent and a request id.
func TestClient_DefaultHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer vg-test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Contains(t, r.Header.Get("User-Agent"), "visgate-go/")
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		assert.Empty(t, r.Header.Get("X-Fal-Key"))
		mustEncode(w, map[string]string{"status": "ok"})
	}))
	defer server.Close()

	client := newTestClient(t, server)
	_, err := client.Health(context.Background())
	require.NoError(t, err)
}

// TestClient_BYOKHeaders verifies provider keys configured at
// construction are forwarded as dedicated headers.
func TestClient_BYOKHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "fal-123", r.Header.Get("X-Fal-Key"))
		assert.Equal(t, "rep-456", r.Header.Get("X-Replicate-Key"))
		assert.Equal(t, "run-789", r.Header.Get("X-Runway-Key"))
		mustEncode(w, map[string]string{"status": "ok"})
	}))
	defer server.Close()

	client := newTestClient(t, server,
		visgate.WithFalKey("fal-123"),
		visgate.WithReplicateKey("rep-456"),
		visgate.WithRunwayKey("run-789"),
	)
	_, err := client.Health(context.Background())
	require.NoError(t, err)
}

// TestClient_SetProviderKeys verifies key rotation applies to subsequent
// requests and clearing a key drops its header.
func TestClient_SetProviderKeys(t *testing.T) {
	var gotFal, gotReplicate []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotFal = append(gotFal, r.Header.Get("X-Fal-Key"))
		gotReplicate = append(gotReplicate, r.Header.Get("X-Replicate-Key"))
		mustEncode(w, map[string]string{"status": "ok"})
	}))
	defer server.Close()

	client := newTestClient(t, server, visgate.WithFalKey("fal-old"))

	_, err := client.Health(context.Background())
	require.NoError(t, err)

	client.SetProviderKeys("", "rep-new", "")

	_, err = client.Health(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"fal-old", ""}, gotFal)
	assert.Equal(t, []string{"", "rep-new"}, gotReplicate)
}

package visgate_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	visgate "github.com/visgate-ai/visgate-go"
)

// TestGetUsage verifies the summary decodes and the period is passed
// through.
func TestGetUsage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/usage", r.URL.Path)
		assert.Equal(t, "week", r.URL.Query().Get("period"))
		mustEncode(w, map[string]any{
			"total_requests":      200,
			"successful_requests": 190,
			"failed_requests":     10,
			"cached_requests":     50,
			"total_provider_cost": 12.5,
			"total_billed_cost":   10.0,
			"total_savings":       2.5,
			"by_provider":         map[string]int64{"fal": 150, "replicate": 50},
			"period":              "week",
		})
	}))
	defer server.Close()

	client := newTestClient(t, server)
	usage, err := client.GetUsage(context.Background(), visgate.PeriodWeek)

	require.NoError(t, err)
	assert.Equal(t, int64(200), usage.TotalRequests)
	assert.Equal(t, int64(50), usage.CachedRequests)
	assert.Equal(t, 2.5, usage.TotalSavings)
	assert.Equal(t, int64(150), usage.ByProvider["fal"])
	assert.InDelta(t, 25.0, usage.CacheHitRate(), 0.001)
}

// TestGetUsage_DefaultPeriod verifies an empty period defaults to month.
func TestGetUsage_DefaultPeriod(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "month", r.URL.Query().Get("period"))
		mustEncode(w, map[string]any{"period": "month"})
	}))
	defer server.Close()

	client := newTestClient(t, server)
	_, err := client.GetUsage(context.Background(), "")
	require.NoError(t, err)
}

// TestCacheHitRate_ZeroRequests verifies the rate does not divide by
// zero.
func TestCacheHitRate_ZeroRequests(t *testing.T) {
	usage := &visgate.UsageSummary{}
	assert.Equal(t, 0.0, usage.CacheHitRate())
}

// TestUsageLogs_BareArray verifies decoding of the bare-array shape.
func TestUsageLogs_BareArray(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/usage/logs", r.URL.Path)
		assert.Equal(t, "50", r.URL.Query().Get("limit"))
		assert.Equal(t, "0", r.URL.Query().Get("offset"))
		mustEncode(w, []map[string]any{
			{"request_id": "req-1", "model": "fal-ai/flux/schnell"},
			{"request_id": "req-2", "model": "fal-ai/flux-pro"},
		})
	}))
	defer server.Close()

	client := newTestClient(t, server)
	logs, err := client.UsageLogs(context.Background(), 0, 0)

	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "req-1", logs[0]["request_id"])
}

// TestUsageLogs_WrappedObject verifies decoding of the {"logs": ...}
// shape.
func TestUsageLogs_WrappedObject(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "10", r.URL.Query().Get("limit"))
		assert.Equal(t, "20", r.URL.Query().Get("offset"))
		mustEncode(w, map[string]any{
			"logs": []map[string]any{{"request_id": "req-3"}},
		})
	}))
	defer server.Close()

	client := newTestClient(t, server)
	logs, err := client.UsageLogs(context.Background(), 10, 20)

	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "req-3", logs[0]["request_id"])
}

// TestDashboard verifies the dashboard payload passes through undecoded.
func TestDashboard(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/dashboard", r.URL.Path)
		assert.Equal(t, "day", r.URL.Query().Get("period"))
		mustEncode(w, map[string]any{"plan": "pro", "spend_today": 1.25})
	}))
	defer server.Close()

	client := newTestClient(t, server)
	dash, err := client.Dashboard(context.Background(), visgate.PeriodDay)

	require.NoError(t, err)
	assert.Equal(t, "pro", dash["plan"])
}

package visgate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-openapi/strfmt"
)

// Reporting periods accepted by the usage endpoints.
const (
	PeriodDay   = "day"
	PeriodWeek  = "week"
	PeriodMonth = "month"
	PeriodYear  = "year"
)

// UsageSummary aggregates request counts and costs for one period.
type UsageSummary struct {
	TotalRequests      int64 `json:"total_requests"`
	SuccessfulRequests int64 `json:"successful_requests"`
	FailedRequests     int64 `json:"failed_requests"`
	CachedRequests     int64 `json:"cached_requests"`

	TotalProviderCost float64 `json:"total_provider_cost"`
	TotalBilledCost   float64 `json:"total_billed_cost"`
	TotalSavings      float64 `json:"total_savings"`

	ByProvider map[string]int64 `json:"by_provider,omitempty"`
	ByModel    map[string]int64 `json:"by_model,omitempty"`

	Period      string           `json:"period"`
	PeriodStart *strfmt.DateTime `json:"period_start,omitempty"`
	PeriodEnd   *strfmt.DateTime `json:"period_end,omitempty"`
}

// CacheHitRate returns the cached share of requests as a percentage.
func (u *UsageSummary) CacheHitRate() float64 {
	if u.TotalRequests == 0 {
		return 0
	}
	return float64(u.CachedRequests) / float64(u.TotalRequests) * 100
}

// GetUsage fetches the usage summary for a period ("day", "week",
// "month" or "year"; empty defaults to "month").
func (c *Client) GetUsage(ctx context.Context, period string) (*UsageSummary, error) {
	if period == "" {
		period = PeriodMonth
	}
	var out UsageSummary
	q := url.Values{"period": []string{period}}
	if err := c.doJSON(ctx, http.MethodGet, "/usage", q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UsageLogs fetches detailed, paginated usage log entries. The endpoint
// has returned both a bare array and a {"logs": [...]} wrapper across
// API revisions; both shapes are accepted.
func (c *Client) UsageLogs(ctx context.Context, limit, offset int) ([]map[string]any, error) {
	if limit <= 0 {
		limit = 50
	}
	q := url.Values{
		"limit":  []string{strconv.Itoa(limit)},
		"offset": []string{strconv.Itoa(offset)},
	}

	data, _, err := c.do(ctx, http.MethodGet, "/usage/logs", q, nil, nil)
	if err != nil {
		return nil, err
	}

	var entries []map[string]any
	if json.Unmarshal(data, &entries) == nil {
		return entries, nil
	}
	var wrapped struct {
		Logs []map[string]any `json:"logs"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, &GatewayError{Code: CodeGatewayError, Message: "failed to decode response body", Cause: err}
	}
	return wrapped.Logs, nil
}

// Dashboard fetches the dashboard summary for a period. The payload
// shape varies by plan, so it is returned undecoded.
func (c *Client) Dashboard(ctx context.Context, period string) (map[string]any, error) {
	if period == "" {
		period = PeriodMonth
	}
	var out map[string]any
	q := url.Values{"period": []string{period}}
	if err := c.doJSON(ctx, http.MethodGet, "/dashboard", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

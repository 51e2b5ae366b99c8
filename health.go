package visgate

import (
	"context"
	"net/http"
)

// Health reports the gateway's health status.
type Health struct {
	// Status is "ok" when the gateway is healthy.
	Status string `json:"status"`

	// Version is the gateway server version. Feed it to
	// [CheckCompatibility] to verify SDK compatibility.
	Version string `json:"version"`

	// Database and Cache report the status of the gateway's backing
	// components.
	Database string `json:"database,omitempty"`
	Cache    string `json:"cache,omitempty"`
}

// IsHealthy returns true if the overall status is "ok".
func (h *Health) IsHealthy() bool {
	return h.Status == "ok"
}

// Health checks the gateway's health endpoint.
//
//	health, err := client.Health(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("gateway %s (v%s)\n", health.Status, health.Version)
func (c *Client) Health(ctx context.Context) (*Health, error) {
	var out Health
	if err := c.doJSON(ctx, http.MethodGet, "/health", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

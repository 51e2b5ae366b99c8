package visgate

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-openapi/strfmt"
)

// ModelInfo describes one model in the gateway catalog.
type ModelInfo struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Provider  string `json:"provider"`
	MediaType string `json:"media_type"`

	Description   *string  `json:"description,omitempty"`
	Category      *string  `json:"category,omitempty"`
	Tags          []string `json:"tags,omitempty"`
	CoverImageURL *string  `json:"cover_image_url,omitempty"`
	Author        *string  `json:"author,omitempty"`
	URL           *string  `json:"url,omitempty"`

	// Costs are in micro-USD.
	BaseCostMicro       int64   `json:"base_cost_micro"`
	NormalizedCostMicro int64   `json:"normalized_cost_micro"`
	Pricing             *string `json:"pricing,omitempty"`
	PricingUnit         *string `json:"pricing_unit,omitempty"`

	RunCount int64 `json:"run_count"`

	InputTypes   []string `json:"input_types,omitempty"`
	OutputType   *string  `json:"output_type,omitempty"`
	Capabilities []string `json:"capabilities,omitempty"`

	FirstSeenAt       *strfmt.DateTime `json:"first_seen_at,omitempty"`
	ProviderCreatedAt *strfmt.DateTime `json:"provider_created_at,omitempty"`
	LastSyncedAt      *strfmt.DateTime `json:"last_synced_at,omitempty"`
}

// FeaturedSection is a curated group of models.
type FeaturedSection struct {
	Title  string      `json:"title"`
	Key    string      `json:"key"`
	Models []ModelInfo `json:"models"`
}

// ModelsResponse is the catalog listing returned by GET /models.
type ModelsResponse struct {
	Models      []ModelInfo       `json:"models"`
	TotalCount  int               `json:"total_count"`
	LastUpdated *strfmt.DateTime  `json:"last_updated,omitempty"`
	Featured    []FeaturedSection `json:"featured,omitempty"`
}

// ModelListParams filters GET /models.
type ModelListParams struct {
	// Provider filters by provider: "fal", "replicate" or "runway".
	Provider string

	// MediaType filters by output type: "image" or "video".
	MediaType string

	// Capability filters by capability, e.g. "text-to-image".
	Capability string

	// Search matches model name, description or author.
	Search string

	// Sort orders results: "name", "cost", "newest" or "popular".
	Sort string

	// Limit caps the number of results. Defaults to 100.
	Limit int

	// Featured includes curated sections in the response.
	Featured bool
}

func (p *ModelListParams) query() url.Values {
	q := url.Values{}
	limit := 100
	if p != nil {
		if p.Limit > 0 {
			limit = p.Limit
		}
		if p.Provider != "" {
			q.Set("provider", p.Provider)
		}
		if p.MediaType != "" {
			q.Set("media_type", p.MediaType)
		}
		if p.Capability != "" {
			q.Set("capability", p.Capability)
		}
		if p.Search != "" {
			q.Set("search", p.Search)
		}
		if p.Sort != "" {
			q.Set("sort", p.Sort)
		}
		if p.Featured {
			q.Set("featured", "true")
		}
	}
	q.Set("limit", strconv.Itoa(limit))
	return q
}

// ListModels lists the model catalog, optionally filtered.
func (c *Client) ListModels(ctx context.Context, params *ModelListParams) (*ModelsResponse, error) {
	var out ModelsResponse
	if err := c.doJSON(ctx, http.MethodGet, "/models", params.query(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetModel fetches the catalog entry for one model.
func (c *Client) GetModel(ctx context.Context, modelID string) (*ModelInfo, error) {
	if modelID == "" {
		return nil, missingField("model_id")
	}
	var out ModelInfo
	if err := c.doJSON(ctx, http.MethodGet, "/models/"+modelID, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SearchModels searches the catalog by name, description or author.
// Shorthand for ListModels with a search filter.
func (c *Client) SearchModels(ctx context.Context, query string, limit int) (*ModelsResponse, error) {
	if limit <= 0 {
		limit = 20
	}
	return c.ListModels(ctx, &ModelListParams{Search: query, Limit: limit})
}

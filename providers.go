package visgate

import (
	"context"
	"net/http"

	"github.com/go-openapi/strfmt"
)

// Provider identifiers accepted by the key management endpoints.
const (
	ProviderFal       = "fal"
	ProviderReplicate = "replicate"
	ProviderRunway    = "runway"
)

// ProviderKeyInfo describes one stored BYOK provider key.
type ProviderKeyInfo struct {
	Provider    string           `json:"provider"`
	Validated   bool             `json:"validated"`
	ValidatedAt *strfmt.DateTime `json:"validated_at,omitempty"`

	// MaskedKey is the stored key with all but the last characters
	// redacted.
	MaskedKey *string `json:"masked_key,omitempty"`
}

// ProviderKeysResponse lists the stored provider keys.
type ProviderKeysResponse struct {
	Keys []ProviderKeyInfo `json:"keys"`
}

// ProviderValidationResult is the outcome of a key validation probe.
type ProviderValidationResult struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message"`
}

// ProviderBalanceItem reports remaining credit with one provider.
type ProviderBalanceItem struct {
	Provider   string `json:"provider"`
	Configured bool   `json:"configured"`
	Available  bool   `json:"available"`

	Limit     *float64 `json:"limit,omitempty"`
	Remaining *float64 `json:"remaining,omitempty"`
	Currency  *string  `json:"currency,omitempty"`
	Message   *string  `json:"message,omitempty"`
}

// ProviderBalancesResponse lists balances across providers.
type ProviderBalancesResponse struct {
	Balances []ProviderBalanceItem `json:"balances"`
}

type providerKeyPayload struct {
	Provider string `json:"provider"`
	APIKey   string `json:"api_key"`
}

// ListProviderKeys lists the BYOK keys stored with the gateway.
func (c *Client) ListProviderKeys(ctx context.Context) (*ProviderKeysResponse, error) {
	var out ProviderKeysResponse
	if err := c.doJSON(ctx, http.MethodGet, "/providers/keys", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SetProviderKey stores or replaces a BYOK key for a provider.
func (c *Client) SetProviderKey(ctx context.Context, provider, apiKey string) (*ProviderKeyInfo, error) {
	if provider == "" {
		return nil, missingField("provider")
	}
	if apiKey == "" {
		return nil, missingField("api_key")
	}
	var out ProviderKeyInfo
	body := providerKeyPayload{Provider: provider, APIKey: apiKey}
	if err := c.doJSON(ctx, http.MethodPut, "/providers/keys", nil, &body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteProviderKey removes the stored BYOK key for a provider, putting
// it back in managed mode.
func (c *Client) DeleteProviderKey(ctx context.Context, provider string) error {
	if provider == "" {
		return missingField("provider")
	}
	return c.doJSON(ctx, http.MethodDelete, "/providers/keys/"+provider, nil, nil, nil)
}

// ValidateProviderKey probes a provider key without storing it.
func (c *Client) ValidateProviderKey(ctx context.Context, provider, apiKey string) (*ProviderValidationResult, error) {
	if provider == "" {
		return nil, missingField("provider")
	}
	if apiKey == "" {
		return nil, missingField("api_key")
	}
	var out ProviderValidationResult
	body := providerKeyPayload{Provider: provider, APIKey: apiKey}
	if err := c.doJSON(ctx, http.MethodPost, "/providers/validate", nil, &body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ProviderBalances fetches remaining credit across configured providers.
func (c *Client) ProviderBalances(ctx context.Context) (*ProviderBalancesResponse, error) {
	var out ProviderBalancesResponse
	if err := c.doJSON(ctx, http.MethodGet, "/providers/balances", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

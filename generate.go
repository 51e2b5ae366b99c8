package visgate

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-openapi/strfmt"
)

// DefaultModel is used by [Client.Generate] when no model is specified.
const DefaultModel = "fal-ai/flux/schnell"

// GenerateRequest is the payload for the unified POST /generate endpoint.
type GenerateRequest struct {
	// Prompt describes the image to generate. Required.
	Prompt string `json:"prompt"`

	// Model is the model identifier. Defaults to [DefaultModel].
	Model string `json:"model,omitempty"`

	// Params carries model-specific parameters, forwarded verbatim.
	Params map[string]any `json:"params,omitempty"`
}

// GenerateResult is the response of the unified generation endpoint.
type GenerateResult struct {
	ID string `json:"id"`

	// ImageURL is the first generated image, a convenience shortcut for
	// Images[0].
	ImageURL *string  `json:"image_url,omitempty"`
	Images   []string `json:"images,omitempty"`

	Model    string `json:"model"`
	Provider string `json:"provider"`

	// Mode is "managed" or "byok".
	Mode string `json:"mode"`

	Cost             float64 `json:"estimated_cost_usd"`
	CostPerMegapixel float64 `json:"cost_per_megapixel_usd"`
	LatencyMS        int64   `json:"latency_ms"`

	// Resolution holds "width" and "height" in pixels.
	Resolution map[string]int `json:"resolution,omitempty"`

	CreatedAt *strfmt.DateTime `json:"created_at,omitempty"`
}

// Generate runs a single-call image generation against POST /generate.
//
//	result, err := client.Generate(ctx, &visgate.GenerateRequest{
//	    Prompt: "a sunset over mountains",
//	})
func (c *Client) Generate(ctx context.Context, req *GenerateRequest) (*GenerateResult, error) {
	if req == nil || req.Prompt == "" {
		return nil, missingField("prompt")
	}
	body := *req
	if body.Model == "" {
		body.Model = DefaultModel
	}
	var out GenerateResult
	if err := c.doJSON(ctx, http.MethodPost, "/generate", nil, &body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// missingField builds the client-side validation error for a required
// request field, shaped like the server's 422 errors.
func missingField(field string) *ValidationError {
	return &ValidationError{
		GatewayError: GatewayError{
			Code:    CodeValidation,
			Message: field + " is required",
			Details: map[string]any{"field": field},
		},
		Field: field,
	}
}

// pendingAck extracts the request identifier when a generation response
// is an asynchronous acknowledgement instead of a final result.
func pendingAck(data json.RawMessage, status int) (string, bool) {
	var ack struct {
		RequestID string `json:"request_id"`
		Status    string `json:"status"`
	}
	if err := json.Unmarshal(data, &ack); err != nil {
		return "", false
	}
	if ack.RequestID != "" && (ack.Status == StatusPending || status == http.StatusAccepted) {
		return ack.RequestID, true
	}
	return "", false
}

// preferAsync is sent on *Async generation calls to request 202 handling.
var preferAsync = http.Header{"Prefer": []string{"respond-async"}}

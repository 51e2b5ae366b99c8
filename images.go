package visgate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/go-openapi/swag"
)

// ImageRequest is the payload for POST /images/generate.
type ImageRequest struct {
	// Model is the model identifier, e.g. "fal-ai/flux/schnell". Required.
	Model string

	// Prompt describes the desired image. Required.
	Prompt string

	// NegativePrompt describes what to avoid.
	NegativePrompt string

	// Width and Height in pixels. Default to 1024.
	Width  int
	Height int

	// NumImages is the number of images to generate. Defaults to 1.
	NumImages int

	// Seed fixes the random seed for reproducibility.
	Seed *int64

	// Params carries additional model-specific parameters, merged into
	// the payload at the top level.
	Params map[string]any

	// IncludeSteps asks the server for per-step timing metadata
	// (cache, provider, storage) in the result.
	IncludeSteps bool
}

func (r *ImageRequest) payload() map[string]any {
	width, height := r.Width, r.Height
	if width == 0 {
		width = 1024
	}
	if height == 0 {
		height = 1024
	}
	numImages := r.NumImages
	if numImages == 0 {
		numImages = 1
	}
	p := map[string]any{
		"model":      r.Model,
		"prompt":     r.Prompt,
		"width":      width,
		"height":     height,
		"num_images": numImages,
	}
	if r.NegativePrompt != "" {
		p["negative_prompt"] = r.NegativePrompt
	}
	if r.Seed != nil {
		p["seed"] = *r.Seed
	}
	for k, v := range r.Params {
		p[k] = v
	}
	return p
}

func (r *ImageRequest) query() url.Values {
	if !r.IncludeSteps {
		return nil
	}
	return url.Values{"include_steps": []string{"true"}}
}

// ImageResult is the response of an image generation request.
type ImageResult struct {
	ID       string   `json:"id"`
	Images   []string `json:"images,omitempty"`
	Model    string   `json:"model"`
	Provider string   `json:"provider"`
	Cost     float64  `json:"cost"`

	// CacheHit reports whether the result came from the semantic cache.
	CacheHit bool `json:"cache_hit"`

	// ProviderCostAvoidedMicro is the provider cost avoided by a cache
	// hit, in micro-USD.
	ProviderCostAvoidedMicro *int64 `json:"provider_cost_avoided_micro,omitempty"`

	LatencyMS *int64           `json:"latency_ms,omitempty"`
	CreatedAt *strfmt.DateTime `json:"created_at,omitempty"`

	// OutputStorage is the host where the output is stored, when the
	// server reports it.
	OutputStorage   *string `json:"output_storage,omitempty"`
	OutputSizeBytes *int64  `json:"output_size_bytes,omitempty"`

	// Steps holds per-step timing metadata when IncludeSteps was set.
	Steps []map[string]any `json:"steps,omitempty"`
}

// GenerateImage generates image(s) and blocks until the result is ready.
//
// Should the server elect asynchronous handling anyway, GenerateImage
// transparently polls the request to completion, so callers always get a
// finished result or an error.
func (c *Client) GenerateImage(ctx context.Context, req *ImageRequest) (*ImageResult, error) {
	if req == nil || req.Prompt == "" {
		return nil, missingField("prompt")
	}
	if req.Model == "" {
		return nil, missingField("model")
	}

	data, status, err := c.do(ctx, http.MethodPost, "/images/generate", req.query(), req.payload(), nil)
	if err != nil {
		return nil, err
	}
	if id, ok := pendingAck(data, status); ok {
		final, err := c.WaitForRequest(ctx, id, &WaitOptions{Strict: true})
		if err != nil {
			return nil, err
		}
		return imageResultFromStatus(final)
	}

	var out ImageResult
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, &GatewayError{Code: CodeGatewayError, Message: "failed to decode response body", Cause: err}
	}
	return &out, nil
}

// GenerateImageAsync submits an image generation with Prefer:
// respond-async and returns a [GenerationRequest] handle to poll. When
// the endpoint answers synchronously regardless, the handle wraps the
// finished request's id; its first poll reports the terminal status.
func (c *Client) GenerateImageAsync(ctx context.Context, req *ImageRequest) (*GenerationRequest, error) {
	if req == nil || req.Prompt == "" {
		return nil, missingField("prompt")
	}
	if req.Model == "" {
		return nil, missingField("model")
	}

	data, status, err := c.do(ctx, http.MethodPost, "/images/generate", req.query(), req.payload(), preferAsync)
	if err != nil {
		return nil, err
	}
	if id, ok := pendingAck(data, status); ok {
		return &GenerationRequest{RequestID: id, client: c}, nil
	}

	var sync struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(data, &sync); err != nil || sync.ID == "" {
		return nil, &GatewayError{
			Code:       CodeGatewayError,
			Message:    "response carried neither a request id nor a result id",
			HTTPStatus: status,
		}
	}
	return &GenerationRequest{RequestID: sync.ID, client: c}, nil
}

// imageResultFromStatus builds an ImageResult from the terminal snapshot
// of a request the server handled asynchronously.
func imageResultFromStatus(status *RequestStatus) (*ImageResult, error) {
	if status.Status == StatusFailed {
		return nil, generationFailed(status)
	}
	out := &ImageResult{
		ID:        status.RequestID,
		Model:     status.Model,
		Provider:  status.Provider,
		CreatedAt: status.CreatedAt,
		LatencyMS: latencyBetween(status.CreatedAt, status.CompletedAt),
	}
	if status.OutputURL != nil {
		out.Images = []string{*status.OutputURL}
	}
	return out, nil
}

func generationFailed(status *RequestStatus) *GatewayError {
	message := "generation failed"
	if status.ErrorMessage != nil && *status.ErrorMessage != "" {
		message = *status.ErrorMessage
	}
	return &GatewayError{
		Code:    "GENERATION_FAILED",
		Message: message,
		Details: map[string]any{"request_id": status.RequestID},
	}
}

func latencyBetween(start, end *strfmt.DateTime) *int64 {
	if start == nil || end == nil {
		return nil
	}
	ms := time.Time(*end).Sub(time.Time(*start)).Milliseconds()
	if ms < 0 {
		return nil
	}
	return swag.Int64(ms)
}

package visgate

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-openapi/strfmt"
)

// VideoRequest is the payload for POST /videos/generate.
type VideoRequest struct {
	// Model is the model identifier, e.g. "runway/gen3-turbo". Required.
	Model string

	// Prompt describes the desired video. Required.
	Prompt string

	// ImageURL turns the request into image-to-video animation.
	ImageURL string

	// DurationSeconds is the video length. Defaults to 5 seconds.
	DurationSeconds float64

	// SkipGCSUpload returns the provider URL directly instead of
	// re-hosting the output, avoiding the proxy timeout on long videos.
	SkipGCSUpload bool

	// Params carries additional model-specific parameters, merged into
	// the payload at the top level.
	Params map[string]any
}

func (r *VideoRequest) payload() map[string]any {
	duration := r.DurationSeconds
	if duration == 0 {
		duration = 5.0
	}
	p := map[string]any{
		"model":            r.Model,
		"prompt":           r.Prompt,
		"duration_seconds": duration,
	}
	if r.ImageURL != "" {
		p["image_url"] = r.ImageURL
	}
	if r.SkipGCSUpload {
		p["skip_gcs_upload"] = true
	}
	for k, v := range r.Params {
		p[k] = v
	}
	return p
}

// VideoResult is the response of a video generation request.
type VideoResult struct {
	ID string `json:"id"`

	// VideoURL points at the generated video. Nil while processing.
	VideoURL *string `json:"video_url,omitempty"`

	Model    string  `json:"model"`
	Provider string  `json:"provider"`
	Cost     float64 `json:"cost"`

	CacheHit                 bool   `json:"cache_hit"`
	ProviderCostAvoidedMicro *int64 `json:"provider_cost_avoided_micro,omitempty"`

	LatencyMS *int64           `json:"latency_ms,omitempty"`
	CreatedAt *strfmt.DateTime `json:"created_at,omitempty"`
}

// GenerateVideo generates a video and blocks until the result is ready.
// Video jobs routinely run for minutes; pass a context with a deadline
// sized accordingly.
//
// Should the server elect asynchronous handling anyway, GenerateVideo
// transparently polls the request to completion.
func (c *Client) GenerateVideo(ctx context.Context, req *VideoRequest) (*VideoResult, error) {
	if req == nil || req.Prompt == "" {
		return nil, missingField("prompt")
	}
	if req.Model == "" {
		return nil, missingField("model")
	}

	data, status, err := c.do(ctx, http.MethodPost, "/videos/generate", nil, req.payload(), nil)
	if err != nil {
		return nil, err
	}
	if id, ok := pendingAck(data, status); ok {
		final, err := c.WaitForRequest(ctx, id, &WaitOptions{Strict: true})
		if err != nil {
			return nil, err
		}
		return videoResultFromStatus(final)
	}

	var out VideoResult
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, &GatewayError{Code: CodeGatewayError, Message: "failed to decode response body", Cause: err}
	}
	return &out, nil
}

// GenerateVideoAsync submits a video generation with Prefer:
// respond-async and returns a [GenerationRequest] handle to poll.
//
//	handle, err := client.GenerateVideoAsync(ctx, req)
//	if err != nil {
//	    return err
//	}
//	final, err := handle.Wait(ctx, &visgate.WaitOptions{Timeout: 10 * time.Minute})
func (c *Client) GenerateVideoAsync(ctx context.Context, req *VideoRequest) (*GenerationRequest, error) {
	if req == nil || req.Prompt == "" {
		return nil, missingField("prompt")
	}
	if req.Model == "" {
		return nil, missingField("model")
	}

	data, status, err := c.do(ctx, http.MethodPost, "/videos/generate", nil, req.payload(), preferAsync)
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

func videoResultFromStatus(status *RequestStatus) (*VideoResult, error) {
	if status.Status == StatusFailed {
		return nil, generationFailed(status)
	}
	return &VideoResult{
		ID:        status.RequestID,
		VideoURL:  status.OutputURL,
		Model:     status.Model,
		Provider:  status.Provider,
		CreatedAt: status.CreatedAt,
		LatencyMS: latencyBetween(status.CreatedAt, status.CompletedAt),
	}, nil
}

package visgate

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-openapi/strfmt"
)

// Generation request statuses reported by GET /requests/{id}.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

const (
	defaultWaitTimeout  = 5 * time.Minute
	defaultPollInterval = 2 * time.Second
	minPollSleep        = 100 * time.Millisecond
)

// RequestStatus is a point-in-time snapshot of an asynchronous generation
// request. A fresh snapshot is produced per poll; snapshots never change
// after they are returned.
type RequestStatus struct {
	// RequestID is the opaque request identifier.
	RequestID string `json:"request_id"`

	// Status is one of "pending", "processing", "completed", "failed".
	Status string `json:"status"`

	// MediaType is "image", "video" or "audio".
	MediaType string `json:"media_type"`

	// Provider is the upstream provider serving the request.
	Provider string `json:"provider"`

	// Model is the model identifier.
	Model string `json:"model"`

	// OutputURL points at the generated media once Status is "completed".
	OutputURL *string `json:"output_url,omitempty"`

	// ErrorMessage carries failure details when Status is "failed".
	ErrorMessage *string `json:"error_message,omitempty"`

	CreatedAt   *strfmt.DateTime `json:"created_at,omitempty"`
	CompletedAt *strfmt.DateTime `json:"completed_at,omitempty"`
}

// UnmarshalJSON accepts both "request_id" and the legacy "id" field.
func (s *RequestStatus) UnmarshalJSON(data []byte) error {
	type alias RequestStatus
	aux := struct {
		*alias
		ID string `json:"id"`
	}{alias: (*alias)(s)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if s.RequestID == "" {
		s.RequestID = aux.ID
	}
	if s.Status == "" {
		s.Status = StatusPending
	}
	return nil
}

// IsTerminal reports whether the request reached a final state. Terminal
// requests never transition again.
func (s *RequestStatus) IsTerminal() bool {
	return s.Status == StatusCompleted || s.Status == StatusFailed
}

// WaitOptions tunes [Client.WaitForRequest].
type WaitOptions struct {
	// Timeout bounds the total wait. Defaults to 5 minutes.
	Timeout time.Duration

	// PollInterval is the delay between status polls. Defaults to 2s.
	PollInterval time.Duration

	// Strict makes the wait return a *TimeoutError when the deadline
	// passes before the request reaches a terminal state. By default the
	// latest non-terminal snapshot is returned instead, leaving the
	// terminal check to the caller.
	Strict bool
}

func (o *WaitOptions) withDefaults() WaitOptions {
	out := WaitOptions{Timeout: defaultWaitTimeout, PollInterval: defaultPollInterval}
	if o == nil {
		return out
	}
	if o.Timeout > 0 {
		out.Timeout = o.Timeout
	}
	if o.PollInterval > 0 {
		out.PollInterval = o.PollInterval
	}
	out.Strict = o.Strict
	return out
}

// GenerationRequest is a handle to an asynchronous generation request,
// returned by the *Async generation methods. The handle holds no job
// state of its own; it is a capability to poll.
type GenerationRequest struct {
	// RequestID is the opaque request identifier from the 202 response.
	RequestID string

	client *Client
}

// Wait polls the request until it completes or fails. See
// [Client.WaitForRequest].
func (r *GenerationRequest) Wait(ctx context.Context, opts *WaitOptions) (*RequestStatus, error) {
	return r.client.WaitForRequest(ctx, r.RequestID, opts)
}

// Status fetches a single status snapshot without waiting.
func (r *GenerationRequest) Status(ctx context.Context) (*RequestStatus, error) {
	return r.client.GetRequest(ctx, r.RequestID)
}

// RequestHandle wraps a known request identifier in a
// [GenerationRequest], so an id persisted elsewhere can be polled like a
// freshly submitted job.
func (c *Client) RequestHandle(requestID string) *GenerationRequest {
	return &GenerationRequest{RequestID: requestID, client: c}
}

// GetRequest fetches the current status of an asynchronous generation
// request.
func (c *Client) GetRequest(ctx context.Context, requestID string) (*RequestStatus, error) {
	var status RequestStatus
	if err := c.doJSON(ctx, "GET", "/requests/"+requestID, nil, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// WaitForRequest polls an asynchronous generation request until it
// reaches a terminal state ("completed" or "failed") and returns the
// final snapshot.
//
// When the timeout elapses first, the latest non-terminal snapshot is
// returned with a nil error; check [RequestStatus.IsTerminal] to tell the
// two apart. Set [WaitOptions.Strict] to get a *TimeoutError instead.
// Cancelling ctx aborts the wait between polls.
func (c *Client) WaitForRequest(ctx context.Context, requestID string, opts *WaitOptions) (*RequestStatus, error) {
	o := opts.withDefaults()
	start := time.Now()

	for {
		status, err := c.GetRequest(ctx, requestID)
		if err != nil {
			return nil, err
		}
		if status.IsTerminal() {
			return status, nil
		}

		elapsed := time.Since(start)
		if elapsed >= o.Timeout {
			if o.Strict {
				return nil, &TimeoutError{GatewayError{
					Code:    CodeTimeout,
					Message: "request " + requestID + " did not complete within the wait timeout",
					Details: map[string]any{
						"request_id": requestID,
						"status":     status.Status,
					},
				}}
			}
			return status, nil
		}

		sleep := o.PollInterval
		if remaining := o.Timeout - elapsed; remaining < sleep {
			sleep = remaining
			if sleep < minPollSleep {
				sleep = minPollSleep
			}
		}
		if err := sleepContext(ctx, sleep); err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return nil, &TimeoutError{GatewayError{
					Code:    CodeTimeout,
					Message: "wait aborted by context deadline",
					Cause:   err,
				}}
			}
			return nil, &GatewayError{Code: CodeGatewayError, Message: "wait cancelled", Cause: err}
		}
	}
}

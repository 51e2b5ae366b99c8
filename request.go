package visgate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-openapi/swag"
	"github.com/google/uuid"
)

// maxErrorBodySize limits how much of an error response body is read.
// Misconfigured proxies can return arbitrarily large error pages.
const maxErrorBodySize = 64 * 1024

const maxBackoff = 8 * time.Second

// retryableStatus reports whether a status code indicates a transient
// server-side condition.
func retryableStatus(status int) bool {
	switch status {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// backoff returns the wait before retrying the zero-indexed attempt:
// 0.5s, 1s, 2s, ... capped at 8s.
func backoff(attempt int) time.Duration {
	d := time.Duration(float64(500*time.Millisecond) * math.Exp2(float64(attempt)))
	if d <= 0 || d > maxBackoff {
		return maxBackoff
	}
	return d
}

// retryWait honors a parseable Retry-After header (seconds), falling back
// to the computed backoff.
func retryWait(header http.Header, attempt int) time.Duration {
	if v := header.Get("Retry-After"); v != "" {
		if secs, err := strconv.ParseFloat(v, 64); err == nil && secs >= 0 {
			return time.Duration(secs * float64(time.Second))
		}
	}
	return backoff(attempt)
}

// sleepContext waits for d or until ctx is done, whichever comes first.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// do sends one API request with automatic retry on transient failures and
// returns the raw JSON payload and final HTTP status.
//
// Retries are strictly sequential: statuses 429/500/502/503/504 and
// network timeouts or connection failures are retried up to maxRetries
// times with exponential backoff (Retry-After honored when present).
// Everything else terminates immediately with a typed error per the
// status mapping in handleResponse.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, extra http.Header) (json.RawMessage, int, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, 0, &GatewayError{
				Code:    CodeGatewayError,
				Message: "failed to encode request body",
				Cause:   err,
			}
		}
	}

	rawURL := c.baseURL + path
	if len(query) > 0 {
		rawURL += "?" + query.Encode()
	}

	// One request ID per logical call, stable across retries, so the
	// gateway can deduplicate replayed attempts.
	requestID := uuid.NewString()

	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		data, status, header, err := c.attempt(ctx, method, rawURL, payload, extra, requestID, attempt)
		if err != nil {
			if ctx.Err() != nil {
				// Caller cancelled; do not burn the remaining attempts.
				return nil, 0, classifyTransport(err, attempt+1)
			}
			lastErr = err
			if attempt < c.maxRetries {
				wait := backoff(attempt)
				c.logger.Info().Err(err).Dur("wait", wait).Int("attempt", attempt+1).
					Msg("transport error, retrying")
				if serr := sleepContext(ctx, wait); serr != nil {
					return nil, 0, classifyTransport(serr, attempt+1)
				}
				continue
			}
			return nil, 0, classifyTransport(err, attempt+1)
		}

		if retryableStatus(status) && attempt < c.maxRetries {
			wait := retryWait(header, attempt)
			c.logger.Info().Int("status", status).Dur("wait", wait).Int("attempt", attempt+1).
				Msg("retryable status, retrying")
			if serr := sleepContext(ctx, wait); serr != nil {
				return nil, 0, classifyTransport(serr, attempt+1)
			}
			continue
		}

		out, herr := handleResponse(status, header, data)
		return out, status, herr
	}

	// Only reachable with a negative retry configuration.
	return nil, 0, &GatewayError{
		Code:    CodeGatewayError,
		Message: fmt.Sprintf("request failed after %d attempt(s)", c.maxRetries+1),
		Cause:   lastErr,
	}
}

// attempt performs a single HTTP exchange under the per-attempt timeout.
func (c *Client) attempt(ctx context.Context, method, rawURL string, payload []byte, extra http.Header, requestID string, attempt int) ([]byte, int, http.Header, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return nil, 0, nil, err
	}
	c.applyHeaders(req, extra, requestID)

	c.logger.Debug().Str("method", method).Str("url", rawURL).Int("attempt", attempt+1).
		Msg("visgate request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	var data []byte
	if resp.StatusCode >= 400 {
		data, err = io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
	} else {
		data, err = io.ReadAll(resp.Body)
	}
	if err != nil {
		return nil, 0, nil, err
	}
	return data, resp.StatusCode, resp.Header, nil
}

func (c *Client) applyHeaders(req *http.Request, extra http.Header, requestID string) {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", requestID)

	keys := c.keys.Load()
	if keys.fal != "" {
		req.Header.Set("X-Fal-Key", keys.fal)
	}
	if keys.replicate != "" {
		req.Header.Set("X-Replicate-Key", keys.replicate)
	}
	if keys.runway != "" {
		req.Header.Set("X-Runway-Key", keys.runway)
	}

	for k, vs := range extra {
		for _, v := range vs {
			req.Header.Set(k, v)
		}
	}
}

// classifyTransport maps a transport-level failure to a typed error after
// all attempts are spent.
func classifyTransport(err error, attempts int) error {
	if isTimeout(err) {
		return &TimeoutError{GatewayError{
			Code:    CodeTimeout,
			Message: fmt.Sprintf("request timed out after %d attempt(s)", attempts),
			Cause:   err,
		}}
	}
	if errors.Is(err, context.Canceled) {
		return &GatewayError{
			Code:    CodeGatewayError,
			Message: "request cancelled",
			Cause:   err,
		}
	}
	return &ConnectionError{GatewayError{
		Code:    CodeConnection,
		Message: fmt.Sprintf("connection failed after %d attempt(s)", attempts),
		Cause:   err,
	}}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// handleResponse maps a completed HTTP exchange to a payload or a typed
// error:
//
//	<400  success, body returned as-is
//	401   AuthenticationError
//	422   ValidationError (message + details.field, raw-text fallback)
//	429   RateLimitError (integer Retry-After when present)
//	other ProviderError when the error code contains "PROVIDER",
//	      otherwise GatewayError with the server code and HTTP status;
//	      unparseable bodies synthesize code HTTP_<status>
func handleResponse(status int, header http.Header, body []byte) (json.RawMessage, error) {
	if status < 400 {
		if len(bytes.TrimSpace(body)) == 0 {
			return nil, nil
		}
		return json.RawMessage(body), nil
	}

	switch status {
	case http.StatusUnauthorized:
		return nil, newAuthenticationError("invalid or missing API key")

	case http.StatusUnprocessableEntity:
		message := strings.TrimSpace(string(body))
		var field string
		var parsed struct {
			Message string `json:"message"`
			Details struct {
				Field string `json:"field"`
			} `json:"details"`
		}
		if err := json.Unmarshal(body, &parsed); err == nil {
			if parsed.Message != "" {
				message = parsed.Message
			}
			field = parsed.Details.Field
		}
		ve := &ValidationError{
			GatewayError: GatewayError{Code: CodeValidation, Message: message, HTTPStatus: status},
			Field:        field,
		}
		if field != "" {
			ve.Details = map[string]any{"field": field}
		}
		return nil, ve

	case http.StatusTooManyRequests:
		re := &RateLimitError{
			GatewayError: GatewayError{Code: CodeRateLimit, Message: "rate limit exceeded", HTTPStatus: status},
		}
		if v := header.Get("Retry-After"); v != "" {
			if secs, err := strconv.ParseInt(v, 10, 64); err == nil {
				re.RetryAfter = swag.Int64(secs)
				re.Details = map[string]any{"retry_after": secs}
			}
		}
		return nil, re
	}

	errorCode := fmt.Sprintf("HTTP_%d", status)
	message := strings.TrimSpace(string(body))
	var details map[string]any

	var parsed struct {
		Error   string         `json:"error"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil {
		errorCode = parsed.Error
		if errorCode == "" {
			errorCode = "UNKNOWN_ERROR"
		}
		if parsed.Message != "" {
			message = parsed.Message
		}
		details = parsed.Details
	}

	if strings.Contains(errorCode, "PROVIDER") {
		provider := "unknown"
		if p, ok := details["provider"].(string); ok && p != "" {
			provider = p
		}
		return nil, &ProviderError{
			GatewayError: GatewayError{
				Code:       CodeProvider,
				Message:    message,
				HTTPStatus: status,
				Details:    map[string]any{"provider": provider},
			},
			Provider: provider,
		}
	}

	return nil, &GatewayError{
		Code:       errorCode,
		Message:    message,
		HTTPStatus: status,
		Details:    details,
	}
}

// doJSON sends a request and decodes the payload into out, which may be
// nil when the caller discards the body.
func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, body, out any) error {
	data, _, err := c.do(ctx, method, path, query, body, nil)
	if err != nil {
		return err
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &GatewayError{
			Code:    CodeGatewayError,
			Message: "failed to decode response body",
			Cause:   err,
		}
	}
	return nil
}

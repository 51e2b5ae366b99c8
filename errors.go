package visgate

import "fmt"

// Error codes carried by [GatewayError.Code].
const (
	CodeGatewayError   = "VISGATE_ERROR"
	CodeAuthentication = "AUTHENTICATION_ERROR"
	CodeValidation     = "VALIDATION_ERROR"
	CodeRateLimit      = "RATE_LIMIT_ERROR"
	CodeProvider       = "PROVIDER_ERROR"
	CodeTimeout        = "TIMEOUT_ERROR"
	CodeConnection     = "CONNECTION_ERROR"
)

// GatewayError is the base error for all visgate API failures. It is
// returned directly for server errors that do not map to a more specific
// type, and embedded by every typed error in this package, so
// errors.As(err, &apiErr) matches any SDK error:
//
//	result, err := client.GenerateImage(ctx, req)
//	if err != nil {
//	    var apiErr *visgate.GatewayError
//	    if errors.As(err, &apiErr) {
//	        log.Printf("gateway failure: %s (%s)", apiErr.Message, apiErr.Code)
//	    }
//	}
type GatewayError struct {
	// Code is a machine-readable error code, e.g. "RATE_LIMIT_ERROR" or the
	// server-supplied code for generic errors. Unparseable error bodies
	// synthesize "HTTP_<status>".
	Code string

	// Message is a human-readable description.
	Message string

	// HTTPStatus is the HTTP status that triggered the error, 0 when the
	// failure happened before a response was received.
	HTTPStatus int

	// Details holds additional structured context from the error body.
	Details map[string]any

	// Cause is the underlying transport error, if any.
	Cause error
}

func (e *GatewayError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("visgate: [%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("visgate: [%s] %s", e.Code, e.Message)
}

func (e *GatewayError) Unwrap() error {
	return e.Cause
}

// AuthenticationError reports a 401 response or a missing API key.
type AuthenticationError struct {
	GatewayError
}

func (e *AuthenticationError) Unwrap() error { return &e.GatewayError }

// ValidationError reports a 422 response for invalid request parameters.
type ValidationError struct {
	GatewayError

	// Field is the request field that failed validation, when the server
	// identified one.
	Field string
}

func (e *ValidationError) Unwrap() error { return &e.GatewayError }

// RateLimitError reports a 429 response.
type RateLimitError struct {
	GatewayError

	// RetryAfter is the server-suggested wait in seconds, nil when the
	// response carried no usable Retry-After header.
	RetryAfter *int64
}

func (e *RateLimitError) Unwrap() error { return &e.GatewayError }

// ProviderError reports a failure in an upstream provider (fal, replicate,
// runway) surfaced by the gateway with a PROVIDER_* error code.
type ProviderError struct {
	GatewayError

	// Provider is the upstream provider that failed, "unknown" when the
	// gateway did not identify one.
	Provider string
}

func (e *ProviderError) Unwrap() error { return &e.GatewayError }

// TimeoutError reports a request that timed out after exhausting retries,
// or a strict-mode wait that hit its deadline.
type TimeoutError struct {
	GatewayError
}

func (e *TimeoutError) Unwrap() error { return &e.GatewayError }

// ConnectionError reports a network-level failure after exhausting retries.
type ConnectionError struct {
	GatewayError
}

func (e *ConnectionError) Unwrap() error { return &e.GatewayError }

func newAuthenticationError(message string) *AuthenticationError {
	return &AuthenticationError{GatewayError{
		Code:       CodeAuthentication,
		Message:    message,
		HTTPStatus: 401,
	}}
}

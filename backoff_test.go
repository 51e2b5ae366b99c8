package visgate

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestBackoff_Schedule verifies the exponential schedule doubles from
// 500ms and caps at 8s.
func TestBackoff_Schedule(t *testing.T) {
	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 500 * time.Millisecond},
		{1, 1 * time.Second},
		{2, 2 * time.Second},
		{3, 4 * time.Second},
		{4, 8 * time.Second},
		{5, 8 * time.Second},
		{20, 8 * time.Second},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, backoff(tt.attempt), "backoff(%d)", tt.attempt)
	}
}

// TestRetryWait_Header verifies Retry-After takes precedence over the
// computed backoff and tolerates fractional seconds.
func TestRetryWait_Header(t *testing.T) {
	h := http.Header{}
	h.Set("Retry-After", "3")
	assert.Equal(t, 3*time.Second, retryWait(h, 0))

	h.Set("Retry-After", "0.25")
	assert.Equal(t, 250*time.Millisecond, retryWait(h, 0))

	h.Set("Retry-After", "0")
	assert.Equal(t, time.Duration(0), retryWait(h, 3))
}

// TestRetryWait_Fallback verifies unusable headers fall back to the
// schedule.
func TestRetryWait_Fallback(t *testing.T) {
	assert.Equal(t, 500*time.Millisecond, retryWait(http.Header{}, 0))

	h := http.Header{}
	h.Set("Retry-After", "Wed, 21 Oct 2026 07:28:00 GMT")
	assert.Equal(t, 1*time.Second, retryWait(h, 1))

	h.Set("Retry-After", "-5")
	assert.Equal(t, 2*time.Second, retryWait(h, 2))
}

// TestRetryableStatus pins the set of transient statuses.
func TestRetryableStatus(t *testing.T) {
	for _, status := range []int{429, 500, 502, 503, 504} {
		assert.True(t, retryableStatus(status), "status %d", status)
	}
	for _, status := range []int{200, 201, 202, 400, 401, 404, 409, 422, 501} {
		assert.False(t, retryableStatus(status), "status %d", status)
	}
}

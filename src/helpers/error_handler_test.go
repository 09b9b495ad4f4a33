package helpers

import (
	"errors"
	"testing"
	"time"

	"freight-auction/src/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------

func TestRejectionReason(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "invalid bid carries its reason code",
			err:      NewInvalidBid(ReasonNotBelowCurrent, "bid 100 is not below 90"),
			expected: ReasonNotBelowCurrent,
		},
		{
			name:     "decrement violation",
			err:      NewInvalidBid(ReasonBelowMinimum, "step too small"),
			expected: ReasonBelowMinimum,
		},
		{
			name:     "ended auction",
			err:      NewAuctionEnded("lane-1"),
			expected: ReasonAuctionEnded,
		},
		{
			name:     "unrelated errors have no code",
			err:      errors.New("boom"),
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, RejectionReason(tt.err))
		})
	}
}

// -----------------------------------------------------------------------------

func TestAuctionErrorUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewTransportUnavailable(cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "transport unavailable")
	assert.Contains(t, err.Error(), "connection refused")
}

// -----------------------------------------------------------------------------

func TestRetryWithBackoffEventualSuccess(t *testing.T) {
	log := logger.NewLogger("ERROR", "helpers-test")

	attempts := 0
	err := RetryWithBackoff(log, "flaky op", 3, time.Millisecond, func() error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

// -----------------------------------------------------------------------------

func TestRetryWithBackoffExhaustion(t *testing.T) {
	log := logger.NewLogger("ERROR", "helpers-test")

	cause := errors.New("hard down")
	attempts := 0
	err := RetryWithBackoff(log, "doomed op", 3, time.Millisecond, func() error {
		attempts++
		return cause
	})

	require.Error(t, err)
	assert.Equal(t, 3, attempts)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "failed after 3 attempts")
}

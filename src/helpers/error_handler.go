package helpers

import (
	"fmt"
	"time"

	"freight-auction/src/logger"
)

// -----------------------------------------------------------------------------
// Rejection Reason Codes
// -----------------------------------------------------------------------------

// Machine-readable reason codes carried on bid_rejected events.
const (
	ReasonNotBelowCurrent = "not_below_current"
	ReasonBelowMinimum    = "decrement_too_small"
	ReasonNegativeAmount  = "negative_amount"
	ReasonAuctionEnded    = "auction_ended"
	ReasonNotJoined       = "not_joined"
	ReasonFeeUnpaid       = "participation_fee_unpaid"
)

// -----------------------------------------------------------------------------
// Custom Error Types
// -----------------------------------------------------------------------------

type AuctionError struct {
	Message string
	Cause   error
}

func (e *AuctionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AuctionError) Unwrap() error {
	return e.Cause
}

// -----------------------------------------------------------------------------

// InvalidBidError rejects a bid that violates the pricing rules. The auction
// state is untouched; only the submitter sees the rejection.
type InvalidBidError struct {
	AuctionError
	Reason string
}

// NewInvalidBid builds an InvalidBidError with a reason code and message.
func NewInvalidBid(reason, format string, args ...interface{}) *InvalidBidError {
	return &InvalidBidError{
		AuctionError: AuctionError{Message: fmt.Sprintf(format, args...)},
		Reason:       reason,
	}
}

// AuctionEndedError rejects anything arriving after the terminal state.
type AuctionEndedError struct{ AuctionError }

func NewAuctionEnded(auctionID string) *AuctionEndedError {
	return &AuctionEndedError{AuctionError{Message: fmt.Sprintf("auction %s has ended", auctionID)}}
}

// FloorViolationError is an internal agent guard: a computed candidate fell
// below the participant's floor. Logged for diagnostics, never surfaced.
type FloorViolationError struct{ AuctionError }

// TransportUnavailableError signals the live transport could not be reached.
type TransportUnavailableError struct{ AuctionError }

func NewTransportUnavailable(cause error) *TransportUnavailableError {
	return &TransportUnavailableError{AuctionError{Message: "transport unavailable", Cause: cause}}
}

// StaleUpdateError marks a broadcast older than state already applied.
type StaleUpdateError struct{ AuctionError }

// ConfigurationError wraps config loading/validation failures.
type ConfigurationError struct{ AuctionError }

// DatabaseError wraps archive failures.
type DatabaseError struct{ AuctionError }

// -----------------------------------------------------------------------------

// RejectionReason extracts the reason code from a bid rejection error.
func RejectionReason(err error) string {
	switch e := err.(type) {
	case *InvalidBidError:
		return e.Reason
	case *AuctionEndedError:
		return ReasonAuctionEnded
	default:
		return ""
	}
}

// -----------------------------------------------------------------------------
// Retry Logic
// -----------------------------------------------------------------------------

// RetryWithBackoff attempts to execute the operation up to maxRetries times with exponential backoff.
func RetryWithBackoff(log *logger.Logger, operation string, maxRetries int, baseDelay time.Duration, fn func() error) error {
	var lastErr error

	for attempt := 0; attempt < maxRetries; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}

		lastErr = err
		if attempt == maxRetries-1 {
			break
		}

		delay := baseDelay * (1 << attempt)
		log.Warning("Attempt %d/%d failed for %s: %v. Retrying in %v", attempt+1, maxRetries, operation, err, delay)
		time.Sleep(delay)
	}

	return &AuctionError{Message: fmt.Sprintf("%s failed after %d attempts", operation, maxRetries), Cause: lastErr}
}

package interfaces

import "freight-auction/src/models"

// -----------------------------------------------------------------------------
// Transport modes
// -----------------------------------------------------------------------------

const (
	TransportModeLive      = "live"
	TransportModeSimulated = "simulated"
)

// -----------------------------------------------------------------------------
// ITransport is the client-side channel to an auction room. One instance per
// participant context; created on view mount, closed on unmount. There is no
// process-wide singleton.
// -----------------------------------------------------------------------------

type ITransport interface {

	// -----------------------------------------------------------------------------

	// Join enters the auction room and returns the authoritative snapshot.
	Join(auctionID string) (*models.MAuctionState, error)

	// -----------------------------------------------------------------------------

	// Leave exits the auction room.
	Leave(auctionID string) error

	// -----------------------------------------------------------------------------

	// PlaceBid submits a candidate bid. A nil error means the bid reached the
	// session; acceptance arrives asynchronously as a new_bid event, rejection
	// as a bid_rejected event addressed to this client only.
	PlaceBid(auctionID string, bid models.MBid) error

	// -----------------------------------------------------------------------------

	// Updates streams authoritative events. Stale versions are already
	// filtered out; consumers may apply every envelope in order.
	Updates() <-chan *models.MEnvelope

	// -----------------------------------------------------------------------------

	// Mode reports "live" or "simulated" so callers can surface degraded
	// operation instead of silently substituting it.
	Mode() string

	// -----------------------------------------------------------------------------

	// Close tears the channel down.
	Close() error
}

// -----------------------------------------------------------------------------
// IBroadcaster is the server-side fan-out the session actor publishes through.
// Implementations must not block the caller.
// -----------------------------------------------------------------------------

type IBroadcaster interface {
	// Broadcast delivers an envelope to every client in the auction room.
	Broadcast(env *models.MEnvelope)

	// Whisper delivers an envelope to a single participant in the room
	// (bid rejections and join snapshots).
	Whisper(participantID string, env *models.MEnvelope)
}

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MBid represents a single accepted bid. Immutable once accepted.
type MBid struct {
	ID            string          `json:"id"`
	AuctionID     string          `json:"auction_id"`
	ParticipantID string          `json:"participant_id"`
	DisplayName   string          `json:"display_name"`
	Amount        decimal.Decimal `json:"amount"`
	IsAgentBid    bool            `json:"is_agent_bid"`
	PlacedAt      time.Time       `json:"placed_at"`
	Seq           uint64          `json:"seq"` // server-assigned arrival order
}

// -----------------------------------------------------------------------------

// Less reports whether b ranks before other on the leaderboard.
// Lowest amount wins; ties resolved by arrival order (earliest first).
func (b MBid) Less(other MBid) bool {
	cmp := b.Amount.Cmp(other.Amount)
	if cmp != 0 {
		return cmp < 0
	}
	return b.Seq < other.Seq
}

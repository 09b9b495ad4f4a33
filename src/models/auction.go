package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// -----------------------------------------------------------------------------
// Auction Status
// -----------------------------------------------------------------------------

type AuctionStatus string

const (
	StatusOpen  AuctionStatus = "open"
	StatusEnded AuctionStatus = "ended"
)

// -----------------------------------------------------------------------------
// Auction Configuration
// -----------------------------------------------------------------------------

// MAuctionConfig holds the fixed parameters of a single auction.
type MAuctionConfig struct {
	AuctionID       string          `json:"auction_id"`
	Title           string          `json:"title"`
	StartingPrice   decimal.Decimal `json:"starting_price"`
	MinDecrement    decimal.Decimal `json:"min_decrement"`
	DurationSeconds int             `json:"duration_seconds"`
	CooldownSeconds int             `json:"cooldown_seconds"`
	LeaderboardSize int             `json:"leaderboard_size"`
}

// -----------------------------------------------------------------------------
// Auction State
// -----------------------------------------------------------------------------

// MAuctionState is the authoritative live state of one auction.
// It is owned exclusively by the session actor; everyone else sees copies.
type MAuctionState struct {
	AuctionID         string          `json:"auction_id"`
	Title             string          `json:"title"`
	Status            AuctionStatus   `json:"status"`
	StartingPrice     decimal.Decimal `json:"starting_price"`
	MinDecrement      decimal.Decimal `json:"min_decrement"`
	CurrentBid        decimal.Decimal `json:"current_bid"` // leaderboard[0] or starting price
	Leaderboard       []MBid          `json:"leaderboard"` // sorted ascending by amount
	TimeRemaining     int             `json:"time_remaining"`
	CooldownRemaining int             `json:"cooldown_remaining"`
	ActiveUsers       int             `json:"active_users"`
	Winner            *MBid           `json:"winner,omitempty"` // set once on ending
	EndedAt           time.Time       `json:"ended_at,omitzero"`
	Version           uint64          `json:"version"` // monotonically increasing per broadcast
}

// -----------------------------------------------------------------------------

// Clone returns a deep copy safe to hand outside the session actor.
func (s *MAuctionState) Clone() *MAuctionState {
	cp := *s
	cp.Leaderboard = make([]MBid, len(s.Leaderboard))
	copy(cp.Leaderboard, s.Leaderboard)
	if s.Winner != nil {
		w := *s.Winner
		cp.Winner = &w
	}
	return &cp
}

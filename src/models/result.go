package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MAuctionResult is the archived outcome of a finished auction.
type MAuctionResult struct {
	AuctionID     string          `json:"auction_id"`
	Title         string          `json:"title"`
	StartingPrice decimal.Decimal `json:"starting_price"`
	FinalPrice    decimal.Decimal `json:"final_price"`
	WinnerID      string          `json:"winner_id"` // empty when no bids were placed
	WinnerName    string          `json:"winner_name"`
	TotalBids     int             `json:"total_bids"`
	AgentBids     int             `json:"agent_bids"`
	EndedByTimer  bool            `json:"ended_by_timer"` // false => cooldown expiry
	EndedAt       time.Time       `json:"ended_at"`
}

package models

import "github.com/shopspring/decimal"

// -----------------------------------------------------------------------------
// Trend Classification
// -----------------------------------------------------------------------------

type Trend string

const (
	TrendRising  Trend = "rising"  // bidders holding firm, decrements shrinking
	TrendStable  Trend = "stable"
	TrendCooling Trend = "cooling" // aggressive undercutting, decrements growing
)

// -----------------------------------------------------------------------------
// Market Analysis
// -----------------------------------------------------------------------------

// MMarketAnalysis is a derived snapshot recomputed on every leaderboard
// change and discarded on the next. Never stored.
type MMarketAnalysis struct {
	TotalBids      int             `json:"total_bids"`
	AvgDecrement   float64         `json:"avg_decrement"`
	BidsPerMinute  float64         `json:"bids_per_minute"`
	Competitors    int             `json:"competitors"`
	Trend          Trend           `json:"trend"`
	ProjectedClose decimal.Decimal `json:"projected_close"`
	AgentSharePct  float64         `json:"agent_share_pct"`
}

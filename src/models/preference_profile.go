package models

import "github.com/shopspring/decimal"

// -----------------------------------------------------------------------------
// Risk / Frequency Tiers
// -----------------------------------------------------------------------------

type RiskTolerance string

const (
	RiskLow    RiskTolerance = "low"
	RiskMedium RiskTolerance = "medium"
	RiskHigh   RiskTolerance = "high"
)

type BidFrequency string

const (
	FrequencyLow    BidFrequency = "low"
	FrequencyMedium BidFrequency = "medium"
	FrequencyHigh   BidFrequency = "high"
)

// -----------------------------------------------------------------------------
// Preference Profile
// -----------------------------------------------------------------------------

// MPreferenceProfile is a participant's auto-bidding configuration.
// Created with defaults when the participant enters an auction; the
// participant may change it at any time while the agent is running.
type MPreferenceProfile struct {
	AutoBidEnabled     bool            `json:"auto_bid_enabled"`
	MinAcceptablePrice decimal.Decimal `json:"min_acceptable_price"` // hard floor, never bid below
	MaxBidLimit        decimal.Decimal `json:"max_bid_limit"`        // ceiling, kept for forward-auction reuse
	ProfitMarginPct    float64         `json:"profit_margin_pct"`
	RiskTolerance      RiskTolerance   `json:"risk_tolerance"`
	Aggressiveness     int             `json:"aggressiveness"` // 0-100
	Frequency          BidFrequency    `json:"frequency"`
}

// -----------------------------------------------------------------------------

// DefaultPreferenceProfile returns the profile a participant starts with.
func DefaultPreferenceProfile() MPreferenceProfile {
	return MPreferenceProfile{
		AutoBidEnabled:     false,
		MinAcceptablePrice: decimal.Zero,
		MaxBidLimit:        decimal.Zero,
		ProfitMarginPct:    10,
		RiskTolerance:      RiskMedium,
		Aggressiveness:     50,
		Frequency:          FrequencyMedium,
	}
}

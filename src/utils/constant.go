package utils

import "time"

// -----------------------------------------------------------------------------

// Defaults shared by the session actor and the bidding agent.
const (
	DefaultLeaderboardSize = 10
	DefaultCooldownSeconds = 30
	DefaultTickInterval    = time.Second

	// Agent scheduling: polling interval shrinks as the clock runs out.
	ClosingPhaseSeconds = 60
	ClosingPollInterval = 2 * time.Second
	LatePhaseSeconds    = 300
	LatePollInterval    = 5 * time.Second

	// Minimum gap between two bids from the same agent.
	MinRebidCooldown = 5 * time.Second

	// Per-participant bid history kept for market re-analysis.
	DefaultHistoryCapacity = 256
)

package strategy

import (
	"math/rand"
	"time"

	"freight-auction/src/logger"
	"freight-auction/src/models"
	"freight-auction/src/utils"

	"github.com/shopspring/decimal"
)

// -----------------------------------------------------------------------------
// Decision
// -----------------------------------------------------------------------------

// Decision is the engine's answer for one evaluation cycle.
type Decision struct {
	Amount decimal.Decimal
	Bid    bool
	Reason string
}

// Input carries everything one decision needs. No field is read from a clock
// or a network inside the engine; the caller snapshots them.
type Input struct {
	CurrentBid    decimal.Decimal
	MinDecrement  decimal.Decimal
	Preferences   models.MPreferenceProfile
	Analysis      models.MMarketAnalysis
	TimeRemaining int           // seconds
	IsLeading     bool          // participant currently holds leaderboard[0]
	SinceLastBid  time.Duration // time since this agent's previous accepted submission
}

// -----------------------------------------------------------------------------
// Engine
// -----------------------------------------------------------------------------

// Engine decides the next bid amount and whether now is the moment to place
// it. Pure decision logic; the randomness source is injected so tests can
// force both timing branches.
type Engine struct {
	rng    *rand.Rand
	logger *logger.Logger
}

// -----------------------------------------------------------------------------

// NewEngine creates an engine with a time-seeded randomness source.
func NewEngine(log *logger.Logger) *Engine {
	return NewEngineWithSeed(log, time.Now().UnixNano())
}

// NewEngineWithSeed creates an engine with a deterministic randomness source.
func NewEngineWithSeed(log *logger.Logger, seed int64) *Engine {
	return &Engine{
		rng:    rand.New(rand.NewSource(seed)),
		logger: log,
	}
}

// -----------------------------------------------------------------------------

// Decide computes the candidate amount and the timing decision.
func (e *Engine) Decide(in Input) Decision {
	// Hard rule: never compete against our own leading bid.
	if in.IsLeading {
		return Decision{Reason: "already lowest bidder"}
	}

	// Hard rule: minimum re-bid cooldown regardless of timer frequency.
	if in.SinceLastBid > 0 && in.SinceLastBid < utils.MinRebidCooldown {
		return Decision{Reason: "re-bid cooldown active"}
	}

	candidate, ok := e.CandidateAmount(in.CurrentBid, in.MinDecrement, in.Preferences)
	if !ok {
		return Decision{Reason: "current bid at or below acceptable floor"}
	}

	if !e.shouldBidNow(in.TimeRemaining, in.Preferences.Frequency) {
		return Decision{Amount: candidate, Reason: "holding for a better moment"}
	}

	return Decision{Amount: candidate, Bid: true, Reason: "undercut (" + string(in.Analysis.Trend) + " market)"}
}

// -----------------------------------------------------------------------------

// CandidateAmount computes the next bid amount for a reverse auction. The
// second return is false when no legal candidate exists. The result never
// falls below the participant's minimum acceptable price.
func (e *Engine) CandidateAmount(currentBid, minDecrement decimal.Decimal, prefs models.MPreferenceProfile) (decimal.Decimal, bool) {
	floor := prefs.MinAcceptablePrice

	// Current already at or below the floor: nothing left to undercut with.
	if currentBid.Cmp(floor) <= 0 {
		return decimal.Zero, false
	}

	decrement := minDecrement
	switch prefs.RiskTolerance {
	case models.RiskMedium:
		decrement = minDecrement.Mul(decimal.NewFromFloat(1.5))
	case models.RiskHigh:
		factor := decimal.NewFromFloat(2 + float64(prefs.Aggressiveness)/100)
		decrement = minDecrement.Mul(factor).Ceil()
	}

	candidate := currentBid.Sub(decrement)
	if candidate.Cmp(floor) < 0 {
		candidate = floor
	}

	return candidate, true
}

// -----------------------------------------------------------------------------

// shouldBidNow is a stochastic throttle: certain when the auction is closing,
// increasingly likely as the clock runs down, otherwise paced by the
// configured frequency. The probabilities spread agent load and avoid
// deterministic bid wars.
func (e *Engine) shouldBidNow(timeRemaining int, freq models.BidFrequency) bool {
	switch {
	case timeRemaining <= 15:
		return true
	case timeRemaining < 60:
		return e.rng.Float64() < 0.7
	case timeRemaining < 300:
		return e.rng.Float64() < 0.3
	}

	p := 0.2
	switch freq {
	case models.FrequencyLow:
		p = 0.1
	case models.FrequencyHigh:
		p = 0.35
	}
	return e.rng.Float64() < p
}

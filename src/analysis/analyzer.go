package analysis

import (
	"math"

	"freight-auction/src/analysis/core"
	"freight-auction/src/models"

	"github.com/shopspring/decimal"
)

// -----------------------------------------------------------------------------
// Market Analyzer
// -----------------------------------------------------------------------------

const (
	// Trend classification needs a minimum sample.
	minBidsForTrend = 5

	// Recent-half decrements growing more than this fraction faster than the
	// older half means aggressive undercutting.
	coolingThreshold = 0.05

	// Shrinking by more than this fraction means bidders are holding firm.
	risingThreshold = -0.01

	// Projection never drops below this fraction of the current bid.
	projectionFloorRatio = 0.7
)

// -----------------------------------------------------------------------------

// Analyze turns a bid history into descriptive statistics. history must be in
// arrival order (oldest first), the order the BidRing hands out, not the
// leaderboard's amount order. Deterministic for identical inputs; the clock
// is never read here.
func Analyze(history []models.MBid, currentBid decimal.Decimal, timeRemaining int) models.MMarketAnalysis {
	analysis := models.MMarketAnalysis{
		TotalBids:      len(history),
		Trend:          models.TrendStable,
		ProjectedClose: currentBid,
	}

	if len(history) == 0 {
		return analysis
	}

	// Competitor count and agent share
	participants := make(map[string]struct{}, len(history))
	agentBids := 0
	for _, b := range history {
		participants[b.ParticipantID] = struct{}{}
		if b.IsAgentBid {
			agentBids++
		}
	}
	analysis.Competitors = len(participants)
	analysis.AgentSharePct = float64(agentBids) / float64(len(history)) * 100

	if len(history) < 2 {
		return analysis
	}

	// Average decrement over consecutive bids by arrival time
	decrements := make([]float64, 0, len(history)-1)
	for i := 1; i < len(history); i++ {
		prev, _ := history[i-1].Amount.Float64()
		cur, _ := history[i].Amount.Float64()
		decrements = append(decrements, math.Abs(cur-prev))
	}
	analysis.AvgDecrement, _ = core.CalculateMeanStd(decrements)

	// Bid frequency in bids per minute
	span := history[len(history)-1].PlacedAt.Sub(history[0].PlacedAt)
	if span > 0 {
		analysis.BidsPerMinute = float64(len(history)) / span.Minutes()
	}

	analysis.Trend = classifyTrend(history, decrements)
	analysis.ProjectedClose = projectClose(currentBid, analysis.AvgDecrement, analysis.BidsPerMinute, timeRemaining)

	return analysis
}

// -----------------------------------------------------------------------------

// classifyTrend compares the mean decrement of the most recent half of bids
// against the older half.
func classifyTrend(history []models.MBid, decrements []float64) models.Trend {
	if len(history) < minBidsForTrend {
		return models.TrendStable
	}

	mid := len(decrements) / 2
	olderMean, _ := core.CalculateMeanStd(decrements[:mid])
	recentMean, _ := core.CalculateMeanStd(decrements[mid:])

	change := core.CalculateChangePercent(recentMean, olderMean)
	switch {
	case change > coolingThreshold:
		return models.TrendCooling
	case change < risingThreshold:
		return models.TrendRising
	default:
		return models.TrendStable
	}
}

// -----------------------------------------------------------------------------

// projectClose extrapolates the final price from decrement velocity, floored
// to avoid runaway negative projections.
func projectClose(currentBid decimal.Decimal, avgDecrement, bidsPerMinute float64, timeRemaining int) decimal.Decimal {
	current, _ := currentBid.Float64()
	minutesLeft := float64(timeRemaining) / 60

	projected := current - avgDecrement*bidsPerMinute*minutesLeft
	floor := current * projectionFloorRatio
	if projected < floor {
		projected = floor
	}

	return decimal.NewFromFloat(projected).Round(2)
}

package agent

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"freight-auction/src/analysis"
	"freight-auction/src/interfaces"
	"freight-auction/src/logger"
	"freight-auction/src/models"
	"freight-auction/src/strategy"
	"freight-auction/src/utils"

	"github.com/shopspring/decimal"
)

// -----------------------------------------------------------------------------
// Bid Agent
// -----------------------------------------------------------------------------

// BidAgent bids on one auction on behalf of one participant. A single
// goroutine owns all agent state and multiplexes the evaluation timer, the
// transport's update stream and the stop signal, so no locks are needed.
type BidAgent struct {
	auctionID     string
	participantID string
	displayName   string
	prefs         models.MPreferenceProfile

	transport interfaces.ITransport
	engine    *strategy.Engine
	logger    *logger.Logger

	// Loop-owned state
	history       *utils.BidRing
	currentBid    decimal.Decimal
	minDecrement  decimal.Decimal
	timeRemaining int
	leaderID      string
	lastBidAt     time.Time
	bidsPlaced    int

	quit     chan struct{}
	quitOnce sync.Once
	done     chan struct{}
}

// -----------------------------------------------------------------------------

// NewBidAgent wires an agent to a transport. Start joins the auction and
// begins the loop.
func NewBidAgent(auctionID, participantID, displayName string, prefs models.MPreferenceProfile, transport interfaces.ITransport, engine *strategy.Engine, log *logger.Logger) *BidAgent {
	return &BidAgent{
		auctionID:     auctionID,
		participantID: participantID,
		displayName:   displayName,
		prefs:         prefs,
		transport:     transport,
		engine:        engine,
		logger:        log,
		history:       utils.NewBidRing(utils.DefaultHistoryCapacity),
		quit:          make(chan struct{}),
		done:          make(chan struct{}),
	}
}

// -----------------------------------------------------------------------------

// Start joins the auction, seeds local state from the snapshot and launches
// the loop.
func (a *BidAgent) Start() error {
	state, err := a.transport.Join(a.auctionID)
	if err != nil {
		return fmt.Errorf("agent failed to join auction %s: %w", a.auctionID, err)
	}
	if state == nil {
		return fmt.Errorf("agent joined auction %s but got no snapshot", a.auctionID)
	}
	if state.Status == models.StatusEnded {
		return fmt.Errorf("auction %s has already ended", a.auctionID)
	}

	a.applySnapshot(state)
	a.logger.Info("Agent %s joined auction %s (current=%s, remaining=%ds, mode=%s)",
		a.participantID, a.auctionID, a.currentBid, a.timeRemaining, a.transport.Mode())

	go a.run()
	return nil
}

// -----------------------------------------------------------------------------

// Stop leaves the auction and waits for the loop to exit. Safe to call after
// the auction already ended.
func (a *BidAgent) Stop() {
	a.quitOnce.Do(func() { close(a.quit) })
	<-a.done
}

// Done is closed when the loop has exited, whether by Stop or auction end.
func (a *BidAgent) Done() <-chan struct{} {
	return a.done
}

// -----------------------------------------------------------------------------
// Loop
// -----------------------------------------------------------------------------

func (a *BidAgent) run() {
	defer close(a.done)

	timer := time.NewTimer(a.pollInterval())
	defer timer.Stop()

	for {
		select {
		case <-timer.C:
			a.evaluate()
			timer.Reset(a.pollInterval())

		case env, ok := <-a.transport.Updates():
			if !ok {
				a.logger.Warning("Agent %s: update stream closed", a.participantID)
				return
			}
			if a.applyEnvelope(env) {
				return
			}

		case <-a.quit:
			if err := a.transport.Leave(a.auctionID); err != nil {
				a.logger.Warning("Agent %s: leave failed: %v", a.participantID, err)
			}
			return
		}
	}
}

// -----------------------------------------------------------------------------

// applyEnvelope folds one authoritative event into local state. Returns true
// when the auction is over and the loop should exit.
func (a *BidAgent) applyEnvelope(env *models.MEnvelope) bool {
	if env.AuctionID != a.auctionID {
		return false
	}

	switch env.Type {
	case models.EventNewBid:
		if env.Bid != nil {
			a.history.Append(*env.Bid)
			a.currentBid = env.Bid.Amount
			// React to being undercut without waiting for the next timer
			if env.Bid.ParticipantID != a.participantID {
				a.leaderID = env.Bid.ParticipantID
				a.evaluate()
			} else {
				a.leaderID = a.participantID
			}
		}

	case models.EventAuctionUpdate:
		if env.State != nil {
			a.applySnapshot(env.State)
		}

	case models.EventAuctionEnded:
		if env.Winner != nil && env.Winner.ParticipantID == a.participantID {
			a.logger.Info("Agent %s won auction %s at %s after %d bids",
				a.participantID, a.auctionID, env.Winner.Amount, a.bidsPlaced)
		} else {
			a.logger.Info("Agent %s: auction %s ended (winner=%s)",
				a.participantID, a.auctionID, winnerLabel(env.Winner))
		}
		return true

	case models.EventBidRejected:
		a.logger.Warning("Agent %s: bid rejected on %s: %s", a.participantID, a.auctionID, env.Reason)
	}

	return false
}

// -----------------------------------------------------------------------------

// applySnapshot replaces scalar state from an authoritative snapshot and
// backfills the arrival-ordered history from the leaderboard on first join.
func (a *BidAgent) applySnapshot(state *models.MAuctionState) {
	a.currentBid = state.CurrentBid
	a.minDecrement = state.MinDecrement
	a.timeRemaining = state.TimeRemaining
	if len(state.Leaderboard) > 0 {
		a.leaderID = state.Leaderboard[0].ParticipantID
	}

	if a.history.Size() == 0 && len(state.Leaderboard) > 0 {
		seed := make([]models.MBid, len(state.Leaderboard))
		copy(seed, state.Leaderboard)
		sort.Slice(seed, func(i, j int) bool { return seed[i].Seq < seed[j].Seq })
		for _, b := range seed {
			a.history.Append(b)
		}
	}
}

// -----------------------------------------------------------------------------

// evaluate runs one analysis plus strategy cycle and places the bid when the
// engine says now.
func (a *BidAgent) evaluate() {
	if !a.prefs.AutoBidEnabled {
		return
	}

	marketAnalysis := analysis.Analyze(a.history.GetAll(), a.currentBid, a.timeRemaining)

	var sinceLastBid time.Duration
	if !a.lastBidAt.IsZero() {
		sinceLastBid = time.Since(a.lastBidAt)
	}

	decision := a.engine.Decide(strategy.Input{
		CurrentBid:    a.currentBid,
		MinDecrement:  a.minDecrement,
		Preferences:   a.prefs,
		Analysis:      marketAnalysis,
		TimeRemaining: a.timeRemaining,
		IsLeading:     a.leaderID == a.participantID,
		SinceLastBid:  sinceLastBid,
	})
	if !decision.Bid {
		a.logger.Debug("Agent %s holding on %s: %s", a.participantID, a.auctionID, decision.Reason)
		return
	}

	bid := models.MBid{
		AuctionID:     a.auctionID,
		ParticipantID: a.participantID,
		DisplayName:   a.displayName,
		Amount:        decision.Amount,
		IsAgentBid:    true,
	}
	if err := a.transport.PlaceBid(a.auctionID, bid); err != nil {
		a.logger.Warning("Agent %s: failed to place bid %s: %v", a.participantID, decision.Amount, err)
		return
	}

	a.lastBidAt = time.Now()
	a.bidsPlaced++
	a.logger.Info("Agent %s bid %s on %s (%s)", a.participantID, decision.Amount, a.auctionID, decision.Reason)
}

// -----------------------------------------------------------------------------

// pollInterval shrinks the evaluation cadence as the clock runs down.
func (a *BidAgent) pollInterval() time.Duration {
	switch {
	case a.timeRemaining <= utils.ClosingPhaseSeconds:
		return utils.ClosingPollInterval
	case a.timeRemaining <= utils.LatePhaseSeconds:
		return utils.LatePollInterval
	}

	switch a.prefs.Frequency {
	case models.FrequencyLow:
		return 30 * time.Second
	case models.FrequencyHigh:
		return 8 * time.Second
	default:
		return 15 * time.Second
	}
}

// -----------------------------------------------------------------------------

func winnerLabel(w *models.MBid) string {
	if w == nil {
		return "none"
	}
	return w.ParticipantID
}

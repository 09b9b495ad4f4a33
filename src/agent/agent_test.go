package agent

import (
	"testing"
	"time"

	"freight-auction/src/interfaces"
	"freight-auction/src/logger"
	"freight-auction/src/models"
	"freight-auction/src/strategy"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------

// fakeTransport scripts the market from the test.
type fakeTransport struct {
	joinState *models.MAuctionState
	updates   chan *models.MEnvelope
	placed    chan models.MBid
	left      chan string
}

func newFakeTransport(state *models.MAuctionState) *fakeTransport {
	return &fakeTransport{
		joinState: state,
		updates:   make(chan *models.MEnvelope, 16),
		placed:    make(chan models.MBid, 16),
		left:      make(chan string, 4),
	}
}

func (f *fakeTransport) Join(auctionID string) (*models.MAuctionState, error) {
	return f.joinState, nil
}
func (f *fakeTransport) Leave(auctionID string) error {
	f.left <- auctionID
	return nil
}
func (f *fakeTransport) PlaceBid(auctionID string, bid models.MBid) error {
	f.placed <- bid
	return nil
}
func (f *fakeTransport) Updates() <-chan *models.MEnvelope { return f.updates }
func (f *fakeTransport) Mode() string                      { return interfaces.TransportModeSimulated }
func (f *fakeTransport) Close() error                      { return nil }

// -----------------------------------------------------------------------------

func openState(currentBid int64, timeRemaining int) *models.MAuctionState {
	return &models.MAuctionState{
		AuctionID:     "lane-1",
		Status:        models.StatusOpen,
		StartingPrice: decimal.NewFromInt(1000),
		MinDecrement:  decimal.NewFromInt(15),
		CurrentBid:    decimal.NewFromInt(currentBid),
		Leaderboard:   []models.MBid{},
		TimeRemaining: timeRemaining,
		Version:       1,
	}
}

func agentPrefs() models.MPreferenceProfile {
	p := models.DefaultPreferenceProfile()
	p.AutoBidEnabled = true
	p.RiskTolerance = models.RiskLow
	return p
}

func newTestAgent(t *testing.T, transport *fakeTransport, prefs models.MPreferenceProfile) *BidAgent {
	t.Helper()
	log := logger.NewLogger("ERROR", "agent-test")
	engine := strategy.NewEngineWithSeed(log, 7)
	a := NewBidAgent("lane-1", "agent-1", "Agent One", prefs, transport, engine, log)
	require.NoError(t, a.Start())
	t.Cleanup(a.Stop)
	return a
}

// -----------------------------------------------------------------------------

func TestAgentReactsToUndercut(t *testing.T) {
	// Ten seconds on the clock: the strategy bids deterministically.
	transport := newFakeTransport(openState(1000, 10))
	newTestAgent(t, transport, agentPrefs())

	// A competitor undercuts; the agent re-evaluates without waiting for
	// its timer.
	transport.updates <- &models.MEnvelope{
		Type:      models.EventNewBid,
		AuctionID: "lane-1",
		Version:   2,
		Bid: &models.MBid{
			AuctionID:     "lane-1",
			ParticipantID: "carrier-x",
			Amount:        decimal.NewFromInt(985),
			Seq:           1,
		},
	}

	select {
	case bid := <-transport.placed:
		assert.True(t, bid.Amount.Equal(decimal.NewFromInt(970)),
			"low risk undercuts 985 by the minimum step, got %s", bid.Amount)
		assert.True(t, bid.IsAgentBid)
		assert.Equal(t, "agent-1", bid.ParticipantID)
	case <-time.After(time.Second):
		t.Fatal("agent never responded to the undercut")
	}
}

// -----------------------------------------------------------------------------

func TestAgentNeverUndercutsItself(t *testing.T) {
	state := openState(985, 10)
	state.Leaderboard = []models.MBid{{
		AuctionID:     "lane-1",
		ParticipantID: "agent-1",
		Amount:        decimal.NewFromInt(985),
		Seq:           1,
	}}
	transport := newFakeTransport(state)
	newTestAgent(t, transport, agentPrefs())

	// The agent leads; its evaluation timer fires at the closing cadence
	// (2s) at least once in this window and must stay silent.
	select {
	case bid := <-transport.placed:
		t.Fatalf("agent bid %s against its own leading bid", bid.Amount)
	case <-time.After(2500 * time.Millisecond):
	}
}

// -----------------------------------------------------------------------------

func TestAgentStopsWhenAuctionEnds(t *testing.T) {
	transport := newFakeTransport(openState(1000, 10))
	a := newTestAgent(t, transport, agentPrefs())

	transport.updates <- &models.MEnvelope{
		Type:      models.EventAuctionEnded,
		AuctionID: "lane-1",
		Version:   2,
		Winner: &models.MBid{
			ParticipantID: "carrier-x",
			Amount:        decimal.NewFromInt(900),
		},
	}

	select {
	case <-a.Done():
	case <-time.After(time.Second):
		t.Fatal("agent did not stop after the auction ended")
	}

	// Stop after the loop already exited is a no-op
	a.Stop()
}

// -----------------------------------------------------------------------------

func TestAgentHonorsAutoBidToggle(t *testing.T) {
	prefs := agentPrefs()
	prefs.AutoBidEnabled = false

	transport := newFakeTransport(openState(1000, 10))
	newTestAgent(t, transport, prefs)

	transport.updates <- &models.MEnvelope{
		Type:      models.EventNewBid,
		AuctionID: "lane-1",
		Version:   2,
		Bid: &models.MBid{
			AuctionID:     "lane-1",
			ParticipantID: "carrier-x",
			Amount:        decimal.NewFromInt(985),
			Seq:           1,
		},
	}

	select {
	case bid := <-transport.placed:
		t.Fatalf("auto-bid disabled but agent placed %s", bid.Amount)
	case <-time.After(time.Second):
	}
}

// -----------------------------------------------------------------------------

func TestAgentLeavesOnStop(t *testing.T) {
	transport := newFakeTransport(openState(1000, 600))
	a := newTestAgent(t, transport, agentPrefs())

	a.Stop()

	select {
	case auctionID := <-transport.left:
		assert.Equal(t, "lane-1", auctionID)
	case <-time.After(time.Second):
		t.Fatal("agent never left the auction")
	}
}

// -----------------------------------------------------------------------------

func TestAgentRefusesEndedAuction(t *testing.T) {
	state := openState(1000, 0)
	state.Status = models.StatusEnded

	log := logger.NewLogger("ERROR", "agent-test")
	engine := strategy.NewEngineWithSeed(log, 7)
	a := NewBidAgent("lane-1", "agent-1", "Agent One", agentPrefs(), newFakeTransport(state), engine, log)

	assert.Error(t, a.Start())
}

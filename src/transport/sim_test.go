package transport

import (
	"testing"
	"time"

	"freight-auction/src/helpers"
	"freight-auction/src/interfaces"
	"freight-auction/src/logger"
	"freight-auction/src/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------

func newTestSim(t *testing.T) *SimTransport {
	t.Helper()
	sim := NewSimTransportWithSeed("agent-1", logger.NewLogger("ERROR", "sim-test"), 1)
	t.Cleanup(func() { sim.Close() })

	_, err := sim.AddAuction(models.MAuctionConfig{
		AuctionID:       "lane-1",
		Title:           "Simulated lane",
		StartingPrice:   decimal.NewFromInt(1000),
		MinDecrement:    decimal.NewFromInt(15),
		DurationSeconds: 600,
		CooldownSeconds: 60,
	})
	require.NoError(t, err)
	return sim
}

// waitFor reads updates until an envelope matches, or fails the test.
func waitFor(t *testing.T, sim *SimTransport, match func(*models.MEnvelope) bool) *models.MEnvelope {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case env := <-sim.Updates():
			if match(env) {
				return env
			}
		case <-deadline:
			t.Fatal("expected envelope never arrived")
			return nil
		}
	}
}

// -----------------------------------------------------------------------------

func TestSimTransportJoinAndBid(t *testing.T) {
	sim := newTestSim(t)

	state, err := sim.Join("lane-1")
	require.NoError(t, err)
	assert.True(t, state.CurrentBid.Equal(decimal.NewFromInt(1000)))
	assert.Equal(t, interfaces.TransportModeSimulated, sim.Mode())

	err = sim.PlaceBid("lane-1", models.MBid{
		DisplayName: "Agent One",
		Amount:      decimal.NewFromInt(980),
		IsAgentBid:  true,
	})
	require.NoError(t, err)

	env := waitFor(t, sim, func(e *models.MEnvelope) bool {
		return e.Type == models.EventNewBid && e.Bid != nil && e.Bid.ParticipantID == "agent-1"
	})
	assert.True(t, env.Bid.Amount.Equal(decimal.NewFromInt(980)))
	assert.True(t, env.Bid.IsAgentBid)
}

// -----------------------------------------------------------------------------

func TestSimTransportRejectionsAreAddressed(t *testing.T) {
	sim := newTestSim(t)

	_, err := sim.Join("lane-1")
	require.NoError(t, err)

	// Equal to the current lowest: rejected, delivered as an event
	err = sim.PlaceBid("lane-1", models.MBid{Amount: decimal.NewFromInt(1000)})
	require.NoError(t, err, "rejection is asynchronous, not an error")

	env := waitFor(t, sim, func(e *models.MEnvelope) bool {
		return e.Type == models.EventBidRejected
	})
	assert.Equal(t, helpers.ReasonNotBelowCurrent, env.Reason)
}

// -----------------------------------------------------------------------------

func TestSimTransportUnknownLaneGetsStandIn(t *testing.T) {
	sim := NewSimTransportWithSeed("agent-1", logger.NewLogger("ERROR", "sim-test"), 1)
	t.Cleanup(func() { sim.Close() })

	state, err := sim.Join("lane-unknown")
	require.NoError(t, err)
	assert.Equal(t, "lane-unknown", state.AuctionID)
	assert.Equal(t, models.StatusOpen, state.Status)
}

// -----------------------------------------------------------------------------

func TestSimTransportUnknownLaneBidFails(t *testing.T) {
	sim := newTestSim(t)

	assert.Error(t, sim.PlaceBid("lane-nope", models.MBid{Amount: decimal.NewFromInt(1)}))
	assert.Error(t, sim.Leave("lane-nope"))
}

package models

import (
	"sort"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

// -----------------------------------------------------------------------------

func TestBidLessLowestWins(t *testing.T) {
	lower := MBid{Amount: decimal.NewFromInt(900), Seq: 5}
	higher := MBid{Amount: decimal.NewFromInt(950), Seq: 1}

	assert.True(t, lower.Less(higher))
	assert.False(t, higher.Less(lower))
}

// -----------------------------------------------------------------------------

func TestBidLessTieBreaksOnArrival(t *testing.T) {
	first := MBid{Amount: decimal.NewFromInt(900), Seq: 3}
	second := MBid{Amount: decimal.NewFromInt(900), Seq: 7}

	assert.True(t, first.Less(second), "earlier arrival ranks first on equal amounts")
	assert.False(t, second.Less(first))
}

// -----------------------------------------------------------------------------

func TestBidSortOrder(t *testing.T) {
	bids := []MBid{
		{ParticipantID: "c", Amount: decimal.NewFromInt(950), Seq: 3},
		{ParticipantID: "a", Amount: decimal.NewFromInt(900), Seq: 4},
		{ParticipantID: "b", Amount: decimal.NewFromInt(900), Seq: 2},
		{ParticipantID: "d", Amount: decimal.NewFromInt(980), Seq: 1},
	}

	sort.SliceStable(bids, func(i, j int) bool { return bids[i].Less(bids[j]) })

	order := make([]string, len(bids))
	for i, b := range bids {
		order[i] = b.ParticipantID
	}
	assert.Equal(t, []string{"b", "a", "c", "d"}, order)
}

// -----------------------------------------------------------------------------

func TestAuctionStateClone(t *testing.T) {
	winner := &MBid{ParticipantID: "a", Amount: decimal.NewFromInt(900)}
	state := &MAuctionState{
		AuctionID:   "lane-1",
		Leaderboard: []MBid{{ParticipantID: "a", Amount: decimal.NewFromInt(900)}},
		Winner:      winner,
	}

	clone := state.Clone()
	clone.Leaderboard[0].ParticipantID = "tampered"
	clone.Winner.ParticipantID = "tampered"

	assert.Equal(t, "a", state.Leaderboard[0].ParticipantID)
	assert.Equal(t, "a", state.Winner.ParticipantID)
}

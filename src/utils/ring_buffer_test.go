package utils

import (
	"testing"

	"freight-auction/src/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------

func bidWithSeq(seq uint64) models.MBid {
	return models.MBid{Seq: seq, Amount: decimal.NewFromInt(int64(1000 - seq))}
}

// -----------------------------------------------------------------------------

func TestBidRingAppendAndOrder(t *testing.T) {
	ring := NewBidRing(4)

	for seq := uint64(1); seq <= 3; seq++ {
		ring.Append(bidWithSeq(seq))
	}

	assert.Equal(t, 3, ring.Size())
	assert.False(t, ring.IsFull())

	all := ring.GetAll()
	require.Len(t, all, 3)
	for i, b := range all {
		assert.Equal(t, uint64(i+1), b.Seq, "arrival order must be preserved")
	}

	last, ok := ring.Last()
	require.True(t, ok)
	assert.Equal(t, uint64(3), last.Seq)
}

// -----------------------------------------------------------------------------

func TestBidRingWrapAround(t *testing.T) {
	ring := NewBidRing(3)

	for seq := uint64(1); seq <= 5; seq++ {
		ring.Append(bidWithSeq(seq))
	}

	assert.Equal(t, 3, ring.Size())
	assert.True(t, ring.IsFull())

	// Oldest entries were overwritten; order is still oldest to newest
	all := ring.GetAll()
	require.Len(t, all, 3)
	assert.Equal(t, uint64(3), all[0].Seq)
	assert.Equal(t, uint64(5), all[2].Seq)
}

// -----------------------------------------------------------------------------

func TestBidRingGetLatest(t *testing.T) {
	ring := NewBidRing(5)
	for seq := uint64(1); seq <= 4; seq++ {
		ring.Append(bidWithSeq(seq))
	}

	latest := ring.GetLatest(2)
	require.Len(t, latest, 2)
	assert.Equal(t, uint64(3), latest[0].Seq)
	assert.Equal(t, uint64(4), latest[1].Seq)

	// Asking for more than stored returns everything
	assert.Len(t, ring.GetLatest(10), 4)
	assert.Empty(t, ring.GetLatest(0))
}

// -----------------------------------------------------------------------------

func TestBidRingEmptyAndClear(t *testing.T) {
	ring := NewBidRing(3)

	assert.Empty(t, ring.GetAll())
	_, ok := ring.Last()
	assert.False(t, ok)

	ring.Append(bidWithSeq(1))
	ring.Clear()
	assert.Equal(t, 0, ring.Size())
	assert.Empty(t, ring.GetAll())
}

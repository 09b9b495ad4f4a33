package utils

import (
	"freight-auction/src/models"
)

// -----------------------------------------------------------------------------
// BidRing is a fixed-size circular buffer of accepted bids in arrival order.
// The leaderboard is sorted by amount; frequency and decrement math need the
// arrival order, so the ring keeps it independently.
// -----------------------------------------------------------------------------

type BidRing struct {
	data     []models.MBid
	capacity int
	index    int // Next write position
	size     int // Current number of elements
}

// -----------------------------------------------------------------------------

// NewBidRing creates a new buffer with fixed capacity
func NewBidRing(capacity int) *BidRing {
	if capacity <= 0 {
		capacity = 256 // Default reasonable size
	}

	return &BidRing{
		data:     make([]models.MBid, capacity),
		capacity: capacity,
		index:    0,
		size:     0,
	}
}

// -----------------------------------------------------------------------------

// Append adds a bid, overwriting the oldest entry when full.
func (rb *BidRing) Append(bid models.MBid) {
	rb.data[rb.index] = bid
	rb.index = (rb.index + 1) % rb.capacity

	// Update size (never exceeds capacity)
	if rb.size < rb.capacity {
		rb.size++
	}
}

// -----------------------------------------------------------------------------

// GetAll returns all bids in insertion order (oldest to newest)
func (rb *BidRing) GetAll() []models.MBid {
	if rb.size == 0 {
		return []models.MBid{}
	}

	result := make([]models.MBid, rb.size)

	// Calculate start index (oldest element)
	var startIdx int
	if rb.size == rb.capacity {
		// Buffer is full, oldest is at current index (wrap-around)
		startIdx = rb.index
	} else {
		startIdx = 0
	}

	for i := 0; i < rb.size; i++ {
		result[i] = rb.data[(startIdx+i)%rb.capacity]
	}

	return result
}

// -----------------------------------------------------------------------------

// GetLatest returns the n newest bids in insertion order.
func (rb *BidRing) GetLatest(n int) []models.MBid {
	if rb.size == 0 || n <= 0 {
		return []models.MBid{}
	}

	count := n
	if n > rb.size {
		count = rb.size
	}

	result := make([]models.MBid, count)

	// Latest data is at index-1
	startIdx := (rb.index - count + rb.capacity) % rb.capacity

	for i := 0; i < count; i++ {
		result[i] = rb.data[(startIdx+i)%rb.capacity]
	}

	return result
}

// -----------------------------------------------------------------------------

// Last returns the newest bid, or false when the ring is empty.
func (rb *BidRing) Last() (models.MBid, bool) {
	if rb.size == 0 {
		return models.MBid{}, false
	}
	return rb.data[(rb.index-1+rb.capacity)%rb.capacity], true
}

// -----------------------------------------------------------------------------

// Size returns current number of elements
func (rb *BidRing) Size() int {
	return rb.size
}

// -----------------------------------------------------------------------------

// Capacity returns buffer capacity (fixed)
func (rb *BidRing) Capacity() int {
	return rb.capacity
}

// -----------------------------------------------------------------------------

// IsFull returns whether buffer is full
func (rb *BidRing) IsFull() bool {
	return rb.size == rb.capacity
}

// -----------------------------------------------------------------------------

// Clear resets the buffer
func (rb *BidRing) Clear() {
	rb.index = 0
	rb.size = 0
}

package registry

import "sync"

// -----------------------------------------------------------------------------
// Participant Registry
// -----------------------------------------------------------------------------

// Registry is the in-memory participant directory and entry-fee ledger. It
// backs both the identity and the payments gates of the server. A production
// deployment would sit this in front of the carrier onboarding system; the
// server only sees the two interfaces.
type Registry struct {
	mu           sync.RWMutex
	participants map[string]string              // id -> display name
	fees         map[string]map[string]struct{} // id -> paid auction ids
	openEntry    bool                           // waive fees entirely
}

// -----------------------------------------------------------------------------

// NewRegistry creates an empty registry. openEntry waives the participation
// fee check for every auction.
func NewRegistry(openEntry bool) *Registry {
	return &Registry{
		participants: make(map[string]string),
		fees:         make(map[string]map[string]struct{}),
		openEntry:    openEntry,
	}
}

// -----------------------------------------------------------------------------

// Register adds or renames a participant.
func (r *Registry) Register(participantID, displayName string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.participants[participantID] = displayName
}

// -----------------------------------------------------------------------------

// RecordEntryFee marks the participant as paid for one auction.
func (r *Registry) RecordEntryFee(participantID, auctionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fees[participantID] == nil {
		r.fees[participantID] = make(map[string]struct{})
	}
	r.fees[participantID][auctionID] = struct{}{}
}

// -----------------------------------------------------------------------------
// IIdentity Implementation
// -----------------------------------------------------------------------------

// Resolve returns the display name for a registered participant.
func (r *Registry) Resolve(participantID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	name, ok := r.participants[participantID]
	return name, ok
}

// -----------------------------------------------------------------------------
// IPayments Implementation
// -----------------------------------------------------------------------------

// HasPaidEntryFee reports whether the participant may bid in the auction.
func (r *Registry) HasPaidEntryFee(participantID, auctionID string) bool {
	if r.openEntry {
		return true
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	paid, ok := r.fees[participantID]
	if !ok {
		return false
	}
	_, ok = paid[auctionID]
	return ok
}

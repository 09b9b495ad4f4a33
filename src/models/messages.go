package models

// -----------------------------------------------------------------------------
// Wire Protocol (JSON over websocket)
// -----------------------------------------------------------------------------

// Client -> server commands.
const (
	CmdJoinAuction  = "join_auction"
	CmdLeaveAuction = "leave_auction"
	CmdPlaceBid     = "place_bid"
)

// Server -> client event types.
const (
	EventJoined          = "joined" // initial snapshot for the joining client
	EventNewBid          = "new_bid"
	EventAuctionUpdate   = "auction_update"
	EventAuctionEnded    = "auction_ended"
	EventCooldownUpdate  = "cooldown_update"
	EventUserCountUpdate = "user_count_update"
	EventBidRejected     = "bid_rejected" // sent to the submitter only
)

// -----------------------------------------------------------------------------

// MCommand is a client-issued message.
type MCommand struct {
	Command       string `json:"command"`
	AuctionID     string `json:"auction_id"`
	ParticipantID string `json:"participant_id"`
	DisplayName   string `json:"display_name,omitempty"`
	Bid           *MBid  `json:"bid,omitempty"` // place_bid only
}

// -----------------------------------------------------------------------------

// MEnvelope is a server-issued event. Only the fields relevant to Type are
// populated. Version increases monotonically per auction; clients must drop
// any envelope whose version is not greater than the last one applied.
type MEnvelope struct {
	Type              string         `json:"type"`
	AuctionID         string         `json:"auction_id"`
	Version           uint64         `json:"version"`
	Bid               *MBid          `json:"bid,omitempty"`
	State             *MAuctionState `json:"state,omitempty"`
	Winner            *MBid          `json:"winner,omitempty"`
	CooldownRemaining int            `json:"cooldown_remaining,omitempty"`
	ActiveUsers       int            `json:"active_users,omitempty"`
	Reason            string         `json:"reason,omitempty"` // bid_rejected only
}

package interfaces

// -----------------------------------------------------------------------------
// External collaborators. The auction core only consumes these contracts;
// real implementations live in the surrounding CRUD application.
// -----------------------------------------------------------------------------

// IIdentity supplies a stable participant identity before joining.
type IIdentity interface {
	// Resolve returns the display name for a participant id, or false when
	// the participant is unknown.
	Resolve(participantID string) (string, bool)
}

// -----------------------------------------------------------------------------

// IPayments confirms the one-time participation fee for (participant, auction).
// The session itself never checks payment; this gate runs upstream of
// place_bid in the server layer.
type IPayments interface {
	HasPaidEntryFee(participantID, auctionID string) bool
}

// -----------------------------------------------------------------------------

// IRegistrar is the write side of the participant directory, exposed on the
// admin REST surface.
type IRegistrar interface {
	Register(participantID, displayName string)
	RecordEntryFee(participantID, auctionID string)
}

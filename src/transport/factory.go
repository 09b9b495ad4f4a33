package transport

import (
	"freight-auction/src/interfaces"
	"freight-auction/src/logger"
)

// -----------------------------------------------------------------------------

// NewTransport dials the live server and degrades to the in-process
// simulation when it cannot be reached. Callers check Mode() to surface the
// degraded state to the participant.
func NewTransport(serverURL, participantID string, log *logger.Logger) interfaces.ITransport {
	live, err := NewWSTransport(serverURL, participantID, log)
	if err == nil {
		return live
	}

	log.Warning("Live transport unavailable (%v), switching to simulation", err)
	return NewSimTransport(participantID, log)
}

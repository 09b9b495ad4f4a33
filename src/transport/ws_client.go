package transport

import (
	"fmt"
	"net/url"
	"sync"
	"time"

	"freight-auction/src/helpers"
	"freight-auction/src/interfaces"
	"freight-auction/src/logger"
	"freight-auction/src/models"

	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// Constants
// -----------------------------------------------------------------------------

const (
	dialTimeout     = 5 * time.Second
	joinTimeout     = 5 * time.Second
	updatesCapacity = 256
)

// -----------------------------------------------------------------------------
// Live WebSocket Transport
// -----------------------------------------------------------------------------

// WSTransport is the live client-side channel to the auction server. One
// instance per participant context. Stale envelopes (version not greater
// than the last applied per auction) are dropped before reaching Updates().
type WSTransport struct {
	logger        *logger.Logger
	participantID string

	conn    *websocket.Conn
	writeMu sync.Mutex // gorilla conns allow one concurrent writer

	updates chan *models.MEnvelope

	mu           sync.Mutex
	lastVersions map[string]uint64
	pendingJoins map[string]chan *models.MAuctionState

	quit     chan struct{}
	quitOnce sync.Once
}

// -----------------------------------------------------------------------------

// NewWSTransport dials the auction server. serverURL is the http(s) base
// address; the websocket endpoint and identity are derived from it.
func NewWSTransport(serverURL, participantID string, log *logger.Logger) (*WSTransport, error) {
	base, err := url.Parse(serverURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server url %q: %w", serverURL, err)
	}

	scheme := "ws"
	if base.Scheme == "https" {
		scheme = "wss"
	}
	wsURL := url.URL{
		Scheme:   scheme,
		Host:     base.Host,
		Path:     "/ws",
		RawQuery: url.Values{"participant_id": {participantID}}.Encode(),
	}

	t := &WSTransport{
		logger:        log,
		participantID: participantID,
		updates:       make(chan *models.MEnvelope, updatesCapacity),
		lastVersions:  make(map[string]uint64),
		pendingJoins:  make(map[string]chan *models.MAuctionState),
		quit:          make(chan struct{}),
	}

	dialer := websocket.Dialer{HandshakeTimeout: dialTimeout}
	err = helpers.RetryWithBackoff(log, "dial auction server", 3, time.Second, func() error {
		conn, _, dialErr := dialer.Dial(wsURL.String(), nil)
		if dialErr != nil {
			return dialErr
		}
		t.conn = conn
		return nil
	})
	if err != nil {
		return nil, helpers.NewTransportUnavailable(err)
	}

	go t.readLoop()
	return t, nil
}

// -----------------------------------------------------------------------------

// readLoop routes incoming envelopes: join snapshots answer the blocked Join
// call, everything else flows to Updates() unless stale.
func (t *WSTransport) readLoop() {
	defer close(t.updates)

	for {
		var env models.MEnvelope
		if err := t.conn.ReadJSON(&env); err != nil {
			select {
			case <-t.quit:
			default:
				t.logger.Warning("Transport read error: %v", err)
			}
			return
		}

		if t.isStale(&env) {
			continue
		}

		if env.Type == models.EventJoined {
			t.mu.Lock()
			reply, ok := t.pendingJoins[env.AuctionID]
			delete(t.pendingJoins, env.AuctionID)
			t.mu.Unlock()
			if ok {
				reply <- env.State
				continue
			}
		}

		select {
		case t.updates <- &env:
		default:
			// Consumer too slow; dropping is safe because every state
			// envelope is a full snapshot, not a delta.
			t.logger.Warning("Update queue full, dropping %s for auction %s", env.Type, env.AuctionID)
		}
	}
}

// -----------------------------------------------------------------------------

// isStale records and checks the per-auction version watermark.
func (t *WSTransport) isStale(env *models.MEnvelope) bool {
	if env.Version == 0 {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if env.Version <= t.lastVersions[env.AuctionID] {
		return true
	}
	t.lastVersions[env.AuctionID] = env.Version
	return false
}

// -----------------------------------------------------------------------------

func (t *WSTransport) writeCommand(cmd models.MCommand) error {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	if err := t.conn.WriteJSON(cmd); err != nil {
		return helpers.NewTransportUnavailable(err)
	}
	return nil
}

// -----------------------------------------------------------------------------
// ITransport Implementation
// -----------------------------------------------------------------------------

func (t *WSTransport) Join(auctionID string) (*models.MAuctionState, error) {
	reply := make(chan *models.MAuctionState, 1)

	t.mu.Lock()
	t.pendingJoins[auctionID] = reply
	t.mu.Unlock()

	err := t.writeCommand(models.MCommand{
		Command:       models.CmdJoinAuction,
		AuctionID:     auctionID,
		ParticipantID: t.participantID,
	})
	if err != nil {
		t.mu.Lock()
		delete(t.pendingJoins, auctionID)
		t.mu.Unlock()
		return nil, err
	}

	select {
	case state := <-reply:
		return state, nil
	case <-time.After(joinTimeout):
		t.mu.Lock()
		delete(t.pendingJoins, auctionID)
		t.mu.Unlock()
		return nil, helpers.NewTransportUnavailable(fmt.Errorf("join %s timed out", auctionID))
	case <-t.quit:
		return nil, helpers.NewTransportUnavailable(fmt.Errorf("transport closed"))
	}
}

// -----------------------------------------------------------------------------

func (t *WSTransport) Leave(auctionID string) error {
	return t.writeCommand(models.MCommand{
		Command:       models.CmdLeaveAuction,
		AuctionID:     auctionID,
		ParticipantID: t.participantID,
	})
}

// -----------------------------------------------------------------------------

func (t *WSTransport) PlaceBid(auctionID string, bid models.MBid) error {
	return t.writeCommand(models.MCommand{
		Command:       models.CmdPlaceBid,
		AuctionID:     auctionID,
		ParticipantID: t.participantID,
		Bid:           &bid,
	})
}

// -----------------------------------------------------------------------------

func (t *WSTransport) Updates() <-chan *models.MEnvelope {
	return t.updates
}

// -----------------------------------------------------------------------------

func (t *WSTransport) Mode() string {
	return interfaces.TransportModeLive
}

// -----------------------------------------------------------------------------

func (t *WSTransport) Close() error {
	var err error
	t.quitOnce.Do(func() {
		close(t.quit)
		err = t.conn.Close()
	})
	return err
}

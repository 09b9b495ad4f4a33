package server

import (
	"encoding/json"
	"net/http"

	"freight-auction/src/helpers"
	"freight-auction/src/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// Hub Pattern Implementation
// -----------------------------------------------------------------------------

type roomChange struct {
	client    *Client
	auctionID string
}

type whisperMessage struct {
	participantID string
	envelope      *models.MEnvelope
}

// handleWebsockets is the main Hub loop. It owns the client set and the room
// index; nothing else touches them.
func (s *AuctionServer) handleWebsockets() {
	for {
		select {
		case client := <-s.register:
			s.clients[client] = struct{}{}

		case client := <-s.unregister:
			if _, ok := s.clients[client]; ok {
				s.dropClient(client)
			}

		case change := <-s.joinRoom:
			room, ok := s.rooms[change.auctionID]
			if !ok {
				room = make(map[*Client]struct{})
				s.rooms[change.auctionID] = room
			}
			room[change.client] = struct{}{}

		case change := <-s.leaveRoom:
			if room, ok := s.rooms[change.auctionID]; ok {
				delete(room, change.client)
				if len(room) == 0 {
					delete(s.rooms, change.auctionID)
				}
			}

		case env := <-s.broadcast:
			// Fan out to the auction's room only
			for client := range s.rooms[env.AuctionID] {
				select {
				case client.send <- env:
					// Message sent successfully
				default:
					// Client too slow, disconnect to prevent Hub blocking
					s.dropClient(client)
				}
			}

		case w := <-s.whispers:
			for client := range s.clients {
				if client.participantID != w.participantID {
					continue
				}
				select {
				case client.send <- w.envelope:
				default:
					s.dropClient(client)
				}
			}

		case <-s.quit:
			for client := range s.clients {
				s.dropClient(client)
			}
			return
		}
	}
}

// -----------------------------------------------------------------------------

// dropClient removes the client from every room and closes its send channel.
// Hub loop only.
func (s *AuctionServer) dropClient(client *Client) {
	if _, ok := s.clients[client]; !ok {
		return
	}
	delete(s.clients, client)
	for auctionID, room := range s.rooms {
		delete(room, client)
		if len(room) == 0 {
			delete(s.rooms, auctionID)
		}
	}
	close(client.send)
}

// -----------------------------------------------------------------------------
// Broadcaster Interface Implementation
// -----------------------------------------------------------------------------

// Broadcast queues an envelope for fan-out to the auction's room. Called from
// session actors; never blocks them beyond the buffered queue.
func (s *AuctionServer) Broadcast(env *models.MEnvelope) {
	select {
	case s.broadcast <- env:
	default:
		s.Logger.Warning("Broadcast queue full, dropping %s for auction %s", env.Type, env.AuctionID)
	}
}

// -----------------------------------------------------------------------------

// Whisper queues an envelope for one participant's connections only.
func (s *AuctionServer) Whisper(participantID string, env *models.MEnvelope) {
	select {
	case s.whispers <- whisperMessage{participantID: participantID, envelope: env}:
	default:
		s.Logger.Warning("Whisper queue full, dropping %s for %s", env.Type, participantID)
	}
}

// -----------------------------------------------------------------------------
// WebSocket Handlers
// -----------------------------------------------------------------------------

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// -----------------------------------------------------------------------------

func (s *AuctionServer) handleWebSocket(c *gin.Context) {
	participantID := c.Query("participant_id")
	if participantID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "participant_id is required"})
		return
	}

	// Identity gate: unknown participants never get a socket.
	displayName, ok := s.identity.Resolve(participantID)
	if !ok {
		c.JSON(http.StatusForbidden, gin.H{"error": "unknown participant"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.Logger.Info("Failed to upgrade websocket: %v", err)
		return
	}

	client := &Client{
		hub:           s,
		conn:          conn,
		participantID: participantID,
		displayName:   displayName,
		joined:        make(map[string]struct{}),
		// Buffered channel to prevent blocking the Hub loop
		send: make(chan *models.MEnvelope, 256),
	}

	s.register <- client

	// Start goroutines for reading/writing
	go client.writePump()
	go client.readPump()
}

// -----------------------------------------------------------------------------
// Client Message Handling
// -----------------------------------------------------------------------------

// HandleClientMessage runs on the client's readPump goroutine. Commands from
// one connection are strictly serial; client.joined is only touched here.
func (s *AuctionServer) HandleClientMessage(client *Client, message []byte) {
	var cmd models.MCommand
	if err := json.Unmarshal(message, &cmd); err != nil {
		s.Logger.Info("Failed to parse client command: %v, disconnecting client", err)
		client.conn.Close()
		return
	}

	switch cmd.Command {
	case models.CmdJoinAuction:
		s.handleJoin(client, cmd)
	case models.CmdLeaveAuction:
		s.handleLeave(client, cmd)
	case models.CmdPlaceBid:
		s.handlePlaceBid(client, cmd)
	default:
		s.Logger.Info("Unknown command %q from %s", cmd.Command, client.participantID)
	}
}

// -----------------------------------------------------------------------------

func (s *AuctionServer) handleJoin(client *Client, cmd models.MCommand) {
	session, ok := s.manager.Get(cmd.AuctionID)
	if !ok {
		client.trySend(&models.MEnvelope{
			Type:      models.EventBidRejected,
			AuctionID: cmd.AuctionID,
			Reason:    "auction not found",
		})
		return
	}

	state := session.Join(client.participantID)
	s.joinRoom <- roomChange{client: client, auctionID: cmd.AuctionID}
	client.joined[cmd.AuctionID] = struct{}{}

	client.trySend(&models.MEnvelope{
		Type:      models.EventJoined,
		AuctionID: cmd.AuctionID,
		Version:   state.Version,
		State:     state,
	})
}

// -----------------------------------------------------------------------------

func (s *AuctionServer) handleLeave(client *Client, cmd models.MCommand) {
	if _, ok := client.joined[cmd.AuctionID]; !ok {
		return
	}
	delete(client.joined, cmd.AuctionID)
	s.leaveRoom <- roomChange{client: client, auctionID: cmd.AuctionID}

	if session, ok := s.manager.Get(cmd.AuctionID); ok {
		session.Leave(client.participantID)
	}
}

// -----------------------------------------------------------------------------

func (s *AuctionServer) handlePlaceBid(client *Client, cmd models.MCommand) {
	if cmd.Bid == nil {
		client.trySend(&models.MEnvelope{
			Type:      models.EventBidRejected,
			AuctionID: cmd.AuctionID,
			Reason:    "bid payload missing",
		})
		return
	}

	if _, ok := client.joined[cmd.AuctionID]; !ok {
		client.trySend(&models.MEnvelope{
			Type:      models.EventBidRejected,
			AuctionID: cmd.AuctionID,
			Reason:    helpers.ReasonNotJoined,
		})
		return
	}

	// Participation fee gate
	if s.payments != nil && !s.payments.HasPaidEntryFee(client.participantID, cmd.AuctionID) {
		client.trySend(&models.MEnvelope{
			Type:      models.EventBidRejected,
			AuctionID: cmd.AuctionID,
			Reason:    helpers.ReasonFeeUnpaid,
		})
		return
	}

	session, ok := s.manager.Get(cmd.AuctionID)
	if !ok {
		client.trySend(&models.MEnvelope{
			Type:      models.EventBidRejected,
			AuctionID: cmd.AuctionID,
			Reason:    "auction not found",
		})
		return
	}

	_, err := session.SubmitBid(client.participantID, client.displayName, cmd.Bid.Amount, cmd.Bid.IsAgentBid)
	if err != nil {
		reason := helpers.RejectionReason(err)
		if reason == "" {
			reason = err.Error()
		}
		client.trySend(&models.MEnvelope{
			Type:      models.EventBidRejected,
			AuctionID: cmd.AuctionID,
			Reason:    reason,
		})
	}
}

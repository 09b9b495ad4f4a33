package server

import (
	"time"

	"freight-auction/src/models"

	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// Constants
// -----------------------------------------------------------------------------

const (
	writeWait      = 2 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024 // commands are small JSON objects
)

// -----------------------------------------------------------------------------
// Client Structure
// -----------------------------------------------------------------------------

type Client struct {
	hub           *AuctionServer
	conn          *websocket.Conn
	send          chan *models.MEnvelope
	participantID string
	displayName   string

	// Auctions joined on this connection. Only the readPump goroutine
	// touches it, so no lock is needed.
	joined map[string]struct{}
}

// -----------------------------------------------------------------------------

// trySend queues an envelope without blocking the caller.
func (c *Client) trySend(env *models.MEnvelope) {
	select {
	case c.send <- env:
	default:
	}
}

// -----------------------------------------------------------------------------
// readPump - handles incoming commands from the participant
// Acts as a Watchdog for the connection
// -----------------------------------------------------------------------------

func (c *Client) readPump() {
	defer func() {
		// Drop the participant from every auction joined on this connection
		for auctionID := range c.joined {
			if session, ok := c.hub.manager.Get(auctionID); ok {
				session.Leave(c.participantID)
			}
		}
		c.hub.unregister <- c
		c.conn.Close()
		c.hub.Logger.Info("Participant %s disconnected", c.participantID)
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.Logger.Info("WebSocket error: %v", err)
			}
			break
		}
		c.hub.HandleClientMessage(c, message)
	}
}

// -----------------------------------------------------------------------------
// writePump - sends envelopes to the participant
// -----------------------------------------------------------------------------

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case env, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteJSON(env); err != nil {
				c.hub.Logger.Info("Write error: %v", err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

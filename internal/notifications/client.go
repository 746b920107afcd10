package notifications

import (
	"sync/atomic"
	"time"

	"kumatter/internal/middleware"
	"kumatter/internal/observability"

	"github.com/gofiber/websocket/v2"
)

// EventTimelineStale tells a client that events were dropped and its
// timeline and counters should be reloaded.
const EventTimelineStale = "timeline_stale"

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10

	// Subscribers never send payloads of their own.
	maxInboundSize = 512

	sendBuffer = 64
)

var staleNotice = func() []byte {
	s, _ := Event{Type: EventTimelineStale, Payload: map[string]string{"reason": "buffer_full"}}.Encode()
	return []byte(s)
}()

// Client is one websocket subscribed to a user's like and follow events.
type Client struct {
	UserID uint
	Send   chan []byte

	hub  *Hub
	conn *websocket.Conn

	// set while a stale notice is queued and not yet written
	stale atomic.Bool
}

func newClient(hub *Hub, conn *websocket.Conn, userID uint) *Client {
	return &Client{
		UserID: userID,
		Send:   make(chan []byte, sendBuffer),
		hub:    hub,
		conn:   conn,
	}
}

// ReadPump discards inbound frames and keeps the read deadline fresh until
// the peer disconnects. It unregisters the client on return.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.UnregisterClient(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxInboundSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				middleware.Logger.Debug("realtime subscriber disconnected", "user_id", c.UserID, "error", err)
			}
			return
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	}
}

// WritePump delivers queued events, one text frame each, and pings the peer.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case event, ok := <-c.Send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.write(event); err != nil {
				return
			}
			// flush whatever queued up while writing
			for n := len(c.Send); n > 0; n-- {
				if err := c.write(<-c.Send); err != nil {
					return
				}
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) write(event []byte) error {
	if err := c.conn.WriteMessage(websocket.TextMessage, event); err != nil {
		middleware.Logger.Debug("realtime write failed", "user_id", c.UserID, "error", err)
		return err
	}
	c.stale.Store(false)
	return nil
}

// TrySend queues event without blocking. When the buffer is full the event
// is dropped and a single timeline_stale notice replaces the oldest queued
// event, so a slow client learns it must reload.
func (c *Client) TrySend(event []byte) {
	defer func() {
		if r := recover(); r != nil {
			observability.WebSocketBackpressureDrops.WithLabelValues(c.hub.Name(), "closed").Inc()
		}
	}()

	select {
	case c.Send <- event:
		return
	default:
	}

	observability.WebSocketBackpressureDrops.WithLabelValues(c.hub.Name(), "full").Inc()
	if c.stale.Swap(true) {
		return
	}
	middleware.Logger.Warn("realtime buffer full, asking client to reload", "user_id", c.UserID)

	select {
	case <-c.Send:
	default:
	}
	select {
	case c.Send <- staleNotice:
	default:
	}
}

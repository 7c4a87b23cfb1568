package gateway

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/coder/websocket"
)

// client is one live WebSocket connection. It satisfies session.Subscriber;
// all outbound traffic goes through the buffered send channel so a slow
// reader can never block a broadcast.
type client struct {
	id   string
	conn *websocket.Conn

	mu     sync.Mutex
	closed bool
	send   chan []byte
}

// ID implements session.Subscriber.
func (c *client) ID() string {
	return c.id
}

// Deliver implements session.Subscriber. A nil payload or a full send
// buffer drops the message rather than blocking the caller; a closed client
// drops everything.
func (c *client) Deliver(payload []byte) {
	if payload == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- payload:
	default:
		slog.Warn("Client send channel full, dropping message", "connID", c.id)
	}
}

// close shuts the send channel exactly once so writePump terminates.
// Deliver holds the same lock, so no send can race the close.
func (c *client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// readPump pumps events from the WebSocket connection into the gateway
// dispatcher. It runs once per connection and is the connection's only
// reader.
func (c *client) readPump(g *Gateway) {
	defer func() {
		g.disconnect(c)
		c.conn.Close(websocket.StatusNormalClosure, "Client disconnected")
	}()

	for {
		_, raw, err := c.conn.Read(context.Background())
		if err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure || websocket.CloseStatus(err) == websocket.StatusGoingAway {
				slog.Info("WebSocket closed normally by client", "connID", c.id)
			} else if err != io.EOF {
				slog.Error("WebSocket read error", "connID", c.id, "error", err)
			}
			break
		}

		g.dispatch(context.Background(), c, raw)
	}
}

// writePump drains the send channel to the WebSocket connection until the
// channel is closed by the disconnect path. It runs once per connection and
// is the connection's only writer.
func (c *client) writePump() {
	for message := range c.send {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := c.conn.Write(ctx, websocket.MessageText, message)
		cancel()
		if err != nil {
			slog.Error("WebSocket write error", "connID", c.id, "error", err)
			c.conn.Close(websocket.StatusNormalClosure, "Server-side cleanup")
			return
		}
	}
}

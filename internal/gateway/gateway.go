package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/crewsync/crewsync/internal/chat"
	"github.com/crewsync/crewsync/internal/domain"
	"github.com/crewsync/crewsync/internal/session"
)

// Gateway accepts WebSocket connections and translates wire envelopes into
// chat service calls. Payloads are decoded into their tagged variant and
// validated here, at the boundary; malformed or unknown events never reach
// pipeline logic.
type Gateway struct {
	registry *session.Registry
	chat     *chat.Service
}

// New creates a Gateway over the session registry and chat service.
func New(registry *session.Registry, chatSvc *chat.Service) *Gateway {
	return &Gateway{registry: registry, chat: chatSvc}
}

// Handler returns the echo handler that upgrades requests to WebSocket
// connections and starts the client pumps.
func (g *Gateway) Handler() echo.HandlerFunc {
	return func(c echo.Context) error {
		conn, err := websocket.Accept(c.Response(), c.Request(), &websocket.AcceptOptions{
			InsecureSkipVerify: true, // In production, check origin.
		})
		if err != nil {
			slog.Error("Failed to upgrade connection to WebSocket", "error", err)
			return err
		}

		cl := &client{
			id:   uuid.NewString(),
			conn: conn,
			send: make(chan []byte, 256),
		}
		g.registry.Add(cl)
		slog.Info("Client connected", "connID", cl.id)

		go cl.writePump()
		go cl.readPump(g)

		return nil
	}
}

// dispatch decodes one inbound envelope and routes it to the pipeline. All
// failures are answered with a generic error event on the originating
// connection; internal detail stays in the logs.
func (g *Gateway) dispatch(ctx context.Context, c *client, raw []byte) {
	var env chat.Envelope
	if err := json.Unmarshal(raw, &env); err != nil || env.Event == "" {
		g.reject(c, "malformed event envelope")
		return
	}

	var err error
	switch env.Event {
	case chat.EventAuthenticate:
		var p chat.AuthenticatePayload
		if err = decode(env.Data, &p); err == nil {
			err = g.chat.Authenticate(c.id, p)
		}

	case chat.EventJoinRoom:
		var p chat.RoomPayload
		if err = decode(env.Data, &p); err == nil {
			err = g.chat.JoinRoom(c.id, p)
		}

	case chat.EventLeaveRoom:
		var p chat.RoomPayload
		if err = decode(env.Data, &p); err == nil {
			err = g.chat.LeaveRoom(c.id, p)
		}

	case chat.EventSendMessage:
		var p chat.SendMessagePayload
		if err = decode(env.Data, &p); err == nil {
			err = g.sendMessage(ctx, c, p)
		}

	case chat.EventTyping:
		var p chat.TypingPayload
		if err = decode(env.Data, &p); err == nil {
			err = g.chat.Typing(c.id, p)
		}

	case chat.EventMessageRead:
		var p chat.MessageReadPayload
		if err = decode(env.Data, &p); err == nil {
			err = g.markRead(ctx, c, p)
		}

	default:
		g.reject(c, "unknown event: "+env.Event)
		return
	}

	if err != nil {
		slog.Error("Event handling failed", "event", env.Event, "connID", c.id, "error", err)
		g.reject(c, clientMessage(env.Event, err))
	}
}

// sendMessage gates the send on an authenticated connection and pins the
// sender to the bound user, so a connection cannot send on someone else's
// behalf.
func (g *Gateway) sendMessage(ctx context.Context, c *client, p chat.SendMessagePayload) error {
	userID, ok := g.registry.UserFor(c.id)
	if !ok {
		return errors.New("connection is not authenticated")
	}
	p.SenderID = userID

	_, err := g.chat.SendMessage(ctx, c.id, p)
	return err
}

// markRead pins the reader to the connection's bound user, mirroring the
// sender pinning on sends: a connection can only mark messages read as
// itself.
func (g *Gateway) markRead(ctx context.Context, c *client, p chat.MessageReadPayload) error {
	userID, ok := g.registry.UserFor(c.id)
	if !ok {
		return errors.New("connection is not authenticated")
	}
	p.ReaderID = userID

	return g.chat.MarkRead(ctx, p)
}

// disconnect unregisters the connection and closes the client so its
// writePump exits. Without the close every churned connection would leave a
// goroutine parked on the send channel.
func (g *Gateway) disconnect(c *client) {
	g.chat.Disconnect(c.id)
	c.close()
}

func (g *Gateway) reject(c *client, message string) {
	c.Deliver(chat.Encode(chat.EventError, chat.ErrorEvent{Message: message}))
}

// clientMessage maps an internal error to the text shown to the client.
// Validation and addressing problems are safe to surface; anything else is
// the generic failure for that operation.
func clientMessage(event string, err error) string {
	switch {
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrGroupNotFound),
		errors.Is(err, domain.ErrNotGroupMember),
		errors.Is(err, domain.ErrNotFound):
		return err.Error()
	case event == chat.EventSendMessage:
		return "Failed to send message"
	default:
		return "Failed to process " + event
	}
}

func decode(raw json.RawMessage, out any) error {
	if len(raw) == 0 {
		return errors.New("missing event data")
	}
	return json.Unmarshal(raw, out)
}

package services

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Client wraps one websocket connection. Outbound frames go through a
// buffered channel drained by a single write loop, so SendEvent is safe
// from any goroutine.
type Client struct {
	UserID string

	conn *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once
}

func NewClient(userID string, conn *websocket.Conn) *Client {
	return &Client{
		UserID: userID,
		conn:   conn,
		send:   make(chan []byte, 64),
		done:   make(chan struct{}),
	}
}

// SendEvent enqueues the event for delivery. A client that cannot keep up
// is closed rather than allowed to block the sender.
func (c *Client) SendEvent(event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	select {
	case <-c.done:
		return errors.New("connection closed")
	case c.send <- payload:
		return nil
	default:
		c.Close()
		return errors.New("send buffer full")
	}
}

// Close shuts the connection down exactly once.
func (c *Client) Close() {
	c.once.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

func (c *Client) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case payload := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				c.Close()
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.Close()
				return
			}
		}
	}
}

// markSeenPayload is the client->server seen signal. RecipientID is the id
// of the other participant, i.e. the user to notify that their messages
// were seen.
type markSeenPayload struct {
	ConversationID string `json:"conversationId"`
	RecipientID    string `json:"recipientId"`
}

func (c *Client) readLoop(chat *ChatService) {
	defer c.Close()

	c.conn.SetReadLimit(1 << 16)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var frame struct {
			Event   string          `json:"event"`
			Payload json.RawMessage `json:"payload"`
		}
		if err := json.Unmarshal(raw, &frame); err != nil {
			log.Printf("Invalid socket frame from %s: %v", c.UserID, err)
			continue
		}

		switch frame.Event {
		case EventMarkSeen:
			var payload markSeenPayload
			if err := json.Unmarshal(frame.Payload, &payload); err != nil {
				log.Printf("Invalid %s payload from %s: %v", EventMarkSeen, c.UserID, err)
				continue
			}
			// Fire and forget: a failed seen-update is logged and lost
			// until the client's next attempt.
			if err := chat.MarkSeen(context.Background(), payload.ConversationID, payload.RecipientID); err != nil {
				log.Printf("Failed to mark messages as seen: %v", err)
			}
		default:
			log.Printf("Unknown socket event %q from %s", frame.Event, c.UserID)
		}
	}
}

// HandleWebSocket upgrades the request and runs the connection lifecycle.
// The user identifies itself via the _id query parameter; the literal
// "undefined" marks an unauthenticated visitor, who receives online-user
// broadcasts but is never registered for push delivery.
func HandleWebSocket(ctx *gin.Context, registry *Registry, chat *ChatService) {
	conn, err := upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		log.Printf("Failed to upgrade connection: %v", err)
		return
	}

	userID := ctx.Query("_id")
	client := NewClient(userID, conn)

	go client.writeLoop()

	registered := userID != "" && userID != "undefined"
	if registered {
		registry.Register(userID, client)
	} else {
		registry.AddVisitor(client)
	}

	client.readLoop(chat)

	if registered {
		// Only drop the presence entry if this handle still owns it; a
		// reconnect may have replaced it already.
		if registry.IsCurrent(userID, client) {
			registry.Unregister(userID)
		}
	} else {
		registry.RemoveVisitor(client)
	}
}

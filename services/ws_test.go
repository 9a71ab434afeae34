package services

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWSServer(t *testing.T) (*httptest.Server, *ChatService, *fakeMessageStore, *Registry) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	chat, _, messages, _, registry := newTestChat()

	router := gin.New()
	router.GET("/ws", func(c *gin.Context) {
		HandleWebSocket(c, registry, chat)
	})

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server, chat, messages, registry
}

func dialWS(t *testing.T, server *httptest.Server, userID string) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws?_id=" + userID
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) (string, json.RawMessage) {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var frame struct {
		Event   string          `json:"event"`
		Payload json.RawMessage `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(raw, &frame))
	return frame.Event, frame.Payload
}

func TestHandleWebSocket_VisitorIsNeverRegistered(t *testing.T) {
	server, _, _, registry := newWSServer(t)

	conn := dialWS(t, server, "undefined")

	// The online-user feed still reaches the visitor.
	event, _ := readFrame(t, conn)
	assert.Equal(t, EventOnlineUsers, event)

	_, ok := registry.Lookup("undefined")
	assert.False(t, ok)
	assert.Empty(t, registry.OnlineIDs())

	// An empty id is treated the same way.
	empty := dialWS(t, server, "")
	event, _ = readFrame(t, empty)
	assert.Equal(t, EventOnlineUsers, event)
	assert.Empty(t, registry.OnlineIDs())
}

func TestHandleWebSocket_RegisterAndDisconnect(t *testing.T) {
	server, _, _, registry := newWSServer(t)

	conn := dialWS(t, server, "u1")

	event, payload := readFrame(t, conn)
	assert.Equal(t, EventOnlineUsers, event)

	var online []string
	require.NoError(t, json.Unmarshal(payload, &online))
	assert.Equal(t, []string{"u1"}, online)

	_, ok := registry.Lookup("u1")
	require.True(t, ok)

	// Transport close removes the presence entry promptly.
	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool {
		_, ok := registry.Lookup("u1")
		return !ok
	}, 2*time.Second, 10*time.Millisecond)
}

func TestHandleWebSocket_ReconnectSurvivesStaleClose(t *testing.T) {
	server, _, _, registry := newWSServer(t)

	stale := dialWS(t, server, "u1")

	var staleHandle Receiver
	require.Eventually(t, func() bool {
		handle, ok := registry.Lookup("u1")
		staleHandle = handle
		return ok
	}, 2*time.Second, 10*time.Millisecond)

	// A reconnect replaces the entry.
	dialWS(t, server, "u1")

	var freshHandle Receiver
	require.Eventually(t, func() bool {
		handle, ok := registry.Lookup("u1")
		freshHandle = handle
		return ok && handle != staleHandle
	}, 2*time.Second, 10*time.Millisecond)

	// Closing the replaced connection must not drop the fresh entry.
	require.NoError(t, stale.Close())
	time.Sleep(200 * time.Millisecond)

	handle, ok := registry.Lookup("u1")
	require.True(t, ok)
	assert.Equal(t, freshHandle, handle)
}

func TestHandleWebSocket_MarkSeenFrame(t *testing.T) {
	server, chat, messages, registry := newWSServer(t)
	ctx := context.Background()

	first, err := chat.SendMessage(ctx, "b1", "a1", "one", "")
	require.NoError(t, err)
	_, err = chat.SendMessage(ctx, "b1", "a1", "two", "")
	require.NoError(t, err)

	sender := &fakeReceiver{}
	registry.Register("b1", sender)

	conn := dialWS(t, server, "a1")

	frame := map[string]interface{}{
		"event": EventMarkSeen,
		"payload": map[string]string{
			"conversationId": first.ConversationID,
			"recipientId":    "b1",
		},
	}
	require.NoError(t, conn.WriteJSON(frame))

	require.Eventually(t, func() bool {
		messages.mu.Lock()
		defer messages.mu.Unlock()
		for _, message := range messages.messages {
			if message.ConversationID == first.ConversationID && !message.Seen {
				return false
			}
		}
		return true
	}, 2*time.Second, 10*time.Millisecond)

	require.Eventually(t, func() bool {
		return len(sender.eventsNamed(EventMessageSeen)) == 1
	}, 2*time.Second, 10*time.Millisecond)

	pushes := sender.eventsNamed(EventMessageSeen)
	assert.Equal(t, first.ConversationID, pushes[0].Payload)
}

func TestHandleWebSocket_InvalidFrameIsIgnored(t *testing.T) {
	server, _, _, registry := newWSServer(t)

	conn := dialWS(t, server, "u1")
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	require.NoError(t, conn.WriteJSON(map[string]string{"event": "bogus"}))

	// The connection stays up and registered.
	time.Sleep(100 * time.Millisecond)
	_, ok := registry.Lookup("u1")
	assert.True(t, ok)
}

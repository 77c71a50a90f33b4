package ws

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// socketPair returns a server-side Connection with its pump running and the client end.
func socketPair(t *testing.T) (*Connection, *websocket.Conn) {
	t.Helper()
	serverSide := make(chan *websocket.Conn, 1)
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		serverSide <- c
	}))
	t.Cleanup(srv.Close)

	client, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	conn := NewConnection(<-serverSide, zerolog.Nop())
	go conn.WritePump()
	return conn, client
}

func TestHubSendToSession(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	id := uuid.New()
	conn, client := socketPair(t)

	hub.RegisterConnection(id, conn)
	assert.Equal(t, 1, hub.Count())

	msg, err := NewMessage(TypeFeedback, FeedbackPayload{QuestionID: 3, Key: "b", Correct: true, Points: 1})
	require.NoError(t, err)
	require.NoError(t, hub.SendToSession(id, msg))

	require.NoError(t, client.SetReadDeadline(time.Now().Add(2*time.Second)))
	var got Message
	require.NoError(t, client.ReadJSON(&got))
	assert.Equal(t, TypeFeedback, got.Type)
	assert.JSONEq(t, string(msg.Payload), string(got.Payload))

	assert.ErrorIs(t, hub.SendToSession(uuid.New(), msg), ErrConnectionNotFound)
}

func TestHubReconnectReplacesConnection(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	id := uuid.New()
	first, _ := socketPair(t)
	second, _ := socketPair(t)

	hub.RegisterConnection(id, first)
	hub.RegisterConnection(id, second)
	assert.Equal(t, 1, hub.Count())

	select {
	case <-first.Done():
	default:
		t.Fatal("replaced connection still open")
	}
	assert.ErrorIs(t, first.Send(Message{Type: TypePong}), ErrConnectionClosed)

	// A stale unregister must not drop the live connection.
	hub.UnregisterConnection(id, first)
	assert.Equal(t, 1, hub.Count())

	hub.UnregisterConnection(id, second)
	assert.Equal(t, 0, hub.Count())
}

package ws

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// serveHub upgrades every request and registers it under the user query param.
func serveHub(t *testing.T, hub *Hub) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		userID := r.URL.Query().Get("user")
		conn := NewConnection(raw, zerolog.Nop())
		hub.Register(userID, conn)
		go conn.WritePump()
		conn.ReadPump(func(Message) error { return nil })
		hub.Unregister(userID, conn.ID)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server, userID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?user=" + userID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestSendToUserReachesEveryConnection(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	srv := serveHub(t, hub)

	first := dial(t, srv, "user-1")
	second := dial(t, srv, "user-1")
	require.Eventually(t, func() bool { return hub.ConnectionCount("user-1") == 2 }, time.Second, 10*time.Millisecond)

	msg, err := NewMessage(TypeProgressUpdate, map[string]int{"answered_questions": 3})
	require.NoError(t, err)
	require.NoError(t, hub.SendToUser("user-1", msg))

	for _, c := range []*websocket.Conn{first, second} {
		c.SetReadDeadline(time.Now().Add(time.Second))
		var got Message
		require.NoError(t, c.ReadJSON(&got))
		assert.Equal(t, TypeProgressUpdate, got.Type)
		assert.JSONEq(t, `{"answered_questions":3}`, string(got.Payload))
	}
}

func TestSendToUserWithoutConnections(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	err := hub.SendToUser("nobody", Message{Type: TypePong})
	assert.ErrorIs(t, err, ErrConnectionNotFound)
}

func TestUnregisterOnDisconnect(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	srv := serveHub(t, hub)

	conn := dial(t, srv, "user-2")
	require.Eventually(t, func() bool { return hub.ConnectionCount("user-2") == 1 }, time.Second, 10*time.Millisecond)

	conn.Close()
	assert.Eventually(t, func() bool { return hub.ConnectionCount("user-2") == 0 }, time.Second, 10*time.Millisecond)
}

func TestErrorMessage(t *testing.T) {
	msg := ErrorMessage("invalid_payload", "bad", "req-1")
	assert.Equal(t, TypeError, msg.Type)
	assert.Equal(t, "req-1", msg.RequestID)
	assert.JSONEq(t, `{"code":"invalid_payload","message":"bad"}`, string(msg.Payload))
}

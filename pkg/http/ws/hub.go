package ws

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	writeWait  = 10 * time.Second
)

// Hub tracks live WebSocket connections per user. A user may hold several
// connections at once, one per open tab.
type Hub struct {
	mu          sync.RWMutex
	connections map[string]map[uuid.UUID]*Connection // user_id -> conn_id -> connection
	logger      zerolog.Logger
}

// NewHub creates a new WebSocket hub.
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		connections: make(map[string]map[uuid.UUID]*Connection),
		logger:      logger.With().Str("component", "ws_hub").Logger(),
	}
}

// Register adds a connection for a user.
func (h *Hub) Register(userID string, conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conns, ok := h.connections[userID]
	if !ok {
		conns = make(map[uuid.UUID]*Connection)
		h.connections[userID] = conns
	}
	conns[conn.ID] = conn
	h.logger.Info().Str("user_id", userID).Str("conn_id", conn.ID.String()).Msg("connection registered")
}

// Unregister closes and removes one connection of a user.
func (h *Hub) Unregister(userID string, connID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conns := h.connections[userID]
	conn, ok := conns[connID]
	if !ok {
		return
	}
	conn.Close()
	delete(conns, connID)
	if len(conns) == 0 {
		delete(h.connections, userID)
	}
	h.logger.Info().Str("user_id", userID).Str("conn_id", connID.String()).Msg("connection unregistered")
}

// SendToUser delivers a message to every connection of a user.
func (h *Hub) SendToUser(userID string, msg Message) error {
	h.mu.RLock()
	conns := make([]*Connection, 0, len(h.connections[userID]))
	for _, c := range h.connections[userID] {
		conns = append(conns, c)
	}
	h.mu.RUnlock()

	if len(conns) == 0 {
		return ErrConnectionNotFound
	}

	var firstErr error
	for _, c := range conns {
		if err := c.Send(msg); err != nil && firstErr == nil {
			firstErr = err
			h.logger.Warn().Err(err).Str("user_id", userID).Str("conn_id", c.ID.String()).Msg("send_failed")
		}
	}
	return firstErr
}

// ConnectionCount returns the number of open connections of a user.
func (h *Hub) ConnectionCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections[userID])
}

// Connection represents a WebSocket connection with send queue.
type Connection struct {
	ID     uuid.UUID
	conn   *websocket.Conn
	sendCh chan Message
	mu     sync.Mutex
	closed bool
	logger zerolog.Logger
}

// NewConnection wraps a WebSocket connection.
func NewConnection(conn *websocket.Conn, logger zerolog.Logger) *Connection {
	id := uuid.New()
	return &Connection{
		ID:     id,
		conn:   conn,
		sendCh: make(chan Message, 64),
		logger: logger.With().Str("conn_id", id.String()).Logger(),
	}
}

// Send queues a message for delivery.
func (c *Connection) Send(msg Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrConnectionClosed
	}

	select {
	case c.sendCh <- msg:
		return nil
	default:
		return ErrSendQueueFull
	}
}

// Close shuts down the connection.
func (c *Connection) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	c.closed = true
	close(c.sendCh)
	c.conn.Close()
}

// WritePump sends queued messages and keeps the peer alive with pings.
func (c *Connection) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.sendCh:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				c.logger.Warn().Err(err).Msg("write error")
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

// ReadPump receives messages and calls the handler until the peer goes away.
func (c *Connection) ReadPump(handler func(Message) error) {
	defer c.conn.Close()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn().Err(err).Msg("read error")
			}
			return
		}

		if err := handler(msg); err != nil {
			c.logger.Warn().Err(err).Msg("message handler error")
		}
	}
}

var (
	ErrConnectionNotFound = &Error{Code: "connection_not_found", Message: "User connection not found"}
	ErrConnectionClosed   = &Error{Code: "connection_closed", Message: "Connection is closed"}
	ErrSendQueueFull      = &Error{Code: "send_queue_full", Message: "Send queue is full"}
)

type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

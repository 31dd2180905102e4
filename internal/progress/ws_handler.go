package progress

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/aprendeexcel/quiz-engine/internal/auth"
	"github.com/aprendeexcel/quiz-engine/internal/server"
	httperrors "github.com/aprendeexcel/quiz-engine/pkg/http/errors"
	ws "github.com/aprendeexcel/quiz-engine/pkg/http/ws"
)

const requestTimeout = 5 * time.Second

// WSHandler streams live progress updates to the caller's browser tabs.
type WSHandler struct {
	svc    *Service
	hub    *ws.Hub
	logger zerolog.Logger
}

func NewWSHandler(svc *Service, hub *ws.Hub, logger zerolog.Logger) *WSHandler {
	return &WSHandler{
		svc:    svc,
		hub:    hub,
		logger: logger.With().Str("component", "progress_ws").Logger(),
	}
}

// Register mounts the WebSocket endpoint. The token arrives as ?token=.
func (h *WSHandler) Register(mux *http.ServeMux, wrap func(http.Handler) http.Handler) {
	mux.Handle("GET /ws/progress", wrap(http.HandlerFunc(h.HandleWebSocket)))
}

// HandleWebSocket upgrades the request and serves the connection until it closes.
func (h *WSHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeAuthenticationRequired, "Authentication required")
		return
	}

	raw, err := server.WSUpgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	conn := ws.NewConnection(raw, h.logger)
	h.hub.Register(userID, conn)
	go conn.WritePump()

	conn.ReadPump(func(msg ws.Message) error {
		return h.handleMessage(conn, userID, msg)
	})

	h.hub.Unregister(userID, conn.ID)
}

func (h *WSHandler) handleMessage(conn *ws.Connection, userID string, msg ws.Message) error {
	switch msg.Type {
	case ws.TypePing:
		return conn.Send(ws.Message{Type: ws.TypePong, RequestID: msg.RequestID})
	case ws.TypeRequestProgress:
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		snap, err := h.svc.LoadOrEmpty(ctx, userID)
		if err != nil {
			h.logger.Warn().Err(err).Str("user_id", userID).Msg("progress request failed")
			return conn.Send(ws.ErrorMessage(httperrors.ErrCodeProgressFetchFailed, "Failed to load progress", msg.RequestID))
		}
		reply, err := UpdateFrom(snap).Message()
		if err != nil {
			return err
		}
		reply.RequestID = msg.RequestID
		return conn.Send(reply)
	default:
		return conn.Send(ws.ErrorMessage(httperrors.ErrCodeUnknownMessageType, fmt.Sprintf("Unknown message type: %s", msg.Type), msg.RequestID))
	}
}

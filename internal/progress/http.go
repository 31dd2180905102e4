package progress

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/aprendeexcel/quiz-engine/internal/auth"
	httperrors "github.com/aprendeexcel/quiz-engine/pkg/http/errors"
)

// HTTPHandler exposes the progress read and reset endpoints.
type HTTPHandler struct {
	svc    *Service
	logger zerolog.Logger
}

func NewHTTPHandler(svc *Service, logger zerolog.Logger) *HTTPHandler {
	return &HTTPHandler{
		svc:    svc,
		logger: logger.With().Str("component", "progress_http").Logger(),
	}
}

// Register mounts the handlers on mux behind the given middleware.
func (h *HTTPHandler) Register(mux *http.ServeMux, wrap func(http.Handler) http.Handler) {
	mux.Handle("GET /v1/progress", wrap(http.HandlerFunc(h.HandleGet)))
	mux.Handle("GET /v1/progress/stats", wrap(http.HandlerFunc(h.HandleStats)))
	mux.Handle("GET /v1/progress/levels", wrap(http.HandlerFunc(h.HandleLevels)))
	mux.Handle("GET /v1/progress/types", wrap(http.HandlerFunc(h.HandleTypes)))
	mux.Handle("DELETE /v1/progress", wrap(http.HandlerFunc(h.HandleReset)))
}

// HandleGet responds with the full snapshot of the caller.
func (h *HTTPHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeAuthenticationRequired, "Authentication required")
		return
	}
	snap, err := h.svc.Load(r.Context(), userID)
	if err != nil {
		h.logger.Error().Err(err).Str("user_id", userID).Msg("load progress failed")
		httperrors.RespondInternalError(w, "Failed to load progress")
		return
	}
	if snap == nil {
		httperrors.RespondNotFound(w, httperrors.ErrCodeProgressNotFound, "No progress recorded yet")
		return
	}
	httperrors.RespondJSON(w, http.StatusOK, snap)
}

func (h *HTTPHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.loadOrEmpty(w, r)
	if !ok {
		return
	}
	httperrors.RespondJSON(w, http.StatusOK, snap.Stats())
}

func (h *HTTPHandler) HandleLevels(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.loadOrEmpty(w, r)
	if !ok {
		return
	}
	httperrors.RespondJSON(w, http.StatusOK, snap.LevelStats())
}

func (h *HTTPHandler) HandleTypes(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.loadOrEmpty(w, r)
	if !ok {
		return
	}
	httperrors.RespondJSON(w, http.StatusOK, snap.TypeStats())
}

// HandleReset zeroes the caller's progress.
func (h *HTTPHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeAuthenticationRequired, "Authentication required")
		return
	}
	snap, err := h.svc.Reset(r.Context(), userID)
	if err != nil {
		h.logger.Error().Err(err).Str("user_id", userID).Msg("reset progress failed")
		httperrors.RespondInternalError(w, "Failed to reset progress")
		return
	}
	httperrors.RespondJSON(w, http.StatusOK, snap)
}

func (h *HTTPHandler) loadOrEmpty(w http.ResponseWriter, r *http.Request) (Snapshot, bool) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeAuthenticationRequired, "Authentication required")
		return Snapshot{}, false
	}
	snap, err := h.svc.LoadOrEmpty(r.Context(), userID)
	if err != nil {
		h.logger.Error().Err(err).Str("user_id", userID).Msg("load progress failed")
		httperrors.RespondError(w, http.StatusInternalServerError, httperrors.ErrCodeProgressFetchFailed, "Failed to load progress")
		return Snapshot{}, false
	}
	return snap, true
}

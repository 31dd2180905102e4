package activity

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/aprendeexcel/quiz-engine/internal/auth"
	httperrors "github.com/aprendeexcel/quiz-engine/pkg/http/errors"
)

const maxRecentLimit = 100

// HTTPHandler exposes learning activity tracking over REST.
type HTTPHandler struct {
	svc    *Service
	logger zerolog.Logger
}

func NewHTTPHandler(svc *Service, logger zerolog.Logger) *HTTPHandler {
	return &HTTPHandler{
		svc:    svc,
		logger: logger.With().Str("component", "activity_http").Logger(),
	}
}

// Register mounts the handlers on mux behind the given middleware.
func (h *HTTPHandler) Register(mux *http.ServeMux, wrap func(http.Handler) http.Handler) {
	mux.Handle("GET /v1/activity", wrap(http.HandlerFunc(h.HandleOverview)))
	mux.Handle("POST /v1/activity/exercises/{id}/{action}", wrap(http.HandlerFunc(h.HandleExercise)))
	mux.Handle("POST /v1/activity/formulas/{id}/{action}", wrap(http.HandlerFunc(h.HandleFormula)))
	mux.Handle("POST /v1/activity/videos/{id}/{action}", wrap(http.HandlerFunc(h.HandleVideo)))
}

type actionRequest struct {
	Name             string `json:"name"`
	Level            string `json:"level"`
	Category         string `json:"category"`
	TimeSpentMinutes int    `json:"time_spent_minutes"`
	WatchTime        int    `json:"watch_time"`
	TotalDuration    int    `json:"total_duration"`
}

func (req actionRequest) subject(id string) Subject {
	label := req.Level
	if label == "" {
		label = req.Category
	}
	return Subject{ID: id, Name: req.Name, Label: label}
}

// HandleOverview responds with progress, stats and the recent activity log.
func (h *HTTPHandler) HandleOverview(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeAuthenticationRequired, "Authentication required")
		return
	}
	limit := DefaultRecentLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > maxRecentLimit {
			httperrors.RespondErrorWithDetails(w, http.StatusBadRequest, httperrors.ErrCodeValidationFailed, "limit is out of range",
				map[string]any{"field": "limit", "min": 1, "max": maxRecentLimit})
			return
		}
		limit = n
	}
	overview, err := h.svc.Overview(r.Context(), userID, limit)
	if err != nil {
		h.logger.Error().Err(err).Str("user_id", userID).Msg("load activity failed")
		httperrors.RespondError(w, http.StatusInternalServerError, httperrors.ErrCodeProgressFetchFailed, "Failed to load activity")
		return
	}
	httperrors.RespondJSON(w, http.StatusOK, overview)
}

func (h *HTTPHandler) HandleExercise(w http.ResponseWriter, r *http.Request) {
	h.record(w, r, func(ctx context.Context, userID, action string, req actionRequest, subj Subject) (Result, bool, error) {
		switch action {
		case "download":
			res, err := h.svc.DownloadExercise(ctx, userID, subj)
			return res, true, err
		case "complete":
			res, err := h.svc.CompleteExercise(ctx, userID, subj, req.TimeSpentMinutes)
			return res, true, err
		}
		return Result{}, false, nil
	})
}

func (h *HTTPHandler) HandleFormula(w http.ResponseWriter, r *http.Request) {
	h.record(w, r, func(ctx context.Context, userID, action string, req actionRequest, subj Subject) (Result, bool, error) {
		var (
			res Result
			err error
		)
		switch action {
		case "view":
			res, err = h.svc.ViewFormula(ctx, userID, subj)
		case "practice":
			res, err = h.svc.PracticeFormula(ctx, userID, subj)
		case "master":
			res, err = h.svc.MasterFormula(ctx, userID, subj)
		default:
			return Result{}, false, nil
		}
		return res, true, err
	})
}

func (h *HTTPHandler) HandleVideo(w http.ResponseWriter, r *http.Request) {
	h.record(w, r, func(ctx context.Context, userID, action string, req actionRequest, subj Subject) (Result, bool, error) {
		switch action {
		case "start":
			res, err := h.svc.StartVideo(ctx, userID, subj, req.TotalDuration)
			return res, true, err
		case "progress":
			res, err := h.svc.UpdateVideo(ctx, userID, subj, req.WatchTime, req.TotalDuration)
			return res, true, err
		}
		return Result{}, false, nil
	})
}

type actionFunc func(ctx context.Context, userID, action string, req actionRequest, subj Subject) (Result, bool, error)

func (h *HTTPHandler) record(w http.ResponseWriter, r *http.Request, op actionFunc) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeAuthenticationRequired, "Authentication required")
		return
	}
	var req actionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid request body")
		return
	}

	action := r.PathValue("action")
	res, known, err := op(r.Context(), userID, action, req, req.subject(r.PathValue("id")))
	if !known {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidAction, "Unknown action "+strconv.Quote(action))
		return
	}
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidDuration), errors.Is(err, ErrInvalidTime):
			httperrors.RespondValidationError(w, httperrors.ErrCodeValidationFailed, err.Error(), "")
		case errors.Is(err, ErrMissingSubject):
			httperrors.RespondValidationError(w, httperrors.ErrCodeMissingField, err.Error(), "id")
		default:
			h.logger.Error().Err(err).Str("user_id", userID).Str("action", action).Msg("record activity failed")
			httperrors.RespondError(w, http.StatusInternalServerError, httperrors.ErrCodeActivityFailed, "Failed to record activity")
		}
		return
	}
	httperrors.RespondJSON(w, http.StatusOK, res)
}

package quiz

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aprendeexcel/quiz-engine/internal/auth"
	"github.com/aprendeexcel/quiz-engine/internal/question"
	httperrors "github.com/aprendeexcel/quiz-engine/pkg/http/errors"
)

// HTTPHandler exposes quiz sessions over REST.
type HTTPHandler struct {
	svc    *Service
	logger zerolog.Logger
}

func NewHTTPHandler(svc *Service, logger zerolog.Logger) *HTTPHandler {
	return &HTTPHandler{
		svc:    svc,
		logger: logger.With().Str("component", "quiz_http").Logger(),
	}
}

// Register mounts the handlers on mux behind the given middleware.
func (h *HTTPHandler) Register(mux *http.ServeMux, wrap func(http.Handler) http.Handler) {
	mux.Handle("GET /v1/quiz/questions", wrap(http.HandlerFunc(h.HandleQuestions)))
	mux.Handle("POST /v1/quiz/sessions", wrap(http.HandlerFunc(h.HandleStart)))
	mux.Handle("GET /v1/quiz/sessions/{id}", wrap(http.HandlerFunc(h.HandleGet)))
	mux.Handle("POST /v1/quiz/sessions/{id}/answers", wrap(http.HandlerFunc(h.HandleSubmit)))
	mux.Handle("POST /v1/quiz/sessions/{id}/next", wrap(http.HandlerFunc(h.HandleNext)))
	mux.Handle("POST /v1/quiz/sessions/{id}/previous", wrap(http.HandlerFunc(h.HandlePrevious)))
	mux.Handle("POST /v1/quiz/sessions/{id}/complete", wrap(http.HandlerFunc(h.HandleComplete)))
	mux.Handle("POST /v1/quiz/sessions/{id}/save", wrap(http.HandlerFunc(h.HandleRetrySave)))
}

type submitRequest struct {
	QuestionID string            `json:"question_id"`
	Response   question.Response `json:"response"`
}

// HandleQuestions lists the question bank without answer keys.
func (h *HTTPHandler) HandleQuestions(w http.ResponseWriter, r *http.Request) {
	httperrors.RespondJSON(w, http.StatusOK, map[string]any{
		"questions": h.svc.Questions(),
	})
}

// HandleStart opens a session with a fresh question order.
func (h *HTTPHandler) HandleStart(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeAuthenticationRequired, "Authentication required")
		return
	}
	res, err := h.svc.Start(r.Context(), userID)
	if err != nil {
		h.logger.Error().Err(err).Str("user_id", userID).Msg("start session failed")
		httperrors.RespondError(w, http.StatusInternalServerError, httperrors.ErrCodeSessionStartFailed, "Failed to start quiz")
		return
	}
	httperrors.RespondJSON(w, http.StatusCreated, res)
}

func (h *HTTPHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, h.svc.Get)
}

// HandleSubmit records an answer for one question of the session.
func (h *HTTPHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid request body")
		return
	}
	if req.QuestionID == "" {
		httperrors.RespondValidationError(w, httperrors.ErrCodeMissingField, "question_id is required", "question_id")
		return
	}
	h.withSession(w, r, func(ctx context.Context, id uuid.UUID, userID string) (Result, error) {
		return h.svc.Submit(ctx, id, userID, req.QuestionID, req.Response)
	})
}

func (h *HTTPHandler) HandleNext(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, h.svc.Next)
}

func (h *HTTPHandler) HandlePrevious(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, h.svc.Previous)
}

// HandleComplete finalizes the session. A failed final save is reported in
// the body with saved=false rather than as an HTTP error.
func (h *HTTPHandler) HandleComplete(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, h.svc.Complete)
}

func (h *HTTPHandler) HandleRetrySave(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, h.svc.RetrySave)
}

func (h *HTTPHandler) withSession(w http.ResponseWriter, r *http.Request, op func(context.Context, uuid.UUID, string) (Result, error)) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeAuthenticationRequired, "Authentication required")
		return
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidSessionID, "Invalid session id")
		return
	}

	res, err := op(r.Context(), id, userID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httperrors.RespondJSON(w, http.StatusOK, res)
}

func (h *HTTPHandler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		httperrors.RespondNotFound(w, httperrors.ErrCodeSessionNotFound, "Session not found")
	case errors.Is(err, ErrSessionCompleted):
		httperrors.RespondConflict(w, httperrors.ErrCodeSessionCompleted, "Session already completed")
	case errors.Is(err, ErrNotCompleted):
		httperrors.RespondConflict(w, httperrors.ErrCodeNothingToSave, "Session is still in progress")
	case errors.Is(err, ErrUnknownQuestion):
		httperrors.RespondValidationError(w, httperrors.ErrCodeUnknownQuestion, err.Error(), "question_id")
	case errors.Is(err, question.ErrEmptyResponse):
		httperrors.RespondValidationError(w, httperrors.ErrCodeEmptyResponse, "Response is empty", "response")
	case errors.Is(err, question.ErrUnknownOption),
		errors.Is(err, question.ErrUnknownItem),
		errors.Is(err, question.ErrUnknownZone):
		httperrors.RespondValidationError(w, httperrors.ErrCodeInvalidResponse, err.Error(), "response")
	default:
		h.logger.Error().Err(err).Msg("quiz request failed")
		httperrors.RespondInternalError(w, "Internal error")
	}
}

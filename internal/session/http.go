package session

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/sdk-quiz/internal/question"
	"github.com/gokatarajesh/sdk-quiz/internal/quiz"
	httperrors "github.com/gokatarajesh/sdk-quiz/pkg/http/errors"
)

// HTTPHandlers provides REST endpoints for quiz sessions.
type HTTPHandlers struct {
	service *Service
	logger  zerolog.Logger
}

// NewHTTPHandlers creates HTTP handlers for session endpoints.
func NewHTTPHandlers(service *Service, logger zerolog.Logger) *HTTPHandlers {
	return &HTTPHandlers{
		service: service,
		logger:  logger.With().Str("component", "session_http").Logger(),
	}
}

// ListBanks handles GET /v1/banks
func (h *HTTPHandlers) ListBanks(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]interface{}{"banks": h.service.Banks()})
}

// StartSession handles POST /v1/sessions
func (h *HTTPHandlers) StartSession(w http.ResponseWriter, r *http.Request) {
	var req StartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}
	if req.Bank == "" {
		httperrors.RespondValidationError(w, httperrors.ErrCodeMissingField, "bank is required", "bank")
		return
	}

	started, err := h.service.Start(r.Context(), req)
	if err != nil {
		h.respondServiceError(w, err, "failed to start session")
		return
	}
	h.respondJSON(w, http.StatusCreated, started)
}

// CurrentQuestion handles GET /v1/sessions/{id}/question
func (h *HTTPHandlers) CurrentQuestion(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	q, err := h.service.Current(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, err, "failed to load question")
		return
	}
	h.respondJSON(w, http.StatusOK, q)
}

type answerRequest struct {
	Answer string `json:"answer"`
}

// SubmitAnswer handles POST /v1/sessions/{id}/answers
func (h *HTTPHandlers) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}

	res, err := h.service.Submit(r.Context(), id, req.Answer)
	if err != nil {
		h.respondServiceError(w, err, "failed to submit answer")
		return
	}
	h.respondJSON(w, http.StatusOK, res)
}

// GetReport handles GET /v1/sessions/{id}/report
func (h *HTTPHandlers) GetReport(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	rep, err := h.service.Report(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, err, "failed to load report")
		return
	}
	h.respondJSON(w, http.StatusOK, rep)
}

// PlayerResults handles GET /v1/players/{player}/results?limit=20
func (h *HTTPHandlers) PlayerResults(w http.ResponseWriter, r *http.Request) {
	player := r.PathValue("player")
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 100 {
			httperrors.RespondValidationError(w, httperrors.ErrCodeValidationFailed, "limit must be between 1 and 100", "limit")
			return
		}
		limit = parsed
	}

	recs, err := h.service.History(r.Context(), player, limit)
	if err != nil {
		h.logger.Error().Err(err).Str("player", player).Msg("failed to list results")
		httperrors.RespondServiceUnavailable(w, httperrors.ErrCodeResultsFetchFailed, "Results unavailable")
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{"player": player, "results": recs})
}

func (h *HTTPHandlers) sessionID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidSessionID, "Session id must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}

// respondServiceError maps service errors onto the error envelope.
func (h *HTTPHandlers) respondServiceError(w http.ResponseWriter, err error, msg string) {
	switch {
	case errors.Is(err, question.ErrUnknownBank):
		httperrors.RespondNotFound(w, httperrors.ErrCodeUnknownBank, err.Error())
	case errors.Is(err, quiz.ErrNoMatchingQuestions):
		httperrors.RespondUnprocessable(w, httperrors.ErrCodeNoMatchingQuestions, err.Error())
	case errors.Is(err, quiz.ErrInvalidSelection):
		var selErr *quiz.SelectionError
		if errors.As(err, &selErr) {
			httperrors.RespondErrorWithDetails(w, http.StatusBadRequest, httperrors.ErrCodeInvalidSelection, err.Error(),
				map[string]interface{}{"answer": selErr.Answer, "keys": selErr.Keys})
			return
		}
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidSelection, err.Error())
	case errors.Is(err, ErrPlayerRequired):
		httperrors.RespondValidationError(w, httperrors.ErrCodeMissingField, err.Error(), "player")
	case errors.Is(err, ErrInvalidFilter):
		httperrors.RespondBadRequest(w, httperrors.ErrCodeValidationFailed, err.Error())
	case errors.Is(err, ErrNotFound):
		httperrors.RespondNotFound(w, httperrors.ErrCodeSessionNotFound, "Session not found or expired")
	case errors.Is(err, ErrInProgress):
		httperrors.RespondConflict(w, httperrors.ErrCodeSessionInProgress, "Session has unanswered questions")
	case errors.Is(err, quiz.ErrSessionComplete):
		httperrors.RespondConflict(w, httperrors.ErrCodeSessionComplete, "Session already complete")
	case errors.Is(err, ErrStale):
		httperrors.RespondConflict(w, httperrors.ErrCodeSessionConflict, "Session was changed by another client")
	case errors.Is(err, ErrBusy):
		httperrors.RespondConflict(w, httperrors.ErrCodeSessionBusy, "Another answer is being processed")
	default:
		h.logger.Error().Err(err).Msg(msg)
		httperrors.RespondInternalError(w, msg)
	}
}

func (h *HTTPHandlers) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Warn().Err(err).Msg("encode response")
	}
}

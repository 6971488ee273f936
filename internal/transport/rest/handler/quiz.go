package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"plantmatch/internal/form"
	"plantmatch/internal/model"
	"plantmatch/internal/service"
	"plantmatch/internal/transport/rest/middleware"
)

// QuizHandler handles quiz session endpoints
type QuizHandler struct {
	quizSvc *service.QuizService
	authSvc *service.AuthService
}

// NewQuizHandler creates a new quiz handler
func NewQuizHandler(quizSvc *service.QuizService, authSvc *service.AuthService) *QuizHandler {
	return &QuizHandler{
		quizSvc: quizSvc,
		authSvc: authSvc,
	}
}

// StartSessionRequest is the request body for starting a session
type StartSessionRequest struct {
	VisitorID string `json:"visitorId,omitempty"`
}

// StartSessionResponse bundles the session token with the first state
type StartSessionResponse struct {
	Token string                `json:"token"`
	State *service.SessionState `json:"state"`
}

// RecordRequest is the request body for recording an answer
type RecordRequest struct {
	QuestionID model.ID   `json:"questionId"`
	Input      form.Input `json:"input"`
}

// Config handles GET /v1/quiz/config
func (h *QuizHandler) Config(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.quizSvc.Config())
}

// Start handles POST /v1/quiz/sessions
func (h *QuizHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req StartSessionRequest
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req)
	}

	state, err := h.quizSvc.StartSession(r.Context(), req.VisitorID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	token, err := h.authSvc.GenerateSessionToken(state.SessionID, state.VisitorID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to issue session token")
		return
	}

	writeJSON(w, http.StatusCreated, &StartSessionResponse{
		Token: token,
		State: state,
	})
}

// Get handles GET /v1/quiz/sessions/current
func (h *QuizHandler) Get(w http.ResponseWriter, r *http.Request) {
	state, err := h.quizSvc.GetState(middleware.GetSessionID(r.Context()))
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// Record handles POST /v1/quiz/sessions/responses
func (h *QuizHandler) Record(w http.ResponseWriter, r *http.Request) {
	var req RecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	state, err := h.quizSvc.Record(middleware.GetSessionID(r.Context()), req.QuestionID, &req.Input)
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// Advance handles POST /v1/quiz/sessions/advance
func (h *QuizHandler) Advance(w http.ResponseWriter, r *http.Request) {
	state, err := h.quizSvc.Advance(middleware.GetSessionID(r.Context()))
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// Restart handles POST /v1/quiz/sessions/restart
func (h *QuizHandler) Restart(w http.ResponseWriter, r *http.Request) {
	state, err := h.quizSvc.Restart(r.Context(), middleware.GetSessionID(r.Context()))
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// ClickCTA handles POST /v1/quiz/sessions/cta
func (h *QuizHandler) ClickCTA(w http.ResponseWriter, r *http.Request) {
	if err := h.quizSvc.ClickCTA(r.Context(), middleware.GetSessionID(r.Context())); err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// End handles DELETE /v1/quiz/sessions/current
func (h *QuizHandler) End(w http.ResponseWriter, r *http.Request) {
	h.quizSvc.EndSession(middleware.GetSessionID(r.Context()))
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func writeSessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, "session not found")
	case errors.Is(err, form.ErrSessionComplete):
		writeError(w, http.StatusConflict, "session is already complete")
	case errors.Is(err, form.ErrSessionNotComplete):
		writeError(w, http.StatusConflict, "session is not complete")
	case errors.Is(err, form.ErrUnknownQuestion):
		writeError(w, http.StatusConflict, "response does not target the current question")
	case errors.Is(err, form.ErrFinalizeInProgress):
		writeError(w, http.StatusConflict, "submission already in progress")
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

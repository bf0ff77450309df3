package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"thalia/internal/model"
	"thalia/internal/service"
	"thalia/internal/transport/rest/middleware"
)

// ChatHandler handles chat and session endpoints
type ChatHandler struct {
	router *service.RouterService
}

// NewChatHandler creates a new chat handler
func NewChatHandler(router *service.RouterService) *ChatHandler {
	return &ChatHandler{router: router}
}

// Chat handles POST /v1/chat
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req model.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// An empty message is allowed; the router answers with the welcome menu.
	resp := h.router.Route(r.Context(), userID, req.SessionID, req.Message)
	writeJSON(w, http.StatusOK, resp)
}

// Assessments handles GET /v1/assessments
func (h *ChatHandler) Assessments(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	reports, err := h.router.Reports(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if reports == nil {
		reports = []*model.AssessmentReport{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"assessments": reports})
}

// Progress handles GET /v1/sessions/{sessionId}/progress
func (h *ChatHandler) Progress(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]

	progress, err := h.router.Progress(sessionID)
	if errors.Is(err, service.ErrSessionNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, progress)
}

// History handles GET /v1/sessions/{sessionId}/history
func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]

	messages, err := h.router.History(r.Context(), sessionID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if messages == nil {
		messages = []*model.ConversationMessage{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"sessionId": sessionID,
		"messages":  messages,
	})
}

package handlers

import (
	"net/http"

	"github.com/LullabiesGr/AilbumsV2-sub002/internal/session"
	"github.com/LullabiesGr/AilbumsV2-sub002/internal/web/middleware"
)

// SessionHandler handles session lifecycle endpoints.
type SessionHandler struct {
	manager *session.Manager
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(manager *session.Manager) *SessionHandler {
	return &SessionHandler{manager: manager}
}

// Create starts a fresh session, replacing any existing one on the client.
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	if existing := middleware.GetSession(r.Context()); existing != nil {
		h.manager.DeleteSession(existing.ID)
	}

	s, err := h.manager.CreateSession()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to create session")
		return
	}
	h.manager.SetSessionCookie(w, s)

	respondJSON(w, http.StatusCreated, s.ToJSON())
}

// Reset is the global workflow escape, valid in every stage: the workspace
// returns to the upload stage, all photos and derived views are dropped, and
// a running analysis batch is abandoned. The session survives.
func (h *SessionHandler) Reset(w http.ResponseWriter, r *http.Request) {
	ws := mustGetWorkspace(w, r)
	if ws == nil {
		return
	}

	ws.Reset()
	h.State(w, r)
}

// State reports the full workspace snapshot the frontend renders from.
func (h *SessionHandler) State(w http.ResponseWriter, r *http.Request) {
	ws := mustGetWorkspace(w, r)
	if ws == nil {
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"stage":       ws.Workflow.Stage(),
		"mode":        ws.Workflow.Mode(),
		"event_type":  ws.Workflow.EventType(),
		"user_id":     ws.Workflow.UserID(),
		"photo_count": ws.Store.Len(),
		"filters":     ws.Filters(),
		"analysis":    ws.Orchestrator.Progress(),
	})
}

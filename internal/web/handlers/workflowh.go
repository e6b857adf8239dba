package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/LullabiesGr/AilbumsV2-sub002/internal/config"
	"github.com/LullabiesGr/AilbumsV2-sub002/internal/workflow"
)

// WorkflowHandler handles workflow stage and configuration endpoints.
type WorkflowHandler struct {
	config *config.Config
}

// NewWorkflowHandler creates a new workflow handler.
func NewWorkflowHandler(cfg *config.Config) *WorkflowHandler {
	return &WorkflowHandler{config: cfg}
}

type configureRequest struct {
	CullingMode string `json:"culling_mode"`
	EventType   string `json:"event_type"`
	UserID      string `json:"user_id"`
}

// Configure records the culling mode, event context and user identity for the
// upcoming analysis run. Stage changes happen separately via Stage.
func (h *WorkflowHandler) Configure(w http.ResponseWriter, r *http.Request) {
	ws := mustGetWorkspace(w, r)
	if ws == nil {
		return
	}

	var req configureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	if req.EventType != "" && !h.config.Events.Known(req.EventType) {
		respondError(w, http.StatusBadRequest,
			fmt.Sprintf("unknown event type %q, expected one of: %s",
				req.EventType, strings.Join(h.config.Events.Slugs(), ", ")))
		return
	}

	if err := ws.Workflow.Configure(workflow.Mode(req.CullingMode), req.EventType, req.UserID); err != nil {
		respondDomainError(w, err)
		return
	}

	h.Get(w, r)
}

type stageRequest struct {
	Stage string `json:"stage"`
}

// Stage requests an explicit workflow stage transition.
func (h *WorkflowHandler) Stage(w http.ResponseWriter, r *http.Request) {
	ws := mustGetWorkspace(w, r)
	if ws == nil {
		return
	}

	var req stageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	if err := ws.Workflow.Transition(workflow.Stage(req.Stage)); err != nil {
		respondDomainError(w, err)
		return
	}

	h.Get(w, r)
}

// Get reports the current workflow state and the configured event vocabulary.
func (h *WorkflowHandler) Get(w http.ResponseWriter, r *http.Request) {
	ws := mustGetWorkspace(w, r)
	if ws == nil {
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"stage":       ws.Workflow.Stage(),
		"mode":        ws.Workflow.Mode(),
		"event_type":  ws.Workflow.EventType(),
		"user_id":     ws.Workflow.UserID(),
		"event_types": h.config.Events.Slugs(),
	})
}

package handlers

import (
	"context"
	"net/http"

	"github.com/LullabiesGr/AilbumsV2-sub002/internal/workflow"
)

// AnalyzeHandler handles analysis batch endpoints.
type AnalyzeHandler struct{}

// NewAnalyzeHandler creates a new analyze handler.
func NewAnalyzeHandler() *AnalyzeHandler {
	return &AnalyzeHandler{}
}

// Start launches the analysis batch for the workspace. Precondition failures
// are reported synchronously; the batch itself runs in the background and is
// followed via Events. The batch deliberately does not inherit the request
// context: an in-flight batch cannot be cancelled.
func (h *AnalyzeHandler) Start(w http.ResponseWriter, r *http.Request) {
	ws := mustGetWorkspace(w, r)
	if ws == nil {
		return
	}

	if ws.Store.Len() == 0 && ws.Workflow.Mode() != workflow.ModeManual {
		respondError(w, http.StatusPreconditionFailed, "no photos uploaded")
		return
	}

	if err := ws.Orchestrator.StartAsync(context.Background()); err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusAccepted, map[string]any{
		"stage":    ws.Workflow.Stage(),
		"progress": ws.Orchestrator.Progress(),
	})
}

// Status reports the current batch progress snapshot.
func (h *AnalyzeHandler) Status(w http.ResponseWriter, r *http.Request) {
	ws := mustGetWorkspace(w, r)
	if ws == nil {
		return
	}
	respondJSON(w, http.StatusOK, ws.Orchestrator.Progress())
}

// Events streams batch progress as server-sent events.
func (h *AnalyzeHandler) Events(w http.ResponseWriter, r *http.Request) {
	ws := mustGetWorkspace(w, r)
	if ws == nil {
		return
	}
	streamAnalysisEvents(w, r, ws.Orchestrator)
}

package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// PeopleHandler handles person-group endpoints.
type PeopleHandler struct{}

// NewPeopleHandler creates a new people handler.
func NewPeopleHandler() *PeopleHandler {
	return &PeopleHandler{}
}

// List returns the person groups derived from the workspace photos. Groups
// are recomputed lazily when the workspace has none yet.
func (h *PeopleHandler) List(w http.ResponseWriter, r *http.Request) {
	ws := mustGetWorkspace(w, r)
	if ws == nil {
		return
	}

	groups := ws.Groups()
	if groups == nil {
		ws.RebuildGroups()
		groups = ws.Groups()
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"groups": groups,
		"count":  len(groups),
	})
}

// Get returns one person group by id.
func (h *PeopleHandler) Get(w http.ResponseWriter, r *http.Request) {
	ws := mustGetWorkspace(w, r)
	if ws == nil {
		return
	}

	id := chi.URLParam(r, "id")
	group, ok := ws.GroupByID(id)
	if !ok {
		respondError(w, http.StatusNotFound, "person group not found")
		return
	}
	respondJSON(w, http.StatusOK, group)
}

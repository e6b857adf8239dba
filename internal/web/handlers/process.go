package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/LullabiesGr/AilbumsV2-sub002/internal/album"
	"github.com/LullabiesGr/AilbumsV2-sub002/internal/backend"
)

// ProcessHandler handles bulk backend operations: culling and batch
// post-processing. All of them require a configured backend.
type ProcessHandler struct {
	client *backend.Client // nil when no backend URL is configured
}

// NewProcessHandler creates a new process handler.
func NewProcessHandler(client *backend.Client) *ProcessHandler {
	return &ProcessHandler{client: client}
}

func (h *ProcessHandler) requireBackend(w http.ResponseWriter) bool {
	if h.client == nil {
		respondError(w, http.StatusPreconditionFailed, "no analysis backend configured")
		return false
	}
	return true
}

type cullRequest struct {
	PhotoIDs []string `json:"photo_ids,omitempty"` // empty = whole workspace
}

// Cull submits photos for bulk culling and merges the returned records back
// into the store.
func (h *ProcessHandler) Cull(w http.ResponseWriter, r *http.Request) {
	ws := mustGetWorkspace(w, r)
	if ws == nil {
		return
	}
	if !h.requireBackend(w) {
		return
	}

	var req cullRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, errInvalidRequestBody)
			return
		}
	}

	var photos []album.Photo
	if len(req.PhotoIDs) == 0 {
		photos = ws.Store.List()
	} else {
		for _, id := range req.PhotoIDs {
			if p, ok := ws.Store.Get(id); ok {
				photos = append(photos, p)
			}
		}
	}
	if len(photos) == 0 {
		respondError(w, http.StatusPreconditionFailed, "no photos to cull")
		return
	}

	culled, err := h.client.Cull(r.Context(), photos)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	for _, p := range culled {
		ws.Store.Upsert(p)
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"culled": len(culled),
		"photos": culled,
	})
}

type batchRequest struct {
	Mode     string   `json:"mode"`
	PhotoIDs []string `json:"photo_ids,omitempty"` // empty = whole workspace
}

// Batch runs the backend's bulk post-processing (autocorrect or autofix) over
// the selected photos and returns the processed images.
func (h *ProcessHandler) Batch(w http.ResponseWriter, r *http.Request) {
	ws := mustGetWorkspace(w, r)
	if ws == nil {
		return
	}
	if !h.requireBackend(w) {
		return
	}

	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	mode := backend.BatchMode(req.Mode)
	if mode != backend.BatchAutocorrect && mode != backend.BatchAutofix {
		respondError(w, http.StatusBadRequest, "mode must be autocorrect or autofix")
		return
	}

	var paths []string
	if len(req.PhotoIDs) == 0 {
		for _, p := range ws.Store.List() {
			if p.OriginalPath != "" {
				paths = append(paths, p.OriginalPath)
			}
		}
	} else {
		for _, id := range req.PhotoIDs {
			if p, ok := ws.Store.Get(id); ok && p.OriginalPath != "" {
				paths = append(paths, p.OriginalPath)
			}
		}
	}
	if len(paths) == 0 {
		respondError(w, http.StatusPreconditionFailed, "no stored payloads to process")
		return
	}

	results, err := h.client.BatchProcess(r.Context(), paths, mode)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"mode":    mode,
		"results": results,
	})
}

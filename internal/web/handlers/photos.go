package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"

	"github.com/LullabiesGr/AilbumsV2-sub002/internal/album"
	"github.com/LullabiesGr/AilbumsV2-sub002/internal/filterview"
)

// PhotosHandler handles photo listing and editing endpoints.
type PhotosHandler struct{}

// NewPhotosHandler creates a new photos handler.
func NewPhotosHandler() *PhotosHandler {
	return &PhotosHandler{}
}

// List returns the photos visible under the active filter state.
func (h *PhotosHandler) List(w http.ResponseWriter, r *http.Request) {
	ws := mustGetWorkspace(w, r)
	if ws == nil {
		return
	}

	visible := ws.FilteredPhotos()
	respondJSON(w, http.StatusOK, map[string]any{
		"photos":  visible,
		"visible": len(visible),
		"total":   ws.Store.Len(),
		"filters": ws.Filters(),
	})
}

// Get returns a single photo by id.
func (h *PhotosHandler) Get(w http.ResponseWriter, r *http.Request) {
	ws := mustGetWorkspace(w, r)
	if ws == nil {
		return
	}

	id := chi.URLParam(r, "id")
	photo, ok := ws.Store.Get(id)
	if !ok {
		respondError(w, http.StatusNotFound, "photo not found")
		return
	}
	respondJSON(w, http.StatusOK, photo)
}

// File streams the uploaded original, used as the preview for standard image
// formats.
func (h *PhotosHandler) File(w http.ResponseWriter, r *http.Request) {
	ws := mustGetWorkspace(w, r)
	if ws == nil {
		return
	}

	id := chi.URLParam(r, "id")
	photo, ok := ws.Store.Get(id)
	if !ok {
		respondError(w, http.StatusNotFound, "photo not found")
		return
	}
	if photo.OriginalPath == "" {
		respondError(w, http.StatusNotFound, "photo has no stored payload")
		return
	}
	if _, err := os.Stat(photo.OriginalPath); err != nil {
		respondError(w, http.StatusNotFound, "stored payload is gone")
		return
	}

	http.ServeFile(w, r, photo.OriginalPath)
}

// updatePhotoRequest carries the user-editable photo fields. Pointer fields
// distinguish "not sent" from zero values.
type updatePhotoRequest struct {
	Selected   *bool     `json:"selected,omitempty"`
	ColorLabel *string   `json:"color_label,omitempty"`
	Caption    *string   `json:"caption,omitempty"`
	Tags       *[]string `json:"tags,omitempty"`
	Approved   *bool     `json:"approved,omitempty"`
}

// Update applies a partial edit to one photo.
func (h *PhotosHandler) Update(w http.ResponseWriter, r *http.Request) {
	ws := mustGetWorkspace(w, r)
	if ws == nil {
		return
	}

	var req updatePhotoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	if req.ColorLabel != nil && *req.ColorLabel != "" && !album.ColorLabel(*req.ColorLabel).Valid() {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("unknown color label %q", *req.ColorLabel))
		return
	}

	id := chi.URLParam(r, "id")
	found := ws.Store.Update(id, func(p *album.Photo) {
		if req.Selected != nil {
			p.Selected = *req.Selected
		}
		if req.ColorLabel != nil {
			p.ColorLabel = album.ColorLabel(*req.ColorLabel)
		}
		if req.Caption != nil {
			p.Caption = *req.Caption
		}
		if req.Tags != nil {
			p.Tags = album.NewTagSet(*req.Tags...)
		}
		if req.Approved != nil {
			p.Approved = req.Approved
		}
	})
	if !found {
		respondError(w, http.StatusNotFound, "photo not found")
		return
	}

	photo, _ := ws.Store.Get(id)
	respondJSON(w, http.StatusOK, photo)
}

// SetFilters replaces the active filter state. Clients send the full state;
// omitted star bounds default to unset.
func (h *PhotosHandler) SetFilters(w http.ResponseWriter, r *http.Request) {
	ws := mustGetWorkspace(w, r)
	if ws == nil {
		return
	}

	state := filterview.NewState()
	if err := json.NewDecoder(r.Body).Decode(&state); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	for _, bound := range []float64{state.MinStars, state.MaxStars} {
		if bound >= 0 && bound > 5 {
			respondError(w, http.StatusBadRequest, "star bounds must be within 0-5")
			return
		}
	}
	if state.MinStars >= 0 && state.MaxStars >= 0 && state.MinStars > state.MaxStars {
		respondError(w, http.StatusBadRequest, "min_stars must not exceed max_stars")
		return
	}

	ws.SetFilters(state)

	visible := ws.FilteredPhotos()
	respondJSON(w, http.StatusOK, map[string]any{
		"filters": state,
		"visible": len(visible),
		"total":   ws.Store.Len(),
	})
}

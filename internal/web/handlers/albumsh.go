package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/LullabiesGr/AilbumsV2-sub002/internal/album"
	"github.com/LullabiesGr/AilbumsV2-sub002/internal/backend"
)

// AlbumsHandler handles album persistence endpoints.
type AlbumsHandler struct {
	client *backend.Client // nil when no backend URL is configured
}

// NewAlbumsHandler creates a new albums handler.
func NewAlbumsHandler(client *backend.Client) *AlbumsHandler {
	return &AlbumsHandler{client: client}
}

type saveAlbumRequest struct {
	UserID    string   `json:"user_id"`
	Name      string   `json:"album_name"`
	Title     string   `json:"album_title"`
	EventType string   `json:"event_type"`
	PhotoIDs  []string `json:"photo_ids,omitempty"` // empty = whole workspace
}

// Save submits the workspace (or a chosen subset) to the remote album
// persistence endpoint.
func (h *AlbumsHandler) Save(w http.ResponseWriter, r *http.Request) {
	ws := mustGetWorkspace(w, r)
	if ws == nil {
		return
	}
	if h.client == nil {
		respondError(w, http.StatusPreconditionFailed, "no analysis backend configured")
		return
	}

	var req saveAlbumRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
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
		respondError(w, http.StatusPreconditionFailed, "no photos to save")
		return
	}

	userID := req.UserID
	if userID == "" {
		userID = ws.Workflow.UserID()
	}
	eventType := req.EventType
	if eventType == "" {
		eventType = ws.Workflow.EventType()
	}

	resp, err := h.client.SaveAlbum(r.Context(), backend.SaveAlbumRequest{
		UserID:    userID,
		Name:      req.Name,
		Title:     req.Title,
		EventType: eventType,
		Photos:    photos,
	})
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

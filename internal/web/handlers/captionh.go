package handlers

import (
	"encoding/json"
	"net/http"
	"os"

	"github.com/LullabiesGr/AilbumsV2-sub002/internal/ai"
	"github.com/LullabiesGr/AilbumsV2-sub002/internal/album"
	"github.com/LullabiesGr/AilbumsV2-sub002/internal/config"
)

// CaptionHandler generates captions for photos the analysis pass left without
// one, using whichever vision provider has credentials configured.
type CaptionHandler struct {
	config   *config.Config
	provider ai.Provider // nil when no provider is configured
}

// NewCaptionHandler creates a new caption handler.
func NewCaptionHandler(cfg *config.Config, provider ai.Provider) *CaptionHandler {
	return &CaptionHandler{config: cfg, provider: provider}
}

type captionRequest struct {
	PhotoID string `json:"photo_id"`
}

// Caption generates and stores a caption for one photo.
func (h *CaptionHandler) Caption(w http.ResponseWriter, r *http.Request) {
	ws := mustGetWorkspace(w, r)
	if ws == nil {
		return
	}
	if h.provider == nil {
		respondError(w, http.StatusPreconditionFailed, "no caption provider configured")
		return
	}

	var req captionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	photo, ok := ws.Store.Get(req.PhotoID)
	if !ok {
		respondError(w, http.StatusNotFound, "photo not found")
		return
	}
	if photo.Tags.Has(album.TagRaw) {
		respondError(w, http.StatusPreconditionFailed, "RAW files cannot be captioned before conversion")
		return
	}

	data, err := os.ReadFile(photo.OriginalPath)
	if err != nil {
		respondError(w, http.StatusNotFound, "stored payload is gone")
		return
	}

	eventType := ws.Workflow.EventType()
	var vocab []string
	if et, ok := h.config.Events.Types[eventType]; ok {
		vocab = et.Highlights
	}

	caption, err := h.provider.CaptionPhoto(r.Context(), data, eventType, vocab)
	if err != nil {
		respondError(w, http.StatusBadGateway, err.Error())
		return
	}

	ws.Store.Update(photo.ID, func(p *album.Photo) {
		p.Caption = caption.Caption
		if len(caption.Highlights) > 0 {
			p.Highlights = caption.Highlights
		}
		if len(caption.Flags) > 0 {
			p.Flags = caption.Flags
		}
	})

	updated, _ := ws.Store.Get(photo.ID)
	respondJSON(w, http.StatusOK, map[string]any{
		"photo":    updated,
		"provider": h.provider.Name(),
		"usage":    h.provider.GetUsage(),
	})
}

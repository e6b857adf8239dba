package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"slices"

	"github.com/LullabiesGr/AilbumsV2-sub002/internal/album"
	"github.com/LullabiesGr/AilbumsV2-sub002/internal/backend"
	"github.com/LullabiesGr/AilbumsV2-sub002/internal/database"
	"github.com/LullabiesGr/AilbumsV2-sub002/internal/duplicates"
)

// EmbeddingCache is the slice of the embedding repository duplicate search
// needs: bulk lookup of cached signatures by filename.
type EmbeddingCache interface {
	GetMany(ctx context.Context, filenames []string) (map[string]*database.StoredEmbedding, error)
}

// DuplicatesHandler handles duplicate detection and resolution endpoints.
// Detection goes through the backend when one is configured and falls back to
// the local HNSW engine otherwise.
type DuplicatesHandler struct {
	client *backend.Client // nil when no backend URL is configured
	cache  EmbeddingCache  // nil when no database is configured
	finder *duplicates.LocalFinder
}

// NewDuplicatesHandler creates a new duplicates handler.
func NewDuplicatesHandler(client *backend.Client, cache EmbeddingCache) *DuplicatesHandler {
	return &DuplicatesHandler{
		client: client,
		cache:  cache,
		finder: duplicates.NewLocalFinder(),
	}
}

// fillFromCache fills missing embeddings from the persistent cache so
// duplicate search can run before (or without) a full analysis pass. Cache
// failures are logged and ignored; detection then sees fewer signals.
func (h *DuplicatesHandler) fillFromCache(ctx context.Context, store *album.Store) {
	if h.cache == nil {
		return
	}

	var missing []string
	for _, p := range store.List() {
		if len(p.Embedding) == 0 {
			missing = append(missing, p.Filename)
		}
	}
	if len(missing) == 0 {
		return
	}

	cached, err := h.cache.GetMany(ctx, missing)
	if err != nil {
		log.Printf("embedding cache lookup failed: %v", err)
		return
	}
	for name, emb := range cached {
		emb := emb
		store.UpdateByFilename(name, func(p *album.Photo) {
			p.Embedding = emb.Embedding
			if p.PHash == "" {
				p.PHash = emb.PHash
			}
		})
	}
}

// Find runs duplicate detection over the workspace and reconciles the
// per-photo duplicate marks with the result.
func (h *DuplicatesHandler) Find(w http.ResponseWriter, r *http.Request) {
	ws := mustGetWorkspace(w, r)
	if ws == nil {
		return
	}

	h.fillFromCache(r.Context(), ws.Store)

	entries, err := duplicates.CollectEntries(ws.Store.List())
	if err != nil {
		respondDomainError(w, err)
		return
	}

	var clusters []duplicates.Cluster
	if h.client != nil {
		clusters, err = h.client.FindDuplicates(r.Context(), entries)
		if err != nil {
			respondDomainError(w, err)
			return
		}
	} else {
		clusters = h.finder.Find(entries)
	}

	ws.SetClusters(clusters)

	marked := 0
	for _, p := range ws.Store.List() {
		if p.IsDuplicate {
			marked++
		}
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"clusters": clusters,
		"marked":   marked,
		"source":   h.sourceName(),
	})
}

func (h *DuplicatesHandler) sourceName() string {
	if h.client != nil {
		return "backend"
	}
	return "local"
}

type keepRequest struct {
	Group []string `json:"group"`
	Keep  string   `json:"keep"`
}

// Keep marks one member of a duplicate group as the keeper (green) and the
// rest as rejects (red).
func (h *DuplicatesHandler) Keep(w http.ResponseWriter, r *http.Request) {
	ws := mustGetWorkspace(w, r)
	if ws == nil {
		return
	}

	var req keepRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if len(req.Group) == 0 {
		respondError(w, http.StatusBadRequest, "group must not be empty")
		return
	}
	if !slices.Contains(req.Group, req.Keep) {
		respondError(w, http.StatusBadRequest, "keep must name a member of the group")
		return
	}

	duplicates.MarkKeep(ws.Store, req.Group, req.Keep)
	respondJSON(w, http.StatusOK, map[string]any{"kept": req.Keep, "group": req.Group})
}

type deleteGroupRequest struct {
	Group []string `json:"group"`
}

// Delete removes every member of a duplicate group from the workspace.
func (h *DuplicatesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ws := mustGetWorkspace(w, r)
	if ws == nil {
		return
	}

	var req deleteGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if len(req.Group) == 0 {
		respondError(w, http.StatusBadRequest, "group must not be empty")
		return
	}

	removed := duplicates.DeleteGroup(ws.Store, req.Group)
	respondJSON(w, http.StatusOK, map[string]any{
		"removed": removed,
		"total":   ws.Store.Len(),
	})
}

package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/LullabiesGr/AilbumsV2-sub002/internal/album"
	"github.com/LullabiesGr/AilbumsV2-sub002/internal/database"
)

// nearIdenticalEmbeddings returns two almost-parallel unit vectors and one
// pointing elsewhere, so the local finder clusters the first two only.
func nearIdenticalEmbeddings() (a, b, c []float32) {
	a = make([]float32, 512)
	b = make([]float32, 512)
	c = make([]float32, 512)
	a[0] = 1
	b[0] = 0.999
	b[1] = 0.04
	c[5] = 1
	return a, b, c
}

func TestDuplicatesFind_LocalFinder(t *testing.T) {
	h := NewDuplicatesHandler(nil, nil)
	ws := testWorkspace(nil)

	embA, embB, embC := nearIdenticalEmbeddings()
	ws.Store.Add(album.Photo{ID: "p1", Filename: "a.jpg", Embedding: embA, PHash: "aabbccdd00112233"})
	ws.Store.Add(album.Photo{ID: "p2", Filename: "b.jpg", Embedding: embB, PHash: "aabbccdd00112234"})
	ws.Store.Add(album.Photo{ID: "p3", Filename: "c.jpg", Embedding: embC, PHash: "ffeeddcc99887766"})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/duplicates/find", nil)
	req = requestWithWorkspace(t, req, ws)
	rec := httptest.NewRecorder()

	h.Find(rec, req)

	assertStatusCode(t, rec, http.StatusOK)

	var result struct {
		Marked int    `json:"marked"`
		Source string `json:"source"`
	}
	parseJSONResponse(t, rec, &result)
	if result.Source != "local" {
		t.Errorf("expected local source, got %s", result.Source)
	}
	if result.Marked != 2 {
		t.Errorf("expected 2 marked duplicates, got %d", result.Marked)
	}

	p3, _ := ws.Store.Get("p3")
	if p3.IsDuplicate {
		t.Error("expected distinct photo not marked as duplicate")
	}
}

func TestDuplicatesFind_NoSignals(t *testing.T) {
	h := NewDuplicatesHandler(nil, nil)
	ws := testWorkspace(nil)
	ws.Store.Add(album.Photo{ID: "p1", Filename: "a.jpg"}) // no embedding, no phash

	req := httptest.NewRequest(http.MethodPost, "/api/v1/duplicates/find", nil)
	req = requestWithWorkspace(t, req, ws)
	rec := httptest.NewRecorder()

	h.Find(rec, req)

	assertStatusCode(t, rec, http.StatusPreconditionFailed)
}

func TestDuplicatesFind_Backend(t *testing.T) {
	server := setupMockBackendServer(t, map[string]http.HandlerFunc{
		"/find_duplicates": func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]any{
				"duplicates": []map[string]any{
					{"filename": "a.jpg", "clip_duplicates": []string{"b.jpg"}, "phash_duplicates": []string{}},
				},
			})
		},
	})
	defer server.Close()

	h := NewDuplicatesHandler(createBackendClient(t, server), nil)
	ws := testWorkspace(nil)

	emb := make([]float32, 512)
	emb[0] = 1
	ws.Store.Add(album.Photo{ID: "p1", Filename: "a.jpg", Embedding: emb, PHash: "aa"})
	ws.Store.Add(album.Photo{ID: "p2", Filename: "b.jpg", Embedding: emb, PHash: "ab"})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/duplicates/find", nil)
	req = requestWithWorkspace(t, req, ws)
	rec := httptest.NewRecorder()

	h.Find(rec, req)

	assertStatusCode(t, rec, http.StatusOK)

	var result struct {
		Marked int    `json:"marked"`
		Source string `json:"source"`
	}
	parseJSONResponse(t, rec, &result)
	if result.Source != "backend" {
		t.Errorf("expected backend source, got %s", result.Source)
	}
	if result.Marked != 2 {
		t.Errorf("expected both cluster members marked, got %d", result.Marked)
	}
}

func TestDuplicatesKeep(t *testing.T) {
	h := NewDuplicatesHandler(nil, nil)
	ws := testWorkspace(nil)
	ws.Store.Add(album.Photo{ID: "p1", Filename: "a.jpg", IsDuplicate: true})
	ws.Store.Add(album.Photo{ID: "p2", Filename: "b.jpg", IsDuplicate: true})

	body := `{"group": ["a.jpg", "b.jpg"], "keep": "a.jpg"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/duplicates/keep", strings.NewReader(body))
	req = requestWithWorkspace(t, req, ws)
	rec := httptest.NewRecorder()

	h.Keep(rec, req)

	assertStatusCode(t, rec, http.StatusOK)

	kept, _ := ws.Store.ByFilename("a.jpg")
	if kept.ColorLabel != album.LabelGreen {
		t.Errorf("expected keeper labeled green, got %s", kept.ColorLabel)
	}
	rejected, _ := ws.Store.ByFilename("b.jpg")
	if rejected.ColorLabel != album.LabelRed {
		t.Errorf("expected reject labeled red, got %s", rejected.ColorLabel)
	}
}

func TestDuplicatesKeep_NotInGroup(t *testing.T) {
	h := NewDuplicatesHandler(nil, nil)
	ws := testWorkspace(nil)

	body := `{"group": ["a.jpg", "b.jpg"], "keep": "c.jpg"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/duplicates/keep", strings.NewReader(body))
	req = requestWithWorkspace(t, req, ws)
	rec := httptest.NewRecorder()

	h.Keep(rec, req)

	assertStatusCode(t, rec, http.StatusBadRequest)
	assertJSONError(t, rec, "keep must name a member of the group")
}

func TestDuplicatesDelete(t *testing.T) {
	h := NewDuplicatesHandler(nil, nil)
	ws := testWorkspace(nil)
	ws.Store.Add(album.Photo{ID: "p1", Filename: "a.jpg"})
	ws.Store.Add(album.Photo{ID: "p2", Filename: "b.jpg"})
	ws.Store.Add(album.Photo{ID: "p3", Filename: "c.jpg"})

	body := `{"group": ["a.jpg", "b.jpg"]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/duplicates/delete", strings.NewReader(body))
	req = requestWithWorkspace(t, req, ws)
	rec := httptest.NewRecorder()

	h.Delete(rec, req)

	assertStatusCode(t, rec, http.StatusOK)

	var result struct {
		Removed int `json:"removed"`
		Total   int `json:"total"`
	}
	parseJSONResponse(t, rec, &result)
	if result.Removed != 2 || result.Total != 1 {
		t.Errorf("expected 2 removed with 1 remaining, got %d/%d", result.Removed, result.Total)
	}
}

// fakeEmbeddingCache serves canned stored embeddings by filename.
type fakeEmbeddingCache struct {
	entries map[string]*database.StoredEmbedding
}

func (f *fakeEmbeddingCache) GetMany(ctx context.Context, filenames []string) (map[string]*database.StoredEmbedding, error) {
	result := make(map[string]*database.StoredEmbedding)
	for _, name := range filenames {
		if e, ok := f.entries[name]; ok {
			result[name] = e
		}
	}
	return result, nil
}

func TestDuplicatesFind_FillsEmbeddingsFromCache(t *testing.T) {
	embA, embB, _ := nearIdenticalEmbeddings()
	cache := &fakeEmbeddingCache{entries: map[string]*database.StoredEmbedding{
		"a.jpg": {Filename: "a.jpg", Embedding: embA, PHash: "aabbccdd00112233"},
		"b.jpg": {Filename: "b.jpg", Embedding: embB, PHash: "aabbccdd00112234"},
	}}
	h := NewDuplicatesHandler(nil, cache)
	ws := testWorkspace(nil)

	// photos uploaded but never analyzed: no embeddings yet
	ws.Store.Add(album.Photo{ID: "p1", Filename: "a.jpg", PHash: "aabbccdd00112233"})
	ws.Store.Add(album.Photo{ID: "p2", Filename: "b.jpg", PHash: "aabbccdd00112234"})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/duplicates/find", nil)
	req = requestWithWorkspace(t, req, ws)
	rec := httptest.NewRecorder()

	h.Find(rec, req)

	assertStatusCode(t, rec, http.StatusOK)

	var result struct {
		Marked int `json:"marked"`
	}
	parseJSONResponse(t, rec, &result)
	if result.Marked != 2 {
		t.Errorf("expected cached embeddings to enable detection, got %d marked", result.Marked)
	}

	warmed, _ := ws.Store.Get("p1")
	if len(warmed.Embedding) == 0 {
		t.Error("expected embedding filled from cache")
	}
}

package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/LullabiesGr/AilbumsV2-sub002/internal/album"
	"github.com/LullabiesGr/AilbumsV2-sub002/internal/duplicates"
	"github.com/LullabiesGr/AilbumsV2-sub002/internal/workflow"
)

func writeFixture(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("image bytes"), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	return path
}

func TestNew(t *testing.T) {
	c, err := New("http://localhost:8001/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := c.resolveURL("analyze"); got != "http://localhost:8001/analyze" {
		t.Errorf("unexpected resolved URL: %s", got)
	}

	for _, bad := range []string{"", "not a url", "localhost:8001"} {
		if _, err := New(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestAnalyze(t *testing.T) {
	var inFlight, maxInFlight int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cur := atomic.AddInt64(&inFlight, 1)
		defer atomic.AddInt64(&inFlight, -1)
		for {
			old := atomic.LoadInt64(&maxInFlight)
			if cur <= old || atomic.CompareAndSwapInt64(&maxInFlight, old, cur) {
				break
			}
		}

		if r.URL.Path != "/analyze" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			t.Errorf("parsing multipart: %v", err)
		}
		if got := r.FormValue("culling_mode"); got != "fast" {
			t.Errorf("expected culling_mode fast, got %s", got)
		}
		if got := r.FormValue("user_id"); got != "u1" {
			t.Errorf("expected user_id u1, got %s", got)
		}
		if _, _, err := r.FormFile("file"); err != nil {
			t.Errorf("expected a file part: %v", err)
		}

		filename := r.FormValue("filename")
		json.NewEncoder(w).Encode(map[string]any{
			"filename":  filename,
			"ai_score":  8.5,
			"tags":      []string{"culled"},
			"embedding": []float32{0.1, 0.2},
			"phash":     "00000000000000ff",
		})
	}))
	defer server.Close()

	c, _ := New(server.URL)
	photos := []album.Photo{
		{ID: "p1", Filename: "a.jpg", OriginalPath: writeFixture(t, "a.jpg"), Selected: true},
		{ID: "p2", Filename: "b.jpg", OriginalPath: writeFixture(t, "b.jpg")},
		{ID: "p3", Filename: "c.jpg", OriginalPath: writeFixture(t, "c.jpg")},
	}

	var mu sync.Mutex
	var progress []int
	final, err := c.Analyze(context.Background(), photos, AnalyzeOptions{
		Mode:   workflow.ModeFast,
		UserID: "u1",
		OnProgress: func(processed int, filename string, updated *album.Photo) {
			mu.Lock()
			progress = append(progress, processed)
			mu.Unlock()
			if updated == nil {
				t.Errorf("expected updated record for %s", filename)
			}
		},
	})
	if err != nil {
		t.Fatalf("analyze failed: %v", err)
	}

	if len(final) != 3 {
		t.Fatalf("expected 3 photos, got %d", len(final))
	}
	// input order preserved, identity and UI-local state kept
	if final[0].ID != "p1" || final[0].Filename != "a.jpg" {
		t.Errorf("unexpected first record: %+v", final[0])
	}
	if !final[0].Selected {
		t.Error("expected UI-local selection preserved through merge")
	}
	if final[0].AIScore != 8.5 || !final[0].Tags.Has(album.TagCulled) {
		t.Errorf("expected backend fields merged, got %+v", final[0])
	}
	if final[0].PHash != "00000000000000ff" || len(final[0].Embedding) != 2 {
		t.Errorf("expected similarity signals stored, got %+v", final[0])
	}

	if len(progress) != 3 || progress[len(progress)-1] != 3 {
		t.Errorf("expected 3 monotonic progress calls, got %v", progress)
	}
	if atomic.LoadInt64(&maxInFlight) > AnalyzeConcurrency {
		t.Errorf("expected at most %d in-flight requests, saw %d", AnalyzeConcurrency, maxInFlight)
	}
}

func TestAnalyze_DeepModeEndpoint(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/deep-analyze" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		fmt.Fprint(w, `{"filename":"a.jpg","ai_score":6}`)
	}))
	defer server.Close()

	c, _ := New(server.URL)
	_, err := c.Analyze(context.Background(), []album.Photo{
		{ID: "p1", Filename: "a.jpg", OriginalPath: writeFixture(t, "a.jpg")},
	}, AnalyzeOptions{Mode: workflow.ModeDeep})
	if err != nil {
		t.Fatalf("analyze failed: %v", err)
	}
}

func TestAnalyze_ManualModeRejected(t *testing.T) {
	c, _ := New("http://localhost:1")
	_, err := c.Analyze(context.Background(), nil, AnalyzeOptions{Mode: workflow.ModeManual})
	if err == nil {
		t.Error("expected error for a mode without an endpoint")
	}
}

func TestAnalyze_RejectionFailsBatch(t *testing.T) {
	var calls int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt64(&calls, 1) == 1 {
			w.WriteHeader(http.StatusUnprocessableEntity)
			fmt.Fprint(w, `{"detail":"unsupported image"}`)
			return
		}
		fmt.Fprint(w, `{"filename":"x","ai_score":5}`)
	}))
	defer server.Close()

	c, _ := New(server.URL)
	photos := []album.Photo{
		{ID: "p1", Filename: "a.jpg", OriginalPath: writeFixture(t, "a.jpg")},
		{ID: "p2", Filename: "b.jpg", OriginalPath: writeFixture(t, "b.jpg")},
	}

	_, err := c.Analyze(context.Background(), photos, AnalyzeOptions{Mode: workflow.ModeFast})
	var serr *ServiceError
	if !errors.As(err, &serr) {
		t.Fatalf("expected service error, got %v", err)
	}
	if serr.StatusCode != http.StatusUnprocessableEntity || serr.Body != "unsupported image" {
		t.Errorf("unexpected service error: %+v", serr)
	}
}

func TestFindDuplicates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/find_duplicates" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req struct {
			Filenames []string    `json:"filenames"`
			Hashes    []string    `json:"phashes"`
			Embedding [][]float32 `json:"embeddings"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		if len(req.Filenames) != 2 || req.Filenames[0] != "a.jpg" {
			t.Errorf("unexpected filenames: %v", req.Filenames)
		}
		fmt.Fprint(w, `{"duplicates":[{"filename":"a.jpg","clip_duplicates":["b.jpg"]}]}`)
	}))
	defer server.Close()

	c, _ := New(server.URL)
	clusters, err := c.FindDuplicates(context.Background(), []duplicates.Entry{
		{Filename: "a.jpg", Embedding: []float32{1}, PHash: "01"},
		{Filename: "b.jpg", Embedding: []float32{1}, PHash: "02"},
	})
	if err != nil {
		t.Fatalf("find duplicates failed: %v", err)
	}
	if len(clusters) != 1 || clusters[0].Anchor != "a.jpg" {
		t.Errorf("unexpected clusters: %+v", clusters)
	}
}

func TestCull(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/cull" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req struct {
			Photos []struct {
				Filename string `json:"filename"`
			} `json:"photos"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		if len(req.Photos) != 2 {
			t.Errorf("expected 2 photos submitted, got %d", len(req.Photos))
		}
		fmt.Fprint(w, `{"photos":[{"filename":"a.jpg","ai_score":9,"tags":["culled"],"color_label":"green"}]}`)
	}))
	defer server.Close()

	c, _ := New(server.URL)
	photos := []album.Photo{
		{ID: "p1", Filename: "a.jpg"},
		{ID: "p2", Filename: "b.jpg", AIScore: 3},
	}

	out, err := c.Cull(context.Background(), photos)
	if err != nil {
		t.Fatalf("cull failed: %v", err)
	}
	if out[0].AIScore != 9 || out[0].ColorLabel != album.LabelGreen {
		t.Errorf("expected backend record merged, got %+v", out[0])
	}
	// unmentioned photo passes through unchanged
	if out[1].AIScore != 3 || out[1].ColorLabel != "" {
		t.Errorf("expected unmentioned photo untouched, got %+v", out[1])
	}
}

func TestBatchProcess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/batch_process" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			t.Errorf("parsing multipart: %v", err)
		}
		if got := r.FormValue("mode"); got != "autofix" {
			t.Errorf("expected mode autofix, got %s", got)
		}
		if len(r.MultipartForm.File["files"]) != 1 {
			t.Errorf("expected 1 file part, got %d", len(r.MultipartForm.File["files"]))
		}
		fmt.Fprint(w, `{"results":[{"filename":"a.jpg","image_base64":"aGVsbG8="}]}`)
	}))
	defer server.Close()

	c, _ := New(server.URL)
	results, err := c.BatchProcess(context.Background(), []string{writeFixture(t, "a.jpg")}, BatchAutofix)
	if err != nil {
		t.Fatalf("batch process failed: %v", err)
	}
	if len(results) != 1 || results[0].Filename != "a.jpg" {
		t.Errorf("unexpected results: %+v", results)
	}
}

func TestBatchProcess_UnknownMode(t *testing.T) {
	c, _ := New("http://localhost:1")
	if _, err := c.BatchProcess(context.Background(), nil, BatchMode("sharpen")); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestSaveAlbum(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/save_album" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			t.Errorf("parsing multipart: %v", err)
		}
		var meta struct {
			UserID string `json:"user_id"`
			Title  string `json:"album_title"`
			Photos []struct {
				Filename string `json:"filename"`
			} `json:"photos"`
		}
		if err := json.Unmarshal([]byte(r.FormValue("metadata")), &meta); err != nil {
			t.Errorf("decoding metadata: %v", err)
		}
		if meta.UserID != "u1" || meta.Title != "Summer Wedding" || len(meta.Photos) != 1 {
			t.Errorf("unexpected metadata: %+v", meta)
		}
		fmt.Fprint(w, `{"album_id":"alb-1","saved":1}`)
	}))
	defer server.Close()

	c, _ := New(server.URL)
	resp, err := c.SaveAlbum(context.Background(), SaveAlbumRequest{
		UserID:    "u1",
		Title:     "Summer Wedding",
		EventType: "wedding",
		Photos: []album.Photo{
			{Filename: "a.jpg", OriginalPath: writeFixture(t, "a.jpg"), AIScore: 8},
		},
	})
	if err != nil {
		t.Fatalf("save album failed: %v", err)
	}
	if resp.AlbumID != "alb-1" || resp.Saved != 1 {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestSaveAlbum_EmptyTitle(t *testing.T) {
	c, _ := New("http://localhost:1")
	_, err := c.SaveAlbum(context.Background(), SaveAlbumRequest{UserID: "u1"})
	var verr *album.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if verr.Field != "album_title" {
		t.Errorf("unexpected field: %s", verr.Field)
	}
}

func TestServiceError_PlainTextBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, "backend exploded")
	}))
	defer server.Close()

	c, _ := New(server.URL)
	_, err := c.FindDuplicates(context.Background(), nil)
	var serr *ServiceError
	if !errors.As(err, &serr) {
		t.Fatalf("expected service error, got %v", err)
	}
	if serr.Body != "backend exploded" {
		t.Errorf("unexpected body: %q", serr.Body)
	}
}

func TestServiceError_Unreachable(t *testing.T) {
	c, _ := New("http://127.0.0.1:1")
	_, err := c.FindDuplicates(context.Background(), nil)
	var serr *ServiceError
	if !errors.As(err, &serr) {
		t.Errorf("expected service error for connection failure, got %v", err)
	}
}

package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/LullabiesGr/AilbumsV2-sub002/internal/ai"
	"github.com/LullabiesGr/AilbumsV2-sub002/internal/album"
)

// fakeProvider is a canned ai.Provider for handler tests.
type fakeProvider struct {
	caption *ai.Caption
	err     error

	gotEventType string
	gotVocab     []string
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) CaptionPhoto(ctx context.Context, imageData []byte, eventType string, highlightVocab []string) (*ai.Caption, error) {
	f.gotEventType = eventType
	f.gotVocab = highlightVocab
	if f.err != nil {
		return nil, f.err
	}
	return f.caption, nil
}

func (f *fakeProvider) GetUsage() *ai.Usage { return &ai.Usage{} }
func (f *fakeProvider) ResetUsage()         {}

func TestCaption_NoProvider(t *testing.T) {
	h := NewCaptionHandler(testConfig(), nil)
	ws := testWorkspace(nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/photos/caption", strings.NewReader(`{"photo_id": "p1"}`))
	req = requestWithWorkspace(t, req, ws)
	rec := httptest.NewRecorder()

	h.Caption(rec, req)

	assertStatusCode(t, rec, http.StatusPreconditionFailed)
	assertJSONError(t, rec, "no caption provider configured")
}

func TestCaption_StoresResult(t *testing.T) {
	provider := &fakeProvider{caption: &ai.Caption{
		Caption:    "bride and groom exchanging rings",
		Highlights: []string{"ring exchange"},
	}}
	h := NewCaptionHandler(testConfig(), provider)
	ws := testWorkspace(nil)
	ws.Workflow.Configure("fast", "wedding", "user-1")

	path := filepath.Join(t.TempDir(), "a.jpg")
	if err := os.WriteFile(path, []byte("jpeg bytes"), 0o600); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	ws.Store.Add(album.Photo{ID: "p1", Filename: "a.jpg", OriginalPath: path})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/photos/caption", strings.NewReader(`{"photo_id": "p1"}`))
	req = requestWithWorkspace(t, req, ws)
	rec := httptest.NewRecorder()

	h.Caption(rec, req)

	assertStatusCode(t, rec, http.StatusOK)

	if provider.gotEventType != "wedding" {
		t.Errorf("expected wedding event context, got %s", provider.gotEventType)
	}
	if len(provider.gotVocab) == 0 {
		t.Error("expected highlight vocabulary passed to the provider")
	}

	photo, _ := ws.Store.Get("p1")
	if photo.Caption != "bride and groom exchanging rings" {
		t.Errorf("expected caption stored, got %q", photo.Caption)
	}
	if len(photo.Highlights) != 1 || photo.Highlights[0] != "ring exchange" {
		t.Errorf("expected highlights stored, got %v", photo.Highlights)
	}
}

func TestCaption_RawRefused(t *testing.T) {
	h := NewCaptionHandler(testConfig(), &fakeProvider{caption: &ai.Caption{}})
	ws := testWorkspace(nil)

	photo := album.Photo{ID: "p1", Filename: "a.cr2"}
	photo.Tags.Add(album.TagRaw)
	ws.Store.Add(photo)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/photos/caption", strings.NewReader(`{"photo_id": "p1"}`))
	req = requestWithWorkspace(t, req, ws)
	rec := httptest.NewRecorder()

	h.Caption(rec, req)

	assertStatusCode(t, rec, http.StatusPreconditionFailed)
}

func TestCaption_ProviderFailure(t *testing.T) {
	h := NewCaptionHandler(testConfig(), &fakeProvider{err: errors.New("model overloaded")})
	ws := testWorkspace(nil)

	path := filepath.Join(t.TempDir(), "a.jpg")
	if err := os.WriteFile(path, []byte("jpeg bytes"), 0o600); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	ws.Store.Add(album.Photo{ID: "p1", Filename: "a.jpg", OriginalPath: path})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/photos/caption", strings.NewReader(`{"photo_id": "p1"}`))
	req = requestWithWorkspace(t, req, ws)
	rec := httptest.NewRecorder()

	h.Caption(rec, req)

	assertStatusCode(t, rec, http.StatusBadGateway)
}

func TestCaption_PhotoNotFound(t *testing.T) {
	h := NewCaptionHandler(testConfig(), &fakeProvider{caption: &ai.Caption{}})
	ws := testWorkspace(nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/photos/caption", strings.NewReader(`{"photo_id": "ghost"}`))
	req = requestWithWorkspace(t, req, ws)
	rec := httptest.NewRecorder()

	h.Caption(rec, req)

	assertStatusCode(t, rec, http.StatusNotFound)
}

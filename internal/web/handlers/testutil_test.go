package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/LullabiesGr/AilbumsV2-sub002/internal/analysis"
	"github.com/LullabiesGr/AilbumsV2-sub002/internal/backend"
	"github.com/LullabiesGr/AilbumsV2-sub002/internal/config"
	"github.com/LullabiesGr/AilbumsV2-sub002/internal/session"
	"github.com/LullabiesGr/AilbumsV2-sub002/internal/web/middleware"
)

// testConfig creates a minimal config for testing.
func testConfig() *config.Config {
	return config.Load()
}

// testWorkspace creates a workspace bound to the given analyzer (may be nil).
func testWorkspace(analyzer analysis.Analyzer) *session.Workspace {
	return session.NewWorkspace(analyzer)
}

// requestWithWorkspace creates a request with a workspace session in context.
func requestWithWorkspace(t *testing.T, r *http.Request, ws *session.Workspace) *http.Request {
	t.Helper()
	s := &session.Session{ID: "test-session", Workspace: ws}
	ctx := middleware.SetSessionInContext(r.Context(), s)
	return r.WithContext(ctx)
}

// requestWithSession creates a request carrying an existing session.
func requestWithSession(t *testing.T, r *http.Request, s *session.Session) *http.Request {
	t.Helper()
	ctx := middleware.SetSessionInContext(r.Context(), s)
	return r.WithContext(ctx)
}

// requestWithChiParams creates a request with chi URL parameters.
func requestWithChiParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// setupMockBackendServer creates a mock AI backend server for handler tests.
func setupMockBackendServer(t *testing.T, handlers map[string]http.HandlerFunc) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	for pattern, handler := range handlers {
		mux.HandleFunc(pattern, handler)
	}
	return httptest.NewServer(mux)
}

// createBackendClient creates a backend client connected to a mock server.
func createBackendClient(t *testing.T, server *httptest.Server) *backend.Client {
	t.Helper()
	client, err := backend.New(server.URL)
	if err != nil {
		t.Fatalf("failed to create backend client: %v", err)
	}
	return client
}

// parseJSONResponse parses a JSON response body into the target type.
func parseJSONResponse(t *testing.T, recorder *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(recorder.Body.Bytes(), target); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nBody: %s", err, recorder.Body.String())
	}
}

// assertStatusCode checks if the response has the expected status code.
func assertStatusCode(t *testing.T, recorder *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if recorder.Code != expected {
		t.Errorf("expected status %d, got %d\nBody: %s", expected, recorder.Code, recorder.Body.String())
	}
}

// assertJSONError checks if the response is a JSON error with the expected message.
func assertJSONError(t *testing.T, recorder *httptest.ResponseRecorder, expectedMessage string) {
	t.Helper()
	var result map[string]string
	if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse error response: %v\nBody: %s", err, recorder.Body.String())
	}
	if result["error"] != expectedMessage {
		t.Errorf("expected error '%s', got '%s'", expectedMessage, result["error"])
	}
}

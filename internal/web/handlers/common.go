package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/LullabiesGr/AilbumsV2-sub002/internal/album"
	"github.com/LullabiesGr/AilbumsV2-sub002/internal/backend"
	"github.com/LullabiesGr/AilbumsV2-sub002/internal/session"
	"github.com/LullabiesGr/AilbumsV2-sub002/internal/web/middleware"
	"github.com/LullabiesGr/AilbumsV2-sub002/internal/workflow"
)

// errInvalidRequestBody is a shared error message for invalid JSON request bodies.
const errInvalidRequestBody = "invalid request body"

// sanitizeForLog removes newlines and carriage returns to prevent log injection.
func sanitizeForLog(s string) string {
	return strings.NewReplacer("\n", "", "\r", "").Replace(s)
}

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondDomainError maps domain error types onto HTTP statuses: validation
// problems are 400, unmet preconditions 412, illegal stage transitions 409 and
// backend failures 502.
func respondDomainError(w http.ResponseWriter, err error) {
	var validationErr *album.ValidationError
	var preconditionErr *album.PreconditionError
	var serviceErr *backend.ServiceError

	switch {
	case errors.As(err, &validationErr):
		respondError(w, http.StatusBadRequest, validationErr.Error())
	case errors.As(err, &preconditionErr):
		respondError(w, http.StatusPreconditionFailed, preconditionErr.Error())
	case errors.Is(err, workflow.ErrInvalidTransition):
		respondError(w, http.StatusConflict, err.Error())
	case errors.As(err, &serviceErr):
		respondError(w, http.StatusBadGateway, serviceErr.Error())
	default:
		respondError(w, http.StatusInternalServerError, err.Error())
	}
}

// mustGetWorkspace returns the request workspace or writes a 500 and returns
// nil. The session middleware guarantees a workspace on all API routes.
func mustGetWorkspace(w http.ResponseWriter, r *http.Request) *session.Workspace {
	ws := middleware.GetWorkspace(r.Context())
	if ws == nil {
		respondError(w, http.StatusInternalServerError, "no workspace in request context")
	}
	return ws
}

// HealthCheck handles the health check endpoint.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

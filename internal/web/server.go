// Package web exposes the culling workspace over an HTTP API. Every request
// is bound to a per-browser session workspace; state lives in memory and dies
// with the session.
package web

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/LullabiesGr/AilbumsV2-sub002/internal/ai"
	"github.com/LullabiesGr/AilbumsV2-sub002/internal/analysis"
	"github.com/LullabiesGr/AilbumsV2-sub002/internal/backend"
	"github.com/LullabiesGr/AilbumsV2-sub002/internal/config"
	"github.com/LullabiesGr/AilbumsV2-sub002/internal/database/postgres"
	"github.com/LullabiesGr/AilbumsV2-sub002/internal/session"
	"github.com/LullabiesGr/AilbumsV2-sub002/internal/web/middleware"
)

// sessionSweepInterval is how often expired sessions are dropped.
const sessionSweepInterval = 15 * time.Minute

// Server represents the web server.
type Server struct {
	config         *config.Config
	router         *chi.Mux
	httpServer     *http.Server
	sessionManager *session.Manager
	backendClient  *backend.Client               // nil when no backend URL is configured
	aiProvider     ai.Provider                   // nil when no provider credentials are set
	embeddings     *postgres.EmbeddingRepository // nil when no database is configured
	sweepStop      chan struct{}
}

// NewServer creates a new web server. backendClient, aiProvider and embeddings
// may be nil; the affected endpoints then report precondition failures or fall
// back to local behavior.
func NewServer(cfg *config.Config, port int, host string, sessionSecret string, backendClient *backend.Client, aiProvider ai.Provider, embeddings *postgres.EmbeddingRepository) *Server {
	r := chi.NewRouter()

	sessionManager := session.NewManager(sessionSecret, func() *session.Workspace {
		var analyzer analysis.Analyzer
		if backendClient != nil {
			analyzer = backendClient
		}
		return session.NewWorkspace(analyzer)
	})

	s := &Server{
		config:         cfg,
		router:         r,
		sessionManager: sessionManager,
		backendClient:  backendClient,
		aiProvider:     aiProvider,
		embeddings:     embeddings,
		sweepStop:      make(chan struct{}),
	}

	// Set up middleware stack
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(5 * time.Minute))
	r.Use(middleware.CORS())

	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", host, port),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute, // Long timeout for SSE and uploads
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Start starts the HTTP server and the session sweep loop.
func (s *Server) Start() error {
	go s.sweepLoop()

	log.Printf("Starting web server on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

func (s *Server) sweepLoop() {
	ticker := time.NewTicker(sessionSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.sweepStop:
			return
		case <-ticker.C:
			if removed := s.sessionManager.Sweep(); removed > 0 {
				log.Printf("Dropped %d expired sessions", removed)
			}
		}
	}
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down web server...")

	close(s.sweepStop)

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	return nil
}

// Router returns the chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// SessionManager returns the session manager for testing.
func (s *Server) SessionManager() *session.Manager {
	return s.sessionManager
}

package web

import (
	"github.com/go-chi/chi/v5"

	"github.com/LullabiesGr/AilbumsV2-sub002/internal/web/handlers"
	"github.com/LullabiesGr/AilbumsV2-sub002/internal/web/middleware"
	"github.com/LullabiesGr/AilbumsV2-sub002/internal/web/static"
)

func (s *Server) setupRoutes() {
	sessionHandler := handlers.NewSessionHandler(s.sessionManager)
	workflowHandler := handlers.NewWorkflowHandler(s.config)
	uploadHandler := handlers.NewUploadHandler(s.config)
	photosHandler := handlers.NewPhotosHandler()
	analyzeHandler := handlers.NewAnalyzeHandler()
	var embeddingCache handlers.EmbeddingCache
	if s.embeddings != nil {
		embeddingCache = s.embeddings
	}
	duplicatesHandler := handlers.NewDuplicatesHandler(s.backendClient, embeddingCache)
	peopleHandler := handlers.NewPeopleHandler()
	processHandler := handlers.NewProcessHandler(s.backendClient)
	albumsHandler := handlers.NewAlbumsHandler(s.backendClient)
	captionHandler := handlers.NewCaptionHandler(s.config, s.aiProvider)

	// Health check (no session required)
	s.router.Get("/api/v1/health", handlers.HealthCheck)

	// API routes; every request is bound to a workspace session
	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.EnsureSession(s.sessionManager))

		// Session lifecycle
		r.Post("/session", sessionHandler.Create)
		r.Post("/session/reset", sessionHandler.Reset)
		r.Get("/session/state", sessionHandler.State)

		// Workflow
		r.Post("/workflow/configure", workflowHandler.Configure)
		r.Post("/workflow/stage", workflowHandler.Stage)
		r.Get("/workflow", workflowHandler.Get)

		// Upload
		r.Post("/upload", uploadHandler.Upload)

		// Analysis
		r.Post("/analyze", analyzeHandler.Start)
		r.Get("/analyze/status", analyzeHandler.Status)
		r.Get("/analyze/events", analyzeHandler.Events)

		// Photos & filters
		r.Get("/photos", photosHandler.List)
		r.Get("/photos/{id}", photosHandler.Get)
		r.Get("/photos/{id}/file", photosHandler.File)
		r.Put("/photos/{id}", photosHandler.Update)
		r.Put("/filters", photosHandler.SetFilters)

		// Duplicates
		r.Post("/duplicates/find", duplicatesHandler.Find)
		r.Post("/duplicates/keep", duplicatesHandler.Keep)
		r.Post("/duplicates/delete", duplicatesHandler.Delete)

		// People
		r.Get("/people", peopleHandler.List)
		r.Get("/people/{id}", peopleHandler.Get)

		// Bulk backend operations
		r.Post("/photos/cull", processHandler.Cull)
		r.Post("/photos/batch", processHandler.Batch)
		r.Post("/photos/caption", captionHandler.Caption)

		// Album persistence
		r.Post("/album/save", albumsHandler.Save)
	})

	// Embedded static assets (RAW placeholder preview)
	s.router.Handle("/static/*", static.Handler())
}

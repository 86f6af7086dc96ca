package web

import (
	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/photolog/internal/web/handlers"
)

func (s *Server) setupRoutes() {
	describeVia := ""
	if s.deps.Describer != nil {
		describeVia = s.deps.Describer.Name()
	}

	projectsHandler := handlers.NewProjectsHandler(s.workspace, s.deps.Exporter, s.deps.Logger)
	photosHandler := handlers.NewPhotosHandler(s.workspace, s.deps.Images, s.deps.Describer, s.deps.Logger)
	configHandler := handlers.NewConfigHandler(s.config, describeVia)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", handlers.HealthCheck)
		r.Get("/config", configHandler.Get)

		// Open documents
		r.Get("/projects", projectsHandler.List)
		r.Post("/projects", projectsHandler.Create)
		r.Get("/projects/{id}", projectsHandler.Get)
		r.Put("/projects/{id}", projectsHandler.Replace)
		r.Delete("/projects/{id}", projectsHandler.Close)
		r.Put("/projects/{id}/header", projectsHandler.UpdateHeader)
		r.Get("/projects/{id}/validate", projectsHandler.Validate)
		r.Post("/projects/{id}/export.pdf", projectsHandler.Export)
		r.Post("/projects/{id}/save", projectsHandler.Save)

		// Photo entries
		r.Post("/projects/{id}/photos", photosHandler.Add)
		r.Put("/projects/{id}/photos/{photoId}", photosHandler.Update)
		r.Delete("/projects/{id}/photos/{photoId}", photosHandler.Delete)
		r.Post("/projects/{id}/photos/{photoId}/move", photosHandler.Move)
		r.Post("/projects/{id}/photos/{photoId}/image", photosHandler.UploadImage)
		r.Post("/projects/{id}/photos/{photoId}/describe", photosHandler.Describe)

		// Saved projects
		r.Get("/stored", projectsHandler.ListStored)
		r.Post("/stored/{id}/open", projectsHandler.Open)
		r.Delete("/stored/{id}", projectsHandler.DeleteStored)
	})
}

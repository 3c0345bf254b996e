package http

import (
	"viewer/frontend/actions"
	"viewer/frontend/screenshots"

	"github.com/go-chi/chi/v5"
)

// RegisterScreenshotRoutes registers the list page with its tabs, image,
// modal fragment, ingest, items list import and export routes.
func (s *Server) RegisterScreenshotRoutes(r chi.Router) chi.Router {
	r.Get("/", screenshots.ListPageQueryHandler(s.DB, s.StatusCache))
	r.Post("/api/screenshots", screenshots.IngestCommandHandler(s.DB, s.Audit))
	r.Post("/api/items-list", screenshots.ItemsListImportCommandHandler(s.DB, s.Audit))

	r.Route("/screenshots/{id}", func(r chi.Router) {
		r.Get("/image.png", screenshots.ImageQueryHandler(s.DB))
		r.Get("/image-modal", screenshots.ImageModalQueryHandler(s.DB))
		r.Get("/detail-modal", screenshots.DetailModalQueryHandler(s.DB))
		r.Get("/items.csv", screenshots.ItemsCSVHandler(s.DB))
		r.Get("/report.pdf", screenshots.ReportPDFHandler(s.DB))
	})
	return r
}

// RegisterActionRoutes registers the bot control endpoints.
func (s *Server) RegisterActionRoutes(r chi.Router) chi.Router {
	r.Get("/status", actions.StatusQueryHandler(s.DB, s.StatusCache))
	r.Post("/{action}", actions.ActionCommandHandler(s.DB, s.Audit, s.StatusCache))
	return r
}

package server

import (
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"keywordpyramid/internal/cache"
	"keywordpyramid/internal/db"
	"keywordpyramid/internal/handlers/api"
	"keywordpyramid/internal/jobs"
	"keywordpyramid/internal/keywords"
)

// RegisterRoutes registers all application routes.
func (s *Server) RegisterRoutes(database *db.DB, c *cache.Cache, service *keywords.Service, runner *jobs.ImportRunner) {
	keywordHandler := api.NewKeywordHandler(service)
	importHandler := api.NewImportHandler(runner)
	pyramidHandler := api.NewPyramidHandler(service)
	healthHandler := api.NewHealthHandler(database, c)

	v1 := s.App.Group("/api/v1")

	v1.Get("/keywords", keywordHandler.List)
	v1.Post("/keywords", keywordHandler.Create)
	v1.Get("/keywords/:id", keywordHandler.Get)
	v1.Put("/keywords/:id", keywordHandler.Update)
	v1.Delete("/keywords/:id", keywordHandler.Delete)
	v1.Post("/keywords/auto-classify", keywordHandler.AutoClassify)
	v1.Post("/keywords/:id/performance", keywordHandler.TrackPerformance)
	v1.Get("/keywords/:id/performance", keywordHandler.PerformanceHistory)

	v1.Post("/imports", importHandler.Create)
	v1.Get("/imports/:id", importHandler.Status)

	v1.Get("/pyramid", pyramidHandler.Get)

	s.App.Get("/healthz", healthHandler.Check)
	s.App.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
}

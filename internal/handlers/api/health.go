package api

import (
	"github.com/gofiber/fiber/v3"

	"keywordpyramid/internal/cache"
	"keywordpyramid/internal/db"
)

// HealthHandler reports readiness of the store dependencies.
type HealthHandler struct {
	db    *db.DB
	cache *cache.Cache
}

// NewHealthHandler creates a new API health handler.
func NewHealthHandler(database *db.DB, c *cache.Cache) *HealthHandler {
	return &HealthHandler{db: database, cache: c}
}

// Check pings the database and the cache. The cache being down degrades
// performance but not correctness, so it is reported without failing the
// check.
func (h *HealthHandler) Check(c fiber.Ctx) error {
	dbStatus := "ok"
	if err := h.db.Pool.Ping(c.Context()); err != nil {
		dbStatus = "unreachable"
	}

	cacheStatus := "ok"
	if err := h.cache.Ping(c.Context()); err != nil {
		cacheStatus = "unreachable"
	}

	status := fiber.StatusOK
	if dbStatus != "ok" {
		status = fiber.StatusServiceUnavailable
	}

	return c.Status(status).JSON(fiber.Map{
		"database": dbStatus,
		"cache":    cacheStatus,
	})
}

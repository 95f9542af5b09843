package api

import (
	"github.com/gofiber/fiber/v3"

	"keywordpyramid/internal/keywords"
)

// PyramidHandler serves the tier-grouped aggregate view.
type PyramidHandler struct {
	service *keywords.Service
}

// NewPyramidHandler creates a new API pyramid handler.
func NewPyramidHandler(service *keywords.Service) *PyramidHandler {
	return &PyramidHandler{service: service}
}

// Get returns per-tier counts, average volume, traffic and AIO totals.
func (h *PyramidHandler) Get(c fiber.Ctx) error {
	pyramid, err := h.service.Pyramid(c.Context())
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to compute pyramid")
	}
	return jsonSuccess(c, pyramid)
}

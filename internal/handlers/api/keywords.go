package api

import (
	"encoding/json"
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"keywordpyramid/internal/db"
	"keywordpyramid/internal/keywords"
	"keywordpyramid/internal/models"
	"keywordpyramid/internal/validation"
)

// KeywordHandler handles keyword CRUD operations via JSON API.
type KeywordHandler struct {
	service *keywords.Service
}

// NewKeywordHandler creates a new API keyword handler.
func NewKeywordHandler(service *keywords.Service) *KeywordHandler {
	return &KeywordHandler{service: service}
}

// List returns a filtered, sorted, paginated page of keywords.
func (h *KeywordHandler) List(c fiber.Ctx) error {
	params := keywords.ListParams{
		Filter: models.KeywordFilter{
			Tier:      c.Query("tier", ""),
			AIOStatus: c.Query("status", ""),
			Category:  c.Query("category", ""),
			Search:    c.Query("search", ""),
		},
		Page:    fiber.Query(c, "page", 1),
		PerPage: fiber.Query(c, "per_page", 50),
		SortBy:  c.Query("sort", "search_volume"),
		SortDir: c.Query("dir", "desc"),
	}

	if raw := c.Query("min_volume", ""); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return jsonError(c, fiber.StatusBadRequest, "invalid min_volume")
		}
		params.Filter.MinVolume = &v
	}
	if raw := c.Query("max_volume", ""); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return jsonError(c, fiber.StatusBadRequest, "invalid max_volume")
		}
		params.Filter.MaxVolume = &v
	}

	page, err := h.service.List(c.Context(), params)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to fetch keywords")
	}
	return jsonSuccess(c, page)
}

// Get returns a single keyword by ID.
func (h *KeywordHandler) Get(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid keyword id")
	}

	kw, err := h.service.Get(c.Context(), id)
	if err != nil {
		if errors.Is(err, db.ErrKeywordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "keyword not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "failed to fetch keyword")
	}
	return jsonSuccess(c, kw)
}

// Create inserts a new keyword, classifying it when no tier is supplied.
func (h *KeywordHandler) Create(c fiber.Ctx) error {
	var input keywords.CreateInput
	if err := json.Unmarshal(c.Body(), &input); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	kw, err := h.service.Create(c.Context(), input)
	if err != nil {
		var vErr *validation.ValidationError
		if errors.As(err, &vErr) {
			return jsonError(c, fiber.StatusBadRequest, vErr.Error())
		}
		if errors.Is(err, db.ErrDuplicateKeyword) {
			return jsonError(c, fiber.StatusConflict, "keyword already exists")
		}
		return jsonError(c, fiber.StatusInternalServerError, "failed to create keyword")
	}
	return jsonCreated(c, kw)
}

// Update applies a partial update to a keyword.
func (h *KeywordHandler) Update(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid keyword id")
	}

	var update db.KeywordUpdate
	if err := json.Unmarshal(c.Body(), &update); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	kw, err := h.service.Update(c.Context(), id, update)
	if err != nil {
		var vErr *validation.ValidationError
		if errors.As(err, &vErr) {
			return jsonError(c, fiber.StatusBadRequest, vErr.Error())
		}
		if errors.Is(err, db.ErrKeywordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "keyword not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "failed to update keyword")
	}
	return jsonSuccess(c, kw)
}

// Delete removes a keyword and its performance history.
func (h *KeywordHandler) Delete(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid keyword id")
	}

	if err := h.service.Delete(c.Context(), id); err != nil {
		if errors.Is(err, db.ErrKeywordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "keyword not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "failed to delete keyword")
	}
	return jsonSuccess(c, fiber.Map{"deleted": id})
}

// AutoClassify assigns tiers to all unclassified keywords.
func (h *KeywordHandler) AutoClassify(c fiber.Ctx) error {
	counts, err := h.service.AutoClassify(c.Context())
	if err != nil {
		var txErr *db.TransactionError
		if errors.As(err, &txErr) {
			return jsonError(c, fiber.StatusConflict, "classification rolled back, retry the operation")
		}
		return jsonError(c, fiber.StatusInternalServerError, "failed to classify keywords")
	}
	return jsonSuccess(c, fiber.Map{"classified": counts})
}

// TrackPerformance upserts one day of performance metrics for a keyword.
func (h *KeywordHandler) TrackPerformance(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid keyword id")
	}

	var metrics models.DailyMetrics
	if err := json.Unmarshal(c.Body(), &metrics); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if metrics.Date.IsZero() {
		return jsonError(c, fiber.StatusBadRequest, "date is required")
	}
	if metrics.Impressions < 0 || metrics.Clicks < 0 {
		return jsonError(c, fiber.StatusBadRequest, "impressions and clicks must be non-negative")
	}

	perf, err := h.service.TrackPerformance(c.Context(), id, metrics)
	if err != nil {
		if errors.Is(err, db.ErrKeywordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "keyword not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "failed to track performance")
	}
	return jsonSuccess(c, perf)
}

// PerformanceHistory returns recent daily metrics for a keyword, newest first.
func (h *KeywordHandler) PerformanceHistory(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid keyword id")
	}

	history, err := h.service.PerformanceHistory(c.Context(), id, fiber.Query(c, "limit", 90))
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to fetch performance history")
	}
	if history == nil {
		history = []models.KeywordPerformance{}
	}
	return jsonSuccess(c, history)
}

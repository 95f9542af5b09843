package api

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"keywordpyramid/internal/jobs"
)

// ImportHandler queues bulk keyword imports and reports their status.
type ImportHandler struct {
	runner *jobs.ImportRunner
}

// NewImportHandler creates a new API import handler.
func NewImportHandler(runner *jobs.ImportRunner) *ImportHandler {
	return &ImportHandler{runner: runner}
}

// Create accepts a CSV upload, queues it as a background job, and returns
// the job id immediately.
func (h *ImportHandler) Create(c fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "a CSV file upload named 'file' is required")
	}

	src, err := file.Open()
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "failed to open uploaded file")
	}
	defer src.Close()

	jobID, err := h.runner.Enqueue(c.Context(), src)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to queue import")
	}

	return jsonAccepted(c, fiber.Map{"job_id": jobID})
}

// Status returns the progress record of an import job.
func (h *ImportHandler) Status(c fiber.Ctx) error {
	job, err := h.runner.Status(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, jobs.ErrJobNotFound) {
			return jsonError(c, fiber.StatusNotFound, "import job not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "failed to fetch job status")
	}
	return jsonSuccess(c, job)
}

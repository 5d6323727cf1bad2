package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/hapticstudio/worker/internal/client"
	"github.com/hapticstudio/worker/internal/model"
	"github.com/hapticstudio/worker/internal/worker"
	"github.com/hapticstudio/worker/pkg/response"
)

// ProcessHandler exposes a manual trigger for the generation pipeline,
// useful for exercising the storage round trip without going through the
// queue. Runs synchronously.
type ProcessHandler struct {
	generator worker.PatternGenerator
	validate  *validator.Validate
}

func NewProcessHandler(generator worker.PatternGenerator, validate *validator.Validate) *ProcessHandler {
	return &ProcessHandler{
		generator: generator,
		validate:  validate,
	}
}

// Process handles POST /process
func (h *ProcessHandler) Process(c *fiber.Ctx) error {
	var req model.ProcessRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validate.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", err.Error())
	}

	jobID := uuid.New().String()
	outputPath, err := h.generator.Generate(c.Context(), jobID, req.VideoFilename, req.Formats)
	if err != nil {
		if errors.Is(err, client.ErrSourceNotFound) {
			return response.NotFound(c, err.Error())
		}
		return response.JobFailed(c, err.Error())
	}

	return response.OK(c, model.ProcessResponse{
		JobID:      jobID,
		Status:     model.JobStatusCompleted,
		OutputPath: outputPath,
	})
}

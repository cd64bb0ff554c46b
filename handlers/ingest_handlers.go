package handlers

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"clipfinder/models"
	"clipfinder/utils"
)

var validate = validator.New()

// VideoResponse is the payload returned by both ingestion endpoints.
type VideoResponse struct {
	VideoFilename string            `json:"video_filename"`
	DisplayName   string            `json:"display_name"`
	VideoURL      string            `json:"video_url"`
	Duration      float64           `json:"duration"`
	IngestID      string            `json:"ingest_id"`
	Transcript    models.Transcript `json:"transcript"`
}

// ProcessURLRequest is the body of POST /api/process-url.
type ProcessURLRequest struct {
	URL string `json:"url" validate:"required,min=1"`
}

// UploadVideo handles POST /api/upload: a multipart video file is stored,
// transcribed and registered. The request blocks until the transcript is
// ready or ingestion has failed.
func (h *ApplicationHandler) UploadVideo(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		h.Logger.Errorf("Error getting file from request: %v", err)
		return utils.RespondWithError(c, fiber.StatusBadRequest, fmt.Sprintf("Error getting file: %v", err))
	}

	fileHandle, err := file.Open()
	if err != nil {
		h.Logger.Errorf("Error opening upload %s: %v", file.Filename, err)
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Error opening uploaded file")
	}
	defer fileHandle.Close()

	h.Logger.Infof("Received upload %s (%d bytes)", file.Filename, file.Size)

	res, err := h.Ingestor.IngestFromUpload(c.Context(), fileHandle, file.Filename, file.Size)
	if err != nil {
		h.Logger.Errorf("Upload ingestion failed for %s: %v", file.Filename, err)
		return h.respondAppError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(VideoResponse{
		VideoFilename: res.Record.Filename,
		DisplayName:   res.Record.DisplayName,
		VideoURL:      res.VideoURL,
		Duration:      res.Record.DurationSeconds,
		IngestID:      res.StatusID,
		Transcript:    res.Transcript,
	})
}

// ProcessURL handles POST /api/process-url: downloads a remote video,
// transcribes and registers it.
func (h *ApplicationHandler) ProcessURL(c *fiber.Ctx) error {
	payload := new(ProcessURLRequest)
	if err := c.BodyParser(payload); err != nil {
		h.Logger.Errorf("Error parsing process-url payload: %v", err)
		return utils.RespondWithError(c, fiber.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
	}
	if err := validate.Struct(payload); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest,
			fmt.Sprintf("Validation failed: %v", utils.FormatValidationErrors(err)))
	}

	h.Logger.Infof("Received process-url request for %s", payload.URL)

	res, err := h.Ingestor.IngestFromURL(c.Context(), payload.URL)
	if err != nil {
		h.Logger.Errorf("URL ingestion failed for %s: %v", payload.URL, err)
		return h.respondAppError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(VideoResponse{
		VideoFilename: res.Record.Filename,
		DisplayName:   res.Record.DisplayName,
		VideoURL:      res.VideoURL,
		Duration:      res.Record.DurationSeconds,
		IngestID:      res.StatusID,
		Transcript:    res.Transcript,
	})
}

// GetIngestStatus handles GET /api/ingests/:id, the polling surface for
// the ingestion state machine.
func (h *ApplicationHandler) GetIngestStatus(c *fiber.Ctx) error {
	id := c.Params("id")
	status, ok := h.Ingestor.Statuses.Get(id)
	if !ok {
		return utils.RespondWithError(c, fiber.StatusNotFound, fmt.Sprintf("Unknown ingestion %q", id))
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, status)
}

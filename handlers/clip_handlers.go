package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"clipfinder/utils"
)

// ExtractClipRequest is the body of POST /api/extract-clip. Timestamp is a
// pointer so an explicit 0.0 anchor is distinguishable from an omitted
// field.
type ExtractClipRequest struct {
	VideoFilename string   `json:"video_filename" validate:"required"`
	Keyword       string   `json:"keyword"`
	Timestamp     *float64 `json:"timestamp" validate:"required"`
}

// ExtractClip handles POST /api/extract-clip: cuts a padded window around
// the anchor timestamp and returns the clip URL with a best-effort
// summary.
func (h *ApplicationHandler) ExtractClip(c *fiber.Ctx) error {
	payload := new(ExtractClipRequest)
	if err := c.BodyParser(payload); err != nil {
		h.Logger.Errorf("Error parsing extract-clip payload: %v", err)
		return utils.RespondWithError(c, fiber.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
	}
	if err := validate.Struct(payload); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest,
			fmt.Sprintf("Validation failed: %v", utils.FormatValidationErrors(err)))
	}

	h.Logger.Infof("Received clip request: file=%s keyword=%q timestamp=%.3f",
		payload.VideoFilename, payload.Keyword, *payload.Timestamp)

	result, err := h.Clips.Extract(c.Context(), payload.VideoFilename, payload.Keyword, *payload.Timestamp)
	if err != nil {
		h.Logger.Errorf("Clip extraction failed for %s: %v", payload.VideoFilename, err)
		return h.respondAppError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(result)
}

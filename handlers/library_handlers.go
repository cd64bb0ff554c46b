package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"clipfinder/internal/apperr"
	"clipfinder/models"
	"clipfinder/utils"
)

// GetHistory handles GET /api/history: all library entries, most recent
// first.
func (h *ApplicationHandler) GetHistory(c *fiber.Ctx) error {
	items, err := h.Library.List()
	if err != nil {
		h.Logger.Errorf("Error listing history: %v", err)
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not retrieve history")
	}
	if items == nil {
		items = []models.HistoryItem{}
	}
	return c.Status(fiber.StatusOK).JSON(items)
}

// GetTranscript handles GET /api/transcript/:filename. An unknown filename
// returns an empty transcript rather than an error: the client treats
// absence as empty.
func (h *ApplicationHandler) GetTranscript(c *fiber.Ctx) error {
	filename := c.Params("filename")

	transcript, err := h.Library.GetTranscript(filename)
	if err != nil {
		if apperr.IsKind(err, apperr.NotFound) {
			return c.Status(fiber.StatusOK).JSON(fiber.Map{"transcript": models.Transcript{}})
		}
		h.Logger.Errorf("Error fetching transcript for %s: %v", filename, err)
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not retrieve transcript")
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"transcript": transcript})
}

// DeleteVideo handles DELETE /api/video/:filename: cascade delete of the
// record, transcript, media bytes and derived clips.
func (h *ApplicationHandler) DeleteVideo(c *fiber.Ctx) error {
	filename := c.Params("filename")
	h.Logger.Infof("Received request to delete video %s", filename)

	if err := h.Library.Delete(filename); err != nil {
		if apperr.IsKind(err, apperr.NotFound) {
			return utils.RespondWithError(c, fiber.StatusNotFound, fmt.Sprintf("Video %q not found", filename))
		}
		h.Logger.Errorf("Error deleting video %s: %v", filename, err)
		return utils.RespondWithError(c, fiber.StatusInternalServerError, fmt.Sprintf("Could not delete video: %v", err))
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":  "success",
		"message": fmt.Sprintf("Deleted %s", filename),
	})
}

package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"clipfinder/internal/apperr"
	"clipfinder/internal/clips"
	"clipfinder/internal/ingest"
	"clipfinder/internal/library"
	"clipfinder/utils"
)

// ApplicationHandler holds shared dependencies for handlers.
type ApplicationHandler struct {
	Logger   *logrus.Logger
	Ingestor *ingest.Manager
	Library  *library.Manager
	Clips    *clips.Engine
}

// NewApplicationHandler creates a new ApplicationHandler with the given dependencies.
func NewApplicationHandler(logger *logrus.Logger, ingestor *ingest.Manager, lib *library.Manager, clipEngine *clips.Engine) *ApplicationHandler {
	return &ApplicationHandler{
		Logger:   logger,
		Ingestor: ingestor,
		Library:  lib,
		Clips:    clipEngine,
	}
}

// respondAppError maps the failure taxonomy to HTTP statuses.
func (h *ApplicationHandler) respondAppError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch apperr.KindOf(err) {
	case apperr.InvalidSource, apperr.UnsupportedFormat, apperr.OutOfRange:
		status = fiber.StatusBadRequest
	case apperr.NotFound:
		status = fiber.StatusNotFound
	case apperr.SourceRemoved:
		status = fiber.StatusConflict
	case apperr.DownloadFailed, apperr.TranscriptionFailed:
		status = fiber.StatusBadGateway
	}
	return utils.RespondWithError(c, status, err.Error())
}

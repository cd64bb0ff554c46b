package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// RequestLogger creates a middleware handler for structured request
// logging with Logrus. Each request gets a uuid request id, stored in
// locals for handlers that want to correlate their own log lines.
func RequestLogger(log *logrus.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		requestID := uuid.NewString()
		c.Locals("requestid", requestID)

		err := c.Next()

		latency := time.Since(start)
		statusCode := c.Response().StatusCode()

		logEntry := log.WithFields(logrus.Fields{
			"request_id":  requestID,
			"http_method": c.Method(),
			"uri":         c.OriginalURL(),
			"status_code": statusCode,
			"latency_ms":  latency.Milliseconds(),
			"client_ip":   c.IP(),
		})

		if err != nil {
			logEntry.WithField("error", err.Error()).Error("Request processing failed")
		} else if statusCode >= 500 {
			logEntry.Error("Request completed with server error")
		} else if statusCode >= 400 {
			logEntry.Warn("Request completed with client error")
		} else {
			logEntry.Info("Request completed successfully")
		}

		return err
	}
}

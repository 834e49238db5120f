package serverutils

import (
	"errors"

	"ecomm-product-bot/internal/pkg/logger"
	"ecomm-product-bot/pkg/failure"

	"github.com/gofiber/fiber/v2"
)

// StatusFor maps an error to the response status. Failures of remote
// services are 502; anything unclassified is 500.
func StatusFor(err error) int {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	var re *RequestError
	if errors.As(err, &re) {
		return fiber.StatusBadRequest
	}
	if failure.IsRemote(err) {
		return fiber.StatusBadGateway
	}
	return fiber.StatusInternalServerError
}

// ErrorHandlerMiddleware answers errors in plain text. Server-side failures
// are logged with their kind and get a generic body.
func ErrorHandlerMiddleware(log logger.ILogger) fiber.ErrorHandler {
	return func(ctx *fiber.Ctx, err error) error {
		status := StatusFor(err)

		body := err.Error()
		if status >= fiber.StatusInternalServerError {
			log.Error("http", "request failed", map[string]interface{}{
				"method": ctx.Method(),
				"path":   ctx.Path(),
				"status": status,
				"kind":   failure.KindOf(err).String(),
				"error":  err.Error(),
			})
			body = fiber.ErrInternalServerError.Message
			switch status {
			case fiber.StatusBadGateway:
				body = "The assistant is temporarily unavailable, please try again."
			case fiber.StatusServiceUnavailable:
				body = "The assistant is still starting up, please try again shortly."
			}
		}

		ctx.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
		return ctx.Status(status).SendString(body)
	}
}

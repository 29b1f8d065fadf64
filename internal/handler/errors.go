package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/codelensai/coderag/internal/apperr"
)

// writeAppErr maps an error to its HTTP status via apperr.HTTPStatus,
// adding a detail field only for 500s per the error-handling design's
// stable-body contract.
func writeAppErr(c fiber.Ctx, err error) error {
	var ae *apperr.Error
	kind := apperr.KindVectorStoreError
	message := err.Error()
	if errors.As(err, &ae) {
		kind = ae.Kind
		message = ae.Message
	}

	status := apperr.HTTPStatus(kind)
	body := fiber.Map{"error": message}
	if status == fiber.StatusInternalServerError {
		body["detail"] = err.Error()
	}
	return c.Status(status).JSON(body)
}

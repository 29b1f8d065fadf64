package handler

import (
	"time"

	"github.com/gofiber/fiber/v3"
)

var bootTime = time.Now()

// RegisterHealth mounts the unauthenticated /health route.
func RegisterHealth(app *fiber.App) {
	app.Get("/health", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
			"uptime": time.Since(bootTime).String(),
		})
	})
}

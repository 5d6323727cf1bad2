package handler

import (
	"github.com/gofiber/fiber/v2"
)

// Health handles GET /
func Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"service": "haptic-worker",
	})
}

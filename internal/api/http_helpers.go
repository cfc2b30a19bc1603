package api

import "github.com/gofiber/fiber/v2"

func apiError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": message})
}

func fieldErrorsResponse(c *fiber.Ctx, fieldErrors any) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error":        "validation failed",
		"field_errors": fieldErrors,
	})
}

func (handler *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

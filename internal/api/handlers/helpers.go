package handlers

import (
	"errors"
	"strconv"

	"github.com/contentpassport/pimtrack/internal/service"
	"github.com/gofiber/fiber/v2"
)

// GetUserID returns the authenticated caller's id, or 0 for the
// anonymous/demo scope.
func GetUserID(c *fiber.Ctx) int64 {
	raw, ok := c.Locals("user_id").(string)
	if !ok || raw == "" {
		return 0
	}
	userID, _ := strconv.Atoi(raw)
	return int64(userID)
}

// serviceError maps the service error taxonomy onto HTTP statuses.
func serviceError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		status = fiber.StatusBadRequest
	case errors.Is(err, service.ErrUnauthorized):
		status = fiber.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden):
		status = fiber.StatusForbidden
	case errors.Is(err, service.ErrNotFound):
		status = fiber.StatusNotFound
	}
	return c.Status(status).JSON(fiber.Map{
		"error": err.Error(),
	})
}

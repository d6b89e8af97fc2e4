package handlers

import (
	"github.com/contentpassport/pimtrack/internal/service"
	"github.com/contentpassport/pimtrack/internal/transfer"
	"github.com/gofiber/fiber/v2"
)

type PreferencesHandler struct {
	s service.PreferencesService
}

func NewPreferencesHandler(service service.PreferencesService) *PreferencesHandler {
	return &PreferencesHandler{s: service}
}

func (h *PreferencesHandler) GetPreferences(c *fiber.Ctx) error {
	callerId := GetUserID(c)

	userId, err := c.ParamsInt("user_id", 0)
	if err != nil || userId == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid user id",
		})
	}

	prefs, err := h.s.GetPreferences(c.Context(), callerId, int64(userId))
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(prefs)
}

func (h *PreferencesHandler) UpdatePreferences(c *fiber.Ctx) error {
	callerId := GetUserID(c)

	userId, err := c.ParamsInt("user_id", 0)
	if err != nil || userId == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid user id",
		})
	}

	var update transfer.PreferencesUpdate
	if err := c.BodyParser(&update); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse json",
		})
	}

	prefs, err := h.s.UpdatePreferences(c.Context(), callerId, int64(userId), &update)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(prefs)
}

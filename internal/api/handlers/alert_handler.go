package handlers

import (
	"github.com/contentpassport/pimtrack/internal/service"
	"github.com/contentpassport/pimtrack/internal/transfer"
	"github.com/gofiber/fiber/v2"
)

type AlertHandler struct {
	s service.AlertService
}

func NewAlertHandler(service service.AlertService) *AlertHandler {
	return &AlertHandler{s: service}
}

func (h *AlertHandler) CreateAlert(c *fiber.Ctx) error {
	userId := GetUserID(c)

	var req transfer.CreateAlertRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse json",
		})
	}

	alert, err := h.s.CreateAlert(c.Context(), userId, &req)
	if err != nil {
		return serviceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(alert)
}

func (h *AlertHandler) GetAlerts(c *fiber.Ctx) error {
	userId := GetUserID(c)

	filters := transfer.AlertFilters{
		AlertType:  c.Query("type"),
		UnreadOnly: c.QueryBool("unread_only", false),
		Limit:      c.QueryInt("limit", 50),
		Offset:     c.QueryInt("offset", 0),
	}

	alerts, err := h.s.GetAlerts(c.Context(), userId, filters)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"alerts": alerts,
	})
}

func (h *AlertHandler) MarkRead(c *fiber.Ctx) error {
	userId := GetUserID(c)

	alertId, err := c.ParamsInt("id", 0)
	if err != nil || alertId == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid alert id",
		})
	}

	if err := h.s.MarkRead(c.Context(), userId, int64(alertId)); err != nil {
		return serviceError(c, err)
	}

	return c.SendStatus(fiber.StatusOK)
}

func (h *AlertHandler) MarkAllRead(c *fiber.Ctx) error {
	userId := GetUserID(c)

	if err := h.s.MarkAllRead(c.Context(), userId); err != nil {
		return serviceError(c, err)
	}

	return c.SendStatus(fiber.StatusOK)
}

func (h *AlertHandler) GetUnreadCount(c *fiber.Ctx) error {
	userId := GetUserID(c)

	count, err := h.s.UnreadCount(c.Context(), userId)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"unread": count,
	})
}

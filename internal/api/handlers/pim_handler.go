package handlers

import (
	"github.com/contentpassport/pimtrack/internal/service"
	"github.com/gofiber/fiber/v2"
)

type PIMHandler struct {
	s service.PIMService
	l service.LeaderboardService
}

func NewPIMHandler(pim service.PIMService, leaderboard service.LeaderboardService) *PIMHandler {
	return &PIMHandler{s: pim, l: leaderboard}
}

func (h *PIMHandler) CalculatePIM(c *fiber.Ctx) error {
	passportId, err := c.ParamsInt("id", 0)
	if err != nil || passportId == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid passport id",
		})
	}

	epoch := c.QueryInt("epoch", 0)

	result, err := h.s.CalculatePIM(c.Context(), int64(passportId), epoch)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(result)
}

func (h *PIMHandler) GetPIM(c *fiber.Ctx) error {
	passportId, err := c.ParamsInt("id", 0)
	if err != nil || passportId == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid passport id",
		})
	}

	epoch := c.QueryInt("epoch", 0)

	overview, err := h.s.GetPIM(c.Context(), int64(passportId), epoch)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(overview)
}

func (h *PIMHandler) GetLeaderboard(c *fiber.Ctx) error {
	epoch := c.QueryInt("epoch", 0)
	limit := c.QueryInt("limit", 100)
	offset := c.QueryInt("offset", 0)

	board, err := h.l.GetLeaderboard(c.Context(), epoch, limit, offset)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(board)
}

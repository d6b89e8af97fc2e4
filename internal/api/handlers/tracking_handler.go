package handlers

import (
	"log"

	"github.com/contentpassport/pimtrack/internal/queue"
	"github.com/contentpassport/pimtrack/internal/service"
	"github.com/contentpassport/pimtrack/internal/transfer"
	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
)

type TrackingHandler struct {
	s      service.TrackingService
	client *asynq.Client
}

func NewTrackingHandler(service service.TrackingService, client *asynq.Client) *TrackingHandler {
	return &TrackingHandler{s: service, client: client}
}

func (h *TrackingHandler) TrackPost(c *fiber.Ctx) error {
	userId := GetUserID(c)

	var req transfer.TrackPostRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse json",
		})
	}

	post, err := h.s.TrackPost(c.Context(), userId, &req)
	if err != nil {
		return serviceError(c, err)
	}

	// Background follow-ups: rescore the passport and mirror media.
	// Both are best effort; a full enqueue failure only loses freshness.
	if h.client != nil {
		if req.PassportID != 0 {
			if err := queue.EnqueuePIMRecalc(h.client, queue.PIMRecalcPayload{PassportID: req.PassportID}); err != nil {
				log.Printf("Error enqueueing PIM recalc for passport %d: %v", req.PassportID, err)
			}
		}
		if len(post.MediaURLs) > 0 {
			if err := queue.EnqueueMediaArchive(h.client, queue.MediaArchivePayload{TrackedPostID: post.ID}); err != nil {
				log.Printf("Error enqueueing media archive for post %d: %v", post.ID, err)
			}
		}
	}

	return c.Status(fiber.StatusOK).JSON(post)
}

func (h *TrackingHandler) UpdateEngagement(c *fiber.Ctx) error {
	postId, err := c.ParamsInt("id", 0)
	if err != nil || postId == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid post id",
		})
	}

	var req transfer.UpdateEngagementRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse json",
		})
	}

	if err := h.s.UpdateEngagement(c.Context(), int64(postId), &req.Engagement); err != nil {
		return serviceError(c, err)
	}

	return c.SendStatus(fiber.StatusOK)
}

func (h *TrackingHandler) GetPostStatus(c *fiber.Ctx) error {
	status, err := h.s.GetPostStatus(c.Context(), c.Params("platform"), c.Params("post_id"))
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(status)
}

func (h *TrackingHandler) GetTrackingStats(c *fiber.Ctx) error {
	userId := GetUserID(c)

	passportId, err := c.ParamsInt("id", 0)
	if err != nil || passportId == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid passport id",
		})
	}

	stats, err := h.s.GetTrackingStats(c.Context(), userId, int64(passportId))
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(stats)
}

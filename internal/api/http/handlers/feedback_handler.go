package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/complaint-service/internal/api/dto"
	"github.com/spec-kit/complaint-service/internal/service"
)

// FeedbackHandler manages feedback endpoints.
type FeedbackHandler struct {
	service *service.FeedbackService
}

// NewFeedbackHandler constructs handler.
func NewFeedbackHandler(feedbackService *service.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{service: feedbackService}
}

// List GET /api/feedback.
func (h *FeedbackHandler) List(c *fiber.Ctx) error {
	who, err := identity(c)
	if err != nil {
		return err
	}
	list, err := h.service.List(c.UserContext(), who)
	if err != nil {
		return err
	}
	return c.JSON(feedbackList(list))
}

// Create POST /api/feedback.
func (h *FeedbackHandler) Create(c *fiber.Ctx) error {
	who, err := identity(c)
	if err != nil {
		return err
	}
	var req dto.CreateFeedbackRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	fb, err := h.service.Create(c.UserContext(), who, service.FeedbackCreateInput{
		Rating:   req.Rating,
		Category: req.Category,
		Comments: req.Comments,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(feedbackResponse(fb))
}

// Update PUT /api/feedback/:id.
func (h *FeedbackHandler) Update(c *fiber.Ctx) error {
	who, err := adminIdentity(c)
	if err != nil {
		return err
	}
	var req dto.UpdateFeedbackRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	fb, err := h.service.UpdateStatus(c.UserContext(), who, c.Params("id"), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(feedbackResponse(fb))
}

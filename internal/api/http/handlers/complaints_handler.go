package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/complaint-service/internal/api/dto"
	"github.com/spec-kit/complaint-service/internal/service"
)

// ComplaintsHandler manages complaint endpoints.
type ComplaintsHandler struct {
	service *service.ComplaintService
}

// NewComplaintsHandler constructs handler.
func NewComplaintsHandler(complaintService *service.ComplaintService) *ComplaintsHandler {
	return &ComplaintsHandler{service: complaintService}
}

// List GET /api/complaints.
func (h *ComplaintsHandler) List(c *fiber.Ctx) error {
	who, err := identity(c)
	if err != nil {
		return err
	}
	list, err := h.service.List(c.UserContext(), who)
	if err != nil {
		return err
	}
	return c.JSON(complaintList(list))
}

// Create POST /api/complaints.
func (h *ComplaintsHandler) Create(c *fiber.Ctx) error {
	who, err := identity(c)
	if err != nil {
		return err
	}
	var req dto.CreateComplaintRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	complaint, err := h.service.Create(c.UserContext(), who, service.ComplaintCreateInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Priority:    req.Priority,
		Anonymous:   req.Anonymous,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(complaintResponse(complaint))
}

// Get GET /api/complaints/:id.
func (h *ComplaintsHandler) Get(c *fiber.Ctx) error {
	who, err := identity(c)
	if err != nil {
		return err
	}
	complaint, err := h.service.Get(c.UserContext(), who, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(complaintResponse(complaint))
}

// Update PUT /api/complaints/:id.
func (h *ComplaintsHandler) Update(c *fiber.Ctx) error {
	who, err := adminIdentity(c)
	if err != nil {
		return err
	}
	var req dto.UpdateComplaintRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	complaint, err := h.service.Update(c.UserContext(), who, c.Params("id"), req.Patch())
	if err != nil {
		return err
	}
	return c.JSON(complaintResponse(complaint))
}

// Delete DELETE /api/complaints/:id.
func (h *ComplaintsHandler) Delete(c *fiber.Ctx) error {
	who, err := identity(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.UserContext(), who, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "Complaint deleted"})
}

// History GET /api/complaints/:id/history.
func (h *ComplaintsHandler) History(c *fiber.Ctx) error {
	who, err := identity(c)
	if err != nil {
		return err
	}
	entries, err := h.service.History(c.UserContext(), who, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(historyList(entries))
}

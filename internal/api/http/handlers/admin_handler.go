package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/complaint-service/internal/api/dto"
	"github.com/spec-kit/complaint-service/internal/service"
)

// AdminHandler serves the admin dashboard endpoints.
type AdminHandler struct {
	directory *service.DirectoryService
	analytics *service.AnalyticsService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(directory *service.DirectoryService, analytics *service.AnalyticsService) *AdminHandler {
	return &AdminHandler{directory: directory, analytics: analytics}
}

// ListUsers GET /api/admin/users.
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	who, err := identity(c)
	if err != nil {
		return err
	}
	entries, err := h.directory.ListUsers(c.UserContext(), who)
	if err != nil {
		return err
	}
	out := make([]dto.DirectoryUser, 0, len(entries))
	for _, e := range entries {
		out = append(out, directoryUser(e))
	}
	return c.JSON(out)
}

// CreateUser POST /api/admin/users.
func (h *AdminHandler) CreateUser(c *fiber.Ctx) error {
	who, err := identity(c)
	if err != nil {
		return err
	}
	var req dto.RegisterRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	entry, err := h.directory.CreateUser(c.UserContext(), who, service.AccountInput{
		Name:       req.Name,
		Email:      req.Email,
		Password:   req.Password,
		Role:       req.Role,
		Department: req.Department,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(directoryUser(*entry))
}

// Stats GET /api/admin/stats.
func (h *AdminHandler) Stats(c *fiber.Ctx) error {
	who, err := identity(c)
	if err != nil {
		return err
	}
	stats, err := h.analytics.Stats(c.UserContext(), who)
	if err != nil {
		return err
	}
	return c.JSON(statsResponse(stats))
}

// Insights GET /api/admin/insights.
func (h *AdminHandler) Insights(c *fiber.Ctx) error {
	who, err := identity(c)
	if err != nil {
		return err
	}
	insights, err := h.analytics.Insights(c.UserContext(), who)
	if err != nil {
		return err
	}
	return c.JSON(insightsResponse(insights))
}

package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/complaint-service/internal/api/dto"
	"github.com/spec-kit/complaint-service/internal/auth"
	"github.com/spec-kit/complaint-service/internal/domain"
	apperrors "github.com/spec-kit/complaint-service/pkg/errorutil"
)

// identity resolves the authenticated caller placed on the context by the
// Authenticator.
func identity(c *fiber.Ctx) (domain.Identity, error) {
	principal, err := auth.MustPrincipal(c)
	if err != nil {
		return domain.Identity{}, err
	}
	return principal.Identity(), nil
}

// adminIdentity resolves the caller and requires the admin role before any
// request body is read.
func adminIdentity(c *fiber.Ctx) (domain.Identity, error) {
	who, err := identity(c)
	if err != nil {
		return domain.Identity{}, err
	}
	if err := auth.RequireAdmin(who); err != nil {
		return domain.Identity{}, err
	}
	return who, nil
}

func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return apperrors.NewValidationError("Invalid request body")
	}
	return nil
}

func authUser(u *domain.User) dto.AuthUser {
	return dto.AuthUser{ID: u.ID, Name: u.Name, Email: u.Email, Role: string(u.Role)}
}

func complaintResponse(c *domain.Complaint) dto.ComplaintResponse {
	return dto.ComplaintResponse{
		ID:                  c.ID,
		Title:               c.Title,
		Description:         c.Description,
		Category:            c.Category,
		Priority:            c.Priority,
		Status:              c.Status,
		UserID:              c.UserID,
		Anonymous:           c.Anonymous,
		AssignedTo:          c.AssignedTo,
		Department:          c.Department,
		Progress:            c.Progress,
		EstimatedResolution: c.EstimatedResolution,
		ResolvedAt:          c.ResolvedAt,
		CreatedAt:           c.CreatedAt,
		UpdatedAt:           c.UpdatedAt,
	}
}

func complaintList(list []domain.Complaint) []dto.ComplaintResponse {
	out := make([]dto.ComplaintResponse, 0, len(list))
	for i := range list {
		out = append(out, complaintResponse(&list[i]))
	}
	return out
}

func historyList(list []domain.ComplaintHistory) []dto.ComplaintHistoryResponse {
	out := make([]dto.ComplaintHistoryResponse, 0, len(list))
	for _, h := range list {
		out = append(out, dto.ComplaintHistoryResponse{
			ID:          h.ID,
			ComplaintID: h.ComplaintID,
			ChangedBy:   h.ChangedByID,
			ChangeType:  string(h.ChangeType),
			OldValue:    h.OldValue,
			NewValue:    h.NewValue,
			CreatedAt:   h.CreatedAt,
		})
	}
	return out
}

func feedbackResponse(f *domain.Feedback) dto.FeedbackResponse {
	return dto.FeedbackResponse{
		ID:        f.ID,
		Rating:    f.Rating,
		Category:  f.Category,
		Comments:  f.Comments,
		Status:    f.Status,
		UserID:    f.UserID,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

func feedbackList(list []domain.Feedback) []dto.FeedbackResponse {
	out := make([]dto.FeedbackResponse, 0, len(list))
	for i := range list {
		out = append(out, feedbackResponse(&list[i]))
	}
	return out
}

func directoryUser(e domain.UserDirectoryEntry) dto.DirectoryUser {
	return dto.DirectoryUser{
		MongoID:          e.User.ID,
		ID:               e.User.ID,
		Name:             e.User.Name,
		Email:            e.User.Email,
		Role:             string(e.User.Role),
		Department:       e.User.Department,
		Status:           string(e.User.Status),
		CreatedAt:        e.User.CreatedAt,
		LastLogin:        e.User.LastLogin,
		TicketsSubmitted: e.TicketsSubmitted,
		TicketsResolved:  e.TicketsResolved,
	}
}

func statsResponse(s *domain.Stats) dto.StatsResponse {
	return dto.StatsResponse{
		TotalTickets:         s.TotalComplaints,
		AvgResolutionTime:    formatHours(s.AvgResolutionHours),
		HighPriorityAlerts:   s.HighPriorityAlerts,
		CustomerSatisfaction: s.CustomerSatisfaction,
		TotalFeedback:        s.TotalFeedback,
		OpenComplaints:       s.OpenComplaints,
		ResolvedComplaints:   s.ResolvedComplaints,
	}
}

func formatHours(h float64) string {
	if h == 0 {
		return "0 hours"
	}
	return fmt.Sprintf("%.1f hours", h)
}

func insightsResponse(i *domain.Insights) dto.InsightsResponse {
	return dto.InsightsResponse{
		CategoryDistribution: dto.CategoryDistribution{
			Complaints: categoryBuckets(i.ComplaintsByCategory),
			Feedback:   categoryBuckets(i.FeedbackByCategory),
		},
		Sentiment: dto.SentimentResponse{
			Positive: i.Sentiment.Positive,
			Neutral:  i.Sentiment.Neutral,
			Negative: i.Sentiment.Negative,
		},
		TotalFeedback:        i.TotalFeedback,
		CustomerSatisfaction: i.CustomerSatisfaction,
	}
}

func categoryBuckets(counts []domain.CategoryCount) []dto.CategoryBucket {
	out := make([]dto.CategoryBucket, 0, len(counts))
	for _, c := range counts {
		out = append(out, dto.CategoryBucket{Category: c.Category, Count: c.Count})
	}
	return out
}

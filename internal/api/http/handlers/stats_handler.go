package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/campushelp/helpdesk-service/internal/api/dto"
	"github.com/campushelp/helpdesk-service/internal/auth"
	"github.com/campushelp/helpdesk-service/internal/domain"
	"github.com/campushelp/helpdesk-service/internal/service"
	apperrors "github.com/campushelp/helpdesk-service/pkg/util"
)

// StatsHandler serves the role-dependent aggregate endpoint.
type StatsHandler struct {
	service *service.TicketService
}

// NewStatsHandler constructs handler.
func NewStatsHandler(ticketService *service.TicketService) *StatsHandler {
	return &StatsHandler{service: ticketService}
}

// GetStats GET /stats. Admins get the portal-wide dashboard; everyone else
// gets counters over their own submissions.
func (h *StatsHandler) GetStats(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	if principal.Role == domain.RoleAdmin {
		stats, err := h.service.AdminDashboardStats(c.UserContext(), principal)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"data": dto.AdminStatsResponse{
			New:               stats.New,
			InProgress:        stats.InProgress,
			High:              stats.High,
			AssignedToMe:      stats.AssignedToMe,
			AvgResolutionTime: stats.AvgResolution.Round(time.Second).String(),
		}})
	}

	stats, err := h.service.MyStats(c.UserContext(), principal)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.UserStatsResponse{
		Total:      stats.Total,
		New:        stats.New,
		InProgress: stats.InProgress,
		Resolved:   stats.Resolved,
		High:       stats.High,
	}})
}

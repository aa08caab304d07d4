package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/campushelp/helpdesk-service/internal/api/dto"
	"github.com/campushelp/helpdesk-service/internal/auth"
	"github.com/campushelp/helpdesk-service/internal/service"
	apperrors "github.com/campushelp/helpdesk-service/pkg/util"
)

// StaffHandler manages IT staff endpoints.
type StaffHandler struct {
	service *service.TicketService
}

// NewStaffHandler constructs handler.
func NewStaffHandler(ticketService *service.TicketService) *StaffHandler {
	return &StaffHandler{service: ticketService}
}

// ListStaff GET /it-staff.
func (h *StaffHandler) ListStaff(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	staff, err := h.service.ListITStaff(c.UserContext(), principal)
	if err != nil {
		return err
	}
	items := make([]dto.UserResponse, 0, len(staff))
	for i := range staff {
		items = append(items, userResponse(&staff[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// ProvisionStaff POST /it-staff. Guarded by the provisioning key, not a
// bearer token.
func (h *StaffHandler) ProvisionStaff(c *fiber.Ctx) error {
	var req dto.ProvisionStaffRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	user, err := h.service.ProvisionStaff(c.UserContext(), service.StaffProvisionInput{
		ID:        req.ID,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": userResponse(user)})
}

package dto

import (
	"time"

	"github.com/campushelp/helpdesk-service/internal/domain"
)

// UserResponse is the user projection embedded in ticket and comment
// responses and returned from the staff listing.
type UserResponse struct {
	ID          string      `json:"id"`
	Email       string      `json:"email,omitempty"`
	FirstName   string      `json:"firstName"`
	LastName    string      `json:"lastName"`
	DisplayName string      `json:"displayName"`
	Role        domain.Role `json:"role"`
	CreatedAt   time.Time   `json:"createdAt"`
}

// ProvisionStaffRequest payload for creating or promoting an IT staff
// account.
type ProvisionStaffRequest struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

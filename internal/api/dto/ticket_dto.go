// Package dto defines the JSON contract consumed by the presentation
// layer. Field names are camelCase to match it.
package dto

import (
	"time"

	"github.com/campushelp/helpdesk-service/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Subject     string                `json:"subject"`
	Description string                `json:"description"`
	IssueType   string                `json:"issueType"`
	Priority    domain.TicketPriority `json:"priority"`
	Location    *string               `json:"location,omitempty"`
}

// UpdateTicketRequest carries a partial update; absent fields are left
// untouched. An empty assignedToId clears the assignment.
type UpdateTicketRequest struct {
	Subject      *string                `json:"subject,omitempty"`
	Description  *string                `json:"description,omitempty"`
	IssueType    *string                `json:"issueType,omitempty"`
	Priority     *domain.TicketPriority `json:"priority,omitempty"`
	Status       *domain.TicketStatus   `json:"status,omitempty"`
	Location     *string                `json:"location,omitempty"`
	AssignedToID *string                `json:"assignedToId,omitempty"`
}

// TicketResponse is the full ticket projection with joined user records.
type TicketResponse struct {
	ID           int64                 `json:"id"`
	Subject      string                `json:"subject"`
	Description  string                `json:"description"`
	IssueType    string                `json:"issueType"`
	Priority     domain.TicketPriority `json:"priority"`
	Status       domain.TicketStatus   `json:"status"`
	Location     *string               `json:"location,omitempty"`
	SubmitterID  string                `json:"submitterId"`
	AssignedToID *string               `json:"assignedToId,omitempty"`
	Submitter    *UserResponse         `json:"submitter,omitempty"`
	Assignee     *UserResponse         `json:"assignee,omitempty"`
	CreatedAt    time.Time             `json:"createdAt"`
	UpdatedAt    time.Time             `json:"updatedAt"`
}

// CreateCommentRequest payload.
type CreateCommentRequest struct {
	Comment    string `json:"comment"`
	IsInternal bool   `json:"isInternal,omitempty"`
}

// CommentResponse is the comment projection with joined author record.
type CommentResponse struct {
	ID         int64         `json:"id"`
	TicketID   int64         `json:"ticketId"`
	UserID     string        `json:"userId"`
	Comment    string        `json:"comment"`
	IsInternal bool          `json:"isInternal"`
	Author     *UserResponse `json:"author,omitempty"`
	CreatedAt  time.Time     `json:"createdAt"`
}

package events

import (
	"time"

	"github.com/campushelp/helpdesk-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated EventType = "ticket_created"
	EventTicketUpdated EventType = "ticket_updated"
	EventCommentAdded  EventType = "comment_added"
)

// Event represents a domain event emitted by the ticket service.
type Event struct {
	ID        string           `json:"id"`
	Type      EventType        `json:"type"`
	TicketID  int64            `json:"ticket_id"`
	Actor     domain.Principal `json:"actor"`
	Timestamp time.Time        `json:"timestamp"`
	Payload   interface{}      `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Subject   string                `json:"subject"`
	IssueType string                `json:"issue_type"`
	Priority  domain.TicketPriority `json:"priority"`
}

// TicketUpdatedPayload carries only the fields that changed.
type TicketUpdatedPayload struct {
	Status       *domain.TicketStatus   `json:"status,omitempty"`
	Priority     *domain.TicketPriority `json:"priority,omitempty"`
	AssignedToID *string                `json:"assigned_to_id,omitempty"`
}

// CommentAddedPayload payload.
type CommentAddedPayload struct {
	CommentID  int64 `json:"comment_id"`
	IsInternal bool  `json:"is_internal"`
}

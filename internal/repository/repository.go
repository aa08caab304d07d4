package repository

import (
	"context"
	"errors"
	"time"

	"github.com/campushelp/helpdesk-service/internal/domain"
)

// ErrNotFound is returned when a referenced record does not exist. Store
// implementations translate their native not-found signal into this value.
var ErrNotFound = errors.New("record not found")

// TicketUpdate carries the mutable fields of a partial update. Nil fields
// are left untouched. ID and SubmitterID are immutable. An AssignedToID of
// "" clears the assignment.
type TicketUpdate struct {
	Subject      *string
	Description  *string
	IssueType    *string
	Priority     *domain.TicketPriority
	Status       *domain.TicketStatus
	Location     *string
	AssignedToID *string
}

// Empty reports whether the update would change nothing.
func (u TicketUpdate) Empty() bool {
	return u.Subject == nil && u.Description == nil && u.IssueType == nil &&
		u.Priority == nil && u.Status == nil && u.Location == nil && u.AssignedToID == nil
}

// TicketStats is a snapshot of status counters for one submitter or the
// whole portal. All five counters come from a single consistent read.
type TicketStats struct {
	Total      int64
	New        int64
	InProgress int64
	Resolved   int64
	High       int64
}

// AdminStats aggregates portal-wide triage counters. AssignedToMe is scoped
// to the admin id supplied by the caller; AvgResolution is the mean of
// updatedAt-createdAt over resolved tickets.
type AdminStats struct {
	New           int64
	InProgress    int64
	High          int64
	AssignedToMe  int64
	AvgResolution time.Duration
}

// UserRepository defines persistence access for portal accounts.
type UserRepository interface {
	Upsert(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	ListByRole(ctx context.Context, role domain.Role) ([]domain.User, error)
}

// TicketRepository encapsulates ticket persistence. Reads return tickets
// joined with their submitter and, when assigned, assignee records.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id int64) (*domain.Ticket, error)
	ListBySubmitter(ctx context.Context, userID string) ([]domain.Ticket, error)
	ListAll(ctx context.Context) ([]domain.Ticket, error)
	Update(ctx context.Context, id int64, update TicketUpdate) (*domain.Ticket, error)
	Stats(ctx context.Context, submitterID *string) (*TicketStats, error)
	AdminStats(ctx context.Context, adminID string) (*AdminStats, error)
}

// CommentRepository encapsulates comment persistence. Comments are
// append-only.
type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) error
	ListByTicket(ctx context.Context, ticketID int64) ([]domain.Comment, error)
}

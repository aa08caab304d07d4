package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/campushelp/helpdesk-service/internal/authz"
	"github.com/campushelp/helpdesk-service/internal/domain"
	"github.com/campushelp/helpdesk-service/internal/events"
	"github.com/campushelp/helpdesk-service/internal/repository"
	apperrors "github.com/campushelp/helpdesk-service/pkg/util"
)

// TicketService coordinates ticket workflows: it resolves the principal,
// consults the authorization gate, delegates to the repositories and shapes
// the result. Gate denials happen before any mutation is attempted.
type TicketService struct {
	tickets    repository.TicketRepository
	comments   repository.CommentRepository
	users      repository.UserRepository
	dispatcher events.Dispatcher
}

// TicketDependencies bundles repositories for the ticket service.
type TicketDependencies struct {
	TicketRepo  repository.TicketRepository
	CommentRepo repository.CommentRepository
	UserRepo    repository.UserRepository
	Dispatcher  events.Dispatcher
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:    deps.TicketRepo,
		comments:   deps.CommentRepo,
		users:      deps.UserRepo,
		dispatcher: deps.Dispatcher,
	}
}

// TicketCreateInput describes the ticket creation payload.
type TicketCreateInput struct {
	Subject     string
	Description string
	IssueType   string
	Priority    domain.TicketPriority
	Location    *string
}

// CreateTicket creates a ticket submitted by the principal. Any
// authenticated principal may submit.
func (s *TicketService) CreateTicket(ctx context.Context, principal domain.Principal, input TicketCreateInput) (*domain.Ticket, error) {
	details := map[string]any{}
	subject := strings.TrimSpace(input.Subject)
	description := strings.TrimSpace(input.Description)
	issueType := strings.TrimSpace(input.IssueType)
	if subject == "" {
		details["subject"] = "required"
	}
	if description == "" {
		details["description"] = "required"
	}
	if issueType == "" {
		details["issueType"] = "required"
	}
	if !input.Priority.Valid() {
		details["priority"] = "must be one of low, medium, high, critical"
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("invalid ticket", details)
	}

	ticket := &domain.Ticket{
		Subject:     subject,
		Description: description,
		IssueType:   issueType,
		Priority:    input.Priority,
		Status:      domain.StatusNew,
		Location:    input.Location,
		SubmitterID: principal.UserID,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, storeFailure(err)
	}

	s.publish(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Actor:    principal,
		Payload: events.TicketCreatedPayload{
			Subject:   ticket.Subject,
			IssueType: ticket.IssueType,
			Priority:  ticket.Priority,
		},
	})
	return s.loadTicket(ctx, ticket.ID)
}

// GetTicket fetches a ticket with submitter and assignee joined, enforcing
// the read gate.
func (s *TicketService) GetTicket(ctx context.Context, principal domain.Principal, id int64) (*domain.Ticket, error) {
	ticket, err := s.loadTicket(ctx, id)
	if err != nil {
		return nil, err
	}
	if !authz.CanReadTicket(principal, ticket.SubmitterID) {
		return nil, apperrors.NewForbidden("not allowed to view this ticket")
	}
	return ticket, nil
}

// ListTickets returns the tickets visible to the principal: admins see
// every ticket, everyone else sees only their own submissions.
func (s *TicketService) ListTickets(ctx context.Context, principal domain.Principal) ([]domain.Ticket, error) {
	switch principal.Role {
	case domain.RoleAdmin:
		tickets, err := s.tickets.ListAll(ctx)
		if err != nil {
			return nil, storeFailure(err)
		}
		return tickets, nil
	case domain.RoleStudent, domain.RoleFaculty:
		tickets, err := s.tickets.ListBySubmitter(ctx, principal.UserID)
		if err != nil {
			return nil, storeFailure(err)
		}
		return tickets, nil
	default:
		return nil, apperrors.NewForbidden("unrecognized role")
	}
}

// UpdateTicket applies a partial update. Writes are reserved to admins; the
// gate check happens before any field is validated or touched. Status may
// be set to any valid value; there is no forward-only transition guard.
func (s *TicketService) UpdateTicket(ctx context.Context, principal domain.Principal, id int64, update repository.TicketUpdate) (*domain.Ticket, error) {
	if !authz.CanWriteTicket(principal) {
		return nil, apperrors.NewForbidden("not allowed to modify tickets")
	}
	if update.Empty() {
		return nil, apperrors.NewValidationError("no updatable fields in request", nil)
	}
	if err := s.validateUpdate(ctx, update); err != nil {
		return nil, err
	}

	ticket, err := s.tickets.Update(ctx, id, update)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("ticket")
		}
		return nil, apperrors.NewStoreError(err)
	}

	s.publish(ctx, events.Event{
		Type:     events.EventTicketUpdated,
		TicketID: ticket.ID,
		Actor:    principal,
		Payload: events.TicketUpdatedPayload{
			Status:       update.Status,
			Priority:     update.Priority,
			AssignedToID: update.AssignedToID,
		},
	})
	return ticket, nil
}

// AddComment appends a comment to a ticket the principal may read. Internal
// comments are reserved to admins.
func (s *TicketService) AddComment(ctx context.Context, principal domain.Principal, ticketID int64, body string, isInternal bool) (*domain.Comment, error) {
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !authz.CanComment(principal, ticket.SubmitterID, isInternal) {
		return nil, apperrors.NewForbidden("not allowed to comment on this ticket")
	}

	body = strings.TrimSpace(body)
	if body == "" {
		return nil, apperrors.NewValidationError("invalid comment", map[string]any{"comment": "required"})
	}

	comment := &domain.Comment{
		TicketID:   ticket.ID,
		UserID:     principal.UserID,
		Body:       body,
		IsInternal: isInternal,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, storeFailure(err)
	}

	s.publish(ctx, events.Event{
		Type:     events.EventCommentAdded,
		TicketID: ticket.ID,
		Actor:    principal,
		Payload: events.CommentAddedPayload{
			CommentID:  comment.ID,
			IsInternal: comment.IsInternal,
		},
	})
	return comment, nil
}

// ListComments returns the comments on a ticket the principal may read,
// newest first, with internal comments stripped for non-admins.
func (s *TicketService) ListComments(ctx context.Context, principal domain.Principal, ticketID int64) ([]domain.Comment, error) {
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !authz.CanReadTicket(principal, ticket.SubmitterID) {
		return nil, apperrors.NewForbidden("not allowed to view this ticket")
	}
	comments, err := s.comments.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, storeFailure(err)
	}
	return authz.VisibleComments(principal, comments), nil
}

// MyStats returns the principal's own ticket counters.
func (s *TicketService) MyStats(ctx context.Context, principal domain.Principal) (*repository.TicketStats, error) {
	switch principal.Role {
	case domain.RoleStudent, domain.RoleFaculty, domain.RoleAdmin:
		userID := principal.UserID
		stats, err := s.tickets.Stats(ctx, &userID)
		if err != nil {
			return nil, storeFailure(err)
		}
		return stats, nil
	default:
		return nil, apperrors.NewForbidden("unrecognized role")
	}
}

// AdminDashboardStats returns portal-wide counters for an admin, with
// AssignedToMe computed against the calling principal.
func (s *TicketService) AdminDashboardStats(ctx context.Context, principal domain.Principal) (*repository.AdminStats, error) {
	if principal.Role != domain.RoleAdmin {
		return nil, apperrors.NewForbidden("admin role required")
	}
	stats, err := s.tickets.AdminStats(ctx, principal.UserID)
	if err != nil {
		return nil, storeFailure(err)
	}
	return stats, nil
}

// ListITStaff returns all admin-role users.
func (s *TicketService) ListITStaff(ctx context.Context, principal domain.Principal) ([]domain.User, error) {
	if principal.Role != domain.RoleAdmin {
		return nil, apperrors.NewForbidden("admin role required")
	}
	staff, err := s.users.ListByRole(ctx, domain.RoleAdmin)
	if err != nil {
		return nil, storeFailure(err)
	}
	return staff, nil
}

// StaffProvisionInput describes a staff account to create or promote.
type StaffProvisionInput struct {
	ID        string
	Email     string
	FirstName string
	LastName  string
}

// ProvisionStaff upserts an admin-role account. The transport layer guards
// this with the provisioning key; no principal is involved.
func (s *TicketService) ProvisionStaff(ctx context.Context, input StaffProvisionInput) (*domain.User, error) {
	if strings.TrimSpace(input.ID) == "" {
		return nil, apperrors.NewValidationError("invalid staff account", map[string]any{"id": "required"})
	}
	user := &domain.User{
		ID:        strings.TrimSpace(input.ID),
		Email:     strings.TrimSpace(input.Email),
		FirstName: strings.TrimSpace(input.FirstName),
		LastName:  strings.TrimSpace(input.LastName),
		Role:      domain.RoleAdmin,
	}
	if err := s.users.Upsert(ctx, user); err != nil {
		return nil, storeFailure(err)
	}
	return user, nil
}

// validateUpdate checks field values and the assignee invariant: an
// assignee must be a known admin-role user.
func (s *TicketService) validateUpdate(ctx context.Context, update repository.TicketUpdate) error {
	details := map[string]any{}
	if update.Subject != nil && strings.TrimSpace(*update.Subject) == "" {
		details["subject"] = "must not be empty"
	}
	if update.Description != nil && strings.TrimSpace(*update.Description) == "" {
		details["description"] = "must not be empty"
	}
	if update.IssueType != nil && strings.TrimSpace(*update.IssueType) == "" {
		details["issueType"] = "must not be empty"
	}
	if update.Status != nil && !update.Status.Valid() {
		details["status"] = "must be one of new, in-progress, resolved, closed"
	}
	if update.Priority != nil && !update.Priority.Valid() {
		details["priority"] = "must be one of low, medium, high, critical"
	}
	if update.AssignedToID != nil && *update.AssignedToID != "" {
		assignee, err := s.users.GetByID(ctx, *update.AssignedToID)
		switch {
		case errors.Is(err, repository.ErrNotFound):
			details["assignedToId"] = "unknown user"
		case err != nil:
			return apperrors.NewStoreError(err)
		case assignee.Role != domain.RoleAdmin:
			details["assignedToId"] = "assignee must be IT staff"
		}
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("invalid ticket update", details)
	}
	return nil
}

func (s *TicketService) loadTicket(ctx context.Context, id int64) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("ticket")
		}
		return nil, apperrors.NewStoreError(err)
	}
	return ticket, nil
}

func (s *TicketService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func storeFailure(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NewNotFound("record")
	}
	return apperrors.NewStoreError(err)
}

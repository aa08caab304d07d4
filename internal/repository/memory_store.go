package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/campushelp/helpdesk-service/internal/domain"
)

// MemoryStore is an in-process implementation of the persistence store,
// selected at process start for tests and database-less development. It is
// injected exactly like the Postgres pool, never reached through a
// package-level singleton. A single mutex guards all records so stats reads
// see one consistent snapshot.
type MemoryStore struct {
	mu            sync.Mutex
	users         map[string]domain.User
	tickets       map[int64]domain.Ticket
	comments      map[int64]domain.Comment
	nextTicketID  int64
	nextCommentID int64
}

// NewMemoryStore initializes an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    make(map[string]domain.User),
		tickets:  make(map[int64]domain.Ticket),
		comments: make(map[int64]domain.Comment),
	}
}

// Users returns the user repository view of the store.
func (s *MemoryStore) Users() UserRepository { return &memoryUserRepository{store: s} }

// Tickets returns the ticket repository view of the store.
func (s *MemoryStore) Tickets() TicketRepository { return &memoryTicketRepository{store: s} }

// Comments returns the comment repository view of the store.
func (s *MemoryStore) Comments() CommentRepository { return &memoryCommentRepository{store: s} }

type memoryUserRepository struct {
	store *MemoryStore
}

func (r *memoryUserRepository) Upsert(ctx context.Context, user *domain.User) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if existing, ok := s.users[user.ID]; ok {
		user.CreatedAt = existing.CreatedAt
	} else {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	s.users[user.ID] = *user
	return nil
}

func (r *memoryUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &user, nil
}

func (r *memoryUserRepository) ListByRole(ctx context.Context, role domain.Role) ([]domain.User, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []domain.User
	for _, user := range s.users {
		if user.Role == role {
			result = append(result, user)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].LastName != result[j].LastName {
			return result[i].LastName < result[j].LastName
		}
		return result[i].FirstName < result[j].FirstName
	})
	return result, nil
}

type memoryTicketRepository struct {
	store *MemoryStore
}

func (r *memoryTicketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[ticket.SubmitterID]; !ok {
		return fmt.Errorf("submitter %s: %w", ticket.SubmitterID, ErrNotFound)
	}
	if ticket.AssignedToID != nil {
		if _, ok := s.users[*ticket.AssignedToID]; !ok {
			return fmt.Errorf("assignee %s: %w", *ticket.AssignedToID, ErrNotFound)
		}
	}

	s.nextTicketID++
	now := time.Now()
	ticket.ID = s.nextTicketID
	ticket.CreatedAt = now
	ticket.UpdatedAt = now

	stored := *ticket
	stored.Submitter = nil
	stored.Assignee = nil
	s.tickets[stored.ID] = stored
	return nil
}

func (r *memoryTicketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.joinedTicketLocked(id)
}

func (r *memoryTicketRepository) ListBySubmitter(ctx context.Context, userID string) ([]domain.Ticket, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []domain.Ticket
	for id, ticket := range s.tickets {
		if ticket.SubmitterID != userID {
			continue
		}
		joined, err := s.joinedTicketLocked(id)
		if err != nil {
			return nil, err
		}
		result = append(result, *joined)
	}
	sortTicketsNewestFirst(result)
	return result, nil
}

func (r *memoryTicketRepository) ListAll(ctx context.Context) ([]domain.Ticket, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]domain.Ticket, 0, len(s.tickets))
	for id := range s.tickets {
		joined, err := s.joinedTicketLocked(id)
		if err != nil {
			return nil, err
		}
		result = append(result, *joined)
	}
	sortTicketsNewestFirst(result)
	return result, nil
}

func (r *memoryTicketRepository) Update(ctx context.Context, id int64, update TicketUpdate) (*domain.Ticket, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	ticket, ok := s.tickets[id]
	if !ok {
		return nil, ErrNotFound
	}

	if update.Subject != nil {
		ticket.Subject = *update.Subject
	}
	if update.Description != nil {
		ticket.Description = *update.Description
	}
	if update.IssueType != nil {
		ticket.IssueType = *update.IssueType
	}
	if update.Priority != nil {
		ticket.Priority = *update.Priority
	}
	if update.Status != nil {
		ticket.Status = *update.Status
	}
	if update.Location != nil {
		location := *update.Location
		ticket.Location = &location
	}
	if update.AssignedToID != nil {
		if *update.AssignedToID == "" {
			ticket.AssignedToID = nil
		} else {
			if _, ok := s.users[*update.AssignedToID]; !ok {
				return nil, fmt.Errorf("assignee %s: %w", *update.AssignedToID, ErrNotFound)
			}
			assignee := *update.AssignedToID
			ticket.AssignedToID = &assignee
		}
	}

	ticket.UpdatedAt = time.Now()
	s.tickets[id] = ticket
	return s.joinedTicketLocked(id)
}

func (r *memoryTicketRepository) Stats(ctx context.Context, submitterID *string) (*TicketStats, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	var stats TicketStats
	for _, ticket := range s.tickets {
		if submitterID != nil && ticket.SubmitterID != *submitterID {
			continue
		}
		stats.Total++
		switch ticket.Status {
		case domain.StatusNew:
			stats.New++
		case domain.StatusInProgress:
			stats.InProgress++
		case domain.StatusResolved:
			stats.Resolved++
		}
		if ticket.Priority.IsHigh() {
			stats.High++
		}
	}
	return &stats, nil
}

func (r *memoryTicketRepository) AdminStats(ctx context.Context, adminID string) (*AdminStats, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	var stats AdminStats
	var resolvedCount int64
	var resolvedTotal time.Duration
	for _, ticket := range s.tickets {
		switch ticket.Status {
		case domain.StatusNew:
			stats.New++
		case domain.StatusInProgress:
			stats.InProgress++
		case domain.StatusResolved:
			resolvedCount++
			resolvedTotal += ticket.UpdatedAt.Sub(ticket.CreatedAt)
		}
		if ticket.Priority.IsHigh() {
			stats.High++
		}
		if ticket.AssignedToID != nil && *ticket.AssignedToID == adminID {
			stats.AssignedToMe++
		}
	}
	if resolvedCount > 0 {
		stats.AvgResolution = resolvedTotal / time.Duration(resolvedCount)
	}
	return &stats, nil
}

type memoryCommentRepository struct {
	store *MemoryStore
}

func (r *memoryCommentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tickets[comment.TicketID]; !ok {
		return fmt.Errorf("ticket %d: %w", comment.TicketID, ErrNotFound)
	}
	if _, ok := s.users[comment.UserID]; !ok {
		return fmt.Errorf("author %s: %w", comment.UserID, ErrNotFound)
	}

	s.nextCommentID++
	comment.ID = s.nextCommentID
	comment.CreatedAt = time.Now()

	stored := *comment
	stored.Author = nil
	s.comments[stored.ID] = stored
	return nil
}

func (r *memoryCommentRepository) ListByTicket(ctx context.Context, ticketID int64) ([]domain.Comment, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []domain.Comment
	for _, comment := range s.comments {
		if comment.TicketID != ticketID {
			continue
		}
		if author, ok := s.users[comment.UserID]; ok {
			authorCopy := author
			comment.Author = &authorCopy
		}
		result = append(result, comment)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})
	return result, nil
}

func (s *MemoryStore) joinedTicketLocked(id int64) (*domain.Ticket, error) {
	ticket, ok := s.tickets[id]
	if !ok {
		return nil, ErrNotFound
	}
	if submitter, ok := s.users[ticket.SubmitterID]; ok {
		submitterCopy := submitter
		ticket.Submitter = &submitterCopy
	}
	if ticket.AssignedToID != nil {
		if assignee, ok := s.users[*ticket.AssignedToID]; ok {
			assigneeCopy := assignee
			ticket.Assignee = &assigneeCopy
		}
	}
	return &ticket, nil
}

func sortTicketsNewestFirst(tickets []domain.Ticket) {
	sort.Slice(tickets, func(i, j int) bool {
		if !tickets[i].CreatedAt.Equal(tickets[j].CreatedAt) {
			return tickets[i].CreatedAt.After(tickets[j].CreatedAt)
		}
		return tickets[i].ID > tickets[j].ID
	})
}

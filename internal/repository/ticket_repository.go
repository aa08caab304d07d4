package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campushelp/helpdesk-service/internal/domain"
)

const ticketJoinColumns = `
        t.id, t.subject, t.description, t.issue_type, t.priority, t.status, t.location,
        t.submitter_id, t.assigned_to_id, t.created_at, t.updated_at,
        s.email, s.first_name, s.last_name, s.role, s.created_at, s.updated_at,
        a.email, a.first_name, a.last_name, a.role, a.created_at, a.updated_at`

const ticketJoinFrom = `
        FROM tickets t
        JOIN users s ON s.id = t.submitter_id
        LEFT JOIN users a ON a.id = t.assigned_to_id`

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository returns a Postgres-backed implementation.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (subject, description, issue_type, priority, status, location, submitter_id, assigned_to_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		ticket.Subject,
		ticket.Description,
		ticket.IssueType,
		ticket.Priority,
		ticket.Status,
		ticket.Location,
		ticket.SubmitterID,
		ticket.AssignedToID,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	query := `SELECT` + ticketJoinColumns + ticketJoinFrom + ` WHERE t.id=$1`
	row := r.pool.QueryRow(ctx, query, id)
	ticket, err := scanJoinedTicket(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return ticket, nil
}

func (r *ticketRepository) ListBySubmitter(ctx context.Context, userID string) ([]domain.Ticket, error) {
	query := `SELECT` + ticketJoinColumns + ticketJoinFrom + ` WHERE t.submitter_id=$1 ORDER BY t.created_at DESC, t.id DESC`
	return r.queryTickets(ctx, query, userID)
}

func (r *ticketRepository) ListAll(ctx context.Context) ([]domain.Ticket, error) {
	query := `SELECT` + ticketJoinColumns + ticketJoinFrom + ` ORDER BY t.created_at DESC, t.id DESC`
	return r.queryTickets(ctx, query)
}

func (r *ticketRepository) Update(ctx context.Context, id int64, update TicketUpdate) (*domain.Ticket, error) {
	set := []string{"updated_at=NOW()"}
	args := []any{}

	appendSet := func(column string, value any) {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s=$%d", column, len(args)))
	}

	if update.Subject != nil {
		appendSet("subject", *update.Subject)
	}
	if update.Description != nil {
		appendSet("description", *update.Description)
	}
	if update.IssueType != nil {
		appendSet("issue_type", *update.IssueType)
	}
	if update.Priority != nil {
		appendSet("priority", *update.Priority)
	}
	if update.Status != nil {
		appendSet("status", *update.Status)
	}
	if update.Location != nil {
		appendSet("location", *update.Location)
	}
	if update.AssignedToID != nil {
		if *update.AssignedToID == "" {
			set = append(set, "assigned_to_id=NULL")
		} else {
			appendSet("assigned_to_id", *update.AssignedToID)
		}
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE tickets SET %s WHERE id=$%d", strings.Join(set, ", "), len(args))

	cmd, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	if cmd.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *ticketRepository) Stats(ctx context.Context, submitterID *string) (*TicketStats, error) {
	// One statement keeps the five counters consistent with each other.
	query := `
        SELECT COUNT(*),
               COUNT(*) FILTER (WHERE status = 'new'),
               COUNT(*) FILTER (WHERE status = 'in-progress'),
               COUNT(*) FILTER (WHERE status = 'resolved'),
               COUNT(*) FILTER (WHERE priority IN ('high', 'critical'))
        FROM tickets`
	args := []any{}
	if submitterID != nil {
		query += ` WHERE submitter_id=$1`
		args = append(args, *submitterID)
	}

	var stats TicketStats
	if err := r.pool.QueryRow(ctx, query, args...).Scan(
		&stats.Total,
		&stats.New,
		&stats.InProgress,
		&stats.Resolved,
		&stats.High,
	); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (r *ticketRepository) AdminStats(ctx context.Context, adminID string) (*AdminStats, error) {
	const query = `
        SELECT COUNT(*) FILTER (WHERE status = 'new'),
               COUNT(*) FILTER (WHERE status = 'in-progress'),
               COUNT(*) FILTER (WHERE priority IN ('high', 'critical')),
               COUNT(*) FILTER (WHERE assigned_to_id = $1),
               COALESCE(EXTRACT(EPOCH FROM AVG(updated_at - created_at) FILTER (WHERE status = 'resolved')), 0)
        FROM tickets`

	var stats AdminStats
	var avgSeconds float64
	if err := r.pool.QueryRow(ctx, query, adminID).Scan(
		&stats.New,
		&stats.InProgress,
		&stats.High,
		&stats.AssignedToMe,
		&avgSeconds,
	); err != nil {
		return nil, err
	}
	stats.AvgResolution = time.Duration(avgSeconds * float64(time.Second))
	return &stats, nil
}

func (r *ticketRepository) queryTickets(ctx context.Context, query string, args ...any) ([]domain.Ticket, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Ticket
	for rows.Next() {
		ticket, err := scanJoinedTicket(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ticket)
	}
	return result, rows.Err()
}

func scanJoinedTicket(row pgx.Row) (*domain.Ticket, error) {
	var (
		ticket    domain.Ticket
		submitter domain.User

		aEmail, aFirst, aLast, aRole *string
		aCreated, aUpdated           *time.Time
	)
	if err := row.Scan(
		&ticket.ID,
		&ticket.Subject,
		&ticket.Description,
		&ticket.IssueType,
		&ticket.Priority,
		&ticket.Status,
		&ticket.Location,
		&ticket.SubmitterID,
		&ticket.AssignedToID,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
		&submitter.Email,
		&submitter.FirstName,
		&submitter.LastName,
		&submitter.Role,
		&submitter.CreatedAt,
		&submitter.UpdatedAt,
		&aEmail,
		&aFirst,
		&aLast,
		&aRole,
		&aCreated,
		&aUpdated,
	); err != nil {
		return nil, err
	}

	submitter.ID = ticket.SubmitterID
	ticket.Submitter = &submitter

	if ticket.AssignedToID != nil {
		assignee := domain.User{ID: *ticket.AssignedToID}
		if aEmail != nil {
			assignee.Email = *aEmail
		}
		if aFirst != nil {
			assignee.FirstName = *aFirst
		}
		if aLast != nil {
			assignee.LastName = *aLast
		}
		if aRole != nil {
			assignee.Role = domain.Role(*aRole)
		}
		if aCreated != nil {
			assignee.CreatedAt = *aCreated
		}
		if aUpdated != nil {
			assignee.UpdatedAt = *aUpdated
		}
		ticket.Assignee = &assignee
	}
	return &ticket, nil
}

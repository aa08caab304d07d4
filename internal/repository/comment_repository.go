package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campushelp/helpdesk-service/internal/domain"
)

type commentRepository struct {
	pool *pgxpool.Pool
}

// NewCommentRepository returns a Postgres-backed implementation.
func NewCommentRepository(pool *pgxpool.Pool) CommentRepository {
	return &commentRepository{pool: pool}
}

func (r *commentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	const query = `
        INSERT INTO ticket_comments (ticket_id, user_id, body, is_internal)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		comment.TicketID,
		comment.UserID,
		comment.Body,
		comment.IsInternal,
	).Scan(&comment.ID, &comment.CreatedAt)
}

func (r *commentRepository) ListByTicket(ctx context.Context, ticketID int64) ([]domain.Comment, error) {
	const query = `
        SELECT c.id, c.ticket_id, c.user_id, c.body, c.is_internal, c.created_at,
               u.email, u.first_name, u.last_name, u.role, u.created_at, u.updated_at
        FROM ticket_comments c
        JOIN users u ON u.id = c.user_id
        WHERE c.ticket_id=$1
        ORDER BY c.created_at DESC, c.id DESC`

	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Comment
	for rows.Next() {
		var comment domain.Comment
		var author domain.User
		if err := rows.Scan(
			&comment.ID,
			&comment.TicketID,
			&comment.UserID,
			&comment.Body,
			&comment.IsInternal,
			&comment.CreatedAt,
			&author.Email,
			&author.FirstName,
			&author.LastName,
			&author.Role,
			&author.CreatedAt,
			&author.UpdatedAt,
		); err != nil {
			return nil, err
		}
		author.ID = comment.UserID
		comment.Author = &author
		result = append(result, comment)
	}
	return result, rows.Err()
}

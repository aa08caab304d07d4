package domain

import "time"

// Comment is an append-only note on a ticket. Internal comments are visible
// to admin-role principals only; the service layer filters them before any
// projection reaches a non-admin reader.
type Comment struct {
	ID         int64
	TicketID   int64
	UserID     string
	Body       string
	IsInternal bool
	CreatedAt  time.Time

	// Joined author record, populated on reads.
	Author *User
}

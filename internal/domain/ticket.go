package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets. Admins may set any
// value; there is no enforced forward-only transition.
type TicketStatus string

const (
	StatusNew        TicketStatus = "new"
	StatusInProgress TicketStatus = "in-progress"
	StatusResolved   TicketStatus = "resolved"
	StatusClosed     TicketStatus = "closed"
)

// Valid reports whether the status is a known value.
func (s TicketStatus) Valid() bool {
	switch s {
	case StatusNew, StatusInProgress, StatusResolved, StatusClosed:
		return true
	}
	return false
}

// TicketPriority enumerates urgency levels.
type TicketPriority string

const (
	PriorityLow      TicketPriority = "low"
	PriorityMedium   TicketPriority = "medium"
	PriorityHigh     TicketPriority = "high"
	PriorityCritical TicketPriority = "critical"
)

// Valid reports whether the priority is a known value.
func (p TicketPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

// IsHigh reports whether the priority counts toward the high-priority
// aggregate (high or critical).
func (p TicketPriority) IsHigh() bool {
	return p == PriorityHigh || p == PriorityCritical
}

// Ticket is the aggregate for support requests. SubmitterID is immutable
// after creation; AssignedToID must reference an admin-role user.
type Ticket struct {
	ID           int64
	Subject      string
	Description  string
	IssueType    string
	Priority     TicketPriority
	Status       TicketStatus
	Location     *string
	SubmitterID  string
	AssignedToID *string
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// Joined user records, populated on reads.
	Submitter *User
	Assignee  *User
}

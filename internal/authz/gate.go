// Package authz holds the authorization rules for tickets and comments.
// Every decision is a pure function of the principal's role and id and the
// ticket's submitter, which keeps the gate trivially unit-testable. Unknown
// roles are denied on every path.
package authz

import "github.com/campushelp/helpdesk-service/internal/domain"

// CanReadTicket reports whether the principal may view the ticket. A ticket
// is visible to its submitter and to admins.
func CanReadTicket(p domain.Principal, submitterID string) bool {
	switch p.Role {
	case domain.RoleAdmin:
		return true
	case domain.RoleStudent, domain.RoleFaculty:
		return p.UserID == submitterID
	default:
		return false
	}
}

// CanWriteTicket reports whether the principal may change ticket fields
// (status, priority, assignment, subject, description, location).
func CanWriteTicket(p domain.Principal) bool {
	return p.Role == domain.RoleAdmin
}

// CanComment reports whether the principal may add a comment to the ticket.
// Anyone who can read the ticket may comment; internal comments are
// reserved to admins.
func CanComment(p domain.Principal, submitterID string, internal bool) bool {
	if !CanReadTicket(p, submitterID) {
		return false
	}
	if internal {
		return p.Role == domain.RoleAdmin
	}
	return true
}

// CanViewInternalComments reports whether internal comments may appear in
// the principal's projections.
func CanViewInternalComments(p domain.Principal) bool {
	return p.Role == domain.RoleAdmin
}

// VisibleComments strips internal comments for principals who may not see
// them. Filtering happens here, server-side, not in the presentation layer.
func VisibleComments(p domain.Principal, comments []domain.Comment) []domain.Comment {
	if CanViewInternalComments(p) {
		return comments
	}
	visible := make([]domain.Comment, 0, len(comments))
	for _, comment := range comments {
		if !comment.IsInternal {
			visible = append(visible, comment)
		}
	}
	return visible
}

package models

import (
	"time"

	"github.com/lib/pq"
)

// ReopeningScope authorizes a class of write operations during a reopening
// window. GENERAL authorizes everything.
type ReopeningScope string

const (
	ScopeGrades      ReopeningScope = "GRADES"
	ScopeAttendance  ReopeningScope = "ATTENDANCE"
	ScopeEvaluations ReopeningScope = "EVALUATIONS"
	ScopeEnrollments ReopeningScope = "ENROLLMENTS"
	ScopeGeneral     ReopeningScope = "GENERAL"
)

// Valid reports whether the scope is one of the five categories.
func (s ReopeningScope) Valid() bool {
	switch s {
	case ScopeGrades, ScopeAttendance, ScopeEvaluations, ScopeEnrollments, ScopeGeneral:
		return true
	}
	return false
}

// ReopeningWindow is a time-boxed, scope-limited exception permitting
// specific writes on an otherwise-closed year. Immutable except the
// termination fields.
type ReopeningWindow struct {
	ID               string         `db:"id" json:"id"`
	TenantID         string         `db:"tenant_id" json:"tenant_id"`
	YearID           string         `db:"year_id" json:"year_id"`
	Reason           string         `db:"reason" json:"reason"`
	Scopes           pq.StringArray `db:"scopes" json:"scopes"`
	ValidFrom        time.Time      `db:"valid_from" json:"valid_from"`
	ValidUntil       time.Time      `db:"valid_until" json:"valid_until"`
	AuthorizedBy     string         `db:"authorized_by" json:"authorized_by"`
	CreatedAt        time.Time      `db:"created_at" json:"created_at"`
	TerminatedAt     *time.Time     `db:"terminated_at" json:"terminated_at,omitempty"`
	TerminatedBy     *string        `db:"terminated_by" json:"terminated_by,omitempty"`
	TerminationNotes *string        `db:"termination_notes" json:"termination_notes,omitempty"`
}

// Active reports whether the window authorizes writes at the given instant.
func (w *ReopeningWindow) Active(now time.Time) bool {
	if w == nil || w.TerminatedAt != nil {
		return false
	}
	return !now.Before(w.ValidFrom) && !w.ValidUntil.Before(now)
}

// HasScope reports whether the window's scope set authorizes the category.
func (w *ReopeningWindow) HasScope(scope ReopeningScope) bool {
	if w == nil {
		return false
	}
	for _, s := range w.Scopes {
		if ReopeningScope(s) == ScopeGeneral || ReopeningScope(s) == scope {
			return true
		}
	}
	return false
}

// ReopeningWindowFilter filters window listings.
type ReopeningWindowFilter struct {
	YearID     string
	ActiveOnly bool
	Page       int
	PageSize   int
}

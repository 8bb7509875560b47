package models

import "time"

// YearStatus represents the lifecycle state of an academic year.
type YearStatus string

const (
	YearStatusActive YearStatus = "ACTIVE"
	YearStatusClosed YearStatus = "CLOSED"
)

// AcademicYear is the yearly teaching cycle and consolidation boundary for a
// tenant. CLOSED is terminal: nothing transitions a year back to ACTIVE, the
// only path to renewed mutability is a reopening window.
type AcademicYear struct {
	ID        string     `db:"id" json:"id"`
	TenantID  string     `db:"tenant_id" json:"tenant_id"`
	Year      int        `db:"year" json:"year"`
	Status    YearStatus `db:"status" json:"status"`
	StartDate time.Time  `db:"start_date" json:"start_date"`
	EndDate   time.Time  `db:"end_date" json:"end_date"`
	ClosedAt  *time.Time `db:"closed_at" json:"closed_at,omitempty"`
	ClosedBy  *string    `db:"closed_by" json:"closed_by,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}

// AcademicYearFilter filters year listings.
type AcademicYearFilter struct {
	Status   YearStatus
	Year     int
	Page     int
	PageSize int
}

package models

import "time"

// ClassGroup is a class within an academic year, positioned in the
// institution's ordinal grade sequence (used by progression checks).
type ClassGroup struct {
	ID           string    `db:"id" json:"id"`
	TenantID     string    `db:"tenant_id" json:"tenant_id"`
	YearID       string    `db:"year_id" json:"year_id"`
	Name         string    `db:"name" json:"name"`
	GradeOrdinal int       `db:"grade_ordinal" json:"grade_ordinal"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// GroupMember links a student to a class group explicitly. Teaching units
// with a group use this membership as their consolidation roster.
type GroupMember struct {
	GroupID   string `db:"group_id" json:"group_id"`
	StudentID string `db:"student_id" json:"student_id"`
	TenantID  string `db:"tenant_id" json:"tenant_id"`
}

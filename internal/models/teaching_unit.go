package models

import "time"

// TeachingUnit is a subject+teacher assignment within an academic year,
// optionally bound to a class group. It is the unit of consolidation.
type TeachingUnit struct {
	ID           string    `db:"id" json:"id"`
	TenantID     string    `db:"tenant_id" json:"tenant_id"`
	YearID       string    `db:"year_id" json:"year_id"`
	SubjectID    string    `db:"subject_id" json:"subject_id"`
	SubjectName  string    `db:"subject_name" json:"subject_name"`
	TeacherID    string    `db:"teacher_id" json:"teacher_id"`
	ClassGroupID *string   `db:"class_group_id" json:"class_group_id,omitempty"`
	PlannedHours int       `db:"planned_hours" json:"planned_hours"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

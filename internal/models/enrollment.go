package models

import "time"

// FinalStatus is the aggregate outcome of an annual enrollment, set once the
// year is consolidated and read by the progression validator afterwards.
type FinalStatus string

const (
	FinalStatusApproved FinalStatus = "APPROVED"
	FinalStatusFailed   FinalStatus = "FAILED"
	FinalStatusPending  FinalStatus = "PENDING"
)

// AnnualEnrollment registers a student in a class group for an academic year.
type AnnualEnrollment struct {
	ID           string      `db:"id" json:"id"`
	TenantID     string      `db:"tenant_id" json:"tenant_id"`
	StudentID    string      `db:"student_id" json:"student_id"`
	YearID       string      `db:"year_id" json:"year_id"`
	ClassGroupID string      `db:"class_group_id" json:"class_group_id"`
	FinalStatus  FinalStatus `db:"final_status" json:"final_status"`
	EnrolledAt   time.Time   `db:"enrolled_at" json:"enrolled_at"`
}

// EnrollmentDetail enriches AnnualEnrollment with year and group context.
type EnrollmentDetail struct {
	AnnualEnrollment
	YearNumber   int    `db:"year_number" json:"year_number"`
	GroupName    string `db:"group_name" json:"group_name"`
	GradeOrdinal int    `db:"grade_ordinal" json:"grade_ordinal"`
}

// EnrollmentFilter filters enrollment listings.
type EnrollmentFilter struct {
	StudentID    string
	YearID       string
	ClassGroupID string
	FinalStatus  FinalStatus
	Page         int
	PageSize     int
}

package models

import "time"

// AcademicSituation is the consolidated outcome for a student in a teaching
// unit. Irregular attendance overrides the grade outcome.
type AcademicSituation string

const (
	SituationApproved         AcademicSituation = "APPROVED"
	SituationFailed           AcademicSituation = "FAILED"
	SituationFailedAttendance AcademicSituation = "FAILED_ATTENDANCE"
)

// Failed reports whether the situation counts as a failed subject.
func (s AcademicSituation) Failed() bool {
	return s == SituationFailed || s == SituationFailedAttendance
}

// HistoricalRecord is the immutable frozen outcome snapshot for a student in
// a teaching unit, created exactly once per (tenant, student, year, unit)
// during consolidation. The repository exposes no update or delete; the
// immutability is a service-level invariant.
type HistoricalRecord struct {
	ID             string            `db:"id" json:"id"`
	TenantID       string            `db:"tenant_id" json:"tenant_id"`
	StudentID      string            `db:"student_id" json:"student_id"`
	YearID         string            `db:"year_id" json:"year_id"`
	UnitID         string            `db:"unit_id" json:"unit_id"`
	SubjectName    string            `db:"subject_name" json:"subject_name"`
	PlannedHours   int               `db:"planned_hours" json:"planned_hours"`
	GivenHours     int               `db:"given_hours" json:"given_hours"`
	Presences      int               `db:"presences" json:"presences"`
	Justified      int               `db:"justified" json:"justified"`
	Unjustified    int               `db:"unjustified" json:"unjustified"`
	AttendancePct  float64           `db:"attendance_pct" json:"attendance_pct"`
	FinalAverage   float64           `db:"final_average" json:"final_average"`
	PartialAverage *float64          `db:"partial_average" json:"partial_average,omitempty"`
	Situation      AcademicSituation `db:"situation" json:"situation"`
	Note           string            `db:"note" json:"note,omitempty"`
	GeneratedBy    string            `db:"generated_by" json:"generated_by"`
	GeneratedAt    time.Time         `db:"generated_at" json:"generated_at"`
}

// HistoricalRecordFilter filters snapshot listings.
type HistoricalRecordFilter struct {
	StudentID string
	YearID    string
	UnitID    string
	Page      int
	PageSize  int
}

// ConsolidationRowError captures a single failed (student, unit) pair during
// consolidation without aborting the batch.
type ConsolidationRowError struct {
	UnitID    string `json:"unit_id"`
	StudentID string `json:"student_id,omitempty"`
	Reason    string `json:"reason"`
}

// ConsolidationReport summarises a year-close consolidation run.
type ConsolidationReport struct {
	YearID           string                  `json:"year_id"`
	TotalCreated     int                     `json:"total_created"`
	AlreadyGenerated bool                    `json:"already_generated"`
	Errors           []ConsolidationRowError `json:"errors,omitempty"`
}

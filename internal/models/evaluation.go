package models

import "time"

// EvaluationType classifies an evaluation fact.
type EvaluationType string

const (
	EvaluationTrimester  EvaluationType = "TRIMESTER"
	EvaluationExam       EvaluationType = "EXAM"
	EvaluationAssignment EvaluationType = "ASSIGNMENT"
	EvaluationRecovery   EvaluationType = "RECOVERY"
	EvaluationFinalExam  EvaluationType = "FINAL_EXAM"
)

// Valid reports whether the type is one of the known values.
func (t EvaluationType) Valid() bool {
	switch t {
	case EvaluationTrimester, EvaluationExam, EvaluationAssignment, EvaluationRecovery, EvaluationFinalExam:
		return true
	}
	return false
}

// Evaluation is an append-only raw evaluation fact: one score for one student
// in one teaching unit. Period carries the trimester number for
// trimester-scheme institutions and is zero otherwise.
type Evaluation struct {
	ID        string         `db:"id" json:"id"`
	TenantID  string         `db:"tenant_id" json:"tenant_id"`
	UnitID    string         `db:"unit_id" json:"unit_id"`
	StudentID string         `db:"student_id" json:"student_id"`
	TeacherID string         `db:"teacher_id" json:"teacher_id"`
	Type      EvaluationType `db:"type" json:"type"`
	Period    int            `db:"period" json:"period"`
	HeldOn    time.Time      `db:"held_on" json:"held_on"`
	Score     float64        `db:"score" json:"score"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt time.Time      `db:"updated_at" json:"updated_at"`
}

// GradeStatus is the pass/fail outcome of the grade calculator alone,
// before attendance precedence is applied.
type GradeStatus string

const (
	GradeApproved GradeStatus = "APPROVED"
	GradeFailed   GradeStatus = "FAILED"
)

// EvaluationView is one entry of the display ordering produced by the grade
// calculator (e.g. "1st exam", "2nd trimester").
type EvaluationView struct {
	EvaluationID string         `json:"evaluation_id"`
	Label        string         `json:"label"`
	Type         EvaluationType `json:"type"`
	Period       int            `json:"period,omitempty"`
	HeldOn       time.Time      `json:"held_on"`
	Score        float64        `json:"score"`
}

// GradeSummary is the output of the grade calculator for one student in one
// teaching unit. On internal failure the calculator returns a zeroed FAILED
// summary with Note set instead of an error, so batch callers never abort.
type GradeSummary struct {
	UnitID         string           `json:"unit_id"`
	StudentID      string           `json:"student_id"`
	FinalAverage   float64          `json:"final_average"`
	PartialAverage *float64         `json:"partial_average,omitempty"`
	Status         GradeStatus      `json:"status"`
	Note           string           `json:"note,omitempty"`
	DisplayOrder   []EvaluationView `json:"display_order,omitempty"`
}

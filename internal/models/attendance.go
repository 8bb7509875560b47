package models

import "time"

// AttendanceStatus classifies a student's mark for a single lesson.
type AttendanceStatus string

const (
	AttendancePresent     AttendanceStatus = "PRESENT"
	AttendanceJustified   AttendanceStatus = "JUSTIFIED"
	AttendanceUnjustified AttendanceStatus = "UNJUSTIFIED"
)

// Valid reports whether the status is one of the known values.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendancePresent, AttendanceJustified, AttendanceUnjustified:
		return true
	}
	return false
}

// Lesson is a single occurrence of a teaching unit. Attendance marks hang off
// lessons; a lesson with no mark for a roster student counts as an
// unjustified absence.
type Lesson struct {
	ID        string    `db:"id" json:"id"`
	TenantID  string    `db:"tenant_id" json:"tenant_id"`
	UnitID    string    `db:"unit_id" json:"unit_id"`
	HeldOn    time.Time `db:"held_on" json:"held_on"`
	Hours     int       `db:"hours" json:"hours"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// AttendanceMark is an append-only raw attendance fact for one student and
// lesson. Mutable until its year closes and no exception applies.
type AttendanceMark struct {
	ID        string           `db:"id" json:"id"`
	TenantID  string           `db:"tenant_id" json:"tenant_id"`
	LessonID  string           `db:"lesson_id" json:"lesson_id"`
	StudentID string           `db:"student_id" json:"student_id"`
	Status    AttendanceStatus `db:"status" json:"status"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt time.Time        `db:"updated_at" json:"updated_at"`
}

// FrequencySituation classifies attendance regularity.
type FrequencySituation string

const (
	FrequencyRegular   FrequencySituation = "REGULAR"
	FrequencyIrregular FrequencySituation = "IRREGULAR"
)

// FrequencySummary is the output of the frequency calculator for one student
// in one teaching unit.
type FrequencySummary struct {
	UnitID       string             `json:"unit_id"`
	StudentID    string             `json:"student_id"`
	TotalLessons int                `json:"total_lessons"`
	Presences    int                `json:"presences"`
	Justified    int                `json:"justified"`
	Unjustified  int                `json:"unjustified"`
	PlannedHours int                `json:"planned_hours"`
	GivenHours   int                `json:"given_hours"`
	Percentage   float64            `json:"percentage"`
	Situation    FrequencySituation `json:"situation"`
}

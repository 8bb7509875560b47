package models

// InstitutionType selects the grading formula and the route sets that differ
// between the two supported institution kinds.
type InstitutionType string

const (
	// InstitutionTrimester grades by trimester-weighted averages.
	InstitutionTrimester InstitutionType = "TRIMESTER"
	// InstitutionExam grades by exam slots (1st/2nd/3rd exam plus optional
	// assignment, recovery and final exam).
	InstitutionExam InstitutionType = "EXAM"
)

// InstitutionConfig is the per-tenant configuration consulted by the grade
// calculator, the progression validator and the reopening permission check.
type InstitutionConfig struct {
	TenantID                 string          `db:"tenant_id" json:"tenant_id"`
	InstitutionType          InstitutionType `db:"institution_type" json:"institution_type"`
	PassingAverage           float64         `db:"passing_average" json:"passing_average"`
	RegularityThreshold      float64         `db:"regularity_threshold" json:"regularity_threshold"`
	AllowProgressionOverride bool            `db:"allow_progression_override" json:"allow_progression_override"`
	ToleratedFailedSubjects  int             `db:"tolerated_failed_subjects" json:"tolerated_failed_subjects"`
}

// DefaultInstitutionConfig returns the fallback applied when a tenant has no
// stored configuration row.
func DefaultInstitutionConfig(tenantID string) *InstitutionConfig {
	return &InstitutionConfig{
		TenantID:            tenantID,
		InstitutionType:     InstitutionTrimester,
		PassingAverage:      6.0,
		RegularityThreshold: 75.0,
	}
}

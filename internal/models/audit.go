package models

import "time"

// AuditAction constants represent actions to be logged.
const (
	AuditActionYearClose           = "YEAR_CLOSE"
	AuditActionConsolidationRun    = "CONSOLIDATION_RUN"
	AuditActionWindowCreate        = "WINDOW_CREATE"
	AuditActionWindowTerminate     = "WINDOW_TERMINATE"
	AuditActionWindowExpire        = "WINDOW_EXPIRE"
	AuditActionScopedWrite         = "SCOPED_WRITE"
	AuditActionGateBypass          = "GATE_BYPASS"
	AuditActionProgressionOverride = "PROGRESSION_OVERRIDE"
	AuditActionEnrollmentCreate    = "ENROLLMENT_CREATE"
)

// AuditLog represents an audit trail record. Emission is always
// fire-and-forget: failures are logged and never block the primary
// operation.
type AuditLog struct {
	ID         string    `db:"id" json:"id"`
	TenantID   string    `db:"tenant_id" json:"tenant_id"`
	UserID     *string   `db:"user_id" json:"user_id,omitempty"`
	Action     string    `db:"action" json:"action"`
	Resource   string    `db:"resource" json:"resource"`
	ResourceID *string   `db:"resource_id" json:"resource_id,omitempty"`
	OldValues  []byte    `db:"old_values" json:"old_values,omitempty"`
	NewValues  []byte    `db:"new_values" json:"new_values,omitempty"`
	Note       string    `db:"note" json:"note,omitempty"`
	IPAddress  string    `db:"ip_address" json:"ip_address"`
	UserAgent  string    `db:"user_agent" json:"user_agent"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

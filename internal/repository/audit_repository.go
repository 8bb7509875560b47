package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/dsicola/academic-core-api/internal/models"
)

// AuditRepository appends records to the audit trail. The sink is
// append-only: no reads beyond operational tooling, no updates, no deletes.
type AuditRepository struct {
	db *sqlx.DB
}

// NewAuditRepository constructs the repository.
func NewAuditRepository(db *sqlx.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Create appends one audit record.
func (r *AuditRepository) Create(ctx context.Context, log *models.AuditLog) error {
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	log.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO audit_logs (id, tenant_id, user_id, action, resource, resource_id, old_values, new_values, note, ip_address, user_agent, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	if _, err := r.db.ExecContext(ctx, query, log.ID, log.TenantID, log.UserID, log.Action, log.Resource, log.ResourceID, log.OldValues, log.NewValues, log.Note, log.IPAddress, log.UserAgent, log.CreatedAt); err != nil {
		return fmt.Errorf("create audit log: %w", err)
	}
	return nil
}

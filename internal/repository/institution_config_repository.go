package repository

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/dsicola/academic-core-api/internal/models"
)

// InstitutionConfigRepository reads per-tenant configuration.
type InstitutionConfigRepository struct {
	db *sqlx.DB
}

// NewInstitutionConfigRepository constructs the repository.
func NewInstitutionConfigRepository(db *sqlx.DB) *InstitutionConfigRepository {
	return &InstitutionConfigRepository{db: db}
}

// FindByTenant returns the tenant's configuration, falling back to defaults
// when no row exists.
func (r *InstitutionConfigRepository) FindByTenant(ctx context.Context, tenantID string) (*models.InstitutionConfig, error) {
	const query = `SELECT tenant_id, institution_type, passing_average, regularity_threshold, allow_progression_override, tolerated_failed_subjects
        FROM institution_configs WHERE tenant_id = $1`
	var cfg models.InstitutionConfig
	if err := r.db.GetContext(ctx, &cfg, query, tenantID); err != nil {
		if err == sql.ErrNoRows {
			return models.DefaultInstitutionConfig(tenantID), nil
		}
		return nil, err
	}
	return &cfg, nil
}

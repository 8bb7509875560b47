package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/dsicola/academic-core-api/internal/models"
)

// ClassGroupRepository handles class groups and their explicit memberships.
type ClassGroupRepository struct {
	db *sqlx.DB
}

// NewClassGroupRepository constructs the repository.
func NewClassGroupRepository(db *sqlx.DB) *ClassGroupRepository {
	return &ClassGroupRepository{db: db}
}

// FindByID returns a class group scoped to the tenant.
func (r *ClassGroupRepository) FindByID(ctx context.Context, tenantID, id string) (*models.ClassGroup, error) {
	const query = `SELECT id, tenant_id, year_id, name, grade_ordinal, created_at FROM class_groups WHERE tenant_id = $1 AND id = $2`
	var group models.ClassGroup
	if err := r.db.GetContext(ctx, &group, query, tenantID, id); err != nil {
		return nil, err
	}
	return &group, nil
}

// ListMemberIDs returns the student ids explicitly registered in the group.
func (r *ClassGroupRepository) ListMemberIDs(ctx context.Context, tenantID, groupID string) ([]string, error) {
	const query = `SELECT student_id FROM group_members WHERE tenant_id = $1 AND group_id = $2 ORDER BY student_id`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, tenantID, groupID); err != nil {
		return nil, fmt.Errorf("list group members: %w", err)
	}
	return ids, nil
}

package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/dsicola/academic-core-api/internal/models"
)

// ReopeningWindowRepository handles persistence of reopening windows.
type ReopeningWindowRepository struct {
	db *sqlx.DB
}

// NewReopeningWindowRepository constructs the repository.
func NewReopeningWindowRepository(db *sqlx.DB) *ReopeningWindowRepository {
	return &ReopeningWindowRepository{db: db}
}

const reopeningWindowColumns = `id, tenant_id, year_id, reason, scopes, valid_from, valid_until, authorized_by, created_at, terminated_at, terminated_by, termination_notes`

// Create inserts a window, guarding the one-active-window-per-year invariant
// inside the statement itself so two concurrent creations cannot both land.
// Returns false when another active window already exists.
func (r *ReopeningWindowRepository) Create(ctx context.Context, window *models.ReopeningWindow) (bool, error) {
	if window.ID == "" {
		window.ID = uuid.NewString()
	}
	window.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO reopening_windows
        (id, tenant_id, year_id, reason, scopes, valid_from, valid_until, authorized_by, created_at)
        SELECT $1, $2, $3, $4, $5, $6, $7, $8, $9
        WHERE NOT EXISTS (
            SELECT 1 FROM reopening_windows
            WHERE tenant_id = $2 AND year_id = $3 AND terminated_at IS NULL AND valid_until >= $9
        )`
	res, err := r.db.ExecContext(ctx, query,
		window.ID, window.TenantID, window.YearID, window.Reason, window.Scopes,
		window.ValidFrom, window.ValidUntil, window.AuthorizedBy, window.CreatedAt)
	if err != nil {
		return false, fmt.Errorf("create reopening window: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("create reopening window: %w", err)
	}
	return affected == 1, nil
}

// FindByID returns a window scoped to the tenant.
func (r *ReopeningWindowRepository) FindByID(ctx context.Context, tenantID, id string) (*models.ReopeningWindow, error) {
	query := fmt.Sprintf(`SELECT %s FROM reopening_windows WHERE tenant_id = $1 AND id = $2`, reopeningWindowColumns)
	var window models.ReopeningWindow
	if err := r.db.GetContext(ctx, &window, query, tenantID, id); err != nil {
		return nil, err
	}
	return &window, nil
}

// FindActiveByYear returns the single active window for a year, or nil when
// none is active.
func (r *ReopeningWindowRepository) FindActiveByYear(ctx context.Context, tenantID, yearID string, now time.Time) (*models.ReopeningWindow, error) {
	query := fmt.Sprintf(`SELECT %s FROM reopening_windows
        WHERE tenant_id = $1 AND year_id = $2 AND terminated_at IS NULL AND valid_from <= $3 AND valid_until >= $3
        ORDER BY created_at DESC LIMIT 1`, reopeningWindowColumns)
	var window models.ReopeningWindow
	if err := r.db.GetContext(ctx, &window, query, tenantID, yearID, now); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("find active window: %w", err)
	}
	return &window, nil
}

// List returns windows matching the filter.
func (r *ReopeningWindowRepository) List(ctx context.Context, tenantID string, filter models.ReopeningWindowFilter, now time.Time) ([]models.ReopeningWindow, int, error) {
	conditions := []string{"tenant_id = $1"}
	args := []interface{}{tenantID}

	if filter.YearID != "" {
		conditions = append(conditions, fmt.Sprintf("year_id = $%d", len(args)+1))
		args = append(args, filter.YearID)
	}
	if filter.ActiveOnly {
		conditions = append(conditions, fmt.Sprintf("terminated_at IS NULL AND valid_from <= $%d AND valid_until >= $%d", len(args)+1, len(args)+1))
		args = append(args, now)
	}

	clause := " WHERE " + strings.Join(conditions, " AND ")

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT %s FROM reopening_windows%s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		reopeningWindowColumns, clause, size, offset)

	var windows []models.ReopeningWindow
	if err := r.db.SelectContext(ctx, &windows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list reopening windows: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM reopening_windows"+clause, args...); err != nil {
		return nil, 0, fmt.Errorf("count reopening windows: %w", err)
	}
	return windows, total, nil
}

// Terminate sets the termination fields on a not-yet-terminated window.
// Returns false when the window was already terminated.
func (r *ReopeningWindowRepository) Terminate(ctx context.Context, tenantID, id, actorID, notes string, at time.Time) (bool, error) {
	const query = `UPDATE reopening_windows SET terminated_at = $1, terminated_by = $2, termination_notes = $3
        WHERE tenant_id = $4 AND id = $5 AND terminated_at IS NULL`
	res, err := r.db.ExecContext(ctx, query, at, actorID, notes, tenantID, id)
	if err != nil {
		return false, fmt.Errorf("terminate reopening window: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("terminate reopening window: %w", err)
	}
	return affected == 1, nil
}

// ListDue returns windows whose validity has lapsed but which are not yet
// terminated, optionally scoped to one tenant.
func (r *ReopeningWindowRepository) ListDue(ctx context.Context, tenantID string, now time.Time) ([]models.ReopeningWindow, error) {
	conditions := []string{"terminated_at IS NULL", "valid_until < $1"}
	args := []interface{}{now}
	if tenantID != "" {
		conditions = append(conditions, fmt.Sprintf("tenant_id = $%d", len(args)+1))
		args = append(args, tenantID)
	}
	query := fmt.Sprintf(`SELECT %s FROM reopening_windows WHERE %s ORDER BY valid_until`,
		reopeningWindowColumns, strings.Join(conditions, " AND "))
	var windows []models.ReopeningWindow
	if err := r.db.SelectContext(ctx, &windows, query, args...); err != nil {
		return nil, fmt.Errorf("list due windows: %w", err)
	}
	return windows, nil
}

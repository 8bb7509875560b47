package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/dsicola/academic-core-api/internal/models"
)

// AttendanceRepository handles lessons and attendance marks.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs the repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// CreateLesson inserts a lesson occurrence for a teaching unit.
func (r *AttendanceRepository) CreateLesson(ctx context.Context, lesson *models.Lesson) error {
	if lesson.ID == "" {
		lesson.ID = uuid.NewString()
	}
	lesson.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO lessons (id, tenant_id, unit_id, held_on, hours, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := r.db.ExecContext(ctx, query, lesson.ID, lesson.TenantID, lesson.UnitID, lesson.HeldOn, lesson.Hours, lesson.CreatedAt); err != nil {
		return fmt.Errorf("create lesson: %w", err)
	}
	return nil
}

// FindLessonByID returns a lesson scoped to the tenant.
func (r *AttendanceRepository) FindLessonByID(ctx context.Context, tenantID, id string) (*models.Lesson, error) {
	const query = `SELECT id, tenant_id, unit_id, held_on, hours, created_at FROM lessons WHERE tenant_id = $1 AND id = $2`
	var lesson models.Lesson
	if err := r.db.GetContext(ctx, &lesson, query, tenantID, id); err != nil {
		return nil, err
	}
	return &lesson, nil
}

// ListLessonsByUnit returns every lesson of a teaching unit ordered by date.
func (r *AttendanceRepository) ListLessonsByUnit(ctx context.Context, tenantID, unitID string) ([]models.Lesson, error) {
	const query = `SELECT id, tenant_id, unit_id, held_on, hours, created_at FROM lessons
        WHERE tenant_id = $1 AND unit_id = $2 ORDER BY held_on`
	var lessons []models.Lesson
	if err := r.db.SelectContext(ctx, &lessons, query, tenantID, unitID); err != nil {
		return nil, fmt.Errorf("list lessons: %w", err)
	}
	return lessons, nil
}

// UpsertMark records or reclassifies the attendance mark of one student for
// one lesson.
func (r *AttendanceRepository) UpsertMark(ctx context.Context, mark *models.AttendanceMark) error {
	if mark.ID == "" {
		mark.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	mark.UpdatedAt = now
	const query = `INSERT INTO attendance_marks (id, tenant_id, lesson_id, student_id, status, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $6)
        ON CONFLICT (tenant_id, lesson_id, student_id)
        DO UPDATE SET status = EXCLUDED.status, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.ExecContext(ctx, query, mark.ID, mark.TenantID, mark.LessonID, mark.StudentID, mark.Status, now); err != nil {
		return fmt.Errorf("upsert attendance mark: %w", err)
	}
	return nil
}

// FindMarkByID returns a mark scoped to the tenant.
func (r *AttendanceRepository) FindMarkByID(ctx context.Context, tenantID, id string) (*models.AttendanceMark, error) {
	const query = `SELECT id, tenant_id, lesson_id, student_id, status, created_at, updated_at
        FROM attendance_marks WHERE tenant_id = $1 AND id = $2`
	var mark models.AttendanceMark
	if err := r.db.GetContext(ctx, &mark, query, tenantID, id); err != nil {
		return nil, err
	}
	return &mark, nil
}

// MarksByLessonForStudent returns the student's marks across a unit keyed by
// lesson id. Lessons absent from the map carry no mark.
func (r *AttendanceRepository) MarksByLessonForStudent(ctx context.Context, tenantID, unitID, studentID string) (map[string]models.AttendanceStatus, error) {
	const query = `SELECT m.lesson_id, m.status FROM attendance_marks m
        JOIN lessons l ON l.id = m.lesson_id
        WHERE m.tenant_id = $1 AND l.unit_id = $2 AND m.student_id = $3`
	rows := []struct {
		LessonID string                  `db:"lesson_id"`
		Status   models.AttendanceStatus `db:"status"`
	}{}
	if err := r.db.SelectContext(ctx, &rows, query, tenantID, unitID, studentID); err != nil {
		return nil, fmt.Errorf("list marks for student: %w", err)
	}
	marks := make(map[string]models.AttendanceStatus, len(rows))
	for _, row := range rows {
		marks[row.LessonID] = row.Status
	}
	return marks, nil
}

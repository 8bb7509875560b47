package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/dsicola/academic-core-api/internal/models"
	appErrors "github.com/dsicola/academic-core-api/pkg/errors"
)

type reopeningWindowRepository interface {
	Create(ctx context.Context, window *models.ReopeningWindow) (bool, error)
	FindByID(ctx context.Context, tenantID, id string) (*models.ReopeningWindow, error)
	FindActiveByYear(ctx context.Context, tenantID, yearID string, now time.Time) (*models.ReopeningWindow, error)
	List(ctx context.Context, tenantID string, filter models.ReopeningWindowFilter, now time.Time) ([]models.ReopeningWindow, int, error)
	Terminate(ctx context.Context, tenantID, id, actorID, notes string, at time.Time) (bool, error)
	ListDue(ctx context.Context, tenantID string, now time.Time) ([]models.ReopeningWindow, error)
}

type reopeningYearReader interface {
	FindByID(ctx context.Context, tenantID, id string) (*models.AcademicYear, error)
}

type windowCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

type expiryMetrics interface {
	ObserveWindowExpiry(count int)
}

// ReopeningService manages time-boxed, scope-limited exceptions to the
// closed-year write block. At most one window is active per year at any
// instant; windows are never edited after creation, only terminated.
type ReopeningService struct {
	repo          reopeningWindowRepository
	years         reopeningYearReader
	cache         windowCache
	cacheTTL      time.Duration
	audit         *AuditService
	notifications *NotificationService
	metrics       expiryMetrics
	logger        *zap.Logger
}

// NewReopeningService constructs the service.
func NewReopeningService(
	repo reopeningWindowRepository,
	years reopeningYearReader,
	cache windowCache,
	cacheTTL time.Duration,
	audit *AuditService,
	notifications *NotificationService,
	metrics expiryMetrics,
	logger *zap.Logger,
) *ReopeningService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReopeningService{
		repo:          repo,
		years:         years,
		cache:         cache,
		cacheTTL:      cacheTTL,
		audit:         audit,
		notifications: notifications,
		metrics:       metrics,
		logger:        logger,
	}
}

func windowCacheKey(tenantID, yearID string) string {
	return fmt.Sprintf("reopening:active:%s:%s", tenantID, yearID)
}

type CreateWindowInput struct {
	YearID     string    `json:"year_id" binding:"required,uuid"`
	Reason     string    `json:"reason" binding:"required,min=10"`
	Scopes     []string  `json:"scopes" binding:"required,min=1"`
	ValidFrom  time.Time `json:"valid_from" binding:"required"`
	ValidUntil time.Time `json:"valid_until" binding:"required"`
}

// Create opens a reopening window on a closed year. The one-active-window
// invariant is enforced inside the insert itself, so two concurrent requests
// cannot both succeed.
func (s *ReopeningService) Create(ctx context.Context, tenantID, actorID string, input CreateWindowInput) (*models.ReopeningWindow, error) {
	for _, scope := range input.Scopes {
		if !models.ReopeningScope(scope).Valid() {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown reopening scope %q", scope))
		}
	}
	if !input.ValidUntil.After(input.ValidFrom) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "valid_until must be after valid_from")
	}
	if input.ValidUntil.Before(time.Now().UTC()) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "valid_until is already in the past")
	}

	year, err := s.years.FindByID(ctx, tenantID, input.YearID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "academic year not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch academic year")
	}
	if year.Status != models.YearStatusClosed {
		return nil, appErrors.Clone(appErrors.ErrConflict, "reopening windows only apply to closed years")
	}

	window := &models.ReopeningWindow{
		TenantID:     tenantID,
		YearID:       input.YearID,
		Reason:       input.Reason,
		Scopes:       input.Scopes,
		ValidFrom:    input.ValidFrom,
		ValidUntil:   input.ValidUntil,
		AuthorizedBy: actorID,
	}
	created, err := s.repo.Create(ctx, window)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create reopening window")
	}
	if !created {
		return nil, appErrors.Clone(appErrors.ErrConflict, "an active reopening window already exists for this year")
	}

	if err := s.cache.Delete(ctx, windowCacheKey(tenantID, input.YearID)); err != nil {
		s.logger.Sugar().Warnw("failed to invalidate window cache", "year_id", input.YearID, "error", err)
	}
	s.audit.RecordChange(ctx, &models.AuditLog{
		TenantID:   tenantID,
		UserID:     &actorID,
		Action:     models.AuditActionWindowCreate,
		Resource:   "reopening_window",
		ResourceID: &window.ID,
		Note:       input.Reason,
	}, nil, window)
	s.notifications.Notify(tenantID, NotifyWindowCreated, map[string]interface{}{
		"window_id":     window.ID,
		"year_id":       window.YearID,
		"scopes":        window.Scopes,
		"valid_until":   window.ValidUntil,
		"authorized_by": actorID,
	})
	return window, nil
}

// Get returns a single window by ID.
func (s *ReopeningService) Get(ctx context.Context, tenantID, id string) (*models.ReopeningWindow, error) {
	window, err := s.repo.FindByID(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "reopening window not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch reopening window")
	}
	return window, nil
}

// List returns windows matching the filter.
func (s *ReopeningService) List(ctx context.Context, tenantID string, filter models.ReopeningWindowFilter) ([]models.ReopeningWindow, int, error) {
	windows, total, err := s.repo.List(ctx, tenantID, filter, time.Now().UTC())
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list reopening windows")
	}
	return windows, total, nil
}

// ActiveWindow returns the currently active window for a year, or nil. The
// gate calls this on every blocked write, so the lookup is cached briefly;
// a short TTL bounds how long a terminated window can still admit writes.
func (s *ReopeningService) ActiveWindow(ctx context.Context, tenantID, yearID string) (*models.ReopeningWindow, error) {
	now := time.Now().UTC()
	key := windowCacheKey(tenantID, yearID)

	var cached models.ReopeningWindow
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		if cached.Active(now) {
			return &cached, nil
		}
		// Cached but lapsed: fall through to the database.
	}

	window, err := s.repo.FindActiveByYear(ctx, tenantID, yearID, now)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to look up active window")
	}
	if window == nil {
		return nil, nil
	}
	if err := s.cache.Set(ctx, key, window, s.cacheTTL); err != nil {
		s.logger.Sugar().Warnw("failed to cache active window", "year_id", yearID, "error", err)
	}
	return window, nil
}

// TerminateEarly closes a window before its natural expiry. The window stays
// on record with its termination metadata.
func (s *ReopeningService) TerminateEarly(ctx context.Context, tenantID, id, actorID, notes string) (*models.ReopeningWindow, error) {
	window, err := s.Get(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if window.TerminatedAt != nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "reopening window is already terminated")
	}

	at := time.Now().UTC()
	terminated, err := s.repo.Terminate(ctx, tenantID, id, actorID, notes, at)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to terminate reopening window")
	}
	if !terminated {
		return nil, appErrors.Clone(appErrors.ErrConflict, "reopening window is already terminated")
	}

	window.TerminatedAt = &at
	window.TerminatedBy = &actorID
	if notes != "" {
		window.TerminationNotes = &notes
	}

	if err := s.cache.Delete(ctx, windowCacheKey(tenantID, window.YearID)); err != nil {
		s.logger.Sugar().Warnw("failed to invalidate window cache", "year_id", window.YearID, "error", err)
	}
	s.audit.RecordChange(ctx, &models.AuditLog{
		TenantID:   tenantID,
		UserID:     &actorID,
		Action:     models.AuditActionWindowTerminate,
		Resource:   "reopening_window",
		ResourceID: &window.ID,
		Note:       notes,
	}, nil, window)
	s.notifications.Notify(tenantID, NotifyWindowTerminated, map[string]interface{}{
		"window_id":     window.ID,
		"year_id":       window.YearID,
		"terminated_by": actorID,
	})
	return window, nil
}

// ExpireDue sweeps windows whose validity lapsed without an early
// termination, marking each as system-expired. An empty tenantID sweeps
// every tenant. Expiry only affects the records; validity checks are
// time-based, so a lapsed window stops admitting writes whether or not
// the sweep has run yet.
func (s *ReopeningService) ExpireDue(ctx context.Context, tenantID string) (int, error) {
	now := time.Now().UTC()
	due, err := s.repo.ListDue(ctx, tenantID, now)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list due windows")
	}

	expired := 0
	for _, window := range due {
		ok, err := s.repo.Terminate(ctx, window.TenantID, window.ID, "system", "expired", now)
		if err != nil {
			s.logger.Sugar().Errorw("failed to expire window", "window_id", window.ID, "error", err)
			continue
		}
		if !ok {
			continue
		}
		expired++
		if err := s.cache.Delete(ctx, windowCacheKey(window.TenantID, window.YearID)); err != nil {
			s.logger.Sugar().Warnw("failed to invalidate window cache", "year_id", window.YearID, "error", err)
		}
		s.audit.Record(ctx, &models.AuditLog{
			TenantID:   window.TenantID,
			Action:     models.AuditActionWindowExpire,
			Resource:   "reopening_window",
			ResourceID: &window.ID,
		})
		s.notifications.Notify(window.TenantID, NotifyWindowExpired, map[string]interface{}{
			"window_id": window.ID,
			"year_id":   window.YearID,
		})
	}

	if expired > 0 {
		s.metrics.ObserveWindowExpiry(expired)
		s.logger.Sugar().Infow("expired reopening windows", "count", expired)
	}
	return expired, nil
}

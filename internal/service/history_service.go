package service

import (
	"context"

	"github.com/dsicola/academic-core-api/internal/models"
	appErrors "github.com/dsicola/academic-core-api/pkg/errors"
)

type historyRepository interface {
	List(ctx context.Context, tenantID string, filter models.HistoricalRecordFilter) ([]models.HistoricalRecord, int, error)
}

// HistoryService exposes read-only access to consolidated snapshots. There
// is deliberately no write surface here.
type HistoryService struct {
	repo historyRepository
}

// NewHistoryService constructs the service.
func NewHistoryService(repo historyRepository) *HistoryService {
	return &HistoryService{repo: repo}
}

// List returns historical records matching the filter.
func (s *HistoryService) List(ctx context.Context, tenantID string, filter models.HistoricalRecordFilter) ([]models.HistoricalRecord, int, error) {
	records, total, err := s.repo.List(ctx, tenantID, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list historical records")
	}
	return records, total, nil
}

package service

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/dsicola/academic-core-api/internal/models"
)

type auditSink interface {
	Create(ctx context.Context, log *models.AuditLog) error
}

// AuditService writes to the append-only audit trail. Emission is
// fire-and-forget: a failed write is logged and never propagates to or
// blocks the primary operation.
type AuditService struct {
	sink   auditSink
	logger *zap.Logger
}

// NewAuditService constructs the service.
func NewAuditService(sink auditSink, logger *zap.Logger) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditService{sink: sink, logger: logger}
}

// Record appends one audit entry, swallowing failures.
func (s *AuditService) Record(ctx context.Context, log *models.AuditLog) {
	if s == nil || s.sink == nil || log == nil {
		return
	}
	if err := s.sink.Create(ctx, log); err != nil {
		s.logger.Sugar().Warnw("audit write failed",
			"action", log.Action, "resource", log.Resource, "tenant_id", log.TenantID, "error", err)
	}
}

// RecordChange marshals before/after payloads and appends one audit entry.
func (s *AuditService) RecordChange(ctx context.Context, log *models.AuditLog, before, after interface{}) {
	if before != nil {
		if raw, err := json.Marshal(before); err == nil {
			log.OldValues = raw
		}
	}
	if after != nil {
		if raw, err := json.Marshal(after); err == nil {
			log.NewValues = raw
		}
	}
	s.Record(ctx, log)
}

package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dsicola/academic-core-api/pkg/jobs"
)

// Notification event types dispatched to institution admins and platform
// operators.
const (
	NotifyWindowCreated    = "reopening_window.created"
	NotifyWindowTerminated = "reopening_window.terminated"
	NotifyWindowExpired    = "reopening_window.expired"
	NotifyYearClosed       = "academic_year.closed"
)

// NotificationEvent is the payload handed to the external dispatcher.
type NotificationEvent struct {
	Type     string                 `json:"type"`
	TenantID string                 `json:"tenant_id"`
	Data     map[string]interface{} `json:"data,omitempty"`
	SentAt   time.Time              `json:"sent_at"`
}

// NotificationDispatcher is the external delivery collaborator. Delivery is
// best-effort from this service's perspective.
type NotificationDispatcher interface {
	Dispatch(ctx context.Context, event NotificationEvent) error
}

// NotificationService funnels events through a background queue so that a
// slow or failing dispatcher can never block or roll back the operation that
// produced the event.
type NotificationService struct {
	queue  *jobs.Queue
	logger *zap.Logger
}

// NewNotificationService builds the service and its worker queue.
func NewNotificationService(dispatcher NotificationDispatcher, cfg jobs.QueueConfig, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &NotificationService{logger: logger}
	svc.queue = jobs.NewQueue("notifications", func(ctx context.Context, job jobs.Job) error {
		event, ok := job.Payload.(NotificationEvent)
		if !ok {
			return nil
		}
		if dispatcher == nil {
			return nil
		}
		return dispatcher.Dispatch(ctx, event)
	}, cfg)
	return svc
}

// Start launches the dispatch workers.
func (s *NotificationService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the workers.
func (s *NotificationService) Stop() {
	s.queue.Stop()
}

// Notify enqueues an event. Failures are swallowed and logged.
func (s *NotificationService) Notify(tenantID, eventType string, data map[string]interface{}) {
	if s == nil {
		return
	}
	event := NotificationEvent{Type: eventType, TenantID: tenantID, Data: data, SentAt: time.Now().UTC()}
	err := s.queue.Enqueue(jobs.Job{ID: uuid.NewString(), Type: eventType, Payload: event})
	if err != nil {
		s.logger.Sugar().Warnw("notification enqueue failed", "type", eventType, "tenant_id", tenantID, "error", err)
	}
}

// LogDispatcher is the default dispatcher used when no delivery integration
// is configured; it only records the event.
type LogDispatcher struct {
	Logger *zap.Logger
}

// Dispatch implements NotificationDispatcher.
func (d LogDispatcher) Dispatch(_ context.Context, event NotificationEvent) error {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Sugar().Infow("notification dispatched", "type", event.Type, "tenant_id", event.TenantID)
	return nil
}

package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/nightstudy-service/internal/events"
	"github.com/spec-kit/nightstudy-service/internal/observability"
)

// AuditService writes domain events to the log and keeps session counters.
type AuditService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	metrics    *observability.Metrics
}

// NewAuditService creates the service.
func NewAuditService(dispatcher events.Dispatcher, logger *zap.Logger, metrics *observability.Metrics) *AuditService {
	return &AuditService{
		dispatcher: dispatcher,
		logger:     logger.Named("audit"),
		metrics:    metrics,
	}
}

// RegisterHandlers subscribes to events.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.Subscribe(events.EventSessionIssued, a.sessionCounter(observability.SessionIssued))
	a.dispatcher.Subscribe(events.EventSessionRefreshed, a.sessionCounter(observability.SessionRefreshed))
	a.dispatcher.Subscribe(events.EventSessionRevoked, a.handleSessionRevoked)
	a.dispatcher.Subscribe(events.EventRoleChanged, a.logEvent)
	a.dispatcher.Subscribe(events.EventScheduleUpdated, a.logEvent)
	a.dispatcher.Subscribe(events.EventAttendanceRecorded, a.logEvent)
}

func (a *AuditService) sessionCounter(name string) events.EventHandler {
	return func(ctx context.Context, event events.Event) error {
		a.metrics.RecordSessionEvent(name)
		a.logger.Debug(string(event.Type), zap.String("subject_id", event.SubjectID))
		return nil
	}
}

func (a *AuditService) handleSessionRevoked(ctx context.Context, event events.Event) error {
	a.metrics.RecordSessionEvent(observability.SessionRevoked)
	return a.logEvent(ctx, event)
}

func (a *AuditService) logEvent(_ context.Context, event events.Event) error {
	a.logger.Info(string(event.Type),
		zap.String("event_id", event.ID),
		zap.String("subject_id", event.SubjectID),
		zap.String("actor_id", event.Actor.SubjectID),
		zap.Stringer("actor_role", event.Actor.Role),
		zap.Time("timestamp", event.Timestamp),
		zap.Any("payload", event.Payload),
	)
	return nil
}

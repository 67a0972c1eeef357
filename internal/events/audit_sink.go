package events

import (
	"context"

	"propdesk-backend/internal/domain"
	"propdesk-backend/internal/repository"
)

// AuditLogSink stores every event as an audit_logs row.
type AuditLogSink struct {
	repo repository.AuditLogRepository
}

func NewAuditLogSink(repo repository.AuditLogRepository) *AuditLogSink {
	return &AuditLogSink{repo: repo}
}

func (s *AuditLogSink) Name() string { return "audit_log" }

// Lossless makes the bus wait for room rather than drop an audit row.
func (s *AuditLogSink) Lossless() bool { return true }

func (s *AuditLogSink) Handle(ctx context.Context, e domain.Event) error {
	return s.repo.Create(ctx, &domain.AuditLog{
		EventID:    e.ID,
		ActorID:    e.ActorID,
		Action:     string(e.Type),
		EntityType: e.EntityType,
		EntityID:   e.EntityID,
		Before:     e.Before,
		After:      e.After,
		CreatedAt:  e.OccurredAt,
	})
}

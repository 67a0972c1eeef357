package service

import (
	"context"

	"propdesk-backend/internal/domain"
	"propdesk-backend/internal/repository"
)

type auditService struct {
	auditRepo repository.AuditLogRepository
}

func NewAuditService(auditRepo repository.AuditLogRepository) AuditService {
	return &auditService{auditRepo: auditRepo}
}

// History returns the audit trail of one entity, oldest first.
func (s *auditService) History(ctx context.Context, entityType string, entityID int64) ([]domain.AuditLog, error) {
	switch entityType {
	case domain.EntityCommissionRule, domain.EntityAgentTransaction, domain.EntityCommission, domain.EntityAgentApplication:
	default:
		return nil, domain.NewError(domain.KindInvalidInput, "unknown entity type: "+entityType)
	}
	return s.auditRepo.ListByEntity(ctx, entityType, entityID)
}

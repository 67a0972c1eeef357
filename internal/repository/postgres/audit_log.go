package postgres

import (
	"context"
	"database/sql"
	"errors"

	"propdesk-backend/internal/domain"
	"propdesk-backend/internal/logger"
	"propdesk-backend/internal/repository"
)

type auditLogRepository struct {
	db repository.DBTX
}

func NewAuditLogRepository(db repository.DBTX) repository.AuditLogRepository {
	return &auditLogRepository{db: db}
}

func nullJSON(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	return raw
}

// Create is idempotent on event_id so a redelivered event is stored once.
func (r *auditLogRepository) Create(ctx context.Context, e *domain.AuditLog) error {
	query := `INSERT INTO audit_logs (event_id, actor_id, action, entity_type, entity_id, before, after, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	          ON CONFLICT (event_id) DO NOTHING
	          RETURNING id`
	logger.DatabaseCall("INSERT", "audit_logs", "eventID", e.EventID, "action", e.Action)
	err := r.db.QueryRowContext(ctx, query, e.EventID, e.ActorID, e.Action, e.EntityType, e.EntityID,
		nullJSON(e.Before), nullJSON(e.After), e.CreatedAt).Scan(&e.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Already recorded.
			logger.DatabaseResult("INSERT", 0, nil, "eventID", e.EventID)
			return nil
		}
		logger.DatabaseResult("INSERT", 0, err, "eventID", e.EventID)
		return err
	}
	logger.DatabaseResult("INSERT", 1, nil, "auditLogID", e.ID)
	return nil
}

func (r *auditLogRepository) ListByEntity(ctx context.Context, entityType string, entityID int64) ([]domain.AuditLog, error) {
	query := `SELECT id, event_id, actor_id, action, entity_type, entity_id, before, after, created_at
	          FROM audit_logs WHERE entity_type = $1 AND entity_id = $2 ORDER BY created_at, id`
	rows, err := r.db.QueryContext(ctx, query, entityType, entityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.AuditLog
	for rows.Next() {
		var e domain.AuditLog
		var before, after []byte
		if err := rows.Scan(&e.ID, &e.EventID, &e.ActorID, &e.Action, &e.EntityType, &e.EntityID, &before, &after, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Before = before
		e.After = after
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

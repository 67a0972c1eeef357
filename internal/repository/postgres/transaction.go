package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"propdesk-backend/internal/domain"
	"propdesk-backend/internal/logger"
	"propdesk-backend/internal/repository"
)

const transactionColumns = `t.id, t.agent_id, t.action_type, t.target_user_type, t.target_user_id, t.target_tenant_id,
	t.related_entity_type, t.related_entity_id, t.description, t.metadata, t.transaction_amount, t.created_at`

type transactionRepository struct {
	db repository.DBTX
}

func NewTransactionRepository(db repository.DBTX) repository.TransactionRepository {
	return &transactionRepository{db: db}
}

func scanTransaction(row rowScanner) (*domain.AgentTransaction, error) {
	t := &domain.AgentTransaction{}
	var (
		targetKind       string
		userID, tenantID sql.NullInt64
		metadata         []byte
		amount           sql.NullInt64
	)
	err := row.Scan(&t.ID, &t.AgentID, &t.ActionType, &targetKind, &userID, &tenantID,
		&t.RelatedEntity.Type, &t.RelatedEntity.ID, &t.Description, &metadata, &amount, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	target, err := domain.ParseTargetRef(targetKind, int64Ptr(userID), int64Ptr(tenantID))
	if err != nil {
		return nil, fmt.Errorf("transaction %d has a corrupt target: %w", t.ID, err)
	}
	t.Target = target
	t.TransactionAmount = int64Ptr(amount)
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &t.Metadata); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func (r *transactionRepository) Create(ctx context.Context, t *domain.AgentTransaction) error {
	logger.EnterMethod("transactionRepository.Create", "agentID", t.AgentID, "actionType", t.ActionType)

	var metadata []byte
	if len(t.Metadata) > 0 {
		var err error
		if metadata, err = json.Marshal(t.Metadata); err != nil {
			logger.ExitMethodWithError("transactionRepository.Create", err, "reason", "failed to marshal metadata")
			return err
		}
	}

	var userID, tenantID sql.NullInt64
	if id, ok := t.Target.UserID(); ok {
		userID = sql.NullInt64{Int64: id, Valid: true}
	}
	if id, ok := t.Target.TenantID(); ok {
		tenantID = sql.NullInt64{Int64: id, Valid: true}
	}

	query := `INSERT INTO agent_transactions (agent_id, action_type, target_user_type, target_user_id, target_tenant_id,
	          related_entity_type, related_entity_id, description, metadata, transaction_amount)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id, created_at`
	logger.DatabaseCall("INSERT", "agent_transactions", "agentID", t.AgentID)
	err := r.db.QueryRowContext(ctx, query, t.AgentID, t.ActionType, string(t.Target.Kind()), userID, tenantID,
		t.RelatedEntity.Type, t.RelatedEntity.ID, t.Description, metadata, nullInt64(t.TransactionAmount)).
		Scan(&t.ID, &t.CreatedAt)
	logger.DatabaseResult("INSERT", 1, err, "transactionID", t.ID)

	if err != nil {
		logger.ExitMethodWithError("transactionRepository.Create", err, "agentID", t.AgentID)
		return err
	}
	logger.ExitMethod("transactionRepository.Create", "transactionID", t.ID)
	return nil
}

func (r *transactionRepository) GetByID(ctx context.Context, id int64) (*domain.AgentTransaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM agent_transactions t WHERE t.id = $1`
	t, err := scanTransaction(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound(err, "transaction")
	}
	return t, nil
}

func (r *transactionRepository) List(ctx context.Context, filter domain.TransactionFilter) ([]domain.AgentTransaction, int32, error) {
	where := ` FROM agent_transactions t WHERE 1=1`
	var args []any
	if filter.AgentID > 0 {
		args = append(args, filter.AgentID)
		where += fmt.Sprintf(" AND t.agent_id = $%d", len(args))
	}
	if filter.ActionType != "" {
		args = append(args, filter.ActionType)
		where += fmt.Sprintf(" AND t.action_type = $%d", len(args))
	}
	clause, args := periodClause("t.created_at", filter.Period, args)
	where += clause

	var count int32
	if err := r.db.QueryRowContext(ctx, `SELECT count(*)`+where, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + transactionColumns + where +
		fmt.Sprintf(" ORDER BY t.created_at DESC, t.id DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, filter.PageSize, offsetFor(filter.Page, filter.PageSize))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var txs []domain.AgentTransaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, 0, err
		}
		txs = append(txs, *t)
	}
	return txs, count, rows.Err()
}

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"propdesk-backend/internal/domain"
	"propdesk-backend/internal/logger"
	"propdesk-backend/internal/repository"
)

const commissionColumns = `c.id, c.agent_id, c.transaction_id, c.commission_rule_id, c.amount, c.status, c.paid_at, c.notes, c.created_at, c.updated_at`

type commissionRepository struct {
	db repository.DBTX
}

func NewCommissionRepository(db repository.DBTX) repository.CommissionRepository {
	return &commissionRepository{db: db}
}

func scanCommission(row rowScanner) (*domain.AgentCommission, error) {
	c := &domain.AgentCommission{}
	var paidAt sql.NullTime
	err := row.Scan(&c.ID, &c.AgentID, &c.TransactionID, &c.CommissionRuleID, &c.Amount, &c.Status, &paidAt, &c.Notes, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	c.PaidAt = timePtr(paidAt)
	return c, nil
}

func (r *commissionRepository) Create(ctx context.Context, c *domain.AgentCommission) error {
	logger.EnterMethod("commissionRepository.Create", "transactionID", c.TransactionID, "amount", c.Amount)

	if c.Status == "" {
		c.Status = domain.CommissionStatusPending
	}
	query := `INSERT INTO agent_commissions (agent_id, transaction_id, commission_rule_id, amount, status, notes)
	          VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, created_at, updated_at`
	logger.DatabaseCall("INSERT", "agent_commissions", "transactionID", c.TransactionID)
	err := r.db.QueryRowContext(ctx, query, c.AgentID, c.TransactionID, c.CommissionRuleID, c.Amount, c.Status, c.Notes).
		Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	logger.DatabaseResult("INSERT", 1, err, "commissionID", c.ID)

	if err != nil {
		if isUniqueViolation(err) {
			err = domain.WrapError(domain.KindDuplicateCommission, fmt.Sprintf("transaction %d already has a commission", c.TransactionID), err)
		}
		logger.ExitMethodWithError("commissionRepository.Create", err, "transactionID", c.TransactionID)
		return err
	}
	logger.ExitMethod("commissionRepository.Create", "commissionID", c.ID)
	return nil
}

func (r *commissionRepository) GetByID(ctx context.Context, id int64) (*domain.AgentCommission, error) {
	query := `SELECT ` + commissionColumns + ` FROM agent_commissions c WHERE c.id = $1`
	c, err := scanCommission(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound(err, "commission")
	}
	return c, nil
}

func (r *commissionRepository) GetByTransactionID(ctx context.Context, transactionID int64) (*domain.AgentCommission, error) {
	query := `SELECT ` + commissionColumns + ` FROM agent_commissions c WHERE c.transaction_id = $1`
	c, err := scanCommission(r.db.QueryRowContext(ctx, query, transactionID))
	if err != nil {
		return nil, notFound(err, "commission")
	}
	return c, nil
}

func (r *commissionRepository) Transition(ctx context.Context, id int64, from, to domain.CommissionStatus, notes string) (*domain.AgentCommission, error) {
	logger.EnterMethod("commissionRepository.Transition", "commissionID", id, "from", from, "to", to)

	if !domain.CanTransition(from, to) {
		err := domain.NewError(domain.KindInvalidTransition, fmt.Sprintf("cannot move a commission from %s to %s", from, to))
		logger.ExitMethodWithError("commissionRepository.Transition", err)
		return nil, err
	}

	query := `UPDATE agent_commissions c
	          SET status = $3,
	              notes = CASE WHEN $4 = '' THEN c.notes ELSE $4 END,
	              paid_at = CASE WHEN $3 = 'paid' THEN now() ELSE c.paid_at END,
	              updated_at = now()
	          WHERE c.id = $1 AND c.status = $2
	          RETURNING ` + commissionColumns
	logger.DatabaseCall("UPDATE", "agent_commissions", "commissionID", id)
	c, err := scanCommission(r.db.QueryRowContext(ctx, query, id, from, to, notes))
	if err == nil {
		logger.DatabaseResult("UPDATE", 1, nil, "commissionID", id)
		logger.ExitMethod("commissionRepository.Transition", "commissionID", id, "status", c.Status)
		return c, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		logger.DatabaseResult("UPDATE", 0, err, "commissionID", id)
		logger.ExitMethodWithError("commissionRepository.Transition", err, "commissionID", id)
		return nil, err
	}

	// Nothing matched: either the row is missing or its status already moved on.
	var current domain.CommissionStatus
	err = r.db.QueryRowContext(ctx, `SELECT status FROM agent_commissions WHERE id = $1`, id).Scan(&current)
	if err != nil {
		err = notFound(err, "commission")
	} else {
		err = domain.NewError(domain.KindInvalidTransition, fmt.Sprintf("commission %d is %s, not %s", id, current, from))
	}
	logger.ExitMethodWithError("commissionRepository.Transition", err, "commissionID", id)
	return nil, err
}

func (r *commissionRepository) List(ctx context.Context, filter domain.CommissionFilter) ([]domain.AgentCommission, int32, error) {
	where := ` FROM agent_commissions c JOIN agent_transactions t ON t.id = c.transaction_id WHERE 1=1`
	var args []any
	if filter.AgentID > 0 {
		args = append(args, filter.AgentID)
		where += fmt.Sprintf(" AND c.agent_id = $%d", len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where += fmt.Sprintf(" AND c.status = $%d", len(args))
	}
	if filter.ActionType != "" {
		args = append(args, filter.ActionType)
		where += fmt.Sprintf(" AND t.action_type = $%d", len(args))
	}
	clause, args := periodClause("c.created_at", filter.Period, args)
	where += clause

	var count int32
	if err := r.db.QueryRowContext(ctx, `SELECT count(*)`+where, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + commissionColumns + where +
		fmt.Sprintf(" ORDER BY c.created_at DESC, c.id DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, filter.PageSize, offsetFor(filter.Page, filter.PageSize))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var commissions []domain.AgentCommission
	for rows.Next() {
		c, err := scanCommission(rows)
		if err != nil {
			return nil, 0, err
		}
		commissions = append(commissions, *c)
	}
	return commissions, count, rows.Err()
}

func (r *commissionRepository) CountByRule(ctx context.Context, ruleID int64) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM agent_commissions WHERE commission_rule_id = $1`, ruleID).Scan(&count)
	return count, err
}

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

const ruleColumns = `id, action_type, name, description, commission_type, commission_value, min_amount, max_amount, is_active, created_by, created_at, updated_at`

type ruleRepository struct {
	db repository.DBTX
}

func NewRuleRepository(db repository.DBTX) repository.RuleRepository {
	return &ruleRepository{db: db}
}

func scanRule(row rowScanner) (*domain.CommissionRule, error) {
	rule := &domain.CommissionRule{}
	var minAmount, maxAmount sql.NullInt64
	err := row.Scan(&rule.ID, &rule.ActionType, &rule.Name, &rule.Description, &rule.CommissionType, &rule.CommissionValue,
		&minAmount, &maxAmount, &rule.IsActive, &rule.CreatedBy, &rule.CreatedAt, &rule.UpdatedAt)
	if err != nil {
		return nil, err
	}
	rule.MinAmount = int64Ptr(minAmount)
	rule.MaxAmount = int64Ptr(maxAmount)
	return rule, nil
}

func activeRuleConflict(err error, actionType domain.ActionType) error {
	if isUniqueViolation(err) {
		return domain.WrapError(domain.KindActiveRuleExists, "an active rule already exists for "+string(actionType), err)
	}
	return err
}

func (r *ruleRepository) Create(ctx context.Context, rule *domain.CommissionRule) error {
	logger.EnterMethod("ruleRepository.Create", "actionType", rule.ActionType, "name", rule.Name)

	query := `INSERT INTO commission_rules (action_type, name, description, commission_type, commission_value, min_amount, max_amount, is_active, created_by)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id, created_at, updated_at`
	logger.DatabaseCall("INSERT", "commission_rules", "actionType", rule.ActionType)
	err := r.db.QueryRowContext(ctx, query, rule.ActionType, rule.Name, rule.Description, rule.CommissionType, rule.CommissionValue,
		nullInt64(rule.MinAmount), nullInt64(rule.MaxAmount), rule.IsActive, rule.CreatedBy).
		Scan(&rule.ID, &rule.CreatedAt, &rule.UpdatedAt)
	logger.DatabaseResult("INSERT", 1, err, "ruleID", rule.ID)

	if err != nil {
		err = activeRuleConflict(err, rule.ActionType)
		logger.ExitMethodWithError("ruleRepository.Create", err)
		return err
	}
	logger.ExitMethod("ruleRepository.Create", "ruleID", rule.ID)
	return nil
}

func (r *ruleRepository) GetByID(ctx context.Context, id int64) (*domain.CommissionRule, error) {
	query := `SELECT ` + ruleColumns + ` FROM commission_rules WHERE id = $1`
	rule, err := scanRule(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound(err, "commission rule")
	}
	return rule, nil
}

// FindActive picks the newest active rule; there is normally at most one.
func (r *ruleRepository) FindActive(ctx context.Context, actionType domain.ActionType) (*domain.CommissionRule, error) {
	query := `SELECT ` + ruleColumns + ` FROM commission_rules
	          WHERE action_type = $1 AND is_active = TRUE
	          ORDER BY created_at DESC, id DESC LIMIT 1`
	logger.DatabaseCall("SELECT", "commission_rules", "actionType", actionType)
	rule, err := scanRule(r.db.QueryRowContext(ctx, query, actionType))
	if errors.Is(err, sql.ErrNoRows) {
		logger.DatabaseResult("SELECT", 0, nil, "actionType", actionType)
		return nil, nil
	}
	if err != nil {
		logger.DatabaseResult("SELECT", 0, err, "actionType", actionType)
		return nil, err
	}
	logger.DatabaseResult("SELECT", 1, nil, "ruleID", rule.ID)
	return rule, nil
}

func (r *ruleRepository) Update(ctx context.Context, rule *domain.CommissionRule) error {
	logger.EnterMethod("ruleRepository.Update", "ruleID", rule.ID)

	query := `UPDATE commission_rules
	          SET name = $2, description = $3, commission_type = $4, commission_value = $5, min_amount = $6, max_amount = $7, updated_at = now()
	          WHERE id = $1 RETURNING updated_at`
	err := r.db.QueryRowContext(ctx, query, rule.ID, rule.Name, rule.Description, rule.CommissionType, rule.CommissionValue,
		nullInt64(rule.MinAmount), nullInt64(rule.MaxAmount)).Scan(&rule.UpdatedAt)
	if err != nil {
		err = notFound(err, "commission rule")
		logger.ExitMethodWithError("ruleRepository.Update", err, "ruleID", rule.ID)
		return err
	}
	logger.ExitMethod("ruleRepository.Update", "ruleID", rule.ID)
	return nil
}

func (r *ruleRepository) SetActive(ctx context.Context, id int64, active bool) (*domain.CommissionRule, error) {
	logger.EnterMethod("ruleRepository.SetActive", "ruleID", id, "active", active)

	query := `UPDATE commission_rules SET is_active = $2, updated_at = now() WHERE id = $1 RETURNING ` + ruleColumns
	rule, err := scanRule(r.db.QueryRowContext(ctx, query, id, active))
	if err != nil {
		err = notFound(err, "commission rule")
		if isUniqueViolation(err) {
			err = domain.WrapError(domain.KindActiveRuleExists, "an active rule already exists for this action type", err)
		}
		logger.ExitMethodWithError("ruleRepository.SetActive", err, "ruleID", id)
		return nil, err
	}
	logger.ExitMethod("ruleRepository.SetActive", "ruleID", id)
	return rule, nil
}

func (r *ruleRepository) Delete(ctx context.Context, id int64) error {
	logger.EnterMethod("ruleRepository.Delete", "ruleID", id)

	result, err := r.db.ExecContext(ctx, `DELETE FROM commission_rules WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			err = domain.WrapError(domain.KindRuleInUse, fmt.Sprintf("commission rule %d is referenced by commissions", id), err)
		}
		logger.ExitMethodWithError("ruleRepository.Delete", err, "ruleID", id)
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	logger.DatabaseResult("DELETE", rows, nil, "ruleID", id)
	if rows == 0 {
		return domain.NewError(domain.KindNotFound, "commission rule not found")
	}
	logger.ExitMethod("ruleRepository.Delete", "ruleID", id)
	return nil
}

func (r *ruleRepository) List(ctx context.Context, filter domain.RuleFilter) ([]domain.CommissionRule, error) {
	query := `SELECT ` + ruleColumns + ` FROM commission_rules WHERE 1=1`
	var args []any
	if filter.ActionType != "" {
		args = append(args, filter.ActionType)
		query += fmt.Sprintf(" AND action_type = $%d", len(args))
	}
	if filter.ActiveOnly {
		query += " AND is_active = TRUE"
	}
	query += " ORDER BY action_type, created_at DESC, id DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []domain.CommissionRule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		rules = append(rules, *rule)
	}
	return rules, rows.Err()
}

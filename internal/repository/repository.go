package repository

import (
	"context"
	"database/sql"

	"propdesk-backend/internal/domain"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	ListByRoles(ctx context.Context, roles []domain.UserRole) ([]domain.User, error)
}

type RuleRepository interface {
	// Create returns domain.ErrActiveRuleExists when another active rule has the same action type.
	Create(ctx context.Context, rule *domain.CommissionRule) error
	GetByID(ctx context.Context, id int64) (*domain.CommissionRule, error)
	// FindActive returns nil, nil when no active rule exists for the action type.
	FindActive(ctx context.Context, actionType domain.ActionType) (*domain.CommissionRule, error)
	Update(ctx context.Context, rule *domain.CommissionRule) error
	SetActive(ctx context.Context, id int64, active bool) (*domain.CommissionRule, error)
	// Delete returns domain.ErrRuleInUse when a commission references the rule.
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter domain.RuleFilter) ([]domain.CommissionRule, error)
}

// TransactionRepository is append-only.
type TransactionRepository interface {
	Create(ctx context.Context, tx *domain.AgentTransaction) error
	GetByID(ctx context.Context, id int64) (*domain.AgentTransaction, error)
	List(ctx context.Context, filter domain.TransactionFilter) ([]domain.AgentTransaction, int32, error)
}

type CommissionRepository interface {
	// Create returns domain.ErrDuplicateCommission when the transaction already has a commission.
	Create(ctx context.Context, c *domain.AgentCommission) error
	GetByID(ctx context.Context, id int64) (*domain.AgentCommission, error)
	GetByTransactionID(ctx context.Context, transactionID int64) (*domain.AgentCommission, error)
	// Transition moves a commission from one status to another in a single
	// compare-and-swap statement and returns the updated row.
	Transition(ctx context.Context, id int64, from, to domain.CommissionStatus, notes string) (*domain.AgentCommission, error)
	List(ctx context.Context, filter domain.CommissionFilter) ([]domain.AgentCommission, int32, error)
	CountByRule(ctx context.Context, ruleID int64) (int64, error)
}

type ReportRepository interface {
	ByAgent(ctx context.Context, period domain.Period) ([]domain.AgentReport, error)
	ByActionType(ctx context.Context, period domain.Period) ([]domain.ActionTypeReport, error)
	AgentSummary(ctx context.Context, agentID int64, period domain.Period) (*domain.AgentReport, error)
}

type ApplicationRepository interface {
	Create(ctx context.Context, app *domain.AgentApplication) error
	GetByID(ctx context.Context, id int64) (*domain.AgentApplication, error)
	List(ctx context.Context, status domain.ApplicationStatus) ([]domain.AgentApplication, error)
	// Review records the decision; it fails with domain.ErrInvalidTransition
	// unless the application is still pending.
	Review(ctx context.Context, app *domain.AgentApplication) error
}

type NotificationRepository interface {
	Create(ctx context.Context, note *domain.Notification) error
	List(ctx context.Context, userID int64, limit, offset int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, id, userID int64) error
}

type AuditLogRepository interface {
	Create(ctx context.Context, entry *domain.AuditLog) error
	ListByEntity(ctx context.Context, entityType string, entityID int64) ([]domain.AuditLog, error)
}

// Tx exposes the repositories bound to a single database transaction.
type Tx interface {
	Users() UserRepository
	Rules() RuleRepository
	Transactions() TransactionRepository
	Commissions() CommissionRepository
	Applications() ApplicationRepository
	Savepoint(ctx context.Context, name string) error
	RollbackToSavepoint(ctx context.Context, name string) error
	ReleaseSavepoint(ctx context.Context, name string) error
}

// Transactor runs fn inside a database transaction. The transaction commits
// when fn returns nil and rolls back otherwise.
type Transactor interface {
	WithTx(ctx context.Context, fn func(tx Tx) error) error
}

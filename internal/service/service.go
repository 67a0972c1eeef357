package service

import (
	"context"

	"propdesk-backend/internal/domain"
)

type AuthService interface {
	// Login returns an access token for an active user.
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
}

type RuleService interface {
	// FindActiveRule returns nil, nil when the action type has no active rule.
	FindActiveRule(ctx context.Context, actionType domain.ActionType) (*domain.CommissionRule, error)
	CreateRule(ctx context.Context, actorID int64, rule *domain.CommissionRule) error
	UpdateRule(ctx context.Context, actorID int64, rule *domain.CommissionRule) (*domain.CommissionRule, error)
	SetRuleActive(ctx context.Context, actorID, id int64, active bool) (*domain.CommissionRule, error)
	DeleteRule(ctx context.Context, actorID, id int64) error
	GetRule(ctx context.Context, id int64) (*domain.CommissionRule, error)
	ListRules(ctx context.Context, filter domain.RuleFilter) ([]domain.CommissionRule, error)
}

type RecorderService interface {
	Record(ctx context.Context, req domain.RecordRequest) (*domain.RecordResult, error)
	GetTransaction(ctx context.Context, id int64) (*domain.AgentTransaction, error)
	ListTransactions(ctx context.Context, filter domain.TransactionFilter) ([]domain.AgentTransaction, int32, error)
	// CreateCommissionForTransaction retries commission creation for an
	// already recorded transaction.
	CreateCommissionForTransaction(ctx context.Context, actorID, transactionID int64) (*domain.AgentCommission, error)
}

type LedgerService interface {
	Create(ctx context.Context, txn *domain.AgentTransaction, rule *domain.CommissionRule, amount int64) (*domain.AgentCommission, error)
	Pay(ctx context.Context, actorID, id int64, notes string) (*domain.AgentCommission, error)
	PayBulk(ctx context.Context, actorID int64, ids []int64, notes string) (*domain.BulkPayResult, error)
	Cancel(ctx context.Context, actorID, id int64, notes string) (*domain.AgentCommission, error)
	Get(ctx context.Context, id int64) (*domain.AgentCommission, error)
	List(ctx context.Context, filter domain.CommissionFilter) ([]domain.AgentCommission, int32, error)
}

type ReportService interface {
	ReportByAgent(ctx context.Context, period domain.Period) ([]domain.AgentReport, error)
	ReportByActionType(ctx context.Context, period domain.Period) ([]domain.ActionTypeReport, error)
	AgentSummary(ctx context.Context, agentID int64, period domain.Period) (*domain.AgentReport, error)
}

type ApplicationService interface {
	Apply(ctx context.Context, app *domain.AgentApplication) error
	ListApplications(ctx context.Context, status domain.ApplicationStatus) ([]domain.AgentApplication, error)
	Approve(ctx context.Context, adminID, id int64) (*domain.AgentApplication, error)
	Reject(ctx context.Context, adminID, id int64, reason string) (*domain.AgentApplication, error)
}

type NotificationService interface {
	GetNotifications(ctx context.Context, userID int64, page, pageSize int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, userID, notificationID int64) error
}

type AuditService interface {
	History(ctx context.Context, entityType string, entityID int64) ([]domain.AuditLog, error)
}

type EmailService interface {
	SendAgentCredentials(ctx context.Context, email, name, tempPassword string) error
	SendApplicationRejected(ctx context.Context, email, name, reason string) error
	SendCommissionUpdate(ctx context.Context, email, name string, c *domain.AgentCommission) error
	SendCommissionStatement(ctx context.Context, email, name string, period domain.Period, report *domain.AgentReport, commissions []domain.AgentCommission) error
	SendPendingPayoutDigest(ctx context.Context, email string, reports []domain.AgentReport) error
}

// PushSender delivers mobile push notifications to an agent's devices.
type PushSender interface {
	SendToAgent(ctx context.Context, agentID int64, title, body string, data map[string]string) error
}

const (
	defaultPageSize int32 = 20
	maxPageSize     int32 = 100
)

func normalizePage(page, pageSize int32) (int32, int32) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}

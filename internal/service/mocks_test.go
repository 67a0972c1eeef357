package service_test

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"propdesk-backend/internal/domain"
	"propdesk-backend/internal/repository"
)

// MockUserRepo
type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}
func (m *MockUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserRepo) ListByRoles(ctx context.Context, roles []domain.UserRole) ([]domain.User, error) {
	args := m.Called(ctx, roles)
	return args.Get(0).([]domain.User), args.Error(1)
}

// MockRuleRepo
type MockRuleRepo struct {
	mock.Mock
}

func (m *MockRuleRepo) Create(ctx context.Context, rule *domain.CommissionRule) error {
	args := m.Called(ctx, rule)
	return args.Error(0)
}
func (m *MockRuleRepo) GetByID(ctx context.Context, id int64) (*domain.CommissionRule, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CommissionRule), args.Error(1)
}
func (m *MockRuleRepo) FindActive(ctx context.Context, actionType domain.ActionType) (*domain.CommissionRule, error) {
	args := m.Called(ctx, actionType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CommissionRule), args.Error(1)
}
func (m *MockRuleRepo) Update(ctx context.Context, rule *domain.CommissionRule) error {
	args := m.Called(ctx, rule)
	return args.Error(0)
}
func (m *MockRuleRepo) SetActive(ctx context.Context, id int64, active bool) (*domain.CommissionRule, error) {
	args := m.Called(ctx, id, active)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CommissionRule), args.Error(1)
}
func (m *MockRuleRepo) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockRuleRepo) List(ctx context.Context, filter domain.RuleFilter) ([]domain.CommissionRule, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.CommissionRule), args.Error(1)
}

// MockTransactionRepo
type MockTransactionRepo struct {
	mock.Mock
}

func (m *MockTransactionRepo) Create(ctx context.Context, tx *domain.AgentTransaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}
func (m *MockTransactionRepo) GetByID(ctx context.Context, id int64) (*domain.AgentTransaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AgentTransaction), args.Error(1)
}
func (m *MockTransactionRepo) List(ctx context.Context, filter domain.TransactionFilter) ([]domain.AgentTransaction, int32, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.AgentTransaction), args.Get(1).(int32), args.Error(2)
}

// MockCommissionRepo
type MockCommissionRepo struct {
	mock.Mock
}

func (m *MockCommissionRepo) Create(ctx context.Context, c *domain.AgentCommission) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}
func (m *MockCommissionRepo) GetByID(ctx context.Context, id int64) (*domain.AgentCommission, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AgentCommission), args.Error(1)
}
func (m *MockCommissionRepo) GetByTransactionID(ctx context.Context, transactionID int64) (*domain.AgentCommission, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AgentCommission), args.Error(1)
}
func (m *MockCommissionRepo) Transition(ctx context.Context, id int64, from, to domain.CommissionStatus, notes string) (*domain.AgentCommission, error) {
	args := m.Called(ctx, id, from, to, notes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AgentCommission), args.Error(1)
}
func (m *MockCommissionRepo) List(ctx context.Context, filter domain.CommissionFilter) ([]domain.AgentCommission, int32, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.AgentCommission), args.Get(1).(int32), args.Error(2)
}
func (m *MockCommissionRepo) CountByRule(ctx context.Context, ruleID int64) (int64, error) {
	args := m.Called(ctx, ruleID)
	return args.Get(0).(int64), args.Error(1)
}

// MockReportRepo
type MockReportRepo struct {
	mock.Mock
}

func (m *MockReportRepo) ByAgent(ctx context.Context, period domain.Period) ([]domain.AgentReport, error) {
	args := m.Called(ctx, period)
	return args.Get(0).([]domain.AgentReport), args.Error(1)
}
func (m *MockReportRepo) ByActionType(ctx context.Context, period domain.Period) ([]domain.ActionTypeReport, error) {
	args := m.Called(ctx, period)
	return args.Get(0).([]domain.ActionTypeReport), args.Error(1)
}
func (m *MockReportRepo) AgentSummary(ctx context.Context, agentID int64, period domain.Period) (*domain.AgentReport, error) {
	args := m.Called(ctx, agentID, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AgentReport), args.Error(1)
}

// MockApplicationRepo
type MockApplicationRepo struct {
	mock.Mock
}

func (m *MockApplicationRepo) Create(ctx context.Context, app *domain.AgentApplication) error {
	args := m.Called(ctx, app)
	return args.Error(0)
}
func (m *MockApplicationRepo) GetByID(ctx context.Context, id int64) (*domain.AgentApplication, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AgentApplication), args.Error(1)
}
func (m *MockApplicationRepo) List(ctx context.Context, status domain.ApplicationStatus) ([]domain.AgentApplication, error) {
	args := m.Called(ctx, status)
	return args.Get(0).([]domain.AgentApplication), args.Error(1)
}
func (m *MockApplicationRepo) Review(ctx context.Context, app *domain.AgentApplication) error {
	args := m.Called(ctx, app)
	return args.Error(0)
}

// MockNotificationRepo
type MockNotificationRepo struct {
	mock.Mock
}

func (m *MockNotificationRepo) Create(ctx context.Context, note *domain.Notification) error {
	args := m.Called(ctx, note)
	return args.Error(0)
}
func (m *MockNotificationRepo) List(ctx context.Context, userID int64, limit, offset int32) ([]domain.Notification, int32, error) {
	args := m.Called(ctx, userID, limit, offset)
	return args.Get(0).([]domain.Notification), args.Get(1).(int32), args.Error(2)
}
func (m *MockNotificationRepo) MarkAsRead(ctx context.Context, id, userID int64) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

// MockAuditLogRepo
type MockAuditLogRepo struct {
	mock.Mock
}

func (m *MockAuditLogRepo) Create(ctx context.Context, entry *domain.AuditLog) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}
func (m *MockAuditLogRepo) ListByEntity(ctx context.Context, entityType string, entityID int64) ([]domain.AuditLog, error) {
	args := m.Called(ctx, entityType, entityID)
	return args.Get(0).([]domain.AuditLog), args.Error(1)
}

// MockEmailService
type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendAgentCredentials(ctx context.Context, email, name, tempPassword string) error {
	args := m.Called(ctx, email, name, tempPassword)
	return args.Error(0)
}
func (m *MockEmailService) SendApplicationRejected(ctx context.Context, email, name, reason string) error {
	args := m.Called(ctx, email, name, reason)
	return args.Error(0)
}
func (m *MockEmailService) SendCommissionUpdate(ctx context.Context, email, name string, c *domain.AgentCommission) error {
	args := m.Called(ctx, email, name, c)
	return args.Error(0)
}
func (m *MockEmailService) SendCommissionStatement(ctx context.Context, email, name string, period domain.Period, report *domain.AgentReport, commissions []domain.AgentCommission) error {
	args := m.Called(ctx, email, name, period, report, commissions)
	return args.Error(0)
}
func (m *MockEmailService) SendPendingPayoutDigest(ctx context.Context, email string, reports []domain.AgentReport) error {
	args := m.Called(ctx, email, reports)
	return args.Error(0)
}

// MockPushSender
type MockPushSender struct {
	mock.Mock
}

func (m *MockPushSender) SendToAgent(ctx context.Context, agentID int64, title, body string, data map[string]string) error {
	args := m.Called(ctx, agentID, title, body, data)
	return args.Error(0)
}

// fakeTx hands out the mock repositories and records savepoint operations.
type fakeTx struct {
	users        *MockUserRepo
	rules        *MockRuleRepo
	transactions *MockTransactionRepo
	commissions  *MockCommissionRepo
	applications *MockApplicationRepo
	ops          []string
}

func (f *fakeTx) Users() repository.UserRepository               { return f.users }
func (f *fakeTx) Rules() repository.RuleRepository               { return f.rules }
func (f *fakeTx) Transactions() repository.TransactionRepository { return f.transactions }
func (f *fakeTx) Commissions() repository.CommissionRepository   { return f.commissions }
func (f *fakeTx) Applications() repository.ApplicationRepository { return f.applications }

func (f *fakeTx) Savepoint(ctx context.Context, name string) error {
	f.ops = append(f.ops, "SAVEPOINT "+name)
	return nil
}
func (f *fakeTx) RollbackToSavepoint(ctx context.Context, name string) error {
	f.ops = append(f.ops, "ROLLBACK TO SAVEPOINT "+name)
	return nil
}
func (f *fakeTx) ReleaseSavepoint(ctx context.Context, name string) error {
	f.ops = append(f.ops, "RELEASE SAVEPOINT "+name)
	return nil
}

// fakeTransactor runs fn against its fakeTx and records whether the
// transaction would have committed.
type fakeTransactor struct {
	tx        *fakeTx
	committed bool
}

func (f *fakeTransactor) WithTx(ctx context.Context, fn func(tx repository.Tx) error) error {
	if err := fn(f.tx); err != nil {
		f.tx.ops = append(f.tx.ops, "ROLLBACK")
		return err
	}
	f.tx.ops = append(f.tx.ops, "COMMIT")
	f.committed = true
	return nil
}

// recordingPublisher collects published events.
type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.Event
}

func (p *recordingPublisher) Publish(e domain.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *recordingPublisher) types() []domain.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.EventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

func int64Ptr(v int64) *int64 { return &v }

package http_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"propdesk-backend/internal/domain"
)

type MockRecorderService struct {
	mock.Mock
}

func (m *MockRecorderService) Record(ctx context.Context, req domain.RecordRequest) (*domain.RecordResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RecordResult), args.Error(1)
}
func (m *MockRecorderService) GetTransaction(ctx context.Context, id int64) (*domain.AgentTransaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AgentTransaction), args.Error(1)
}
func (m *MockRecorderService) ListTransactions(ctx context.Context, filter domain.TransactionFilter) ([]domain.AgentTransaction, int32, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.AgentTransaction), args.Get(1).(int32), args.Error(2)
}
func (m *MockRecorderService) CreateCommissionForTransaction(ctx context.Context, actorID, transactionID int64) (*domain.AgentCommission, error) {
	args := m.Called(ctx, actorID, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AgentCommission), args.Error(1)
}

type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) Create(ctx context.Context, txn *domain.AgentTransaction, rule *domain.CommissionRule, amount int64) (*domain.AgentCommission, error) {
	args := m.Called(ctx, txn, rule, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AgentCommission), args.Error(1)
}
func (m *MockLedgerService) Pay(ctx context.Context, actorID, id int64, notes string) (*domain.AgentCommission, error) {
	args := m.Called(ctx, actorID, id, notes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AgentCommission), args.Error(1)
}
func (m *MockLedgerService) PayBulk(ctx context.Context, actorID int64, ids []int64, notes string) (*domain.BulkPayResult, error) {
	args := m.Called(ctx, actorID, ids, notes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BulkPayResult), args.Error(1)
}
func (m *MockLedgerService) Cancel(ctx context.Context, actorID, id int64, notes string) (*domain.AgentCommission, error) {
	args := m.Called(ctx, actorID, id, notes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AgentCommission), args.Error(1)
}
func (m *MockLedgerService) Get(ctx context.Context, id int64) (*domain.AgentCommission, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AgentCommission), args.Error(1)
}
func (m *MockLedgerService) List(ctx context.Context, filter domain.CommissionFilter) ([]domain.AgentCommission, int32, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.AgentCommission), args.Get(1).(int32), args.Error(2)
}

type MockRuleService struct {
	mock.Mock
}

func (m *MockRuleService) FindActiveRule(ctx context.Context, actionType domain.ActionType) (*domain.CommissionRule, error) {
	args := m.Called(ctx, actionType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CommissionRule), args.Error(1)
}
func (m *MockRuleService) CreateRule(ctx context.Context, actorID int64, rule *domain.CommissionRule) error {
	args := m.Called(ctx, actorID, rule)
	return args.Error(0)
}
func (m *MockRuleService) UpdateRule(ctx context.Context, actorID int64, rule *domain.CommissionRule) (*domain.CommissionRule, error) {
	args := m.Called(ctx, actorID, rule)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CommissionRule), args.Error(1)
}
func (m *MockRuleService) SetRuleActive(ctx context.Context, actorID, id int64, active bool) (*domain.CommissionRule, error) {
	args := m.Called(ctx, actorID, id, active)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CommissionRule), args.Error(1)
}
func (m *MockRuleService) DeleteRule(ctx context.Context, actorID, id int64) error {
	args := m.Called(ctx, actorID, id)
	return args.Error(0)
}
func (m *MockRuleService) GetRule(ctx context.Context, id int64) (*domain.CommissionRule, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CommissionRule), args.Error(1)
}
func (m *MockRuleService) ListRules(ctx context.Context, filter domain.RuleFilter) ([]domain.CommissionRule, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.CommissionRule), args.Error(1)
}

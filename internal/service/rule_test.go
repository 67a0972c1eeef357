package service_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"propdesk-backend/internal/domain"
	"propdesk-backend/internal/service"
)

func onboardingRule(id int64, active bool) *domain.CommissionRule {
	return &domain.CommissionRule{
		ID:              id,
		ActionType:      domain.ActionTypeTenantOnboarding,
		Name:            "Onboarding bonus",
		CommissionType:  domain.CommissionTypeFixed,
		CommissionValue: decimal.NewFromInt(5000),
		IsActive:        active,
	}
}

func TestRuleService_CreateRule(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		rules := new(MockRuleRepo)
		pub := &recordingPublisher{}
		svc := service.NewRuleService(rules, new(MockCommissionRepo), pub)

		rule := onboardingRule(0, true)
		rules.On("FindActive", ctx, domain.ActionTypeTenantOnboarding).Return(nil, nil).Once()
		rules.On("Create", ctx, rule).Run(func(args mock.Arguments) {
			args.Get(1).(*domain.CommissionRule).ID = 12
		}).Return(nil).Once()

		require.NoError(t, svc.CreateRule(ctx, 1, rule))
		assert.Equal(t, int64(1), rule.CreatedBy)
		assert.Equal(t, []domain.EventType{domain.EventRuleCreated}, pub.types())
		assert.Equal(t, int64(12), pub.events[0].EntityID)
	})

	t.Run("Second active rule for an action type", func(t *testing.T) {
		rules := new(MockRuleRepo)
		svc := service.NewRuleService(rules, new(MockCommissionRepo), &recordingPublisher{})
		rules.On("FindActive", ctx, domain.ActionTypeTenantOnboarding).Return(onboardingRule(3, true), nil).Once()

		err := svc.CreateRule(ctx, 1, onboardingRule(0, true))
		assert.ErrorIs(t, err, domain.ErrActiveRuleExists)
		rules.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Inactive rule skips the active check", func(t *testing.T) {
		rules := new(MockRuleRepo)
		svc := service.NewRuleService(rules, new(MockCommissionRepo), &recordingPublisher{})
		rules.On("Create", ctx, mock.Anything).Return(nil).Once()

		require.NoError(t, svc.CreateRule(ctx, 1, onboardingRule(0, false)))
		rules.AssertNotCalled(t, "FindActive", mock.Anything, mock.Anything)
	})

	t.Run("Invalid rule", func(t *testing.T) {
		svc := service.NewRuleService(new(MockRuleRepo), new(MockCommissionRepo), &recordingPublisher{})
		rule := onboardingRule(0, true)
		rule.CommissionType = domain.CommissionTypePercentage
		rule.CommissionValue = decimal.NewFromInt(120)

		err := svc.CreateRule(ctx, 1, rule)
		assert.ErrorIs(t, err, domain.ErrInvalidRule)
	})
}

func TestRuleService_UpdateRule_DoesNotTouchCommissions(t *testing.T) {
	ctx := context.Background()
	rules := new(MockRuleRepo)
	commissions := new(MockCommissionRepo)
	pub := &recordingPublisher{}
	svc := service.NewRuleService(rules, commissions, pub)

	rules.On("GetByID", ctx, int64(3)).Return(onboardingRule(3, true), nil).Once()
	rules.On("Update", ctx, mock.MatchedBy(func(r *domain.CommissionRule) bool {
		return r.CommissionValue.Equal(decimal.NewFromInt(7000)) && r.IsActive
	})).Return(nil).Once()

	changes := onboardingRule(3, false)
	changes.CommissionValue = decimal.NewFromInt(7000)
	updated, err := svc.UpdateRule(ctx, 1, changes)
	require.NoError(t, err)
	assert.True(t, updated.IsActive)
	assert.True(t, updated.CommissionValue.Equal(decimal.NewFromInt(7000)))

	require.Len(t, pub.events, 1)
	assert.Contains(t, string(pub.events[0].Before), `"commission_value":"5000"`)
	assert.Contains(t, string(pub.events[0].After), `"commission_value":"7000"`)
	assert.Empty(t, commissions.Calls)
}

func TestRuleService_UpdateRule_ActionTypeIsFixed(t *testing.T) {
	ctx := context.Background()
	rules := new(MockRuleRepo)
	svc := service.NewRuleService(rules, new(MockCommissionRepo), &recordingPublisher{})
	rules.On("GetByID", ctx, int64(3)).Return(onboardingRule(3, true), nil).Once()

	changes := onboardingRule(3, true)
	changes.ActionType = domain.ActionTypeLeaseRenewal
	_, err := svc.UpdateRule(ctx, 1, changes)
	assert.ErrorIs(t, err, domain.ErrInvalidRule)
}

func TestRuleService_SetRuleActive(t *testing.T) {
	ctx := context.Background()

	t.Run("Activate", func(t *testing.T) {
		rules := new(MockRuleRepo)
		pub := &recordingPublisher{}
		svc := service.NewRuleService(rules, new(MockCommissionRepo), pub)
		rules.On("GetByID", ctx, int64(3)).Return(onboardingRule(3, false), nil).Once()
		rules.On("FindActive", ctx, domain.ActionTypeTenantOnboarding).Return(nil, nil).Once()
		rules.On("SetActive", ctx, int64(3), true).Return(onboardingRule(3, true), nil).Once()

		r, err := svc.SetRuleActive(ctx, 1, 3, true)
		require.NoError(t, err)
		assert.True(t, r.IsActive)
		assert.Equal(t, []domain.EventType{domain.EventRuleActivated}, pub.types())
	})

	t.Run("Unchanged is a no-op", func(t *testing.T) {
		rules := new(MockRuleRepo)
		pub := &recordingPublisher{}
		svc := service.NewRuleService(rules, new(MockCommissionRepo), pub)
		rules.On("GetByID", ctx, int64(3)).Return(onboardingRule(3, false), nil).Once()

		_, err := svc.SetRuleActive(ctx, 1, 3, false)
		require.NoError(t, err)
		assert.Empty(t, pub.events)
		rules.AssertNotCalled(t, "SetActive", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Another rule already active", func(t *testing.T) {
		rules := new(MockRuleRepo)
		svc := service.NewRuleService(rules, new(MockCommissionRepo), &recordingPublisher{})
		rules.On("GetByID", ctx, int64(3)).Return(onboardingRule(3, false), nil).Once()
		rules.On("FindActive", ctx, domain.ActionTypeTenantOnboarding).Return(onboardingRule(4, true), nil).Once()

		_, err := svc.SetRuleActive(ctx, 1, 3, true)
		assert.ErrorIs(t, err, domain.ErrActiveRuleExists)
	})
}

func TestRuleService_DeleteRule(t *testing.T) {
	ctx := context.Background()

	t.Run("Referenced rule", func(t *testing.T) {
		rules := new(MockRuleRepo)
		commissions := new(MockCommissionRepo)
		svc := service.NewRuleService(rules, commissions, &recordingPublisher{})
		rules.On("GetByID", ctx, int64(3)).Return(onboardingRule(3, true), nil).Once()
		commissions.On("CountByRule", ctx, int64(3)).Return(int64(2), nil).Once()

		err := svc.DeleteRule(ctx, 1, 3)
		assert.ErrorIs(t, err, domain.ErrRuleInUse)
		rules.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("Unreferenced rule", func(t *testing.T) {
		rules := new(MockRuleRepo)
		commissions := new(MockCommissionRepo)
		pub := &recordingPublisher{}
		svc := service.NewRuleService(rules, commissions, pub)
		rules.On("GetByID", ctx, int64(3)).Return(onboardingRule(3, false), nil).Once()
		commissions.On("CountByRule", ctx, int64(3)).Return(int64(0), nil).Once()
		rules.On("Delete", ctx, int64(3)).Return(nil).Once()

		require.NoError(t, svc.DeleteRule(ctx, 1, 3))
		assert.Equal(t, []domain.EventType{domain.EventRuleDeleted}, pub.types())
		assert.Empty(t, pub.events[0].After)
	})
}

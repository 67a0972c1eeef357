package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"propdesk-backend/internal/domain"
	"propdesk-backend/internal/service"
)

func TestNotificationService_GetNotifications(t *testing.T) {
	ctx := context.Background()
	repo := new(MockNotificationRepo)
	svc := service.NewNotificationService(repo)

	repo.On("List", ctx, int64(7), int32(10), int32(20)).Return([]domain.Notification{{ID: 1}}, int32(21), nil).Once()
	notes, total, err := svc.GetNotifications(ctx, 7, 3, 10)
	require.NoError(t, err)
	assert.Len(t, notes, 1)
	assert.Equal(t, int32(21), total)

	repo.On("List", ctx, int64(7), int32(20), int32(0)).Return([]domain.Notification{}, int32(0), nil).Once()
	_, _, err = svc.GetNotifications(ctx, 7, 0, 0)
	require.NoError(t, err)

	repo.On("MarkAsRead", ctx, int64(4), int64(7)).Return(nil).Once()
	require.NoError(t, svc.MarkAsRead(ctx, 7, 4))
	repo.AssertExpectations(t)
}

func TestCommissionNotifier_Handle(t *testing.T) {
	ctx := context.Background()
	agent := activeAgent(7)
	paid := withStatus(pending(12), domain.CommissionStatusPaid)
	event := domain.NewEvent(domain.EventCommissionPaid, 1, domain.EntityCommission, paid.ID, pending(12), paid)

	t.Run("Notification, email and push", func(t *testing.T) {
		users := new(MockUserRepo)
		notes := new(MockNotificationRepo)
		email := new(MockEmailService)
		push := new(MockPushSender)
		n := service.NewCommissionNotifier(users, notes, email, push)

		users.On("GetByID", ctx, int64(7)).Return(agent, nil).Once()
		notes.On("Create", ctx, mock.MatchedBy(func(note *domain.Notification) bool {
			return note.UserID == 7 && note.Title == "Commission paid" && note.Attributes["commission_id"] == "12"
		})).Return(nil).Once()
		email.On("SendCommissionUpdate", ctx, agent.Email, agent.Name, mock.MatchedBy(func(c *domain.AgentCommission) bool {
			return c.ID == 12 && c.Status == domain.CommissionStatusPaid
		})).Return(nil).Once()
		push.On("SendToAgent", ctx, int64(7), "Commission paid", "Commission #12 of 15.00 has been paid.", mock.Anything).Return(nil).Once()

		require.NoError(t, n.Handle(ctx, event))
		users.AssertExpectations(t)
		notes.AssertExpectations(t)
		email.AssertExpectations(t)
		push.AssertExpectations(t)
	})

	t.Run("Delivery failures are not fatal", func(t *testing.T) {
		users := new(MockUserRepo)
		notes := new(MockNotificationRepo)
		email := new(MockEmailService)
		n := service.NewCommissionNotifier(users, notes, email, nil)

		users.On("GetByID", ctx, int64(7)).Return(agent, nil).Once()
		notes.On("Create", ctx, mock.Anything).Return(nil).Once()
		email.On("SendCommissionUpdate", ctx, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("smtp down")).Once()

		assert.NoError(t, n.Handle(ctx, event))
	})

	t.Run("Other events are ignored", func(t *testing.T) {
		users := new(MockUserRepo)
		n := service.NewCommissionNotifier(users, new(MockNotificationRepo), new(MockEmailService), nil)

		e := domain.NewEvent(domain.EventRuleCreated, 1, domain.EntityCommissionRule, 3, nil, onboardingRule(3, true))
		assert.NoError(t, n.Handle(ctx, e))
		assert.Empty(t, users.Calls)
		assert.Equal(t, "commission_notifier", n.Name())
	})
}

package service

import (
	"context"
	"errors"
	"fmt"

	"propdesk-backend/internal/domain"
	"propdesk-backend/internal/events"
	"propdesk-backend/internal/logger"
	"propdesk-backend/internal/repository"
)

type ledgerService struct {
	commissionRepo repository.CommissionRepository
	publisher      events.Publisher
}

func NewLedgerService(commissionRepo repository.CommissionRepository, publisher events.Publisher) LedgerService {
	return &ledgerService{
		commissionRepo: commissionRepo,
		publisher:      publisher,
	}
}

func newCommission(txn *domain.AgentTransaction, rule *domain.CommissionRule, amount int64) *domain.AgentCommission {
	return &domain.AgentCommission{
		AgentID:          txn.AgentID,
		TransactionID:    txn.ID,
		CommissionRuleID: rule.ID,
		Amount:           amount,
		Status:           domain.CommissionStatusPending,
	}
}

func commissionCreatedEvent(actorID int64, c *domain.AgentCommission) domain.Event {
	return domain.NewEvent(domain.EventCommissionCreated, actorID, domain.EntityCommission, c.ID, nil, c)
}

// Create inserts a pending commission for txn. A second commission for the
// same transaction fails with domain.ErrDuplicateCommission.
func (s *ledgerService) Create(ctx context.Context, txn *domain.AgentTransaction, rule *domain.CommissionRule, amount int64) (*domain.AgentCommission, error) {
	logger.EnterMethod("ledgerService.Create", "transactionID", txn.ID, "ruleID", rule.ID, "amount", amount)

	if amount < 0 {
		err := domain.NewError(domain.KindInvalidAmount, "commission amount must not be negative")
		logger.ExitMethodWithError("ledgerService.Create", err)
		return nil, err
	}

	c := newCommission(txn, rule, amount)
	if err := s.commissionRepo.Create(ctx, c); err != nil {
		logger.ExitMethodWithError("ledgerService.Create", err, "transactionID", txn.ID)
		return nil, err
	}

	s.publisher.Publish(commissionCreatedEvent(txn.AgentID, c))
	logger.ExitMethod("ledgerService.Create", "commissionID", c.ID)
	return c, nil
}

func (s *ledgerService) Pay(ctx context.Context, actorID, id int64, notes string) (*domain.AgentCommission, error) {
	return s.transition(ctx, actorID, id, domain.CommissionStatusPaid, notes)
}

func (s *ledgerService) Cancel(ctx context.Context, actorID, id int64, notes string) (*domain.AgentCommission, error) {
	return s.transition(ctx, actorID, id, domain.CommissionStatusCancelled, notes)
}

func (s *ledgerService) transition(ctx context.Context, actorID, id int64, to domain.CommissionStatus, notes string) (*domain.AgentCommission, error) {
	method := "ledgerService.Pay"
	eventType := domain.EventCommissionPaid
	if to == domain.CommissionStatusCancelled {
		method = "ledgerService.Cancel"
		eventType = domain.EventCommissionCancelled
	}
	logger.EnterMethod(method, "actorID", actorID, "commissionID", id)

	before, err := s.commissionRepo.GetByID(ctx, id)
	if err != nil {
		logger.ExitMethodWithError(method, err, "commissionID", id)
		return nil, err
	}
	if !domain.CanTransition(before.Status, to) {
		err := domain.NewError(domain.KindInvalidTransition, fmt.Sprintf("commission %d is %s", id, before.Status))
		logger.ExitMethodWithError(method, err, "commissionID", id)
		return nil, err
	}

	// The repository re-checks the status in the UPDATE itself, so a
	// concurrent transition makes exactly one caller win.
	after, err := s.commissionRepo.Transition(ctx, id, domain.CommissionStatusPending, to, notes)
	if err != nil {
		logger.ExitMethodWithError(method, err, "commissionID", id)
		return nil, err
	}

	s.publisher.Publish(domain.NewEvent(eventType, actorID, domain.EntityCommission, id, before, after))
	logger.ExitMethod(method, "commissionID", id, "status", after.Status)
	return after, nil
}

// PayBulk pays each id independently. One failing id never blocks the
// others; failures are reported in Skipped.
func (s *ledgerService) PayBulk(ctx context.Context, actorID int64, ids []int64, notes string) (*domain.BulkPayResult, error) {
	logger.EnterMethod("ledgerService.PayBulk", "actorID", actorID, "count", len(ids))

	if len(ids) == 0 {
		err := domain.NewError(domain.KindInvalidInput, "no commission ids given")
		logger.ExitMethodWithError("ledgerService.PayBulk", err)
		return nil, err
	}

	result := &domain.BulkPayResult{
		Paid:    []domain.AgentCommission{},
		Skipped: []domain.SkippedCommission{},
	}
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			result.Skipped = append(result.Skipped, domain.SkippedCommission{
				ID:     id,
				Kind:   domain.KindInvalidInput,
				Reason: "duplicate id in request",
			})
			continue
		}
		seen[id] = struct{}{}

		c, err := s.Pay(ctx, actorID, id, notes)
		if err != nil {
			result.Skipped = append(result.Skipped, skipped(id, err))
			continue
		}
		result.Paid = append(result.Paid, *c)
	}

	logger.ExitMethod("ledgerService.PayBulk", "paid", len(result.Paid), "skipped", len(result.Skipped))
	return result, nil
}

func skipped(id int64, err error) domain.SkippedCommission {
	var e *domain.Error
	if !errors.As(err, &e) {
		return domain.SkippedCommission{ID: id, Kind: domain.KindInternal, Reason: "internal error"}
	}
	return domain.SkippedCommission{ID: id, Kind: e.Kind, Reason: e.Message}
}

func (s *ledgerService) Get(ctx context.Context, id int64) (*domain.AgentCommission, error) {
	return s.commissionRepo.GetByID(ctx, id)
}

func (s *ledgerService) List(ctx context.Context, filter domain.CommissionFilter) ([]domain.AgentCommission, int32, error) {
	filter.Page, filter.PageSize = normalizePage(filter.Page, filter.PageSize)
	return s.commissionRepo.List(ctx, filter)
}

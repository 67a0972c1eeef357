package service

import (
	"context"
	"fmt"

	"propdesk-backend/internal/domain"
	"propdesk-backend/internal/events"
	"propdesk-backend/internal/logger"
	"propdesk-backend/internal/repository"
)

type ruleService struct {
	ruleRepo       repository.RuleRepository
	commissionRepo repository.CommissionRepository
	publisher      events.Publisher
}

func NewRuleService(ruleRepo repository.RuleRepository, commissionRepo repository.CommissionRepository, publisher events.Publisher) RuleService {
	return &ruleService{
		ruleRepo:       ruleRepo,
		commissionRepo: commissionRepo,
		publisher:      publisher,
	}
}

func (s *ruleService) FindActiveRule(ctx context.Context, actionType domain.ActionType) (*domain.CommissionRule, error) {
	return s.ruleRepo.FindActive(ctx, actionType)
}

func (s *ruleService) CreateRule(ctx context.Context, actorID int64, rule *domain.CommissionRule) error {
	logger.EnterMethod("ruleService.CreateRule", "actorID", actorID, "actionType", rule.ActionType)

	if err := rule.Validate(); err != nil {
		logger.ExitMethodWithError("ruleService.CreateRule", err)
		return err
	}
	if rule.IsActive {
		if err := s.ensureNoOtherActive(ctx, rule.ActionType, 0); err != nil {
			logger.ExitMethodWithError("ruleService.CreateRule", err)
			return err
		}
	}

	rule.CreatedBy = actorID
	if err := s.ruleRepo.Create(ctx, rule); err != nil {
		logger.ExitMethodWithError("ruleService.CreateRule", err)
		return fmt.Errorf("failed to create commission rule: %w", err)
	}

	s.publisher.Publish(domain.NewEvent(domain.EventRuleCreated, actorID, domain.EntityCommissionRule, rule.ID, nil, rule))
	logger.ExitMethod("ruleService.CreateRule", "ruleID", rule.ID)
	return nil
}

// UpdateRule changes the name, description, type, value and bounds of a rule.
// The action type and active flag are not editable here. Existing commissions
// keep the amount they were created with.
func (s *ruleService) UpdateRule(ctx context.Context, actorID int64, changes *domain.CommissionRule) (*domain.CommissionRule, error) {
	logger.EnterMethod("ruleService.UpdateRule", "actorID", actorID, "ruleID", changes.ID)

	current, err := s.ruleRepo.GetByID(ctx, changes.ID)
	if err != nil {
		logger.ExitMethodWithError("ruleService.UpdateRule", err)
		return nil, err
	}
	if changes.ActionType != "" && changes.ActionType != current.ActionType {
		err := domain.NewError(domain.KindInvalidRule, "the action type of a rule cannot be changed")
		logger.ExitMethodWithError("ruleService.UpdateRule", err)
		return nil, err
	}

	before := *current
	updated := *current
	updated.Name = changes.Name
	updated.Description = changes.Description
	updated.CommissionType = changes.CommissionType
	updated.CommissionValue = changes.CommissionValue
	updated.MinAmount = changes.MinAmount
	updated.MaxAmount = changes.MaxAmount

	if err := updated.Validate(); err != nil {
		logger.ExitMethodWithError("ruleService.UpdateRule", err)
		return nil, err
	}
	if err := s.ruleRepo.Update(ctx, &updated); err != nil {
		logger.ExitMethodWithError("ruleService.UpdateRule", err)
		return nil, fmt.Errorf("failed to update commission rule: %w", err)
	}

	s.publisher.Publish(domain.NewEvent(domain.EventRuleUpdated, actorID, domain.EntityCommissionRule, updated.ID, &before, &updated))
	logger.ExitMethod("ruleService.UpdateRule", "ruleID", updated.ID)
	return &updated, nil
}

func (s *ruleService) SetRuleActive(ctx context.Context, actorID, id int64, active bool) (*domain.CommissionRule, error) {
	logger.EnterMethod("ruleService.SetRuleActive", "actorID", actorID, "ruleID", id, "active", active)

	current, err := s.ruleRepo.GetByID(ctx, id)
	if err != nil {
		logger.ExitMethodWithError("ruleService.SetRuleActive", err)
		return nil, err
	}
	if current.IsActive == active {
		logger.ExitMethod("ruleService.SetRuleActive", "ruleID", id, "changed", false)
		return current, nil
	}
	if active {
		if err := s.ensureNoOtherActive(ctx, current.ActionType, id); err != nil {
			logger.ExitMethodWithError("ruleService.SetRuleActive", err)
			return nil, err
		}
	}

	updated, err := s.ruleRepo.SetActive(ctx, id, active)
	if err != nil {
		logger.ExitMethodWithError("ruleService.SetRuleActive", err)
		return nil, err
	}

	eventType := domain.EventRuleDeactivated
	if active {
		eventType = domain.EventRuleActivated
	}
	s.publisher.Publish(domain.NewEvent(eventType, actorID, domain.EntityCommissionRule, id, current, updated))
	logger.ExitMethod("ruleService.SetRuleActive", "ruleID", id, "changed", true)
	return updated, nil
}

// DeleteRule removes a rule that no commission references. Referenced rules
// must be deactivated instead.
func (s *ruleService) DeleteRule(ctx context.Context, actorID, id int64) error {
	logger.EnterMethod("ruleService.DeleteRule", "actorID", actorID, "ruleID", id)

	current, err := s.ruleRepo.GetByID(ctx, id)
	if err != nil {
		logger.ExitMethodWithError("ruleService.DeleteRule", err)
		return err
	}

	count, err := s.commissionRepo.CountByRule(ctx, id)
	if err != nil {
		logger.ExitMethodWithError("ruleService.DeleteRule", err)
		return err
	}
	if count > 0 {
		err := domain.NewError(domain.KindRuleInUse, fmt.Sprintf("commission rule %d is referenced by %d commissions; deactivate it instead", id, count))
		logger.ExitMethodWithError("ruleService.DeleteRule", err)
		return err
	}

	if err := s.ruleRepo.Delete(ctx, id); err != nil {
		logger.ExitMethodWithError("ruleService.DeleteRule", err)
		return err
	}

	s.publisher.Publish(domain.NewEvent(domain.EventRuleDeleted, actorID, domain.EntityCommissionRule, id, current, nil))
	logger.ExitMethod("ruleService.DeleteRule", "ruleID", id)
	return nil
}

func (s *ruleService) GetRule(ctx context.Context, id int64) (*domain.CommissionRule, error) {
	return s.ruleRepo.GetByID(ctx, id)
}

func (s *ruleService) ListRules(ctx context.Context, filter domain.RuleFilter) ([]domain.CommissionRule, error) {
	return s.ruleRepo.List(ctx, filter)
}

func (s *ruleService) ensureNoOtherActive(ctx context.Context, actionType domain.ActionType, exceptID int64) error {
	active, err := s.ruleRepo.FindActive(ctx, actionType)
	if err != nil {
		return err
	}
	if active != nil && active.ID != exceptID {
		return domain.NewError(domain.KindActiveRuleExists,
			fmt.Sprintf("rule %d is already active for %s; deactivate it first", active.ID, actionType))
	}
	return nil
}

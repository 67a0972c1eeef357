package service

import (
	"context"
	"errors"
	"fmt"

	"propdesk-backend/internal/domain"
	"propdesk-backend/internal/events"
	"propdesk-backend/internal/logger"
	"propdesk-backend/internal/repository"
	"propdesk-backend/internal/utils"
)

const commissionSavepoint = "commission_attempt"

type recorderService struct {
	transactor      repository.Transactor
	userRepo        repository.UserRepository
	ruleRepo        repository.RuleRepository
	transactionRepo repository.TransactionRepository
	commissionRepo  repository.CommissionRepository
	publisher       events.Publisher
}

func NewRecorderService(
	transactor repository.Transactor,
	userRepo repository.UserRepository,
	ruleRepo repository.RuleRepository,
	transactionRepo repository.TransactionRepository,
	commissionRepo repository.CommissionRepository,
	publisher events.Publisher,
) RecorderService {
	return &recorderService{
		transactor:      transactor,
		userRepo:        userRepo,
		ruleRepo:        ruleRepo,
		transactionRepo: transactionRepo,
		commissionRepo:  commissionRepo,
		publisher:       publisher,
	}
}

// Record persists an agent action and, when an active rule matches, a pending
// commission for it. The transaction row is kept even when the commission
// cannot be created; the reason is returned in RecordResult.CommissionError.
func (s *recorderService) Record(ctx context.Context, req domain.RecordRequest) (*domain.RecordResult, error) {
	logger.EnterMethod("recorderService.Record", "agentID", req.AgentID, "actionType", req.ActionType)

	if err := s.validate(ctx, &req); err != nil {
		logger.ExitMethodWithError("recorderService.Record", err, "agentID", req.AgentID)
		return nil, err
	}

	actorID := req.RecordedBy
	if actorID == 0 {
		actorID = req.AgentID
	}

	result := &domain.RecordResult{}
	// commission.created is held until the transaction commits.
	pending := &events.Buffer{}
	err := s.transactor.WithTx(ctx, func(tx repository.Tx) error {
		txn := &domain.AgentTransaction{
			AgentID:           req.AgentID,
			ActionType:        req.ActionType,
			Target:            req.Target,
			RelatedEntity:     req.RelatedEntity,
			Description:       req.Description,
			Metadata:          req.Metadata,
			TransactionAmount: req.TransactionAmount,
		}
		if err := tx.Transactions().Create(ctx, txn); err != nil {
			return fmt.Errorf("failed to insert transaction: %w", err)
		}
		result.Transaction = txn

		if err := tx.Savepoint(ctx, commissionSavepoint); err != nil {
			return err
		}
		c, err := attachCommission(ctx, tx.Rules(), NewLedgerService(tx.Commissions(), withActor(actorID, pending)), txn)
		if err != nil {
			logger.WarnContext(ctx, "Commission not created", "transactionID", txn.ID, "error", err)
			result.CommissionError = err
			return tx.RollbackToSavepoint(ctx, commissionSavepoint)
		}
		result.Commission = c
		return tx.ReleaseSavepoint(ctx, commissionSavepoint)
	})
	if err != nil {
		logger.ExitMethodWithError("recorderService.Record", err, "agentID", req.AgentID)
		return nil, err
	}

	s.publisher.Publish(domain.NewEvent(domain.EventTransactionRecorded, actorID, domain.EntityAgentTransaction, result.Transaction.ID, nil, result.Transaction))
	pending.Flush(s.publisher)

	logger.ExitMethod("recorderService.Record", "transactionID", result.Transaction.ID, "commissioned", result.Commission != nil)
	return result, nil
}

func (s *recorderService) validate(ctx context.Context, req *domain.RecordRequest) error {
	if _, err := domain.ParseActionType(string(req.ActionType)); err != nil {
		return err
	}
	if req.Target.IsZero() {
		return domain.NewError(domain.KindInvalidTarget, "a target owner or tenant is required")
	}
	if req.TransactionAmount != nil && *req.TransactionAmount < 0 {
		return domain.NewError(domain.KindInvalidAmount, "transaction amount must not be negative")
	}
	entityType, err := domain.ParseEntityType(string(req.RelatedEntity.Type))
	if err != nil {
		return err
	}
	if entityType == "" {
		entityType = req.ActionType.EntityType()
	}
	req.RelatedEntity.Type = entityType

	agent, err := s.userRepo.GetByID(ctx, req.AgentID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.NewError(domain.KindUnknownAgent, fmt.Sprintf("agent %d does not exist", req.AgentID))
	}
	if err != nil {
		return err
	}
	if !agent.IsActiveAgent() {
		return domain.NewError(domain.KindUnknownAgent, fmt.Sprintf("user %d is not an active agent", req.AgentID))
	}
	return nil
}

// withActor stamps the acting user on events the ledger emits for a commission
// created on someone's behalf.
func withActor(actorID int64, p events.Publisher) events.Publisher {
	return events.PublisherFunc(func(e domain.Event) {
		e.ActorID = actorID
		p.Publish(e)
	})
}

// attachCommission looks up the active rule for txn, computes the amount and
// has the ledger create the commission. It returns nil, nil when no rule is active.
func attachCommission(ctx context.Context, rules repository.RuleRepository, ledger LedgerService, txn *domain.AgentTransaction) (*domain.AgentCommission, error) {
	rule, err := rules.FindActive(ctx, txn.ActionType)
	if err != nil {
		return nil, fmt.Errorf("failed to look up commission rule: %w", err)
	}
	if rule == nil {
		return nil, nil
	}

	amount, err := utils.ComputeCommission(rule, txn.TransactionAmount)
	if err != nil {
		return nil, err
	}
	return ledger.Create(ctx, txn, rule, amount)
}

func (s *recorderService) GetTransaction(ctx context.Context, id int64) (*domain.AgentTransaction, error) {
	return s.transactionRepo.GetByID(ctx, id)
}

func (s *recorderService) ListTransactions(ctx context.Context, filter domain.TransactionFilter) ([]domain.AgentTransaction, int32, error) {
	filter.Page, filter.PageSize = normalizePage(filter.Page, filter.PageSize)
	return s.transactionRepo.List(ctx, filter)
}

func (s *recorderService) CreateCommissionForTransaction(ctx context.Context, actorID, transactionID int64) (*domain.AgentCommission, error) {
	logger.EnterMethod("recorderService.CreateCommissionForTransaction", "actorID", actorID, "transactionID", transactionID)

	txn, err := s.transactionRepo.GetByID(ctx, transactionID)
	if err != nil {
		logger.ExitMethodWithError("recorderService.CreateCommissionForTransaction", err)
		return nil, err
	}

	existing, err := s.commissionRepo.GetByTransactionID(ctx, transactionID)
	if err == nil {
		err = domain.NewError(domain.KindDuplicateCommission, fmt.Sprintf("transaction %d already has commission %d", transactionID, existing.ID))
		logger.ExitMethodWithError("recorderService.CreateCommissionForTransaction", err)
		return nil, err
	}
	if !errors.Is(err, domain.ErrNotFound) {
		logger.ExitMethodWithError("recorderService.CreateCommissionForTransaction", err)
		return nil, err
	}

	c, err := attachCommission(ctx, s.ruleRepo, NewLedgerService(s.commissionRepo, withActor(actorID, s.publisher)), txn)
	if err != nil {
		logger.ExitMethodWithError("recorderService.CreateCommissionForTransaction", err)
		return nil, err
	}
	logger.ExitMethod("recorderService.CreateCommissionForTransaction", "commissioned", c != nil)
	return c, nil
}

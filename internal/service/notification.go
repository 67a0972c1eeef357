package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"propdesk-backend/internal/domain"
	"propdesk-backend/internal/logger"
	"propdesk-backend/internal/repository"
)

type notificationService struct {
	noteRepo repository.NotificationRepository
}

func NewNotificationService(noteRepo repository.NotificationRepository) NotificationService {
	return &notificationService{noteRepo: noteRepo}
}

func (s *notificationService) GetNotifications(ctx context.Context, userID int64, page, pageSize int32) ([]domain.Notification, int32, error) {
	page, pageSize = normalizePage(page, pageSize)
	offset := (page - 1) * pageSize
	return s.noteRepo.List(ctx, userID, pageSize, offset)
}

func (s *notificationService) MarkAsRead(ctx context.Context, userID, notificationID int64) error {
	return s.noteRepo.MarkAsRead(ctx, notificationID, userID)
}

// CommissionNotifier is an event sink that tells agents about their
// commissions: an in-app notification, an email and, when configured, a push.
type CommissionNotifier struct {
	userRepo repository.UserRepository
	noteRepo repository.NotificationRepository
	emailSvc EmailService
	push     PushSender
}

// NewCommissionNotifier builds the sink. push may be nil.
func NewCommissionNotifier(userRepo repository.UserRepository, noteRepo repository.NotificationRepository, emailSvc EmailService, push PushSender) *CommissionNotifier {
	return &CommissionNotifier{
		userRepo: userRepo,
		noteRepo: noteRepo,
		emailSvc: emailSvc,
		push:     push,
	}
}

func (n *CommissionNotifier) Name() string { return "commission_notifier" }

func (n *CommissionNotifier) Handle(ctx context.Context, e domain.Event) error {
	switch e.Type {
	case domain.EventCommissionCreated, domain.EventCommissionPaid, domain.EventCommissionCancelled:
	default:
		return nil
	}

	var c domain.AgentCommission
	if err := json.Unmarshal(e.After, &c); err != nil {
		return fmt.Errorf("failed to decode commission snapshot: %w", err)
	}

	agent, err := n.userRepo.GetByID(ctx, c.AgentID)
	if err != nil {
		return fmt.Errorf("failed to load agent %d: %w", c.AgentID, err)
	}

	title, message := commissionMessage(&c)
	note := &domain.Notification{
		UserID:  agent.ID,
		Title:   title,
		Message: message,
		Attributes: map[string]string{
			"commission_id":  strconv.FormatInt(c.ID, 10),
			"transaction_id": strconv.FormatInt(c.TransactionID, 10),
			"status":         string(c.Status),
			"event":          string(e.Type),
		},
	}
	if err := n.noteRepo.Create(ctx, note); err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	if err := n.emailSvc.SendCommissionUpdate(ctx, agent.Email, agent.Name, &c); err != nil {
		logger.WarnContext(ctx, "Failed to email commission update", "commissionID", c.ID, "error", err)
	}
	if n.push != nil {
		if err := n.push.SendToAgent(ctx, agent.ID, title, message, note.Attributes); err != nil {
			logger.WarnContext(ctx, "Failed to push commission update", "commissionID", c.ID, "error", err)
		}
	}
	return nil
}

func commissionMessage(c *domain.AgentCommission) (string, string) {
	amount := formatAmount(c.Amount)
	switch c.Status {
	case domain.CommissionStatusPaid:
		return "Commission paid", fmt.Sprintf("Commission #%d of %s has been paid.", c.ID, amount)
	case domain.CommissionStatusCancelled:
		return "Commission cancelled", fmt.Sprintf("Commission #%d of %s has been cancelled.", c.ID, amount)
	}
	return "New commission", fmt.Sprintf("You earned %s for transaction #%d.", amount, c.TransactionID)
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"propdesk-backend/internal/domain"
	"propdesk-backend/internal/events"
	"propdesk-backend/internal/logger"
	"propdesk-backend/internal/repository"
)

type applicationService struct {
	transactor repository.Transactor
	appRepo    repository.ApplicationRepository
	emailSvc   EmailService
	publisher  events.Publisher
}

func NewApplicationService(
	transactor repository.Transactor,
	appRepo repository.ApplicationRepository,
	emailSvc EmailService,
	publisher events.Publisher,
) ApplicationService {
	return &applicationService{
		transactor: transactor,
		appRepo:    appRepo,
		emailSvc:   emailSvc,
		publisher:  publisher,
	}
}

func (s *applicationService) Apply(ctx context.Context, app *domain.AgentApplication) error {
	logger.EnterMethod("applicationService.Apply", "email", app.Email)

	app.Email = strings.ToLower(strings.TrimSpace(app.Email))
	app.Name = strings.TrimSpace(app.Name)
	if app.Name == "" || app.Email == "" {
		err := domain.NewError(domain.KindInvalidInput, "name and email are required")
		logger.ExitMethodWithError("applicationService.Apply", err)
		return err
	}
	app.Status = domain.ApplicationStatusPending

	if err := s.appRepo.Create(ctx, app); err != nil {
		logger.ExitMethodWithError("applicationService.Apply", err)
		return err
	}
	logger.ExitMethod("applicationService.Apply", "applicationID", app.ID)
	return nil
}

func (s *applicationService) ListApplications(ctx context.Context, status domain.ApplicationStatus) ([]domain.AgentApplication, error) {
	return s.appRepo.List(ctx, status)
}

// Approve creates an agent account with a temporary password and marks the
// application approved, both in one transaction. The credentials email is
// sent after commit; a delivery failure is logged, not returned.
func (s *applicationService) Approve(ctx context.Context, adminID, id int64) (*domain.AgentApplication, error) {
	logger.EnterMethod("applicationService.Approve", "adminID", adminID, "applicationID", id)

	tempPassword := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	hash, err := bcrypt.GenerateFromPassword([]byte(tempPassword), bcrypt.DefaultCost)
	if err != nil {
		logger.ExitMethodWithError("applicationService.Approve", err)
		return nil, err
	}

	var before, app *domain.AgentApplication
	err = s.transactor.WithTx(ctx, func(tx repository.Tx) error {
		var err error
		app, err = tx.Applications().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if app.Status != domain.ApplicationStatusPending {
			return domain.NewError(domain.KindInvalidTransition, fmt.Sprintf("application %d is already %s", id, app.Status))
		}
		snapshot := *app
		before = &snapshot

		if _, err := tx.Users().GetByEmail(ctx, app.Email); err == nil {
			return domain.NewError(domain.KindInvalidInput, "a user with this email already exists")
		} else if !errors.Is(err, domain.ErrNotFound) {
			return err
		}

		user := &domain.User{
			Name:               app.Name,
			Email:              app.Email,
			Phone:              app.Phone,
			PasswordHash:       string(hash),
			Role:               domain.UserRoleAgent,
			IsActive:           true,
			MustChangePassword: true,
		}
		if err := tx.Users().Create(ctx, user); err != nil {
			return fmt.Errorf("failed to create agent user: %w", err)
		}

		now := time.Now().UTC()
		app.Status = domain.ApplicationStatusApproved
		app.ReviewedBy = &adminID
		app.ReviewedAt = &now
		app.UserID = &user.ID
		return tx.Applications().Review(ctx, app)
	})
	if err != nil {
		logger.ExitMethodWithError("applicationService.Approve", err, "applicationID", id)
		return nil, err
	}

	if err := s.emailSvc.SendAgentCredentials(ctx, app.Email, app.Name, tempPassword); err != nil {
		logger.Error("Failed to send agent credentials", "applicationID", app.ID, "error", err)
	}
	s.publisher.Publish(domain.NewEvent(domain.EventApplicationApproved, adminID, domain.EntityAgentApplication, app.ID, before, app))

	logger.ExitMethod("applicationService.Approve", "applicationID", app.ID, "userID", *app.UserID)
	return app, nil
}

func (s *applicationService) Reject(ctx context.Context, adminID, id int64, reason string) (*domain.AgentApplication, error) {
	logger.EnterMethod("applicationService.Reject", "adminID", adminID, "applicationID", id)

	app, err := s.appRepo.GetByID(ctx, id)
	if err != nil {
		logger.ExitMethodWithError("applicationService.Reject", err)
		return nil, err
	}
	before := *app

	now := time.Now().UTC()
	app.Status = domain.ApplicationStatusRejected
	app.RejectionReason = reason
	app.ReviewedBy = &adminID
	app.ReviewedAt = &now
	if err := s.appRepo.Review(ctx, app); err != nil {
		logger.ExitMethodWithError("applicationService.Reject", err, "applicationID", id)
		return nil, err
	}

	if err := s.emailSvc.SendApplicationRejected(ctx, app.Email, app.Name, reason); err != nil {
		logger.Error("Failed to send rejection email", "applicationID", app.ID, "error", err)
	}
	s.publisher.Publish(domain.NewEvent(domain.EventApplicationRejected, adminID, domain.EntityAgentApplication, app.ID, &before, app))

	logger.ExitMethod("applicationService.Reject", "applicationID", app.ID)
	return app, nil
}

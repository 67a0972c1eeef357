package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"propdesk-backend/internal/domain"
	"propdesk-backend/internal/logger"
	"propdesk-backend/internal/repository"
)

const applicationColumns = `id, name, email, phone, message, status, rejection_reason, reviewed_by, reviewed_at, user_id, created_at`

type applicationRepository struct {
	db repository.DBTX
}

func NewApplicationRepository(db repository.DBTX) repository.ApplicationRepository {
	return &applicationRepository{db: db}
}

func scanApplication(row rowScanner) (*domain.AgentApplication, error) {
	a := &domain.AgentApplication{}
	var reviewedBy, userID sql.NullInt64
	var reviewedAt sql.NullTime
	err := row.Scan(&a.ID, &a.Name, &a.Email, &a.Phone, &a.Message, &a.Status, &a.RejectionReason, &reviewedBy, &reviewedAt, &userID, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	a.ReviewedBy = int64Ptr(reviewedBy)
	a.ReviewedAt = timePtr(reviewedAt)
	a.UserID = int64Ptr(userID)
	return a, nil
}

func (r *applicationRepository) Create(ctx context.Context, a *domain.AgentApplication) error {
	logger.EnterMethod("applicationRepository.Create", "email", a.Email)

	a.Status = domain.ApplicationStatusPending
	query := `INSERT INTO agent_applications (name, email, phone, message, status)
	          VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query, a.Name, a.Email, a.Phone, a.Message, a.Status).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		logger.ExitMethodWithError("applicationRepository.Create", err, "email", a.Email)
		return err
	}
	logger.ExitMethod("applicationRepository.Create", "applicationID", a.ID)
	return nil
}

func (r *applicationRepository) GetByID(ctx context.Context, id int64) (*domain.AgentApplication, error) {
	query := `SELECT ` + applicationColumns + ` FROM agent_applications WHERE id = $1`
	a, err := scanApplication(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound(err, "agent application")
	}
	return a, nil
}

func (r *applicationRepository) List(ctx context.Context, status domain.ApplicationStatus) ([]domain.AgentApplication, error) {
	query := `SELECT ` + applicationColumns + ` FROM agent_applications`
	var args []any
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var apps []domain.AgentApplication
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, *a)
	}
	return apps, rows.Err()
}

func (r *applicationRepository) Review(ctx context.Context, a *domain.AgentApplication) error {
	logger.EnterMethod("applicationRepository.Review", "applicationID", a.ID, "status", a.Status)

	query := `UPDATE agent_applications
	          SET status = $2, rejection_reason = $3, reviewed_by = $4, reviewed_at = $5, user_id = $6
	          WHERE id = $1 AND status = 'pending'`
	result, err := r.db.ExecContext(ctx, query, a.ID, a.Status, a.RejectionReason, nullInt64(a.ReviewedBy), a.ReviewedAt, nullInt64(a.UserID))
	if err != nil {
		logger.ExitMethodWithError("applicationRepository.Review", err, "applicationID", a.ID)
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	logger.DatabaseResult("UPDATE", rows, nil, "applicationID", a.ID)
	if rows == 0 {
		err = domain.NewError(domain.KindInvalidTransition, fmt.Sprintf("agent application %d is no longer pending", a.ID))
		logger.ExitMethodWithError("applicationRepository.Review", err)
		return err
	}
	logger.ExitMethod("applicationRepository.Review", "applicationID", a.ID)
	return nil
}

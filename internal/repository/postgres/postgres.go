package postgres

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"propdesk-backend/internal/logger"
	"propdesk-backend/internal/repository"
)

type Store struct {
	db *sql.DB
	repository.UserRepository
	repository.RuleRepository
	repository.TransactionRepository
	repository.CommissionRepository
	repository.ReportRepository
	repository.ApplicationRepository
	repository.NotificationRepository
	repository.AuditLogRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                     db,
		UserRepository:         NewUserRepository(db),
		RuleRepository:         NewRuleRepository(db),
		TransactionRepository:  NewTransactionRepository(db),
		CommissionRepository:   NewCommissionRepository(db),
		ReportRepository:       NewReportRepository(db),
		ApplicationRepository:  NewApplicationRepository(db),
		NotificationRepository: NewNotificationRepository(db),
		AuditLogRepository:     NewAuditLogRepository(db),
	}
}

// Open connects to PostgreSQL and verifies the connection.
func Open(ctx context.Context, dsn string, maxOpen, maxIdle int) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if maxOpen > 0 {
		db.SetMaxOpenConns(maxOpen)
	}
	if maxIdle > 0 {
		db.SetMaxIdleConns(maxIdle)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// WithTx implements repository.Transactor.
func (s *Store) WithTx(ctx context.Context, fn func(tx repository.Tx) error) error {
	logger.DatabaseCall("BEGIN", "transaction")
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&txStore{tx: sqlTx}); err != nil {
		logger.DatabaseResult("ROLLBACK", 0, nil)
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		logger.DatabaseResult("COMMIT", 0, err)
		return fmt.Errorf("commit transaction: %w", err)
	}
	logger.DatabaseResult("COMMIT", 0, nil)
	return nil
}

type txStore struct {
	tx *sql.Tx
}

func (t *txStore) Users() repository.UserRepository { return NewUserRepository(t.tx) }

func (t *txStore) Rules() repository.RuleRepository { return NewRuleRepository(t.tx) }

func (t *txStore) Transactions() repository.TransactionRepository {
	return NewTransactionRepository(t.tx)
}

func (t *txStore) Commissions() repository.CommissionRepository {
	return NewCommissionRepository(t.tx)
}

func (t *txStore) Applications() repository.ApplicationRepository {
	return NewApplicationRepository(t.tx)
}

// Savepoint names come from code, never from input.
func (t *txStore) Savepoint(ctx context.Context, name string) error {
	_, err := t.tx.ExecContext(ctx, "SAVEPOINT "+name)
	return err
}

func (t *txStore) RollbackToSavepoint(ctx context.Context, name string) error {
	_, err := t.tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT "+name)
	return err
}

func (t *txStore) ReleaseSavepoint(ctx context.Context, name string) error {
	_, err := t.tx.ExecContext(ctx, "RELEASE SAVEPOINT "+name)
	return err
}

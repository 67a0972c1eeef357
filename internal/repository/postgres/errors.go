package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"propdesk-backend/internal/domain"
)

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

func pqCode(err error) (string, string) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code), pqErr.Constraint
	}
	return "", ""
}

func isUniqueViolation(err error) bool {
	code, _ := pqCode(err)
	return code == pqUniqueViolation
}

func isForeignKeyViolation(err error) bool {
	code, _ := pqCode(err)
	return code == pqForeignKeyViolation
}

// notFound converts sql.ErrNoRows into domain.ErrNotFound and leaves other errors alone.
func notFound(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.WrapError(domain.KindNotFound, what+" not found", err)
	}
	return err
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func int64Ptr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	n := v.Int64
	return &n
}

func timePtr(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time
	return &t
}

func offsetFor(page, pageSize int32) int32 {
	if page < 1 {
		page = 1
	}
	return (page - 1) * pageSize
}

// periodClause appends half-open [From, To) bounds on column to a WHERE clause.
func periodClause(column string, p domain.Period, args []any) (string, []any) {
	clause := ""
	if !p.From.IsZero() {
		args = append(args, p.From)
		clause += fmt.Sprintf(" AND %s >= $%d", column, len(args))
	}
	if !p.To.IsZero() {
		args = append(args, p.To)
		clause += fmt.Sprintf(" AND %s < $%d", column, len(args))
	}
	return clause, args
}

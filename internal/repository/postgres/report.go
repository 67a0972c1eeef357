package postgres

import (
	"context"

	"propdesk-backend/internal/domain"
	"propdesk-backend/internal/logger"
	"propdesk-backend/internal/repository"
)

const statusSums = `count(*), COALESCE(sum(c.amount), 0),
	COALESCE(sum(c.amount) FILTER (WHERE c.status = 'pending'), 0),
	COALESCE(sum(c.amount) FILTER (WHERE c.status = 'paid'), 0),
	COALESCE(sum(c.amount) FILTER (WHERE c.status = 'cancelled'), 0)`

type reportRepository struct {
	db repository.DBTX
}

func NewReportRepository(db repository.DBTX) repository.ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) ByAgent(ctx context.Context, period domain.Period) ([]domain.AgentReport, error) {
	clause, args := periodClause("c.created_at", period, nil)
	query := `SELECT c.agent_id, u.name, ` + statusSums + `
	          FROM agent_commissions c JOIN users u ON u.id = c.agent_id
	          WHERE 1=1` + clause + `
	          GROUP BY c.agent_id, u.name
	          ORDER BY 4 DESC, c.agent_id`
	logger.DatabaseCall("SELECT", "agent_commissions by agent", "from", period.From, "to", period.To)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.DatabaseResult("SELECT", 0, err)
		return nil, err
	}
	defer rows.Close()

	var reports []domain.AgentReport
	for rows.Next() {
		var rep domain.AgentReport
		if err := rows.Scan(&rep.AgentID, &rep.AgentName, &rep.Count, &rep.Total, &rep.Pending, &rep.Paid, &rep.Cancelled); err != nil {
			return nil, err
		}
		reports = append(reports, rep)
	}
	logger.DatabaseResult("SELECT", int64(len(reports)), rows.Err())
	return reports, rows.Err()
}

func (r *reportRepository) ByActionType(ctx context.Context, period domain.Period) ([]domain.ActionTypeReport, error) {
	clause, args := periodClause("c.created_at", period, nil)
	query := `SELECT t.action_type, count(*), COALESCE(sum(c.amount), 0)
	          FROM agent_commissions c JOIN agent_transactions t ON t.id = c.transaction_id
	          WHERE 1=1` + clause + `
	          GROUP BY t.action_type
	          ORDER BY 3 DESC, t.action_type`
	logger.DatabaseCall("SELECT", "agent_commissions by action type", "from", period.From, "to", period.To)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.DatabaseResult("SELECT", 0, err)
		return nil, err
	}
	defer rows.Close()

	var reports []domain.ActionTypeReport
	for rows.Next() {
		var rep domain.ActionTypeReport
		if err := rows.Scan(&rep.ActionType, &rep.Count, &rep.Total); err != nil {
			return nil, err
		}
		reports = append(reports, rep)
	}
	logger.DatabaseResult("SELECT", int64(len(reports)), rows.Err())
	return reports, rows.Err()
}

// AgentSummary always returns a row; an agent without commissions gets zeros.
func (r *reportRepository) AgentSummary(ctx context.Context, agentID int64, period domain.Period) (*domain.AgentReport, error) {
	clause, args := periodClause("c.created_at", period, []any{agentID})
	query := `SELECT COALESCE((SELECT name FROM users WHERE id = $1), ''), ` + statusSums + `
	          FROM agent_commissions c
	          WHERE c.agent_id = $1` + clause
	rep := &domain.AgentReport{AgentID: agentID}
	err := r.db.QueryRowContext(ctx, query, args...).
		Scan(&rep.AgentName, &rep.Count, &rep.Total, &rep.Pending, &rep.Paid, &rep.Cancelled)
	if err != nil {
		return nil, err
	}
	return rep, nil
}

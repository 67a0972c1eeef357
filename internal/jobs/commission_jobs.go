package jobs

import (
	"context"

	"propdesk-backend/internal/domain"
	"propdesk-backend/internal/logger"
)

const statementPageSize int32 = 100

// SendCommissionStatements emails every agent with commissions last month a
// statement of that month.
func (jr *JobRunner) SendCommissionStatements() {
	jr.runWithRecovery("SendCommissionStatements", func() {
		ctx := context.Background()
		period := domain.PreviousMonthPeriod(jr.now().UTC())

		reports, err := jr.services.Report.ReportByAgent(ctx, period)
		if err != nil {
			logger.Error("Failed to load agent report", "period", period.String(), "error", err)
			return
		}

		sent := 0
		for i := range reports {
			report := &reports[i]
			if report.Count == 0 {
				continue
			}

			agent, err := jr.users.GetByID(ctx, report.AgentID)
			if err != nil {
				logger.Error("Failed to load agent", "agentID", report.AgentID, "error", err)
				continue
			}

			commissions, err := jr.agentCommissions(ctx, report.AgentID, period)
			if err != nil {
				logger.Error("Failed to list agent commissions", "agentID", report.AgentID, "error", err)
				continue
			}

			if err := jr.services.Email.SendCommissionStatement(ctx, agent.Email, agent.Name, period, report, commissions); err != nil {
				logger.Error("Failed to send commission statement", "agentID", report.AgentID, "error", err)
				continue
			}
			sent++
		}

		logger.Info("Commission statements sent", "period", period.String(), "agents", len(reports), "sent", sent)
	})
}

// agentCommissions pages through an agent's commissions and keeps those
// created inside period.
func (jr *JobRunner) agentCommissions(ctx context.Context, agentID int64, period domain.Period) ([]domain.AgentCommission, error) {
	var all []domain.AgentCommission
	var seen int32
	for page := int32(1); ; page++ {
		list, total, err := jr.services.Ledger.List(ctx, domain.CommissionFilter{
			AgentID:  agentID,
			Period:   period,
			Page:     page,
			PageSize: statementPageSize,
		})
		if err != nil {
			return nil, err
		}
		for _, c := range list {
			if period.Contains(c.CreatedAt) {
				all = append(all, c)
			}
		}
		seen += int32(len(list))
		if len(list) == 0 || seen >= total {
			return all, nil
		}
	}
}

// SendPendingPayoutDigest emails admins the pending commission total per agent.
func (jr *JobRunner) SendPendingPayoutDigest() {
	jr.runWithRecovery("SendPendingPayoutDigest", func() {
		ctx := context.Background()

		reports, err := jr.services.Report.ReportByAgent(ctx, domain.Period{})
		if err != nil {
			logger.Error("Failed to load agent report", "error", err)
			return
		}

		var pending []domain.AgentReport
		for _, r := range reports {
			if r.Pending > 0 {
				pending = append(pending, r)
			}
		}
		if len(pending) == 0 {
			logger.Info("No pending payouts")
			return
		}

		recipients, err := jr.digestRecipients(ctx)
		if err != nil {
			logger.Error("Failed to load digest recipients", "error", err)
			return
		}

		for _, email := range recipients {
			if err := jr.services.Email.SendPendingPayoutDigest(ctx, email, pending); err != nil {
				logger.Error("Failed to send pending payout digest", "to", email, "error", err)
			}
		}
		logger.Info("Pending payout digest sent", "agents", len(pending), "recipients", len(recipients))
	})
}

// digestRecipients returns the configured admin address, or every active
// admin when none is configured.
func (jr *JobRunner) digestRecipients(ctx context.Context) ([]string, error) {
	if addr := jr.config.Email.AdminAddress; addr != "" {
		return []string{addr}, nil
	}
	admins, err := jr.users.ListByRoles(ctx, []domain.UserRole{domain.UserRoleAdmin})
	if err != nil {
		return nil, err
	}
	var out []string
	for _, a := range admins {
		if a.IsActive && a.Email != "" {
			out = append(out, a.Email)
		}
	}
	return out, nil
}

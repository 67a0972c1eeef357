package service

import (
	"context"

	"propdesk-backend/internal/domain"
	"propdesk-backend/internal/logger"
	"propdesk-backend/internal/repository"
)

type reportService struct {
	reportRepo repository.ReportRepository
}

func NewReportService(reportRepo repository.ReportRepository) ReportService {
	return &reportService{reportRepo: reportRepo}
}

// ReportByAgent aggregates commissions per agent. Agents without commissions
// in the period are omitted.
func (s *reportService) ReportByAgent(ctx context.Context, period domain.Period) ([]domain.AgentReport, error) {
	logger.EnterMethod("reportService.ReportByAgent", "period", period.String())
	if err := period.Validate(); err != nil {
		logger.ExitMethodWithError("reportService.ReportByAgent", err)
		return nil, err
	}

	rows, err := s.reportRepo.ByAgent(ctx, period)
	if err != nil {
		logger.ExitMethodWithError("reportService.ReportByAgent", err)
		return nil, err
	}
	logger.ExitMethod("reportService.ReportByAgent", "agents", len(rows))
	return rows, nil
}

func (s *reportService) ReportByActionType(ctx context.Context, period domain.Period) ([]domain.ActionTypeReport, error) {
	logger.EnterMethod("reportService.ReportByActionType", "period", period.String())
	if err := period.Validate(); err != nil {
		logger.ExitMethodWithError("reportService.ReportByActionType", err)
		return nil, err
	}

	rows, err := s.reportRepo.ByActionType(ctx, period)
	if err != nil {
		logger.ExitMethodWithError("reportService.ReportByActionType", err)
		return nil, err
	}
	logger.ExitMethod("reportService.ReportByActionType", "actionTypes", len(rows))
	return rows, nil
}

// AgentSummary always returns a report, zeroed when the agent has no
// commissions in the period.
func (s *reportService) AgentSummary(ctx context.Context, agentID int64, period domain.Period) (*domain.AgentReport, error) {
	logger.EnterMethod("reportService.AgentSummary", "agentID", agentID, "period", period.String())
	if err := period.Validate(); err != nil {
		logger.ExitMethodWithError("reportService.AgentSummary", err)
		return nil, err
	}

	summary, err := s.reportRepo.AgentSummary(ctx, agentID, period)
	if err != nil {
		logger.ExitMethodWithError("reportService.AgentSummary", err)
		return nil, err
	}
	logger.ExitMethod("reportService.AgentSummary", "total", summary.Total)
	return summary, nil
}

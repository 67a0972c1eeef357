package http

import (
	"net/http"

	"propdesk-backend/internal/domain"
	"propdesk-backend/internal/service"
)

type ReportHandler struct {
	reportSvc service.ReportService
}

func NewReportHandler(reportSvc service.ReportService) *ReportHandler {
	return &ReportHandler{reportSvc: reportSvc}
}

func (h *ReportHandler) ByAgent(w http.ResponseWriter, r *http.Request) {
	period, err := parsePeriod(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	rows, err := h.reportSvc.ReportByAgent(r.Context(), period)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if rows == nil {
		rows = []domain.AgentReport{}
	}
	writeJSON(w, http.StatusOK, rows)
}

func (h *ReportHandler) ByActionType(w http.ResponseWriter, r *http.Request) {
	period, err := parsePeriod(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	rows, err := h.reportSvc.ReportByActionType(r.Context(), period)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if rows == nil {
		rows = []domain.ActionTypeReport{}
	}
	writeJSON(w, http.StatusOK, rows)
}

// MySummary returns the calling agent's own totals.
func (h *ReportHandler) MySummary(w http.ResponseWriter, r *http.Request) {
	period, err := parsePeriod(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	claims, _ := claimsFromContext(r.Context())

	summary, err := h.reportSvc.AgentSummary(r.Context(), claims.UserID, period)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

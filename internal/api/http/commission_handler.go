package http

import (
	"context"
	"net/http"

	"propdesk-backend/internal/domain"
	"propdesk-backend/internal/service"
)

type CommissionHandler struct {
	ledgerSvc service.LedgerService
	paging    Paging
}

func NewCommissionHandler(ledgerSvc service.LedgerService, paging Paging) *CommissionHandler {
	return &CommissionHandler{ledgerSvc: ledgerSvc, paging: paging}
}

type notesRequest struct {
	Notes string `json:"notes" validate:"max=2000"`
}

type bulkPayRequest struct {
	IDs   []int64 `json:"ids" validate:"required,min=1,max=500,dive,gt=0"`
	Notes string  `json:"notes" validate:"max=2000"`
}

func (h *CommissionHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFromContext(r.Context())
	page, pageSize, err := h.paging.parse(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	period, err := parsePeriod(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	agentID, err := queryInt64(r, "agent_id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if claims.Role == domain.UserRoleAgent {
		agentID = claims.UserID
	}

	q := r.URL.Query()
	filter := domain.CommissionFilter{AgentID: agentID, Period: period, Page: page, PageSize: pageSize}
	switch status := domain.CommissionStatus(q.Get("status")); status {
	case "", domain.CommissionStatusPending, domain.CommissionStatusPaid, domain.CommissionStatusCancelled:
		filter.Status = status
	default:
		writeError(w, r, domain.NewError(domain.KindInvalidInput, "invalid status: "+string(status)))
		return
	}
	if raw := q.Get("action_type"); raw != "" {
		if filter.ActionType, err = domain.ParseActionType(raw); err != nil {
			writeError(w, r, err)
			return
		}
	}

	list, total, err := h.ledgerSvc.List(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if list == nil {
		list = []domain.AgentCommission{}
	}
	writeJSON(w, http.StatusOK, listResponse{Items: list, Total: total, Page: page, PageSize: pageSize})
}

func (h *CommissionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	claims, _ := claimsFromContext(r.Context())

	c, err := h.ledgerSvc.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !canActFor(claims, c.AgentID) {
		writeError(w, r, domain.NewError(domain.KindForbidden, "commission belongs to another agent"))
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *CommissionHandler) Pay(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.ledgerSvc.Pay)
}

func (h *CommissionHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.ledgerSvc.Cancel)
}

func (h *CommissionHandler) transition(w http.ResponseWriter, r *http.Request, apply func(ctx context.Context, actorID, id int64, notes string) (*domain.AgentCommission, error)) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req notesRequest
	if r.ContentLength != 0 {
		if err := decodeBody(w, r, &req); err != nil {
			writeError(w, r, err)
			return
		}
	}
	claims, _ := claimsFromContext(r.Context())

	c, err := apply(r.Context(), claims.UserID, id, req.Notes)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *CommissionHandler) PayBulk(w http.ResponseWriter, r *http.Request) {
	var req bulkPayRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	claims, _ := claimsFromContext(r.Context())

	result, err := h.ledgerSvc.PayBulk(r.Context(), claims.UserID, req.IDs, req.Notes)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

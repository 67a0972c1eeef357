package http

import (
	"errors"
	"net/http"

	"propdesk-backend/internal/domain"
	"propdesk-backend/internal/security"
	"propdesk-backend/internal/service"
)

type TransactionHandler struct {
	recorderSvc service.RecorderService
	paging      Paging
}

func NewTransactionHandler(recorderSvc service.RecorderService, paging Paging) *TransactionHandler {
	return &TransactionHandler{recorderSvc: recorderSvc, paging: paging}
}

type recordRequest struct {
	AgentID           int64             `json:"agent_id"`
	ActionType        string            `json:"action_type" validate:"required"`
	TargetUserType    string            `json:"target_user_type" validate:"required"`
	TargetUserID      *int64            `json:"target_user_id"`
	TargetTenantID    *int64            `json:"target_tenant_id"`
	RelatedEntityType string            `json:"related_entity_type"`
	RelatedEntityID   int64             `json:"related_entity_id" validate:"required,gt=0"`
	Description       string            `json:"description" validate:"max=2000"`
	Metadata          map[string]string `json:"metadata"`
	TransactionAmount *int64            `json:"transaction_amount"`
}

type recordResponse struct {
	Transaction     *domain.AgentTransaction `json:"transaction"`
	Commission      *domain.AgentCommission  `json:"commission"`
	CommissionError *errorBody               `json:"commission_error"`
}

// canActFor reports whether the caller may see or record data of agentID.
func canActFor(claims *security.UserClaims, agentID int64) bool {
	switch claims.Role {
	case domain.UserRoleAdmin, domain.UserRoleManager:
		return true
	case domain.UserRoleAgent:
		return claims.UserID == agentID
	}
	return false
}

func (h *TransactionHandler) Record(w http.ResponseWriter, r *http.Request) {
	var req recordRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	claims, _ := claimsFromContext(r.Context())

	agentID := req.AgentID
	if agentID == 0 && claims.Role == domain.UserRoleAgent {
		agentID = claims.UserID
	}
	if agentID == 0 {
		writeError(w, r, domain.NewError(domain.KindInvalidInput, "agent_id is required"))
		return
	}
	if !canActFor(claims, agentID) {
		writeError(w, r, domain.NewError(domain.KindForbidden, "cannot record actions for another agent"))
		return
	}

	actionType, err := domain.ParseActionType(req.ActionType)
	if err != nil {
		writeError(w, r, err)
		return
	}
	target, err := domain.ParseTargetRef(req.TargetUserType, req.TargetUserID, req.TargetTenantID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	entityType, err := domain.ParseEntityType(req.RelatedEntityType)
	if err != nil {
		writeError(w, r, err)
		return
	}

	result, err := h.recorderSvc.Record(r.Context(), domain.RecordRequest{
		AgentID:           agentID,
		RecordedBy:        claims.UserID,
		ActionType:        actionType,
		Target:            target,
		RelatedEntity:     domain.EntityRef{Type: entityType, ID: req.RelatedEntityID},
		Description:       req.Description,
		Metadata:          req.Metadata,
		TransactionAmount: req.TransactionAmount,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := recordResponse{Transaction: result.Transaction, Commission: result.Commission}
	if result.CommissionError != nil {
		body := errorBody{Kind: domain.KindInternal, Message: "commission could not be created"}
		var de *domain.Error
		if errors.As(result.CommissionError, &de) {
			body.Kind, body.Message = de.Kind, de.Message
		}
		resp.CommissionError = &body
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
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

	filter := domain.TransactionFilter{AgentID: agentID, Period: period, Page: page, PageSize: pageSize}
	if raw := r.URL.Query().Get("action_type"); raw != "" {
		if filter.ActionType, err = domain.ParseActionType(raw); err != nil {
			writeError(w, r, err)
			return
		}
	}

	txns, total, err := h.recorderSvc.ListTransactions(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if txns == nil {
		txns = []domain.AgentTransaction{}
	}
	writeJSON(w, http.StatusOK, listResponse{Items: txns, Total: total, Page: page, PageSize: pageSize})
}

func (h *TransactionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	claims, _ := claimsFromContext(r.Context())

	txn, err := h.recorderSvc.GetTransaction(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !canActFor(claims, txn.AgentID) {
		writeError(w, r, domain.NewError(domain.KindForbidden, "transaction belongs to another agent"))
		return
	}
	writeJSON(w, http.StatusOK, txn)
}

// RetryCommission re-runs commission creation for an already recorded transaction.
func (h *TransactionHandler) RetryCommission(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	claims, _ := claimsFromContext(r.Context())

	c, err := h.recorderSvc.CreateCommissionForTransaction(r.Context(), claims.UserID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if c == nil {
		writeJSON(w, http.StatusOK, map[string]any{"commission": nil})
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"commission": c})
}

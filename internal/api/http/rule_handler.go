package http

import (
	"net/http"

	"github.com/shopspring/decimal"

	"propdesk-backend/internal/domain"
	"propdesk-backend/internal/service"
)

type RuleHandler struct {
	ruleSvc service.RuleService
}

func NewRuleHandler(ruleSvc service.RuleService) *RuleHandler {
	return &RuleHandler{ruleSvc: ruleSvc}
}

type ruleRequest struct {
	ActionType      string          `json:"action_type"`
	Name            string          `json:"name" validate:"required,max=200"`
	Description     string          `json:"description" validate:"max=2000"`
	CommissionType  string          `json:"commission_type" validate:"required,oneof=percentage fixed"`
	CommissionValue decimal.Decimal `json:"commission_value"`
	MinAmount       *int64          `json:"min_amount"`
	MaxAmount       *int64          `json:"max_amount"`
	IsActive        *bool           `json:"is_active"`
}

func (req *ruleRequest) toDomain() *domain.CommissionRule {
	rule := &domain.CommissionRule{
		ActionType:      domain.ActionType(req.ActionType),
		Name:            req.Name,
		Description:     req.Description,
		CommissionType:  domain.CommissionType(req.CommissionType),
		CommissionValue: req.CommissionValue,
		MinAmount:       req.MinAmount,
		MaxAmount:       req.MaxAmount,
		IsActive:        true,
	}
	if req.IsActive != nil {
		rule.IsActive = *req.IsActive
	}
	return rule
}

func (h *RuleHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.RuleFilter{ActiveOnly: q.Get("active") == "true"}
	if raw := q.Get("action_type"); raw != "" {
		actionType, err := domain.ParseActionType(raw)
		if err != nil {
			writeError(w, r, err)
			return
		}
		filter.ActionType = actionType
	}

	rules, err := h.ruleSvc.ListRules(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if rules == nil {
		rules = []domain.CommissionRule{}
	}
	writeJSON(w, http.StatusOK, rules)
}

func (h *RuleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req ruleRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.ActionType == "" {
		writeError(w, r, domain.NewError(domain.KindInvalidInput, "action_type is required"))
		return
	}
	claims, _ := claimsFromContext(r.Context())

	rule := req.toDomain()
	if err := h.ruleSvc.CreateRule(r.Context(), claims.UserID, rule); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rule)
}

func (h *RuleHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	rule, err := h.ruleSvc.GetRule(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rule)
}

func (h *RuleHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req ruleRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	claims, _ := claimsFromContext(r.Context())

	changes := req.toDomain()
	changes.ID = id
	rule, err := h.ruleSvc.UpdateRule(r.Context(), claims.UserID, changes)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rule)
}

func (h *RuleHandler) Activate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, true)
}

func (h *RuleHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, false)
}

func (h *RuleHandler) setActive(w http.ResponseWriter, r *http.Request, active bool) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	claims, _ := claimsFromContext(r.Context())

	rule, err := h.ruleSvc.SetRuleActive(r.Context(), claims.UserID, id, active)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rule)
}

func (h *RuleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	claims, _ := claimsFromContext(r.Context())

	if err := h.ruleSvc.DeleteRule(r.Context(), claims.UserID, id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type actionTypeResponse struct {
	ActionType domain.ActionType `json:"action_type"`
	Label      string            `json:"label"`
	EntityType domain.EntityType `json:"entity_type"`
}

// ActionTypes lists the action types a rule can be configured for.
func (h *RuleHandler) ActionTypes(w http.ResponseWriter, r *http.Request) {
	out := make([]actionTypeResponse, 0, len(domain.AllActionTypes))
	for _, a := range domain.AllActionTypes {
		out = append(out, actionTypeResponse{ActionType: a, Label: a.Label(), EntityType: a.EntityType()})
	}
	writeJSON(w, http.StatusOK, out)
}

package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type ActionType string

const (
	ActionTypePropertyRegistration  ActionType = "property_registration"
	ActionTypeTenantOnboarding      ActionType = "tenant_onboarding"
	ActionTypeRentCollection        ActionType = "rent_collection"
	ActionTypeMaintenanceSubmission ActionType = "maintenance_submission"
	ActionTypeTenantInfoUpdate      ActionType = "tenant_info_update"
	ActionTypeLeaseRenewal          ActionType = "lease_renewal"
)

// AllActionTypes lists every action type the engine knows about. New action
// types must be added here and to the switches below.
var AllActionTypes = []ActionType{
	ActionTypePropertyRegistration,
	ActionTypeTenantOnboarding,
	ActionTypeRentCollection,
	ActionTypeMaintenanceSubmission,
	ActionTypeTenantInfoUpdate,
	ActionTypeLeaseRenewal,
}

// ParseActionType converts a raw string into a known ActionType.
func ParseActionType(s string) (ActionType, error) {
	for _, a := range AllActionTypes {
		if string(a) == s {
			return a, nil
		}
	}
	return "", NewError(KindInvalidInput, "unknown action type: "+s)
}

// EntityType returns the kind of entity an action of this type normally refers to.
func (a ActionType) EntityType() EntityType {
	switch a {
	case ActionTypePropertyRegistration:
		return EntityTypeProperty
	case ActionTypeTenantOnboarding, ActionTypeTenantInfoUpdate:
		return EntityTypeTenant
	case ActionTypeRentCollection:
		return EntityTypePayment
	case ActionTypeMaintenanceSubmission:
		return EntityTypeMaintenanceTicket
	case ActionTypeLeaseRenewal:
		return EntityTypeLease
	}
	return ""
}

func (a ActionType) Label() string {
	switch a {
	case ActionTypePropertyRegistration:
		return "Property registration"
	case ActionTypeTenantOnboarding:
		return "Tenant onboarding"
	case ActionTypeRentCollection:
		return "Rent collection"
	case ActionTypeMaintenanceSubmission:
		return "Maintenance submission"
	case ActionTypeTenantInfoUpdate:
		return "Tenant info update"
	case ActionTypeLeaseRenewal:
		return "Lease renewal"
	}
	return string(a)
}

type CommissionType string

const (
	CommissionTypePercentage CommissionType = "percentage"
	CommissionTypeFixed      CommissionType = "fixed"
)

type CommissionRule struct {
	ID              int64           `json:"id"`
	ActionType      ActionType      `json:"action_type"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	CommissionType  CommissionType  `json:"commission_type"`
	CommissionValue decimal.Decimal `json:"commission_value"` // percent (0-100) or fixed amount in minor units
	MinAmount       *int64          `json:"min_amount,omitempty"`
	MaxAmount       *int64          `json:"max_amount,omitempty"`
	IsActive        bool            `json:"is_active"`
	CreatedBy       int64           `json:"created_by"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

var hundred = decimal.NewFromInt(100)

// Validate checks the value and bound constraints of a rule.
func (r *CommissionRule) Validate() error {
	if _, err := ParseActionType(string(r.ActionType)); err != nil {
		return NewError(KindInvalidRule, "unknown action type: "+string(r.ActionType))
	}
	if r.Name == "" {
		return NewError(KindInvalidRule, "rule name is required")
	}
	if r.CommissionValue.IsNegative() {
		return NewError(KindInvalidRule, "commission value must not be negative")
	}

	switch r.CommissionType {
	case CommissionTypePercentage:
		if r.CommissionValue.GreaterThan(hundred) {
			return NewError(KindInvalidRule, "percentage commission value must be between 0 and 100")
		}
		if r.MinAmount != nil && *r.MinAmount < 0 {
			return NewError(KindInvalidRule, "min amount must not be negative")
		}
		if r.MaxAmount != nil && *r.MaxAmount < 0 {
			return NewError(KindInvalidRule, "max amount must not be negative")
		}
		if r.MinAmount != nil && r.MaxAmount != nil && *r.MinAmount > *r.MaxAmount {
			return NewError(KindInvalidRule, "min amount must not exceed max amount")
		}
	case CommissionTypeFixed:
		if !r.CommissionValue.Equal(r.CommissionValue.Truncate(0)) {
			return NewError(KindInvalidRule, "fixed commission value must be a whole amount")
		}
		if r.MinAmount != nil || r.MaxAmount != nil {
			return NewError(KindInvalidRule, "min/max amounts apply to percentage rules only")
		}
	default:
		return NewError(KindInvalidRule, "commission type must be percentage or fixed")
	}
	return nil
}

type CommissionStatus string

const (
	CommissionStatusPending   CommissionStatus = "pending"
	CommissionStatusPaid      CommissionStatus = "paid"
	CommissionStatusCancelled CommissionStatus = "cancelled"
)

var commissionTransitions = map[CommissionStatus]map[CommissionStatus]struct{}{
	CommissionStatusPending: {
		CommissionStatusPaid:      {},
		CommissionStatusCancelled: {},
	},
}

// CanTransition reports whether a commission may move from one status to another.
// Paid and cancelled are terminal.
func CanTransition(from, to CommissionStatus) bool {
	next, ok := commissionTransitions[from]
	if !ok {
		return false
	}
	_, ok = next[to]
	return ok
}

type AgentCommission struct {
	ID               int64            `json:"id"`
	AgentID          int64            `json:"agent_id"`
	TransactionID    int64            `json:"transaction_id"`
	CommissionRuleID int64            `json:"commission_rule_id"`
	Amount           int64            `json:"amount"`
	Status           CommissionStatus `json:"status"`
	PaidAt           *time.Time       `json:"paid_at,omitempty"`
	Notes            string           `json:"notes"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// SkippedCommission explains why one id of a bulk payout was not paid.
type SkippedCommission struct {
	ID     int64     `json:"id"`
	Kind   ErrorKind `json:"kind"`
	Reason string    `json:"reason"`
}

type BulkPayResult struct {
	Paid    []AgentCommission   `json:"paid"`
	Skipped []SkippedCommission `json:"skipped"`
}

type CommissionFilter struct {
	AgentID    int64
	Status     CommissionStatus
	ActionType ActionType
	Period     Period
	Page       int32
	PageSize   int32
}

type RuleFilter struct {
	ActionType ActionType
	ActiveOnly bool
}

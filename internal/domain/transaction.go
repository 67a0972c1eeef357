package domain

import (
	"encoding/json"
	"time"
)

type TargetKind string

const (
	TargetKindOwner  TargetKind = "owner"
	TargetKindTenant TargetKind = "tenant"
)

// TargetRef identifies who an agent acted for: an owner (a user) or a tenant
// (a tenant record). Exactly one id is carried; the zero value is invalid.
type TargetRef struct {
	kind TargetKind
	id   int64
}

func OwnerTarget(userID int64) TargetRef {
	return TargetRef{kind: TargetKindOwner, id: userID}
}

func TenantTarget(tenantID int64) TargetRef {
	return TargetRef{kind: TargetKindTenant, id: tenantID}
}

// ParseTargetRef builds a TargetRef from the loose shape collaborators send
// (a kind plus two optional ids).
func ParseTargetRef(kind string, userID, tenantID *int64) (TargetRef, error) {
	switch TargetKind(kind) {
	case TargetKindOwner:
		if userID == nil || *userID <= 0 {
			return TargetRef{}, NewError(KindInvalidTarget, "owner target requires target_user_id")
		}
		if tenantID != nil {
			return TargetRef{}, NewError(KindInvalidTarget, "owner target must not carry target_tenant_id")
		}
		return OwnerTarget(*userID), nil
	case TargetKindTenant:
		if tenantID == nil || *tenantID <= 0 {
			return TargetRef{}, NewError(KindInvalidTarget, "tenant target requires target_tenant_id")
		}
		if userID != nil {
			return TargetRef{}, NewError(KindInvalidTarget, "tenant target must not carry target_user_id")
		}
		return TenantTarget(*tenantID), nil
	}
	return TargetRef{}, NewError(KindInvalidTarget, "target_user_type must be owner or tenant")
}

func (t TargetRef) Kind() TargetKind { return t.kind }

func (t TargetRef) ID() int64 { return t.id }

func (t TargetRef) IsZero() bool { return t.kind == "" || t.id <= 0 }

func (t TargetRef) MarshalJSON() ([]byte, error) {
	out := struct {
		Type     TargetKind `json:"type"`
		UserID   *int64     `json:"user_id,omitempty"`
		TenantID *int64     `json:"tenant_id,omitempty"`
	}{Type: t.kind}
	id := t.id
	switch t.kind {
	case TargetKindOwner:
		out.UserID = &id
	case TargetKindTenant:
		out.TenantID = &id
	}
	return json.Marshal(out)
}

// UserID returns the owner's user id, if this is an owner target.
func (t TargetRef) UserID() (int64, bool) {
	if t.kind == TargetKindOwner {
		return t.id, true
	}
	return 0, false
}

// TenantID returns the tenant id, if this is a tenant target.
func (t TargetRef) TenantID() (int64, bool) {
	if t.kind == TargetKindTenant {
		return t.id, true
	}
	return 0, false
}

type EntityType string

const (
	EntityTypeProperty          EntityType = "property"
	EntityTypeTenant            EntityType = "tenant"
	EntityTypePayment           EntityType = "payment"
	EntityTypeMaintenanceTicket EntityType = "maintenance_ticket"
	EntityTypeLease             EntityType = "lease"
)

var AllEntityTypes = []EntityType{
	EntityTypeProperty,
	EntityTypeTenant,
	EntityTypePayment,
	EntityTypeMaintenanceTicket,
	EntityTypeLease,
}

// ParseEntityType converts a raw string into a known EntityType. The empty
// string is accepted and means "derive it from the action type".
func ParseEntityType(s string) (EntityType, error) {
	if s == "" {
		return "", nil
	}
	for _, t := range AllEntityTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", NewError(KindInvalidInput, "unknown related entity type: "+s)
}

type EntityRef struct {
	Type EntityType `json:"type"`
	ID   int64      `json:"id"`
}

// AgentTransaction is an immutable record of one agent-performed action.
type AgentTransaction struct {
	ID                int64             `json:"id"`
	AgentID           int64             `json:"agent_id"`
	ActionType        ActionType        `json:"action_type"`
	Target            TargetRef         `json:"target"`
	RelatedEntity     EntityRef         `json:"related_entity"`
	Description       string            `json:"description"`
	Metadata          map[string]string `json:"metadata,omitempty"`
	TransactionAmount *int64            `json:"transaction_amount,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
}

type RecordRequest struct {
	AgentID           int64
	// RecordedBy is the user who submitted the action; zero means the agent.
	RecordedBy        int64
	ActionType        ActionType
	Target            TargetRef
	RelatedEntity     EntityRef
	Description       string
	Metadata          map[string]string
	TransactionAmount *int64
}

// RecordResult carries the recorded transaction and, when commissionable, its
// commission. CommissionError explains a failed commission attempt; it is nil
// when the action simply had no active rule.
type RecordResult struct {
	Transaction     *AgentTransaction `json:"transaction"`
	Commission      *AgentCommission  `json:"commission"`
	CommissionError error             `json:"-"`
}

type TransactionFilter struct {
	AgentID    int64
	ActionType ActionType
	Period     Period
	Page       int32
	PageSize   int32
}

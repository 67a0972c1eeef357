package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventRuleCreated         EventType = "rule.created"
	EventRuleUpdated         EventType = "rule.updated"
	EventRuleActivated       EventType = "rule.activated"
	EventRuleDeactivated     EventType = "rule.deactivated"
	EventRuleDeleted         EventType = "rule.deleted"
	EventTransactionRecorded EventType = "transaction.recorded"
	EventCommissionCreated   EventType = "commission.created"
	EventCommissionPaid      EventType = "commission.paid"
	EventCommissionCancelled EventType = "commission.cancelled"
	EventApplicationApproved EventType = "agent_application.approved"
	EventApplicationRejected EventType = "agent_application.rejected"
)

// Entity names used in events and audit logs.
const (
	EntityCommissionRule   = "commission_rule"
	EntityAgentTransaction = "agent_transaction"
	EntityCommission       = "commission"
	EntityAgentApplication = "agent_application"
)

// Event is emitted after a successful mutation. Before and After hold JSON
// snapshots of the entity; either may be empty.
type Event struct {
	ID         string          `json:"id"`
	Type       EventType       `json:"type"`
	ActorID    int64           `json:"actor_id"`
	EntityType string          `json:"entity_type"`
	EntityID   int64           `json:"entity_id"`
	Before     json.RawMessage `json:"before,omitempty"`
	After      json.RawMessage `json:"after,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
}

type AuditLog struct {
	ID         int64           `json:"id"`
	EventID    string          `json:"event_id"`
	ActorID    int64           `json:"actor_id"`
	Action     string          `json:"action"`
	EntityType string          `json:"entity_type"`
	EntityID   int64           `json:"entity_id"`
	Before     json.RawMessage `json:"before,omitempty"`
	After      json.RawMessage `json:"after,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// NewEvent builds an event with a fresh id, snapshotting before and after as
// JSON. A nil snapshot is left empty.
func NewEvent(eventType EventType, actorID int64, entityType string, entityID int64, before, after any) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		ActorID:    actorID,
		EntityType: entityType,
		EntityID:   entityID,
		Before:     snapshot(before),
		After:      snapshot(after),
		OccurredAt: time.Now().UTC(),
	}
}

func snapshot(v any) json.RawMessage {
	if v == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return data
}

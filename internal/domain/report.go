package domain

// AgentReport aggregates one agent's commissions. Total covers every status;
// Pending, Paid and Cancelled split it by status.
type AgentReport struct {
	AgentID   int64  `json:"agent_id"`
	AgentName string `json:"agent_name"`
	Count     int64  `json:"count"`
	Total     int64  `json:"total"`
	Pending   int64  `json:"pending"`
	Paid      int64  `json:"paid"`
	Cancelled int64  `json:"cancelled"`
}

type ActionTypeReport struct {
	ActionType ActionType `json:"action_type"`
	Count      int64      `json:"count"`
	Total      int64      `json:"total"`
}

package domain

import "time"

type ActionType string

const (
	ActionEscalate ActionType = "escalate"
	ActionFlag     ActionType = "flag"
	ActionLog      ActionType = "log"
	ActionAlert    ActionType = "alert"
)

type ActionStatus string

const (
	ActionPending   ActionStatus = "pending"
	ActionCompleted ActionStatus = "completed"
	ActionFailed    ActionStatus = "failed"
)

// ActionRecord is a follow-up effect triggered by routing. Terminal once
// Status leaves pending.
type ActionRecord struct {
	ID          string         `json:"id"`
	DocumentID  string         `json:"document_id"`
	Type        ActionType     `json:"type"`
	Description string         `json:"description"`
	Priority    Priority       `json:"priority"`
	Status      ActionStatus   `json:"status"`
	ExternalRef string         `json:"external_ref,omitempty"`
	Error       string         `json:"error,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

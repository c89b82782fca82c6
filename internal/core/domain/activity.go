package domain

import "time"

type ActivityStatus string

const (
	ActivitySuccess ActivityStatus = "success"
	ActivityFailed  ActivityStatus = "failed"
	ActivityPending ActivityStatus = "pending"
)

// Stage names recorded in the activity trail. One record per stage
// entered; the trail is causally ordered because each append completes
// before the orchestrator advances.
const (
	StageClassifying = "classifying"
	StageExtracting  = "extracting"
	StageRouting     = "routing"
	StageRecording   = "recording"
)

// ActivityRecord is one append-only entry in the audit trail: one agent
// invocation with input/output snapshots, never mutated after write.
type ActivityRecord struct {
	ID         string         `json:"id"`
	DocumentID string         `json:"document_id"`
	AgentName  string         `json:"agent_name"`
	Action     string         `json:"action"`
	Input      map[string]any `json:"input,omitempty"`
	Output     map[string]any `json:"output,omitempty"`
	Status     ActivityStatus `json:"status"`
	DurationMs int64          `json:"duration_ms"`
	Error      string         `json:"error,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

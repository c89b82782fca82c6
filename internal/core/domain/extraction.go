package domain

import "strings"

// Priority is the escalation level derived from agent risk signals.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

var priorityRank = map[Priority]int{
	PriorityLow:    0,
	PriorityMedium: 1,
	PriorityHigh:   2,
}

// Rank returns the numeric ordering of p; unknown values rank as Low.
func (p Priority) Rank() int {
	return priorityRank[p]
}

// AtLeast returns the higher of p and floor. Priority escalates only
// upward within one run.
func (p Priority) AtLeast(floor Priority) Priority {
	if floor.Rank() > p.Rank() {
		return floor
	}
	return p
}

// ExtractionResult is produced by exactly one format agent per document.
// Flags is an open set of anomaly tags, e.g. "anomaly:schema:amount" or
// "risk:high-value".
type ExtractionResult struct {
	Fields   map[string]any `json:"fields"`
	Priority Priority       `json:"priority"`
	Flags    []string       `json:"flags,omitempty"`
}

// AddFlag appends flag unless already present.
func (r *ExtractionResult) AddFlag(flag string) {
	for _, f := range r.Flags {
		if f == flag {
			return
		}
	}
	r.Flags = append(r.Flags, flag)
}

// HasFlagPrefix reports whether any flag carries the given prefix
// (e.g. "anomaly:").
func (r *ExtractionResult) HasFlagPrefix(prefix string) bool {
	for _, f := range r.Flags {
		if strings.HasPrefix(f, prefix) {
			return true
		}
	}
	return false
}

// CountFlagPrefix counts flags carrying the given prefix.
func (r *ExtractionResult) CountFlagPrefix(prefix string) int {
	n := 0
	for _, f := range r.Flags {
		if strings.HasPrefix(f, prefix) {
			n++
		}
	}
	return n
}

package usecase

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/arun84-eng/AI-Agent-System/internal/core/domain"
)

// RouteActions maps (intent, extraction) to follow-up actions. The
// mapping is deterministic and priority wins over intent for escalation:
// High always escalates, FraudRisk always alerts, any anomaly flag is
// flagged for review, and Log fires only when nothing else did. Duplicate
// type+description pairs within one run are merged.
func RouteActions(documentID string, intent domain.Intent, ext domain.ExtractionResult) []*domain.ActionRecord {
	now := time.Now().UTC()
	var records []*domain.ActionRecord

	add := func(actionType domain.ActionType, description string) {
		for _, r := range records {
			if r.Type == actionType && r.Description == description {
				return
			}
		}
		records = append(records, &domain.ActionRecord{
			ID:          uuid.NewString(),
			DocumentID:  documentID,
			Type:        actionType,
			Description: description,
			Priority:    ext.Priority,
			Status:      domain.ActionPending,
			Metadata: map[string]any{
				"intent": string(intent),
				"flags":  append([]string(nil), ext.Flags...),
			},
			CreatedAt: now,
			UpdatedAt: now,
		})
	}

	if ext.Priority == domain.PriorityHigh {
		add(domain.ActionEscalate, fmt.Sprintf("high priority %s document requires escalation", intent))
	}
	if intent == domain.IntentFraudRisk {
		add(domain.ActionAlert, "fraud risk indicators detected")
	}
	if ext.HasFlagPrefix("anomaly:") {
		add(domain.ActionFlag, fmt.Sprintf("%d anomaly flag(s) raised for review", ext.CountFlagPrefix("anomaly:")))
	}
	if len(records) == 0 {
		add(domain.ActionLog, fmt.Sprintf("routine %s document processed", intent))
	}
	return records
}

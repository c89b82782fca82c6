package usecase

import (
	"sort"
	"testing"

	"github.com/arun84-eng/AI-Agent-System/internal/core/domain"
)

func actionTypes(records []*domain.ActionRecord) []string {
	var types []string
	for _, r := range records {
		types = append(types, string(r.Type))
	}
	sort.Strings(types)
	return types
}

func TestRouteHighPriorityFraudEmitsEscalateAndAlert(t *testing.T) {
	ext := domain.ExtractionResult{Priority: domain.PriorityHigh}

	records := RouteActions("doc-1", domain.IntentFraudRisk, ext)

	got := actionTypes(records)
	want := []string{"alert", "escalate"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("actions = %v, want %v", got, want)
	}
}

func TestRouteAnomalyEmitsFlag(t *testing.T) {
	ext := domain.ExtractionResult{
		Priority: domain.PriorityMedium,
		Flags:    []string{"anomaly:schema:amount"},
	}

	records := RouteActions("doc-1", domain.IntentInvoice, ext)

	got := actionTypes(records)
	if len(got) != 1 || got[0] != "flag" {
		t.Fatalf("actions = %v, want [flag]", got)
	}
}

func TestRouteRoutineDocumentEmitsOnlyLog(t *testing.T) {
	ext := domain.ExtractionResult{Priority: domain.PriorityLow}

	records := RouteActions("doc-1", domain.IntentInvoice, ext)

	got := actionTypes(records)
	if len(got) != 1 || got[0] != "log" {
		t.Fatalf("actions = %v, want [log]", got)
	}
}

func TestRouteNeverLowersPriority(t *testing.T) {
	ext := domain.ExtractionResult{
		Priority: domain.PriorityHigh,
		Flags:    []string{"anomaly:suspicious-content"},
	}

	for _, record := range RouteActions("doc-1", domain.IntentFraudRisk, ext) {
		if record.Priority.Rank() < ext.Priority.Rank() {
			t.Errorf("action %s priority = %s, lower than extraction %s",
				record.Type, record.Priority, ext.Priority)
		}
	}
}

func TestRouteIsIdempotentOverActionTypes(t *testing.T) {
	ext := domain.ExtractionResult{
		Priority: domain.PriorityHigh,
		Flags:    []string{"anomaly:duplicate-key", "risk:high-value"},
	}

	first := actionTypes(RouteActions("doc-1", domain.IntentFraudRisk, ext))
	second := actionTypes(RouteActions("doc-1", domain.IntentFraudRisk, ext))

	if len(first) != len(second) {
		t.Fatalf("action sets differ: %v vs %v", first, second)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("action sets differ: %v vs %v", first, second)
		}
	}
}

func TestRouteRecordsCarryMetadataAndPendingStatus(t *testing.T) {
	ext := domain.ExtractionResult{
		Priority: domain.PriorityMedium,
		Flags:    []string{"anomaly:schema:amount"},
	}

	records := RouteActions("doc-7", domain.IntentInvoice, ext)
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	record := records[0]
	if record.DocumentID != "doc-7" {
		t.Errorf("document id = %q", record.DocumentID)
	}
	if record.Status != domain.ActionPending {
		t.Errorf("status = %s, want pending", record.Status)
	}
	if record.Metadata["intent"] != "invoice" {
		t.Errorf("metadata intent = %v", record.Metadata["intent"])
	}
	if record.ID == "" {
		t.Error("record id is empty")
	}
}

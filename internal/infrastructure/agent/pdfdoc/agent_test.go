package pdfdoc

import (
	"context"
	"errors"
	"testing"

	"github.com/arun84-eng/AI-Agent-System/internal/core/domain"
)

func agentWithText(text string) *Agent {
	return New(10000, WithTextExtractor(func([]byte) (string, error) {
		return text, nil
	}))
}

func extract(t *testing.T, text string) domain.ExtractionResult {
	t.Helper()
	a := agentWithText(text)
	doc := &domain.Document{ID: "doc-1", Filename: "document.pdf"}
	res, err := a.Extract(context.Background(), doc, []byte("%PDF-1.4"),
		domain.ClassificationResult{Format: domain.FormatPDF})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	return res
}

func TestExtractLowValueInvoiceIsLowPriority(t *testing.T) {
	text := "INVOICE #INV-2024-001\nBill To: Acme Corp\nTotal Amount: $1,500.00\nDue Date: 2024-06-30"

	res := extract(t, text)

	if got := res.Fields["document_type"]; got != "invoice" {
		t.Errorf("document_type = %v, want invoice", got)
	}
	if got := res.Fields["total_amount"]; got != 1500.0 {
		t.Errorf("total_amount = %v, want 1500", got)
	}
	if got := res.Fields["invoice_number"]; got != "INV-2024-001" {
		t.Errorf("invoice_number = %v", got)
	}
	if res.Priority != domain.PriorityLow {
		t.Errorf("priority = %s, want low", res.Priority)
	}
	if len(res.Flags) != 0 {
		t.Errorf("unexpected flags %v", res.Flags)
	}
}

func TestExtractHighValueInvoiceEscalates(t *testing.T) {
	text := "INVOICE #INV-2024-002\nTotal Amount: $15,000.00"

	res := extract(t, text)

	if res.Priority != domain.PriorityHigh {
		t.Errorf("priority = %s, want high", res.Priority)
	}
	if !res.HasFlagPrefix("risk:high-value") {
		t.Errorf("expected risk:high-value, got %v", res.Flags)
	}
	if got := res.Fields["total_amount"]; got != 15000.0 {
		t.Errorf("total_amount = %v, want 15000", got)
	}
}

func TestExtractCompliancePolicy(t *testing.T) {
	text := "Data Protection Policy\nThis document outlines requirements under GDPR for every data controller."

	res := extract(t, text)

	if got := res.Fields["document_type"]; got != "policy" {
		t.Errorf("document_type = %v, want policy", got)
	}
	if !res.HasFlagPrefix("compliance:gdpr") {
		t.Errorf("expected compliance:gdpr, got %v", res.Flags)
	}
	if res.Priority != domain.PriorityHigh {
		t.Errorf("priority = %s, want high", res.Priority)
	}
}

func TestExtractComplianceRiskIndicator(t *testing.T) {
	text := "Audit report: a data breach was identified during the assessment period."

	res := extract(t, text)

	if !res.HasFlagPrefix("anomaly:compliance-risk") {
		t.Errorf("expected anomaly:compliance-risk, got %v", res.Flags)
	}
	if res.Priority.Rank() < domain.PriorityMedium.Rank() {
		t.Errorf("priority = %s, want at least medium", res.Priority)
	}
}

func TestExtractDatesAndParties(t *testing.T) {
	text := "Service Agreement\nClient: Globex Industries\nEffective 2024-01-15 through 2025-01-15"

	res := extract(t, text)

	dates, ok := res.Fields["dates"].([]string)
	if !ok || len(dates) != 2 {
		t.Fatalf("dates = %v, want 2 entries", res.Fields["dates"])
	}
	parties, ok := res.Fields["parties"].([]string)
	if !ok || len(parties) != 1 || parties[0] != "Globex Industries" {
		t.Fatalf("parties = %v", res.Fields["parties"])
	}
}

func TestExtractUnreadablePDFFails(t *testing.T) {
	a := New(10000, WithTextExtractor(func([]byte) (string, error) {
		return "", errors.New("damaged xref table")
	}))
	doc := &domain.Document{ID: "doc-1", Filename: "broken.pdf"}

	_, err := a.Extract(context.Background(), doc, []byte("%PDF-"), domain.ClassificationResult{})
	if !domain.IsKind(err, domain.ErrExtractionFailure) {
		t.Fatalf("expected ErrExtractionFailure, got %v", err)
	}
}

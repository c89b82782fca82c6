package email

import (
	"context"
	"testing"

	"github.com/arun84-eng/AI-Agent-System/internal/core/domain"
)

func extract(t *testing.T, raw string, intent domain.Intent) domain.ExtractionResult {
	t.Helper()
	a := New(0.7, 0.4)
	doc := &domain.Document{ID: "doc-1", Filename: "message.eml"}
	cls := domain.ClassificationResult{Format: domain.FormatEmail, Intent: intent, Confidence: 0.6}
	res, err := a.Extract(context.Background(), doc, []byte(raw), cls)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	return res
}

func TestExtractParsesSenderAndSubject(t *testing.T) {
	raw := "From: Jane Doe <jane@example.com>\nSubject: Quarterly report\nTo: reports@corp.example\n\nAttached is the report."

	res := extract(t, raw, domain.IntentUnknown)

	if got := res.Fields["sender"]; got != "jane@example.com" {
		t.Errorf("sender = %v, want jane@example.com", got)
	}
	if got := res.Fields["sender_name"]; got != "Jane Doe" {
		t.Errorf("sender_name = %v, want Jane Doe", got)
	}
	if got := res.Fields["subject"]; got != "Quarterly report" {
		t.Errorf("subject = %v", got)
	}
}

func TestExtractUrgentFraudEmailIsHighPriority(t *testing.T) {
	raw := "From: security@bank.example\nSubject: URGENT - fraud suspected on account 552\n\nURGENT - fraud suspected on account 552. Please review."

	res := extract(t, raw, domain.IntentFraudRisk)

	if res.Priority != domain.PriorityHigh {
		t.Errorf("priority = %s, want high", res.Priority)
	}
	score, ok := res.Fields["urgency_score"].(float64)
	if !ok || score < 0.7 {
		t.Errorf("urgency_score = %v, want >= 0.7", res.Fields["urgency_score"])
	}
	if !res.HasFlagPrefix("risk:urgent") {
		t.Errorf("expected risk:urgent flag, got %v", res.Flags)
	}
}

func TestExtractPoliteEmailIsLowPriority(t *testing.T) {
	raw := "From: a@b.com\nSubject: Thanks\n\nThank you for the excellent support. I appreciate the quick turnaround."

	res := extract(t, raw, domain.IntentUnknown)

	if res.Priority != domain.PriorityLow {
		t.Errorf("priority = %s, want low", res.Priority)
	}
	if got := res.Fields["tone"]; got != "polite" {
		t.Errorf("tone = %v, want polite", got)
	}
}

func TestExtractHostileComplaintTone(t *testing.T) {
	raw := "From: angry@customer.example\nSubject: Billing problem\n\nThis is unacceptable! I demand a refund immediately!"

	res := extract(t, raw, domain.IntentComplaint)

	if got := res.Fields["tone"]; got != "hostile" {
		t.Errorf("tone = %v, want hostile", got)
	}
	if !res.HasFlagPrefix("tone:hostile") {
		t.Errorf("expected tone:hostile flag, got %v", res.Flags)
	}
	if res.Priority == domain.PriorityLow {
		t.Errorf("priority = low, want at least medium")
	}
}

func TestExtractPlainTextFallback(t *testing.T) {
	// Not a strict RFC 5322 message: header-ish lines without a valid
	// header block still yield sender and subject.
	raw := "Subject: order inquiry\nFrom: buyer@shop.example\nHow soon can you ship 200 units?"

	res := extract(t, raw, domain.IntentRFQ)

	if got := res.Fields["subject"]; got != "order inquiry" {
		t.Errorf("subject = %v", got)
	}
	if got := res.Fields["sender"]; got != "buyer@shop.example" {
		t.Errorf("sender = %v", got)
	}
	if got := res.Fields["body_preview"]; got != "How soon can you ship 200 units?" {
		t.Errorf("body_preview = %v", got)
	}
}

func TestExtractAmountsAndAccountRefs(t *testing.T) {
	raw := "From: billing@vendor.example\nSubject: Invoice INV-2207 overdue\n\nInvoice INV-2207 for $4,500.00 is overdue. Account 88213 will be suspended. Total due $4,500.00."

	res := extract(t, raw, domain.IntentInvoice)

	amounts, ok := res.Fields["amounts"].([]string)
	if !ok || len(amounts) != 1 || amounts[0] != "$4,500.00" {
		t.Errorf("amounts = %v, want [$4,500.00]", res.Fields["amounts"])
	}
	refs, ok := res.Fields["account_refs"].([]string)
	if !ok || len(refs) != 2 {
		t.Fatalf("account_refs = %v, want two entries", res.Fields["account_refs"])
	}
	if refs[0] != "INV-2207" || refs[1] != "88213" {
		t.Errorf("account_refs = %v", refs)
	}
}

func TestExtractEmptyMessageFails(t *testing.T) {
	a := New(0.7, 0.4)
	doc := &domain.Document{ID: "doc-1", Filename: "empty.eml"}

	_, err := a.Extract(context.Background(), doc, []byte("  \n"), domain.ClassificationResult{})
	if !domain.IsKind(err, domain.ErrExtractionFailure) {
		t.Fatalf("expected ErrExtractionFailure, got %v", err)
	}
}

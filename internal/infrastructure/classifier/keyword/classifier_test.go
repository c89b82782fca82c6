package keyword

import (
	"context"
	"testing"

	"github.com/arun84-eng/AI-Agent-System/internal/core/domain"
)

func classify(t *testing.T, filename string, raw []byte) (domain.ClassificationResult, error) {
	t.Helper()
	c := New(0.25)
	doc := &domain.Document{ID: "doc-1", Filename: filename}
	return c.Classify(context.Background(), doc, raw)
}

func TestClassifyDetectsEmailBySignature(t *testing.T) {
	raw := []byte("From: customer@example.com\nSubject: Order status\n\nWhere is my order?")

	res, err := classify(t, "message.eml", raw)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if res.Format != domain.FormatEmail {
		t.Errorf("format = %s, want email", res.Format)
	}
}

func TestClassifyDetectsEmailWithoutExtension(t *testing.T) {
	raw := []byte("From: a@b.com\nSubject: hello\n\nbody")

	res, err := classify(t, "upload.bin", raw)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if res.Format != domain.FormatEmail {
		t.Errorf("format = %s, want email", res.Format)
	}
}

func TestClassifyDetectsPDFByMagicBytes(t *testing.T) {
	raw := []byte("%PDF-1.7\nsome pdf content")

	res, err := classify(t, "scan", raw)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if res.Format != domain.FormatPDF {
		t.Errorf("format = %s, want pdf", res.Format)
	}
}

func TestClassifyDetectsJSONRoot(t *testing.T) {
	raw := []byte(`{"rfq_id": "RFQ-2024-001", "company": "ABC Corp"}`)

	res, err := classify(t, "payload.json", raw)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if res.Format != domain.FormatJSON {
		t.Errorf("format = %s, want json", res.Format)
	}
	if res.Intent != domain.IntentRFQ {
		t.Errorf("intent = %s, want rfq", res.Intent)
	}
}

func TestClassifyUnrecognizedFormat(t *testing.T) {
	raw := []byte("just some plain prose with no structure at all")

	res, err := classify(t, "notes.txt", raw)
	if !domain.IsKind(err, domain.ErrUnrecognizedFormat) {
		t.Fatalf("expected ErrUnrecognizedFormat, got %v", err)
	}
	if res.Format != domain.FormatUnknown {
		t.Errorf("format = %s, want unknown", res.Format)
	}
}

func TestClassifyFraudEmail(t *testing.T) {
	raw := []byte("From: security@bank.example\nSubject: URGENT\n\nURGENT - fraud suspected on account 552")

	res, err := classify(t, "alert.eml", raw)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if res.Format != domain.FormatEmail {
		t.Errorf("format = %s, want email", res.Format)
	}
	if res.Intent != domain.IntentFraudRisk {
		t.Errorf("intent = %s, want fraud_risk", res.Intent)
	}
	if res.Confidence < 0.25 {
		t.Errorf("confidence = %v, want >= 0.25", res.Confidence)
	}
}

func TestClassifyTieBreakPrefersFraudRisk(t *testing.T) {
	// "fraud" and "complaint" each carry weight 3, so both categories
	// score identically.
	raw := []byte("From: a@b.com\nSubject: account\n\nfraud complaint")

	res, err := classify(t, "tie.eml", raw)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if res.Intent != domain.IntentFraudRisk {
		t.Errorf("intent = %s, want fraud_risk on tie", res.Intent)
	}
}

func TestClassifyUnknownIntentBelowThreshold(t *testing.T) {
	raw := []byte("From: a@b.com\nSubject: lunch\n\nshall we get lunch tomorrow")

	res, err := classify(t, "lunch.eml", raw)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if res.Intent != domain.IntentUnknown {
		t.Errorf("intent = %s, want unknown", res.Intent)
	}
	if res.Confidence >= 0.25 {
		t.Errorf("confidence = %v, want below threshold", res.Confidence)
	}
}

func TestClassifyRegulationPDFUsesExtractedText(t *testing.T) {
	c := New(0.25, WithPDFText(func([]byte) (string, error) {
		return "GDPR Compliance Policy. This document outlines data protection requirements.", nil
	}))
	doc := &domain.Document{ID: "doc-2", Filename: "policy.pdf"}

	res, err := c.Classify(context.Background(), doc, []byte("%PDF-1.4\nbinarystream"))
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if res.Intent != domain.IntentRegulation {
		t.Errorf("intent = %s, want regulation", res.Intent)
	}
}

func TestClassifyMalformedJSONExtensionFallsThrough(t *testing.T) {
	raw := []byte(`{"broken": `)

	_, err := classify(t, "payload.json", raw)
	if !domain.IsKind(err, domain.ErrUnrecognizedFormat) {
		t.Fatalf("expected ErrUnrecognizedFormat for malformed json, got %v", err)
	}
}

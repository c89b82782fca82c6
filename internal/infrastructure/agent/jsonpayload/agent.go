// Package jsonpayload implements the format agent for structured JSON
// payloads: purpose inference by key set, schema validation, and
// content/value anomaly detection.
package jsonpayload

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/arun84-eng/AI-Agent-System/internal/core/domain"
)

type fieldKind int

const (
	kindString fieldKind = iota
	kindNumber
	kindList
	kindObject
)

type schema struct {
	name     string
	required []string
	optional []string
	types    map[string]fieldKind
}

// schemas describe the payload shapes the business accepts. Purpose is
// inferred by key overlap, so a payload missing one required field still
// resolves to its schema and gets flagged for the gap.
var schemas = []schema{
	{
		name:     "rfq",
		required: []string{"rfq_id", "company", "items"},
		optional: []string{"deadline", "contact", "requirements"},
		types: map[string]fieldKind{
			"rfq_id":  kindString,
			"company": kindString,
			"items":   kindList,
			"contact": kindObject,
		},
	},
	{
		name:     "webhook",
		required: []string{"timestamp", "event_type", "data"},
		optional: []string{"source", "version", "signature"},
		types: map[string]fieldKind{
			"timestamp":  kindString,
			"event_type": kindString,
			"data":       kindObject,
		},
	},
	{
		name:     "transaction",
		required: []string{"transaction_id", "amount", "currency"},
		optional: []string{"description", "timestamp", "risk_score"},
		types: map[string]fieldKind{
			"transaction_id": kindString,
			"amount":         kindNumber,
			"currency":       kindString,
			"risk_score":     kindNumber,
		},
	},
	{
		name:     "customer_data",
		required: []string{"customer_id", "name", "email"},
		optional: []string{"phone", "address", "preferences"},
		types: map[string]fieldKind{
			"customer_id": kindString,
			"name":        kindString,
			"email":       kindString,
			"phone":       kindString,
		},
	},
}

// Injection and abuse signatures scanned over the raw payload.
var suspiciousPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`),
	regexp.MustCompile(`(?i)union\s+select`),
	regexp.MustCompile(`(?i)javascript:`),
	regexp.MustCompile(`(?i)data:text/html`),
}

var highRiskKeywords = regexp.MustCompile(`(?i)\b(password|secret|exploit|injection|backdoor)\b`)

var amountFieldNames = []string{"amount", "total", "value"}

type Agent struct {
	amountThreshold float64
}

func New(amountThreshold float64) *Agent {
	if amountThreshold <= 0 {
		amountThreshold = 50000
	}
	return &Agent{amountThreshold: amountThreshold}
}

func (a *Agent) Name() string { return "json_agent" }

func (a *Agent) Extract(ctx context.Context, doc *domain.Document, raw []byte, cls domain.ClassificationResult) (domain.ExtractionResult, error) {
	if err := ctx.Err(); err != nil {
		return domain.ExtractionResult{}, err
	}

	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return domain.ExtractionResult{}, domain.WrapError(domain.ErrExtractionFailure, "jsonpayload.Extract",
			fmt.Errorf("malformed payload %q: %w", doc.Filename, err))
	}

	result := domain.ExtractionResult{
		Fields:   map[string]any{},
		Priority: domain.PriorityLow,
	}

	purpose, matched := inferPurpose(payload)
	result.Fields["purpose"] = purpose
	result.Fields["key_count"] = len(payload)

	if matched != nil {
		missing := validateSchema(payload, *matched, &result)
		if len(missing) > 0 {
			result.Fields["missing_required"] = missing
		}
	}

	a.detectValueAnomalies(payload, &result)
	detectContentAnomalies(raw, &result)
	detectDuplicateKeys(raw, &result)

	// Any anomaly forces at least Medium; concurrent anomalies force High.
	switch n := result.CountFlagPrefix("anomaly:"); {
	case n >= 2:
		result.Priority = result.Priority.AtLeast(domain.PriorityHigh)
	case n == 1:
		result.Priority = result.Priority.AtLeast(domain.PriorityMedium)
	}
	return result, nil
}

// inferPurpose picks the schema with the largest key overlap. At least
// two known keys are required; below that the payload stays untyped and
// schema validation is skipped.
func inferPurpose(payload map[string]any) (string, *schema) {
	best := -1
	bestOverlap := 1
	for i, s := range schemas {
		overlap := 0
		for _, key := range s.required {
			if _, ok := payload[key]; ok {
				overlap++
			}
		}
		for _, key := range s.optional {
			if _, ok := payload[key]; ok {
				overlap++
			}
		}
		if overlap > bestOverlap {
			best = i
			bestOverlap = overlap
		}
	}
	if best < 0 {
		return "unknown", nil
	}
	return schemas[best].name, &schemas[best]
}

// validateSchema flags missing required keys and type mismatches and
// returns the sorted list of missing keys.
func validateSchema(payload map[string]any, s schema, result *domain.ExtractionResult) []string {
	var missing []string
	for _, key := range s.required {
		if _, ok := payload[key]; !ok {
			missing = append(missing, key)
			result.AddFlag("anomaly:schema:" + key)
		}
	}
	sort.Strings(missing)

	for key, want := range s.types {
		value, ok := payload[key]
		if !ok {
			continue
		}
		if !kindMatches(value, want) {
			result.AddFlag("anomaly:schema:" + key)
		}
	}
	if len(missing) > 0 || result.HasFlagPrefix("anomaly:schema:") {
		result.Priority = result.Priority.AtLeast(domain.PriorityMedium)
	}
	return missing
}

func kindMatches(value any, want fieldKind) bool {
	switch want {
	case kindString:
		_, ok := value.(string)
		return ok
	case kindNumber:
		_, ok := value.(float64)
		return ok
	case kindList:
		_, ok := value.([]any)
		return ok
	case kindObject:
		_, ok := value.(map[string]any)
		return ok
	}
	return false
}

// detectValueAnomalies surfaces monetary values above the suspicious
// threshold.
func (a *Agent) detectValueAnomalies(payload map[string]any, result *domain.ExtractionResult) {
	for _, name := range amountFieldNames {
		value, ok := payload[name].(float64)
		if !ok {
			continue
		}
		result.Fields[name] = value
		if value > a.amountThreshold {
			result.AddFlag("risk:high-value")
			result.Priority = result.Priority.AtLeast(domain.PriorityHigh)
		}
	}
	if currency, ok := payload["currency"].(string); ok {
		result.Fields["currency"] = currency
	}
}

func detectContentAnomalies(raw []byte, result *domain.ExtractionResult) {
	for _, pattern := range suspiciousPatterns {
		if pattern.Match(raw) {
			result.AddFlag("anomaly:suspicious-content")
			break
		}
	}
	if match := highRiskKeywords.Find(raw); match != nil {
		result.AddFlag("anomaly:high-risk-keyword")
		result.Fields["risk_keyword"] = strings.ToLower(string(match))
	}
}

// detectDuplicateKeys walks the raw token stream: encoding/json silently
// keeps the last duplicate, so the check has to happen before decoding.
func detectDuplicateKeys(raw []byte, result *domain.ExtractionResult) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return
	}

	seen := map[string]bool{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return
		}
		key, ok := keyTok.(string)
		if !ok {
			return
		}
		if seen[key] {
			result.AddFlag("anomaly:duplicate-key")
			return
		}
		seen[key] = true

		// Skip the value, including nested containers.
		if err := skipValue(dec); err != nil {
			return
		}
	}
}

func skipValue(dec *json.Decoder) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	delim, ok := tok.(json.Delim)
	if !ok || (delim != '{' && delim != '[') {
		return nil
	}
	depth := 1
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		if d, ok := tok.(json.Delim); ok {
			switch d {
			case '{', '[':
				depth++
			case '}', ']':
				depth--
			}
		}
	}
	return nil
}

// Package pdfdoc implements the format agent for PDF documents: plain
// text extraction, sub-type detection, financial pattern matching, and
// compliance framework flagging.
package pdfdoc

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/arun84-eng/AI-Agent-System/internal/core/domain"
)

// ExtractText pulls the plain text stream out of PDF bytes. Shared with
// the classifier for intent scoring.
func ExtractText(raw []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}
	text, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}
	return string(text), nil
}

var documentTypes = map[string][]string{
	"invoice":     {"invoice", "bill", "payment request", "statement", "receipt"},
	"contract":    {"contract", "agreement", "terms and conditions", "obligations"},
	"policy":      {"policy", "procedure", "guidelines", "standards"},
	"report":      {"report", "analysis", "summary", "findings", "assessment"},
	"certificate": {"certificate", "certification", "accreditation", "license"},
}

// typeOrder fixes iteration so equal scores resolve the same way every
// run.
var typeOrder = []string{"invoice", "contract", "policy", "report", "certificate"}

var complianceFrameworks = map[string][]string{
	"gdpr":  {"gdpr", "general data protection regulation", "data subject", "data controller"},
	"hipaa": {"hipaa", "protected health information", "phi", "medical records"},
	"sox":   {"sarbanes oxley", "sox", "internal controls", "financial reporting"},
	"pci":   {"pci dss", "payment card industry", "cardholder data"},
	"fda":   {"fda", "food and drug administration", "clinical trial", "drug approval"},
	"iso":   {"iso 27001", "information security management"},
}

var (
	amountPatterns = []*regexp.Regexp{
		regexp.MustCompile(`[$€£][\d,]+(?:\.\d+)?`),
		regexp.MustCompile(`(?i)(?:usd|eur|gbp)\s*[\d,]+(?:\.\d+)?`),
		regexp.MustCompile(`(?i)(?:total|amount due|amount|subtotal|balance)\s*:?\s*\$?[\d,]+(?:\.\d+)?`),
	}
	numberPattern  = regexp.MustCompile(`[\d,]+(?:\.\d+)?`)
	invoiceNumber  = regexp.MustCompile(`(?i)invoice\s*#?\s*:?\s*([A-Z]{2,4}-[\w-]+|\d{4,})`)
	datePattern    = regexp.MustCompile(`\d{4}-\d{2}-\d{2}|\d{2}/\d{2}/\d{4}`)
	partyPattern   = regexp.MustCompile(`(?im)^(?:bill to|vendor|client|between|party)\s*:?\s+(.{2,60})$`)
	riskIndicators = []string{"violation", "non-compliance", "breach", "penalty"}
)

// TextFunc lets tests substitute the PDF text extractor.
type TextFunc func(raw []byte) (string, error)

type Agent struct {
	highValueThreshold float64
	extractText        TextFunc
}

type Option func(*Agent)

func WithTextExtractor(fn TextFunc) Option {
	return func(a *Agent) { a.extractText = fn }
}

func New(highValueThreshold float64, opts ...Option) *Agent {
	if highValueThreshold <= 0 {
		highValueThreshold = 10000
	}
	a := &Agent{highValueThreshold: highValueThreshold, extractText: ExtractText}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Agent) Name() string { return "pdf_agent" }

func (a *Agent) Extract(ctx context.Context, doc *domain.Document, raw []byte, cls domain.ClassificationResult) (domain.ExtractionResult, error) {
	if err := ctx.Err(); err != nil {
		return domain.ExtractionResult{}, err
	}

	text, err := a.extractText(raw)
	if err != nil {
		return domain.ExtractionResult{}, domain.WrapError(domain.ErrExtractionFailure, "pdfdoc.Extract",
			fmt.Errorf("unreadable pdf %q: %w", doc.Filename, err))
	}
	lower := strings.ToLower(text)

	result := domain.ExtractionResult{
		Fields:   map[string]any{},
		Priority: domain.PriorityLow,
	}

	result.Fields["document_type"] = detectDocumentType(lower)

	amounts := extractAmounts(text)
	if len(amounts) > 0 {
		total := amounts[0]
		for _, amount := range amounts[1:] {
			if amount > total {
				total = amount
			}
		}
		result.Fields["total_amount"] = total
		if total > a.highValueThreshold {
			result.AddFlag("risk:high-value")
			result.Priority = result.Priority.AtLeast(domain.PriorityHigh)
		}
	}

	if m := invoiceNumber.FindStringSubmatch(text); m != nil {
		result.Fields["invoice_number"] = m[1]
	}
	if dates := datePattern.FindAllString(text, 5); len(dates) > 0 {
		result.Fields["dates"] = dates
	}
	if parties := extractParties(text); len(parties) > 0 {
		result.Fields["parties"] = parties
	}

	frameworks := detectCompliance(lower)
	if len(frameworks) > 0 {
		result.Fields["compliance_frameworks"] = frameworks
		for _, framework := range frameworks {
			result.AddFlag("compliance:" + framework)
		}
		result.Priority = result.Priority.AtLeast(domain.PriorityHigh)
	}

	for _, indicator := range riskIndicators {
		if strings.Contains(lower, indicator) {
			result.AddFlag("anomaly:compliance-risk")
			result.Priority = result.Priority.AtLeast(domain.PriorityMedium)
			break
		}
	}

	return result, nil
}

// detectDocumentType scores each sub-type by keyword hits; ties resolve
// by typeOrder.
func detectDocumentType(lower string) string {
	best := "unknown"
	bestScore := 0
	for _, name := range typeOrder {
		score := 0
		for _, keyword := range documentTypes[name] {
			if strings.Contains(lower, keyword) {
				score++
			}
		}
		if score > bestScore {
			best = name
			bestScore = score
		}
	}
	return best
}

func extractAmounts(text string) []float64 {
	var amounts []float64
	for _, pattern := range amountPatterns {
		for _, match := range pattern.FindAllString(text, -1) {
			digits := numberPattern.FindString(match)
			if digits == "" {
				continue
			}
			value, err := strconv.ParseFloat(strings.ReplaceAll(digits, ",", ""), 64)
			if err != nil {
				continue
			}
			amounts = append(amounts, value)
		}
	}
	return amounts
}

func extractParties(text string) []string {
	var parties []string
	for _, m := range partyPattern.FindAllStringSubmatch(text, 5) {
		parties = append(parties, strings.TrimSpace(m[1]))
	}
	return parties
}

func detectCompliance(lower string) []string {
	var frameworks []string
	for _, name := range [...]string{"gdpr", "hipaa", "sox", "pci", "fda", "iso"} {
		for _, keyword := range complianceFrameworks[name] {
			if strings.Contains(lower, keyword) {
				frameworks = append(frameworks, name)
				break
			}
		}
	}
	return frameworks
}

// Package keyword implements format detection and business-intent
// classification over raw document bytes. Detection is signature-first
// (magic bytes, header presence, JSON parse), intent is weighted keyword
// scoring with a deterministic tie-break.
package keyword

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/arun84-eng/AI-Agent-System/internal/core/domain"
)

var pdfMagic = []byte("%PDF-")

// PDFTextFunc extracts plain text from PDF bytes for intent scoring.
type PDFTextFunc func(raw []byte) (string, error)

type Classifier struct {
	minScore float64
	pdfText  PDFTextFunc
}

type Option func(*Classifier)

// WithPDFText supplies a text extractor used to score intent for PDF
// documents. Without one, scoring falls back to the raw byte stream.
func WithPDFText(fn PDFTextFunc) Option {
	return func(c *Classifier) { c.pdfText = fn }
}

func New(minScore float64, opts ...Option) *Classifier {
	if minScore <= 0 || minScore >= 1 {
		minScore = 0.25
	}
	c := &Classifier{minScore: minScore}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Classifier) Classify(ctx context.Context, doc *domain.Document, raw []byte) (domain.ClassificationResult, error) {
	if err := ctx.Err(); err != nil {
		return domain.ClassificationResult{}, err
	}

	format := detectFormat(doc.Extension(), raw)
	if format == domain.FormatUnknown {
		return domain.ClassificationResult{Format: domain.FormatUnknown, Intent: domain.IntentUnknown},
			domain.WrapError(domain.ErrUnrecognizedFormat, "classifier.Classify",
				fmt.Errorf("no extension or content signature matched %q", doc.Filename))
	}

	text := c.scoringText(format, raw)
	intent, confidence := scoreIntent(text, c.minScore)

	return domain.ClassificationResult{
		Format:     format,
		Intent:     intent,
		Confidence: confidence,
	}, nil
}

// detectFormat resolves format by extension and content signature. The
// signature decides when extension and content disagree.
func detectFormat(ext string, raw []byte) domain.Format {
	if bytes.HasPrefix(raw, pdfMagic) {
		return domain.FormatPDF
	}

	switch ext {
	case ".eml", ".msg":
		if hasEmailHeaders(raw) {
			return domain.FormatEmail
		}
	case ".json":
		if isJSONRoot(raw) {
			return domain.FormatJSON
		}
	}

	// No extension match: sniff the content.
	if hasEmailHeaders(raw) {
		return domain.FormatEmail
	}
	if isJSONRoot(raw) {
		return domain.FormatJSON
	}
	return domain.FormatUnknown
}

// hasEmailHeaders scans the leading lines for RFC 5322 style headers.
// From and Subject are both required so plain prose mentioning "Subject:"
// mid-document does not pass.
func hasEmailHeaders(raw []byte) bool {
	head := raw
	if len(head) > 4096 {
		head = head[:4096]
	}
	var hasFrom, hasSubject bool
	for _, line := range bytes.Split(head, []byte("\n")) {
		if len(bytes.TrimSpace(line)) == 0 {
			break // end of header block
		}
		lower := bytes.ToLower(line)
		switch {
		case bytes.HasPrefix(lower, []byte("from:")):
			hasFrom = true
		case bytes.HasPrefix(lower, []byte("subject:")):
			hasSubject = true
		}
	}
	return hasFrom && hasSubject
}

func isJSONRoot(raw []byte) bool {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return false
	}
	if trimmed[0] != '{' && trimmed[0] != '[' {
		return false
	}
	return json.Valid(trimmed)
}

// scoringText builds the normalized text each format is scored over:
// full message for email, top-level keys plus scalar values for JSON,
// extracted text for PDF.
func (c *Classifier) scoringText(format domain.Format, raw []byte) string {
	switch format {
	case domain.FormatJSON:
		return jsonScoringText(raw)
	case domain.FormatPDF:
		if c.pdfText != nil {
			if text, err := c.pdfText(raw); err == nil {
				return strings.ToLower(text)
			}
		}
		return strings.ToLower(string(raw))
	default:
		return strings.ToLower(string(raw))
	}
}

func jsonScoringText(raw []byte) string {
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return strings.ToLower(string(raw))
	}
	parts := make([]string, 0, len(payload)*2)
	for key, value := range payload {
		parts = append(parts, key)
		switch v := value.(type) {
		case string:
			parts = append(parts, v)
		case bool:
			if v {
				parts = append(parts, key+"_true")
			}
		}
	}
	sort.Strings(parts)
	return strings.ToLower(strings.Join(parts, " "))
}

type weightedKeyword struct {
	term   string
	weight float64
}

// intentKeywords is the per-category weight table. Weights reflect how
// strongly a term signals the category on its own.
var intentKeywords = map[domain.Intent][]weightedKeyword{
	domain.IntentFraudRisk: {
		{"fraud", 3}, {"suspicious", 2}, {"unauthorized", 2},
		{"anomaly", 2}, {"unusual", 1}, {"irregular", 1}, {"risk", 1},
	},
	domain.IntentComplaint: {
		{"complaint", 3}, {"unacceptable", 2}, {"frustrated", 2},
		{"angry", 2}, {"terrible", 2}, {"awful", 2},
		{"disappointed", 2}, {"issue", 1}, {"problem", 1},
	},
	domain.IntentRegulation: {
		{"gdpr", 3}, {"hipaa", 3}, {"sox", 3}, {"pci", 3}, {"fda", 3},
		{"compliance", 2}, {"regulation", 2}, {"policy", 1},
	},
	domain.IntentInvoice: {
		{"invoice", 3}, {"bill", 2}, {"due date", 2},
		{"payment", 1}, {"total", 1}, {"charge", 1},
	},
	domain.IntentRFQ: {
		{"request for quote", 3}, {"rfq", 3}, {"quotation", 2},
		{"quote", 2}, {"proposal", 1}, {"bid", 1},
	},
}

// tieBreakOrder lists scoreable intents by domain.IntentTieBreak
// precedence, best first.
var tieBreakOrder = func() []domain.Intent {
	intents := make([]domain.Intent, 0, len(intentKeywords))
	for intent := range intentKeywords {
		intents = append(intents, intent)
	}
	sort.Slice(intents, func(i, j int) bool {
		return domain.IntentTieBreak[intents[i]] < domain.IntentTieBreak[intents[j]]
	})
	return intents
}()

// scoreIntent picks the highest-scoring category; ties resolve by
// tieBreakOrder so fraud and compliance concerns are never down-ranked.
// Scores below minScore resolve to Unknown with the losing confidence.
func scoreIntent(text string, minScore float64) (domain.Intent, float64) {
	best := domain.IntentUnknown
	bestScore := 0.0
	for _, intent := range tieBreakOrder {
		score := scoreCategory(text, intentKeywords[intent])
		if score > bestScore {
			best = intent
			bestScore = score
		}
	}
	if bestScore < minScore {
		return domain.IntentUnknown, bestScore
	}
	return best, bestScore
}

// scoreCategory sums the weights of matched terms and saturates toward 1
// so confidence is comparable across categories of different sizes.
func scoreCategory(text string, keywords []weightedKeyword) float64 {
	matched := 0.0
	for _, kw := range keywords {
		if strings.Contains(text, kw.term) {
			matched += kw.weight
		}
	}
	if matched == 0 {
		return 0
	}
	return matched / (matched + 2.0)
}

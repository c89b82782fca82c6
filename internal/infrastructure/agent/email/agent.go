// Package email implements the format agent for RFC 5322 messages:
// structured field extraction plus lexical urgency and tone analysis.
package email

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/mail"
	"regexp"
	"strings"
	"unicode"

	"github.com/arun84-eng/AI-Agent-System/internal/core/domain"
)

const previewLimit = 200

// Marker sets for tone scoring. Presence is scored per marker, not per
// occurrence.
var (
	urgencyMarkers = []string{
		"urgent", "asap", "immediately", "emergency", "critical",
		"time sensitive", "deadline", "expires", "due today",
		"before close of business",
	}
	hostileMarkers = []string{
		"furious", "outraged", "disgusted", "livid", "unacceptable",
		"terrible", "awful", "horrible", "ridiculous", "pathetic",
		"useless", "demand", "lawyer", "legal action", "sue", "lawsuit",
	}
	politeMarkers = []string{
		"please", "thank you", "appreciate", "grateful", "kindly",
		"respectfully", "sincerely", "best regards", "looking forward",
	}

	amountPattern  = regexp.MustCompile(`(?i)(?:[$€£]|usd|eur|gbp)\s?\d[\d,]*(?:\.\d{2})?`)
	accountPattern = regexp.MustCompile(`(?i)\b(?:account|acct|reference|order|invoice)\b\s*#?\s*:?\s*([A-Z0-9][A-Z0-9-]{2,})`)
)

type Agent struct {
	highThreshold   float64
	mediumThreshold float64
}

func New(highThreshold, mediumThreshold float64) *Agent {
	if highThreshold <= 0 || highThreshold > 1 {
		highThreshold = 0.7
	}
	if mediumThreshold <= 0 || mediumThreshold >= highThreshold {
		mediumThreshold = 0.4
	}
	return &Agent{highThreshold: highThreshold, mediumThreshold: mediumThreshold}
}

func (a *Agent) Name() string { return "email_agent" }

func (a *Agent) Extract(ctx context.Context, doc *domain.Document, raw []byte, cls domain.ClassificationResult) (domain.ExtractionResult, error) {
	if err := ctx.Err(); err != nil {
		return domain.ExtractionResult{}, err
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return domain.ExtractionResult{}, domain.WrapError(domain.ErrExtractionFailure, "email.Extract",
			fmt.Errorf("empty message body for %q", doc.Filename))
	}

	msg := parseMessage(raw)
	urgency := a.urgencyScore(msg, cls.Intent)
	tone := toneOf(msg)

	result := domain.ExtractionResult{
		Fields: map[string]any{
			"sender":        msg.senderAddress,
			"sender_name":   msg.senderName,
			"subject":       msg.subject,
			"to":            msg.to,
			"urgency_score": urgency,
			"tone":          tone,
			"body_preview":  preview(msg.body),
		},
		Priority: a.priorityFor(urgency),
	}
	if msg.date != "" {
		result.Fields["date"] = msg.date
	}
	if amounts := extractAmounts(msg); len(amounts) > 0 {
		result.Fields["amounts"] = amounts
	}
	if refs := extractAccountRefs(msg); len(refs) > 0 {
		result.Fields["account_refs"] = refs
	}
	if tone == "hostile" {
		result.AddFlag("tone:hostile")
	}
	if urgency >= a.highThreshold {
		result.AddFlag("risk:urgent")
	}
	return result, nil
}

type parsedMessage struct {
	senderAddress string
	senderName    string
	subject       string
	to            string
	date          string
	body          string
}

// parseMessage reads the message with net/mail and falls back to a plain
// header scan when the bytes are not a strict RFC 5322 message.
func parseMessage(raw []byte) parsedMessage {
	msg, err := mail.ReadMessage(bytes.NewReader(raw))
	if err != nil {
		return parsePlainText(raw)
	}

	parsed := parsedMessage{
		subject: msg.Header.Get("Subject"),
		to:      msg.Header.Get("To"),
		date:    msg.Header.Get("Date"),
	}
	from := msg.Header.Get("From")
	if addr, err := mail.ParseAddress(from); err == nil {
		parsed.senderAddress = addr.Address
		parsed.senderName = addr.Name
	} else {
		parsed.senderAddress = from
	}
	if body, err := io.ReadAll(msg.Body); err == nil {
		parsed.body = strings.TrimSpace(string(body))
	}
	return parsed
}

// parsePlainText picks headers off leading lines until the first blank
// line, then treats the remainder as body.
func parsePlainText(raw []byte) parsedMessage {
	lines := strings.Split(string(raw), "\n")
	parsed := parsedMessage{}
	bodyStart := len(lines)
scan:
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			bodyStart = i + 1
			break
		}
		lower := strings.ToLower(trimmed)
		switch {
		case strings.HasPrefix(lower, "subject:"):
			parsed.subject = strings.TrimSpace(trimmed[8:])
		case strings.HasPrefix(lower, "from:"):
			parsed.senderAddress = strings.TrimSpace(trimmed[5:])
		case strings.HasPrefix(lower, "to:"):
			parsed.to = strings.TrimSpace(trimmed[3:])
		case strings.HasPrefix(lower, "date:"):
			parsed.date = strings.TrimSpace(trimmed[5:])
		default:
			// First non-header line starts the body.
			bodyStart = i
			break scan
		}
	}
	if bodyStart < len(lines) {
		parsed.body = strings.TrimSpace(strings.Join(lines[bodyStart:], "\n"))
	}
	return parsed
}

// urgencyScore combines lexical markers, ALL-CAPS ratio, exclamation
// density, and the classified intent into a [0,1] score.
func (a *Agent) urgencyScore(msg parsedMessage, intent domain.Intent) float64 {
	subject := strings.ToLower(msg.subject)
	body := strings.ToLower(msg.body)

	score := 0.0
	keywordScore := 0.0
	for _, marker := range urgencyMarkers {
		if strings.Contains(subject, marker) {
			keywordScore += 0.3
		}
		if strings.Contains(body, marker) {
			keywordScore += 0.2
		}
	}
	if keywordScore > 0.5 {
		keywordScore = 0.5
	}
	score += keywordScore

	score += capsRatio(msg.subject+" "+msg.body) * 0.5
	score += exclamationDensity(msg.body)

	switch intent {
	case domain.IntentFraudRisk:
		score += 0.3
	case domain.IntentComplaint:
		score += 0.2
	}

	if score > 1 {
		score = 1
	}
	return score
}

// capsRatio is the fraction of alphabetic words of length >= 3 written
// entirely in upper case.
func capsRatio(text string) float64 {
	total, caps := 0, 0
	for _, word := range strings.Fields(text) {
		word = strings.TrimFunc(word, func(r rune) bool { return !unicode.IsLetter(r) })
		if len(word) < 3 {
			continue
		}
		total++
		if word == strings.ToUpper(word) {
			caps++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(caps) / float64(total)
}

func exclamationDensity(body string) float64 {
	d := float64(strings.Count(body, "!")) * 0.05
	if d > 0.2 {
		d = 0.2
	}
	return d
}

// toneOf buckets the message into polite, neutral, or hostile. Hostility
// wins whenever both kinds of markers appear.
func toneOf(msg parsedMessage) string {
	text := strings.ToLower(msg.subject + " " + msg.body)
	hostile, polite := 0, 0
	for _, marker := range hostileMarkers {
		if strings.Contains(text, marker) {
			hostile++
		}
	}
	for _, marker := range politeMarkers {
		if strings.Contains(text, marker) {
			polite++
		}
	}
	switch {
	case hostile > 0:
		return "hostile"
	case polite > 0:
		return "polite"
	default:
		return "neutral"
	}
}

func extractAmounts(msg parsedMessage) []string {
	return dedupeMatches(amountPattern.FindAllString(msg.subject+"\n"+msg.body, -1))
}

func extractAccountRefs(msg parsedMessage) []string {
	var refs []string
	for _, match := range accountPattern.FindAllStringSubmatch(msg.subject+"\n"+msg.body, -1) {
		refs = append(refs, match[1])
	}
	return dedupeMatches(refs)
}

func dedupeMatches(matches []string) []string {
	seen := make(map[string]struct{}, len(matches))
	var out []string
	for _, m := range matches {
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	return out
}

func (a *Agent) priorityFor(urgency float64) domain.Priority {
	switch {
	case urgency >= a.highThreshold:
		return domain.PriorityHigh
	case urgency >= a.mediumThreshold:
		return domain.PriorityMedium
	default:
		return domain.PriorityLow
	}
}

func preview(body string) string {
	if len(body) <= previewLimit {
		return body
	}
	return body[:previewLimit]
}

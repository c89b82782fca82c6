package domain

// Format is the structural kind of an input document. It is a closed set:
// adding a format means extending the switch in the orchestrator, checked
// at compile time via Agent selection rather than string comparison.
type Format string

const (
	FormatEmail   Format = "email"
	FormatJSON    Format = "json"
	FormatPDF     Format = "pdf"
	FormatUnknown Format = "unknown"
)

// Intent is the inferred business purpose of a document.
type Intent string

const (
	IntentRFQ        Intent = "rfq"
	IntentComplaint  Intent = "complaint"
	IntentInvoice    Intent = "invoice"
	IntentRegulation Intent = "regulation"
	IntentFraudRisk  Intent = "fraud_risk"
	IntentUnknown    Intent = "unknown"
)

// IntentTieBreak orders intents for score ties. Fraud and compliance
// concerns must never be silently down-ranked, so FraudRisk outranks
// everything and RFQ sits last. Lower value wins.
var IntentTieBreak = map[Intent]int{
	IntentFraudRisk:  0,
	IntentComplaint:  1,
	IntentRegulation: 2,
	IntentInvoice:    3,
	IntentRFQ:        4,
	IntentUnknown:    5,
}

// ClassificationResult is produced exactly once per document.
type ClassificationResult struct {
	Format     Format  `json:"format"`
	Intent     Intent  `json:"intent"`
	Confidence float64 `json:"confidence"`
}

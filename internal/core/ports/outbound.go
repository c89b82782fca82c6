package ports

import (
	"context"
	"io"

	"github.com/arun84-eng/AI-Agent-System/internal/core/domain"
)

// DocumentRepository persists processed-file state.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, errMessage string) error
	SaveClassification(ctx context.Context, id string, cls domain.ClassificationResult) error
	SaveExtraction(ctx context.Context, id string, ext domain.ExtractionResult) error
}

// ActivityStore is the append-only audit trail sink. Append must return
// only after the record is durable; the orchestrator does not advance a
// stage until then.
type ActivityStore interface {
	Append(ctx context.Context, record *domain.ActivityRecord) error
}

// ActionStore persists routed follow-up actions.
type ActionStore interface {
	Append(ctx context.Context, record *domain.ActionRecord) error
}

// ObjectStorage stores source documents.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// MessageQueue publishes/consumes ingestion events.
type MessageQueue interface {
	PublishDocumentIngested(ctx context.Context, documentID string) error
	SubscribeDocumentIngested(ctx context.Context, handler func(context.Context, string) error) error
}

// Classifier detects format and business intent from raw content,
// independent of the specialized agents. It errors only for unrecognized
// formats; unmatched intent resolves to Unknown with low confidence.
type Classifier interface {
	Classify(ctx context.Context, doc *domain.Document, raw []byte) (domain.ClassificationResult, error)
}

// FormatAgent wraps a field extractor with format-specific domain logic.
// Agents are pure over their inputs: no side effects, no shared state.
type FormatAgent interface {
	Name() string
	Extract(ctx context.Context, doc *domain.Document, raw []byte, cls domain.ClassificationResult) (domain.ExtractionResult, error)
}

// ActionDispatch is the payload accepted by external action sinks.
type ActionDispatch struct {
	DocumentID  string
	Description string
	Priority    domain.Priority
	Metadata    map[string]any
}

// ActionSink delivers a routed action to an external collaborator and
// returns its reference id. Dispatch must honor ctx deadlines; retry
// policy belongs to the implementation, not the caller.
type ActionSink interface {
	Dispatch(ctx context.Context, actionType domain.ActionType, payload ActionDispatch) (externalRef string, err error)
}

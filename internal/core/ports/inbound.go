package ports

import (
	"context"
	"io"

	"github.com/arun84-eng/AI-Agent-System/internal/core/domain"
)

// DocumentIngestor is the inbound contract for document upload. Processing
// is fire-and-forget from the transport's perspective; the returned
// Document is the pending record.
type DocumentIngestor interface {
	Upload(ctx context.Context, filename string, size int64, body io.Reader) (*domain.Document, error)
}

// DocumentReader is the inbound read model for document state, used by
// the status surface only.
type DocumentReader interface {
	GetByID(ctx context.Context, id string) (*domain.Document, error)
}

// DocumentProcessor is the inbound contract for asynchronous pipeline runs.
type DocumentProcessor interface {
	ProcessByID(ctx context.Context, documentID string) error
}

package usecase

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/arun84-eng/AI-Agent-System/internal/core/domain"
)

type ingestRepoFake struct {
	created *domain.Document
	err     error
}

func (f *ingestRepoFake) Create(_ context.Context, doc *domain.Document) error {
	if f.err != nil {
		return f.err
	}
	f.created = doc
	return nil
}

func (f *ingestRepoFake) GetByID(context.Context, string) (*domain.Document, error) {
	return nil, domain.ErrDocumentNotFound
}

func (f *ingestRepoFake) UpdateStatus(context.Context, string, domain.DocumentStatus, string) error {
	return nil
}

func (f *ingestRepoFake) SaveClassification(context.Context, string, domain.ClassificationResult) error {
	return nil
}

func (f *ingestRepoFake) SaveExtraction(context.Context, string, domain.ExtractionResult) error {
	return nil
}

type ingestStorageFake struct {
	savedKey string
	err      error
}

func (f *ingestStorageFake) Save(_ context.Context, key string, _ io.Reader) error {
	if f.err != nil {
		return f.err
	}
	f.savedKey = key
	return nil
}

func (f *ingestStorageFake) Open(context.Context, string) (io.ReadCloser, error) {
	return nil, errors.New("not implemented")
}

type queueFake struct {
	published []string
	err       error
}

func (f *queueFake) PublishDocumentIngested(_ context.Context, documentID string) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, documentID)
	return nil
}

func (f *queueFake) SubscribeDocumentIngested(context.Context, func(context.Context, string) error) error {
	return nil
}

func TestUploadCreatesPendingDocumentAndPublishes(t *testing.T) {
	repo := &ingestRepoFake{}
	storage := &ingestStorageFake{}
	queue := &queueFake{}
	uc := NewIngestDocumentUseCase(repo, storage, queue)

	doc, err := uc.Upload(context.Background(), "fraud alert.eml", 42, strings.NewReader("From: a@b.com"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	if doc.Status != domain.StatusPending {
		t.Errorf("status = %s, want pending", doc.Status)
	}
	if doc.SizeBytes != 42 {
		t.Errorf("size = %d, want 42", doc.SizeBytes)
	}
	if repo.created == nil || repo.created.ID != doc.ID {
		t.Fatalf("document not persisted: %+v", repo.created)
	}
	if len(queue.published) != 1 || queue.published[0] != doc.ID {
		t.Fatalf("published = %v, want [%s]", queue.published, doc.ID)
	}
	if !strings.HasSuffix(storage.savedKey, "_fraud_alert.eml") {
		t.Errorf("storage key = %q", storage.savedKey)
	}
}

func TestUploadRejectsEmptyFilename(t *testing.T) {
	uc := NewIngestDocumentUseCase(&ingestRepoFake{}, &ingestStorageFake{}, &queueFake{})

	_, err := uc.Upload(context.Background(), "   ", 0, strings.NewReader(""))
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestUploadStorageFailure(t *testing.T) {
	storage := &ingestStorageFake{err: errors.New("disk full")}
	uc := NewIngestDocumentUseCase(&ingestRepoFake{}, storage, &queueFake{})

	_, err := uc.Upload(context.Background(), "a.json", 1, strings.NewReader("{}"))
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Fatalf("expected storage error, got %v", err)
	}
}

func TestUploadQueueFailure(t *testing.T) {
	queue := &queueFake{err: errors.New("nats down")}
	uc := NewIngestDocumentUseCase(&ingestRepoFake{}, &ingestStorageFake{}, queue)

	_, err := uc.Upload(context.Background(), "a.json", 1, strings.NewReader("{}"))
	if err == nil || !strings.Contains(err.Error(), "nats down") {
		t.Fatalf("expected queue error, got %v", err)
	}
}

package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/arun84-eng/AI-Agent-System/internal/core/domain"
)

type DocumentRepository struct {
	db *sql.DB
}

func NewDocumentRepository(db *sql.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *DocumentRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026082901)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS documents (
	id TEXT PRIMARY KEY,
	filename TEXT NOT NULL,
	size_bytes BIGINT NOT NULL DEFAULT 0,
	storage_path TEXT NOT NULL,
	format TEXT,
	intent TEXT,
	confidence DOUBLE PRECISION NOT NULL DEFAULT 0,
	priority TEXT,
	fields JSONB NOT NULL DEFAULT '{}'::jsonb,
	flags JSONB NOT NULL DEFAULT '[]'::jsonb,
	status TEXT NOT NULL,
	error_message TEXT,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_documents_status ON documents(status);
CREATE INDEX IF NOT EXISTS idx_documents_intent ON documents(intent);
CREATE INDEX IF NOT EXISTS idx_documents_created_at ON documents(created_at DESC);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *DocumentRepository) Create(ctx context.Context, doc *domain.Document) error {
	fieldsJSON, flagsJSON, err := marshalResultColumns(doc.Fields, doc.Flags)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO documents (
	id, filename, size_bytes, storage_path, format, intent, confidence, priority, fields, flags, status, error_message, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
`,
		doc.ID, doc.Filename, doc.SizeBytes, doc.StoragePath, string(doc.Format), string(doc.Intent),
		doc.Confidence, string(doc.Priority), fieldsJSON, flagsJSON, string(doc.Status), doc.Error,
		doc.CreatedAt, doc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, filename, size_bytes, storage_path, format, intent, confidence, priority, fields, flags, status, error_message, created_at, updated_at
FROM documents
WHERE id = $1
`, id)

	var doc domain.Document
	var format, intent, priority, status string
	var fieldsRaw, flagsRaw []byte

	err := row.Scan(
		&doc.ID, &doc.Filename, &doc.SizeBytes, &doc.StoragePath, &format, &intent,
		&doc.Confidence, &priority, &fieldsRaw, &flagsRaw, &status, &doc.Error,
		&doc.CreatedAt, &doc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrDocumentNotFound, "get document", fmt.Errorf("id %s", id))
		}
		return nil, fmt.Errorf("scan document: %w", err)
	}

	if err := json.Unmarshal(fieldsRaw, &doc.Fields); err != nil {
		return nil, fmt.Errorf("unmarshal fields: %w", err)
	}
	if err := json.Unmarshal(flagsRaw, &doc.Flags); err != nil {
		return nil, fmt.Errorf("unmarshal flags: %w", err)
	}
	doc.Format = domain.Format(format)
	doc.Intent = domain.Intent(intent)
	doc.Priority = domain.Priority(priority)
	doc.Status = domain.DocumentStatus(status)
	return &doc, nil
}

func (r *DocumentRepository) UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, errMessage string) error {
	result, err := r.db.ExecContext(ctx, `
UPDATE documents
SET status = $2, error_message = $3, updated_at = $4
WHERE id = $1
`, id, string(status), errMessage, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update document status: %w", err)
	}
	return requireRowAffected(result, "update document status", id)
}

func (r *DocumentRepository) SaveClassification(ctx context.Context, id string, cls domain.ClassificationResult) error {
	result, err := r.db.ExecContext(ctx, `
UPDATE documents
SET format = $2, intent = $3, confidence = $4, updated_at = $5
WHERE id = $1
`, id, string(cls.Format), string(cls.Intent), cls.Confidence, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save classification: %w", err)
	}
	return requireRowAffected(result, "save classification", id)
}

func (r *DocumentRepository) SaveExtraction(ctx context.Context, id string, ext domain.ExtractionResult) error {
	fieldsJSON, flagsJSON, err := marshalResultColumns(ext.Fields, ext.Flags)
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx, `
UPDATE documents
SET priority = $2, fields = $3, flags = $4, updated_at = $5
WHERE id = $1
`, id, string(ext.Priority), fieldsJSON, flagsJSON, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save extraction: %w", err)
	}
	return requireRowAffected(result, "save extraction", id)
}

func marshalResultColumns(fields map[string]any, flags []string) ([]byte, []byte, error) {
	if fields == nil {
		fields = map[string]any{}
	}
	if flags == nil {
		flags = []string{}
	}
	fieldsJSON, err := json.Marshal(fields)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal fields: %w", err)
	}
	flagsJSON, err := json.Marshal(flags)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal flags: %w", err)
	}
	return fieldsJSON, flagsJSON, nil
}

func requireRowAffected(result sql.Result, operation, id string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", operation, err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrDocumentNotFound, operation, fmt.Errorf("id %s", id))
	}
	return nil
}

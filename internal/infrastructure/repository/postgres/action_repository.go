package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/arun84-eng/AI-Agent-System/internal/core/domain"
)

// ActionRepository persists routed follow-up actions in their terminal
// state. Records arrive already resolved (completed or failed); pending
// rows only appear when a run crashes mid-dispatch.
type ActionRepository struct {
	db *sql.DB
}

func NewActionRepository(db *sql.DB) *ActionRepository {
	return &ActionRepository{db: db}
}

func (r *ActionRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026082903)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS actions (
	id TEXT PRIMARY KEY,
	document_id TEXT NOT NULL,
	action_type TEXT NOT NULL,
	description TEXT NOT NULL,
	priority TEXT NOT NULL,
	status TEXT NOT NULL,
	external_ref TEXT,
	error_message TEXT,
	metadata JSONB NOT NULL DEFAULT '{}'::jsonb,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_actions_document_id ON actions(document_id);
CREATE INDEX IF NOT EXISTS idx_actions_type_status ON actions(action_type, status);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *ActionRepository) Append(ctx context.Context, record *domain.ActionRecord) error {
	metadataJSON, err := marshalSnapshot(record.Metadata)
	if err != nil {
		return domain.WrapError(domain.ErrPersistenceFailure, "marshal action metadata", err)
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO actions (
	id, document_id, action_type, description, priority, status, external_ref, error_message, metadata, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
`,
		record.ID, record.DocumentID, string(record.Type), record.Description, string(record.Priority),
		string(record.Status), record.ExternalRef, record.Error, metadataJSON,
		record.CreatedAt, record.UpdatedAt,
	)
	if err != nil {
		return domain.WrapError(domain.ErrPersistenceFailure, "append action", err)
	}
	return nil
}

package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/arun84-eng/AI-Agent-System/internal/core/domain"
)

// ActivityRepository is the append-only audit trail. Rows are never
// updated or deleted; a failed append is a persistence failure that
// halts the owning document's run.
type ActivityRepository struct {
	db *sql.DB
}

func NewActivityRepository(db *sql.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

func (r *ActivityRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026082902)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS activity_log (
	id TEXT PRIMARY KEY,
	document_id TEXT NOT NULL,
	agent_name TEXT NOT NULL,
	action TEXT NOT NULL,
	input JSONB NOT NULL DEFAULT '{}'::jsonb,
	output JSONB NOT NULL DEFAULT '{}'::jsonb,
	status TEXT NOT NULL,
	duration_ms BIGINT NOT NULL DEFAULT 0,
	error_message TEXT,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_activity_document_id ON activity_log(document_id);
CREATE INDEX IF NOT EXISTS idx_activity_agent_name ON activity_log(agent_name);
CREATE INDEX IF NOT EXISTS idx_activity_created_at ON activity_log(created_at DESC);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *ActivityRepository) Append(ctx context.Context, record *domain.ActivityRecord) error {
	inputJSON, err := marshalSnapshot(record.Input)
	if err != nil {
		return domain.WrapError(domain.ErrPersistenceFailure, "marshal activity input", err)
	}
	outputJSON, err := marshalSnapshot(record.Output)
	if err != nil {
		return domain.WrapError(domain.ErrPersistenceFailure, "marshal activity output", err)
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO activity_log (
	id, document_id, agent_name, action, input, output, status, duration_ms, error_message, created_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
`,
		record.ID, record.DocumentID, record.AgentName, record.Action, inputJSON, outputJSON,
		string(record.Status), record.DurationMs, record.Error, record.CreatedAt,
	)
	if err != nil {
		return domain.WrapError(domain.ErrPersistenceFailure, "append activity", err)
	}
	return nil
}

func marshalSnapshot(snapshot map[string]any) ([]byte, error) {
	if snapshot == nil {
		snapshot = map[string]any{}
	}
	return json.Marshal(snapshot)
}

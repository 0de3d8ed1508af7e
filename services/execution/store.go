package execution

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store persists execution records and their append-only log streams in
// PostgreSQL.
type Store struct {
	db *pgxpool.Pool
}

// NewStore creates a Store backed by the given connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{db: pool}
}

// InitSchema creates the executions and execution_logs tables if they do not
// exist.
func (s *Store) InitSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS executions (
			id           UUID PRIMARY KEY,
			workflow_id  UUID NOT NULL,
			tenant_id    TEXT NOT NULL,
			status       TEXT NOT NULL,
			current_step TEXT,
			input        JSONB NOT NULL DEFAULT '{}',
			output       JSONB,
			started_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			completed_at TIMESTAMPTZ,
			updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE TABLE IF NOT EXISTS execution_logs (
			id           UUID PRIMARY KEY,
			seq          BIGSERIAL,
			execution_id UUID NOT NULL,
			step_id      TEXT NOT NULL,
			level        TEXT NOT NULL,
			message      TEXT NOT NULL,
			data         JSONB,
			timestamp    TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_execution_logs_execution
			ON execution_logs (execution_id, seq)
	`)
	if err != nil {
		return fmt.Errorf("init execution schema: %w", err)
	}
	return nil
}

// CreateExecution inserts a new execution record, generating its id.
func (s *Store) CreateExecution(ctx context.Context, exec *Execution) error {
	if exec.ID == "" {
		exec.ID = uuid.New().String()
	}
	input, err := json.Marshal(exec.Input)
	if err != nil {
		return fmt.Errorf("marshal execution input: %w", err)
	}
	_, err = s.db.Exec(ctx, `
		INSERT INTO executions (id, workflow_id, tenant_id, status, input, started_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, exec.ID, exec.WorkflowID, exec.TenantID, exec.Status, input, exec.StartedAt)
	if err != nil {
		return fmt.Errorf("create execution: %w", err)
	}
	return nil
}

// UpdateExecution applies a partial update to an execution record.
func (s *Store) UpdateExecution(ctx context.Context, id string, patch Patch) error {
	var output []byte
	if patch.Output != nil {
		var err error
		output, err = json.Marshal(patch.Output)
		if err != nil {
			return fmt.Errorf("marshal execution output: %w", err)
		}
	}
	_, err := s.db.Exec(ctx, `
		UPDATE executions SET
			status       = COALESCE($2, status),
			current_step = COALESCE($3, current_step),
			output       = COALESCE($4, output),
			completed_at = COALESCE($5, completed_at),
			updated_at   = NOW()
		WHERE id = $1
	`, id, patch.Status, patch.CurrentStep, output, patch.CompletedAt)
	if err != nil {
		return fmt.Errorf("update execution: %w", err)
	}
	return nil
}

// AppendLog appends one entry to an execution's log stream.
func (s *Store) AppendLog(ctx context.Context, entry *LogEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	var data []byte
	if entry.Data != nil {
		var err error
		data, err = json.Marshal(entry.Data)
		if err != nil {
			return fmt.Errorf("marshal log data: %w", err)
		}
	}
	_, err := s.db.Exec(ctx, `
		INSERT INTO execution_logs (id, execution_id, step_id, level, message, data, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, entry.ID, entry.ExecutionID, entry.StepID, entry.Level, entry.Message, data, entry.Timestamp)
	if err != nil {
		return fmt.Errorf("append log: %w", err)
	}
	return nil
}

// GetExecution retrieves an execution by ID. Returns nil, nil if not found.
func (s *Store) GetExecution(ctx context.Context, id string) (*Execution, error) {
	var exec Execution
	var currentStep *string
	var input, output []byte

	err := s.db.QueryRow(ctx, `
		SELECT id, workflow_id, tenant_id, status, current_step, input, output,
		       started_at, completed_at, updated_at
		FROM executions WHERE id = $1
	`, id).Scan(&exec.ID, &exec.WorkflowID, &exec.TenantID, &exec.Status, &currentStep,
		&input, &output, &exec.StartedAt, &exec.CompletedAt, &exec.UpdatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get execution: %w", err)
	}

	if currentStep != nil {
		exec.CurrentStep = *currentStep
	}
	if err := json.Unmarshal(input, &exec.Input); err != nil {
		return nil, fmt.Errorf("unmarshal execution input: %w", err)
	}
	if output != nil {
		if err := json.Unmarshal(output, &exec.Output); err != nil {
			return nil, fmt.Errorf("unmarshal execution output: %w", err)
		}
	}
	return &exec, nil
}

// ListLogs returns an execution's log entries in append order.
func (s *Store) ListLogs(ctx context.Context, executionID string) ([]LogEntry, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, execution_id, step_id, level, message, data, timestamp
		FROM execution_logs WHERE execution_id = $1
		ORDER BY seq
	`, executionID)
	if err != nil {
		return nil, fmt.Errorf("list logs: %w", err)
	}
	defer rows.Close()

	var out []LogEntry
	for rows.Next() {
		var entry LogEntry
		var data []byte
		if err := rows.Scan(&entry.ID, &entry.ExecutionID, &entry.StepID, &entry.Level,
			&entry.Message, &data, &entry.Timestamp); err != nil {
			return nil, fmt.Errorf("scan log entry: %w", err)
		}
		if data != nil {
			if err := json.Unmarshal(data, &entry.Data); err != nil {
				return nil, fmt.Errorf("unmarshal log data: %w", err)
			}
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

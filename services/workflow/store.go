package workflow

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store handles workflow persistence in PostgreSQL.
type Store struct {
	db *pgxpool.Pool
}

// NewStore creates a Store backed by the given connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{db: pool}
}

// InitSchema creates the workflows table if it does not exist.
func (s *Store) InitSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS workflows (
			id          UUID PRIMARY KEY,
			tenant_id   TEXT NOT NULL,
			name        TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			steps       JSONB NOT NULL DEFAULT '[]',
			nodes       JSONB NOT NULL DEFAULT '[]',
			edges       JSONB NOT NULL DEFAULT '[]',
			created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("init workflow schema: %w", err)
	}
	return nil
}

// Get retrieves a workflow by ID. Returns nil, nil if not found.
func (s *Store) Get(ctx context.Context, id string) (*Workflow, error) {
	var wf Workflow
	var stepsJSON, nodesJSON, edgesJSON []byte

	err := s.db.QueryRow(ctx, `
		SELECT id, tenant_id, name, description, steps, nodes, edges, created_at, updated_at
		FROM workflows WHERE id = $1
	`, id).Scan(&wf.ID, &wf.TenantID, &wf.Name, &wf.Description, &stepsJSON, &nodesJSON, &edgesJSON, &wf.CreatedAt, &wf.UpdatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get workflow: %w", err)
	}

	if err := json.Unmarshal(stepsJSON, &wf.Steps); err != nil {
		return nil, fmt.Errorf("unmarshal steps: %w", err)
	}
	if err := json.Unmarshal(nodesJSON, &wf.Nodes); err != nil {
		return nil, fmt.Errorf("unmarshal nodes: %w", err)
	}
	if err := json.Unmarshal(edgesJSON, &wf.Edges); err != nil {
		return nil, fmt.Errorf("unmarshal edges: %w", err)
	}
	return &wf, nil
}

// Create inserts a workflow, generating its id when unset.
func (s *Store) Create(ctx context.Context, wf *Workflow) error {
	if wf.ID == "" {
		wf.ID = uuid.New().String()
	}
	stepsJSON, err := json.Marshal(wf.Steps)
	if err != nil {
		return fmt.Errorf("marshal steps: %w", err)
	}
	nodesJSON, err := json.Marshal(wf.Nodes)
	if err != nil {
		return fmt.Errorf("marshal nodes: %w", err)
	}
	edgesJSON, err := json.Marshal(wf.Edges)
	if err != nil {
		return fmt.Errorf("marshal edges: %w", err)
	}

	_, err = s.db.Exec(ctx, `
		INSERT INTO workflows (id, tenant_id, name, description, steps, nodes, edges)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, wf.ID, wf.TenantID, wf.Name, wf.Description, stepsJSON, nodesJSON, edgesJSON)
	if err != nil {
		return fmt.Errorf("create workflow: %w", err)
	}
	return nil
}

// Update overwrites a workflow's mutable fields.
func (s *Store) Update(ctx context.Context, wf *Workflow) error {
	stepsJSON, err := json.Marshal(wf.Steps)
	if err != nil {
		return fmt.Errorf("marshal steps: %w", err)
	}
	nodesJSON, err := json.Marshal(wf.Nodes)
	if err != nil {
		return fmt.Errorf("marshal nodes: %w", err)
	}
	edgesJSON, err := json.Marshal(wf.Edges)
	if err != nil {
		return fmt.Errorf("marshal edges: %w", err)
	}

	tag, err := s.db.Exec(ctx, `
		UPDATE workflows
		SET name = $2, description = $3, steps = $4, nodes = $5, edges = $6, updated_at = NOW()
		WHERE id = $1
	`, wf.ID, wf.Name, wf.Description, stepsJSON, nodesJSON, edgesJSON)
	if err != nil {
		return fmt.Errorf("update workflow: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("workflow %s not found", wf.ID)
	}
	return nil
}

// Seed inserts the sample notification workflow if it does not already exist.
func (s *Store) Seed(ctx context.Context) error {
	stepsJSON, err := json.Marshal(sampleSteps)
	if err != nil {
		return fmt.Errorf("marshal seed steps: %w", err)
	}
	_, err = s.db.Exec(ctx, `
		INSERT INTO workflows (id, tenant_id, name, description, steps)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING
	`, sampleWorkflowID, sampleTenantID, "Active Account Alert", "Email an alert when a webhook reports an active account", stepsJSON)
	if err != nil {
		return fmt.Errorf("seed workflow: %w", err)
	}
	return nil
}

const (
	sampleWorkflowID = "550e8400-e29b-41d4-a716-446655440000"
	sampleTenantID   = "tenant-demo"
)

var sampleSteps = []Step{
	{
		ID: "webhook", Type: "webhookTrigger", Order: 0,
		Config: map[string]any{"path": "/hooks/account", "method": "POST"},
	},
	{
		ID: "check-status", Type: "condition", Order: 1,
		Config: map[string]any{"field": "status", "operation": "equal", "value": "active"},
	},
	{
		ID: "notify", Type: "emailSend", Branch: "true", Order: 2,
		Config: map[string]any{
			"to":      "{{email}}",
			"subject": "Account active",
			"body":    "Account {{accountId}} is now active.",
		},
	},
}

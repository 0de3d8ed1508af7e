package credential

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store handles credential persistence in PostgreSQL.
type Store struct {
	db *pgxpool.Pool
}

// NewStore creates a Store backed by the given connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{db: pool}
}

// InitSchema creates the credentials table if it does not exist.
func (s *Store) InitSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS tenant_credentials (
			id           UUID PRIMARY KEY,
			tenant_id    TEXT NOT NULL,
			name         TEXT NOT NULL DEFAULT '',
			service_type TEXT NOT NULL,
			credentials  JSONB NOT NULL DEFAULT '{}',
			is_active    BOOLEAN NOT NULL DEFAULT TRUE,
			created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_tenant_credentials_lookup
			ON tenant_credentials (tenant_id, service_type) WHERE is_active
	`)
	if err != nil {
		return fmt.Errorf("init credential schema: %w", err)
	}
	return nil
}

// Create inserts a credential, generating its id.
func (s *Store) Create(ctx context.Context, cred *Credential) error {
	if cred.ID == "" {
		cred.ID = uuid.New().String()
	}
	secrets, err := json.Marshal(cred.Credentials)
	if err != nil {
		return fmt.Errorf("marshal credentials: %w", err)
	}
	_, err = s.db.Exec(ctx, `
		INSERT INTO tenant_credentials (id, tenant_id, name, service_type, credentials, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, cred.ID, cred.TenantID, cred.Name, cred.ServiceType, secrets, cred.IsActive)
	if err != nil {
		return fmt.Errorf("create credential: %w", err)
	}
	return nil
}

// ListActive returns the tenant's active credentials for a service type,
// oldest first so selection is deterministic.
func (s *Store) ListActive(ctx context.Context, tenantID, serviceType string) ([]Credential, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, tenant_id, name, service_type, credentials, is_active, created_at, updated_at
		FROM tenant_credentials
		WHERE tenant_id = $1 AND service_type = $2 AND is_active
		ORDER BY created_at
	`, tenantID, serviceType)
	if err != nil {
		return nil, fmt.Errorf("list credentials: %w", err)
	}
	defer rows.Close()

	var out []Credential
	for rows.Next() {
		var c Credential
		var secrets []byte
		if err := rows.Scan(&c.ID, &c.TenantID, &c.Name, &c.ServiceType, &secrets, &c.IsActive, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan credential: %w", err)
		}
		if err := json.Unmarshal(secrets, &c.Credentials); err != nil {
			return nil, fmt.Errorf("unmarshal credentials: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

package audit

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema statements for the audit trail table, one command per statement
// because pgx's extended protocol rejects multi-command strings. Applied by
// EnsureSchema; deployments with managed migrations can run them themselves.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS epicsync_audit (
		id         UUID PRIMARY KEY,
		project_id TEXT NOT NULL,
		record_id  TEXT NOT NULL,
		event_id   TEXT NOT NULL DEFAULT '',
		module     TEXT NOT NULL,
		detail     TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS epicsync_audit_record_idx
		ON epicsync_audit (project_id, record_id, created_at)`,
}

// PostgresStore persists the audit trail in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// EnsureSchema creates the audit table if it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure audit schema: %w", err)
		}
	}
	return nil
}

func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO epicsync_audit (id, project_id, record_id, event_id, module, detail, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		event.ID, event.ProjectID, event.RecordID, event.EventID, event.Module, event.Detail, event.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByRecord(ctx context.Context, projectID, recordID string) ([]Event, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, project_id, record_id, event_id, module, detail, created_at
		 FROM epicsync_audit
		 WHERE project_id = $1 AND record_id = $2
		 ORDER BY created_at`,
		projectID, recordID,
	)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.ProjectID, &e.RecordID, &e.EventID, &e.Module, &e.Detail, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return out, nil
}

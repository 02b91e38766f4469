package audit

import (
	"context"
	"database/sql"
	"errors"
)

// PostgresRepo appends audit events to an insert-only table.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) (*PostgresRepo, error) {
	if db == nil {
		return nil, errors.New("db is required")
	}
	return &PostgresRepo{db: db}, nil
}

// EnsureSchema creates the audit table when absent. Safe to run on every
// startup. No UPDATE/DELETE path exists in this repo; retention is an
// operational concern.
func (r *PostgresRepo) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS auth_audit_events (
			id          TEXT PRIMARY KEY,
			type        TEXT NOT NULL,
			operator_id TEXT NOT NULL DEFAULT '',
			username    TEXT NOT NULL DEFAULT '',
			role        TEXT NOT NULL DEFAULT '',
			ip_address  TEXT NOT NULL DEFAULT '',
			message     TEXT NOT NULL DEFAULT '',
			created_at  TIMESTAMPTZ NOT NULL
		)`)
	return err
}

func (r *PostgresRepo) Append(ctx context.Context, e Event) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO auth_audit_events (id, type, operator_id, username, role, ip_address, message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		e.ID, string(e.Type), e.OperatorID, e.Username, e.Role, e.IPAddress, e.Message, e.CreatedAt)
	return err
}

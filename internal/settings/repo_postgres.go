package settings

import (
	"context"
	"database/sql"
	"errors"

	"admin-console/pkg/utils"
)

// PostgresRepo stores settings in a single key/value table.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) (*PostgresRepo, error) {
	if db == nil {
		return nil, errors.New("db is required")
	}
	return &PostgresRepo{db: db}, nil
}

// EnsureSchema creates the settings table when absent. Safe to run on every
// startup.
func (r *PostgresRepo) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS console_settings (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	return err
}

func (r *PostgresRepo) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := r.db.QueryRowContext(ctx,
		`SELECT value FROM console_settings WHERE key = $1`, key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (r *PostgresRepo) Upsert(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, upsertQuery, key, value)
	return err
}

func (r *PostgresRepo) UpsertAll(ctx context.Context, values map[string]string) error {
	return utils.WithTx(ctx, r.db, &sql.TxOptions{}, func(ctx context.Context, tx *sql.Tx) error {
		for k, v := range values {
			if _, err := tx.ExecContext(ctx, upsertQuery, k, v); err != nil {
				return err
			}
		}
		return nil
	})
}

const upsertQuery = `
	INSERT INTO console_settings (key, value, updated_at)
	VALUES ($1, $2, now())
	ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`

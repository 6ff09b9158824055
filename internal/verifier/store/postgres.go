package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"privid/internal/verifier/models"
	id "privid/pkg/domain"
	"privid/pkg/platform/sentinel"
	"privid/pkg/platform/tx"
)

// PostgresStore persists verifier authorization in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed verifier store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Upsert(ctx context.Context, v *models.Verifier) error {
	query := `
		INSERT INTO verifiers (principal, authorized, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (principal) DO UPDATE SET
			authorized = EXCLUDED.authorized,
			updated_at = EXCLUDED.updated_at
	`
	if _, err := tx.Exec(ctx, s.db).ExecContext(ctx, query, v.Principal.String(), v.Authorized, v.UpdatedAt); err != nil {
		return fmt.Errorf("upsert verifier: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByPrincipal(ctx context.Context, p id.Principal) (*models.Verifier, error) {
	return s.find(ctx, `SELECT principal, authorized, updated_at FROM verifiers WHERE principal = $1`, p)
}

// FindByPrincipalForShare holds a shared row lock so a concurrent
// authorization toggle waits for the caller's transaction.
func (s *PostgresStore) FindByPrincipalForShare(ctx context.Context, p id.Principal) (*models.Verifier, error) {
	return s.find(ctx, `SELECT principal, authorized, updated_at FROM verifiers WHERE principal = $1 FOR SHARE`, p)
}

func (s *PostgresStore) CountAuthorized(ctx context.Context) (int, error) {
	var n int
	err := tx.Exec(ctx, s.db).QueryRowContext(ctx, `SELECT COUNT(*) FROM verifiers WHERE authorized`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count verifiers: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) find(ctx context.Context, query string, p id.Principal) (*models.Verifier, error) {
	var (
		raw string
		v   models.Verifier
	)
	err := tx.Exec(ctx, s.db).QueryRowContext(ctx, query, p.String()).Scan(&raw, &v.Authorized, &v.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find verifier: %w", err)
	}
	principal, err := id.ParsePrincipal(raw)
	if err != nil {
		return nil, fmt.Errorf("decode verifier principal: %w", err)
	}
	v.Principal = principal
	return &v, nil
}

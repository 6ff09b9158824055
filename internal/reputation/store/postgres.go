package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"privid/internal/reputation/models"
	id "privid/pkg/domain"
	"privid/pkg/platform/tx"
)

// PostgresStore persists reputation scores in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed reputation store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Adjust clamps in SQL so concurrent upserts on one row never leave [0, 100].
func (s *PostgresStore) Adjust(ctx context.Context, role models.Role, p id.Principal, delta int, now time.Time) (int, error) {
	query := `
		INSERT INTO reputations (role, principal, score, updated_at)
		VALUES ($1, $2, LEAST($5, GREATEST($4, $3::int)), $6)
		ON CONFLICT (role, principal) DO UPDATE
		SET score = LEAST($5, GREATEST($4, reputations.score + $3::int)),
		    updated_at = EXCLUDED.updated_at
		RETURNING score
	`
	var score int
	err := tx.Exec(ctx, s.db).QueryRowContext(ctx, query,
		string(role), p.String(), models.ClampDelta(delta), models.MinScore, models.MaxScore, now,
	).Scan(&score)
	if err != nil {
		return 0, fmt.Errorf("adjust reputation: %w", err)
	}
	return score, nil
}

func (s *PostgresStore) Get(ctx context.Context, role models.Role, p id.Principal) (int, error) {
	var score int
	err := tx.Exec(ctx, s.db).QueryRowContext(ctx,
		`SELECT score FROM reputations WHERE role = $1 AND principal = $2`,
		string(role), p.String(),
	).Scan(&score)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get reputation: %w", err)
	}
	return score, nil
}

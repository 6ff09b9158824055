package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"privid/internal/verification/models"
	id "privid/pkg/domain"
	"privid/pkg/payload"
	"privid/pkg/platform/sentinel"
	"privid/pkg/platform/tx"
)

// PostgresStore persists verification requests in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed request store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const requestColumns = `id, credential_id, requester, encrypted_threshold, input_proof, status,
	resolved_score, resolver, resolution, created_at, resolved_at`

func (s *PostgresStore) Create(ctx context.Context, r *models.Request) (id.RequestID, error) {
	if r == nil {
		return 0, fmt.Errorf("request is required")
	}
	query := `
		INSERT INTO verification_requests (credential_id, requester, encrypted_threshold, input_proof, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	var newID int64
	err := tx.Exec(ctx, s.db).QueryRowContext(ctx, query,
		int64(r.CredentialID),
		r.Requester.String(),
		[]byte(r.EncryptedThreshold),
		[]byte(r.InputProof),
		string(r.Status),
		r.CreatedAt,
	).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("create verification request: %w", err)
	}
	r.ID = id.RequestID(newID)
	return r.ID, nil
}

func (s *PostgresStore) FindByID(ctx context.Context, requestID id.RequestID) (*models.Request, error) {
	return s.find(ctx, `SELECT `+requestColumns+` FROM verification_requests WHERE id = $1`, requestID)
}

// FindByIDForUpdate row-locks the request for the rest of the transaction.
func (s *PostgresStore) FindByIDForUpdate(ctx context.Context, requestID id.RequestID) (*models.Request, error) {
	return s.find(ctx, `SELECT `+requestColumns+` FROM verification_requests WHERE id = $1 FOR UPDATE`, requestID)
}

// UpdateResolution is a conditional update on status so a resolution can
// never overwrite another, even without the row lock.
func (s *PostgresStore) UpdateResolution(ctx context.Context, r *models.Request) error {
	query := `
		UPDATE verification_requests
		SET status = $2, resolved_score = $3, resolver = $4, resolution = $5, resolved_at = $6
		WHERE id = $1 AND status = 'pending'
	`
	res, err := tx.Exec(ctx, s.db).ExecContext(ctx, query,
		int64(r.ID),
		string(r.Status),
		nullBytes(r.ResolvedScore),
		nullPrincipal(r.Resolver),
		nullString(string(r.Resolution)),
		r.ResolvedAt,
	)
	if err != nil {
		return fmt.Errorf("update verification request: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update verification request rows: %w", err)
	}
	if rows == 0 {
		var exists bool
		if err := tx.Exec(ctx, s.db).QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM verification_requests WHERE id = $1)`, int64(r.ID)).Scan(&exists); err != nil {
			return fmt.Errorf("check verification request: %w", err)
		}
		if !exists {
			return sentinel.ErrNotFound
		}
		return sentinel.ErrConflict
	}
	return nil
}

func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := tx.Exec(ctx, s.db).QueryRowContext(ctx, `SELECT COUNT(*) FROM verification_requests`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count verification requests: %w", err)
	}
	return count, nil
}

func (s *PostgresStore) ListPendingBefore(ctx context.Context, cutoff time.Time, limit int) ([]id.RequestID, error) {
	query := `
		SELECT id FROM verification_requests
		WHERE status = 'pending' AND created_at < $1
		ORDER BY id
		LIMIT $2
	`
	rows, err := tx.Exec(ctx, s.db).QueryContext(ctx, query, cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending requests: %w", err)
	}
	defer rows.Close()

	var out []id.RequestID
	for rows.Next() {
		var raw int64
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan pending request: %w", err)
		}
		out = append(out, id.RequestID(raw))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pending requests: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) find(ctx context.Context, query string, requestID id.RequestID) (*models.Request, error) {
	r, err := scanRequest(tx.Exec(ctx, s.db).QueryRowContext(ctx, query, int64(requestID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find verification request: %w", err)
	}
	return r, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRequest(row rowScanner) (*models.Request, error) {
	var (
		r            models.Request
		rawID        int64
		credentialID int64
		requester    string
		status       string
		threshold    []byte
		inputProof   []byte
		score        []byte
		resolver     sql.NullString
		resolution   sql.NullString
		resolvedAt   sql.NullTime
	)
	if err := row.Scan(&rawID, &credentialID, &requester, &threshold, &inputProof, &status,
		&score, &resolver, &resolution, &r.CreatedAt, &resolvedAt); err != nil {
		return nil, err
	}
	p, err := id.ParsePrincipal(requester)
	if err != nil {
		return nil, fmt.Errorf("decode requester: %w", err)
	}
	r.ID = id.RequestID(rawID)
	r.CredentialID = id.CredentialID(credentialID)
	r.Requester = p
	r.EncryptedThreshold = payload.Opaque(threshold)
	r.InputProof = payload.Opaque(inputProof)
	r.Status = models.Status(status)
	if len(score) > 0 {
		r.ResolvedScore = payload.Opaque(score)
	}
	if resolver.Valid {
		v, err := id.ParsePrincipal(resolver.String)
		if err != nil {
			return nil, fmt.Errorf("decode resolver: %w", err)
		}
		r.Resolver = v
	}
	r.Resolution = models.Resolution(resolution.String)
	if resolvedAt.Valid {
		t := resolvedAt.Time
		r.ResolvedAt = &t
	}
	return &r, nil
}

func nullBytes(b payload.Opaque) any {
	if len(b) == 0 {
		return nil
	}
	return []byte(b)
}

func nullPrincipal(p id.Principal) sql.NullString {
	return sql.NullString{String: p.String(), Valid: !p.IsZero()}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"privid/internal/credential/models"
	id "privid/pkg/domain"
	"privid/pkg/platform/sentinel"
	"privid/pkg/platform/tx"
)

// PostgresStore persists credentials in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed credential store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const credentialColumns = `id, owner, credential_type, encrypted_hash, expires_at, revoked, created_at, revoked_at`

func (s *PostgresStore) Create(ctx context.Context, c *models.Credential) (id.CredentialID, error) {
	if c == nil {
		return 0, fmt.Errorf("credential is required")
	}
	query := `
		INSERT INTO credentials (owner, credential_type, encrypted_hash, expires_at, revoked, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	var newID int64
	err := tx.Exec(ctx, s.db).QueryRowContext(ctx, query,
		c.Owner.String(),
		int16(c.Type),
		[]byte(c.EncryptedHash),
		c.Expiry,
		c.Revoked,
		c.CreatedAt,
	).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("create credential: %w", err)
	}
	c.ID = id.CredentialID(newID)
	return c.ID, nil
}

func (s *PostgresStore) FindByID(ctx context.Context, credentialID id.CredentialID) (*models.Credential, error) {
	return s.find(ctx, `SELECT `+credentialColumns+` FROM credentials WHERE id = $1`, credentialID)
}

// FindByIDForUpdate row-locks the credential for the rest of the transaction.
func (s *PostgresStore) FindByIDForUpdate(ctx context.Context, credentialID id.CredentialID) (*models.Credential, error) {
	return s.find(ctx, `SELECT `+credentialColumns+` FROM credentials WHERE id = $1 FOR UPDATE`, credentialID)
}

func (s *PostgresStore) find(ctx context.Context, query string, credentialID id.CredentialID) (*models.Credential, error) {
	c, err := scanCredential(tx.Exec(ctx, s.db).QueryRowContext(ctx, query, int64(credentialID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find credential by id: %w", err)
	}
	return c, nil
}

// Update writes the mutable lifecycle columns. Revocation never reverts.
func (s *PostgresStore) Update(ctx context.Context, c *models.Credential) error {
	query := `
		UPDATE credentials
		SET revoked = revoked OR $2, revoked_at = COALESCE(revoked_at, $3)
		WHERE id = $1
	`
	res, err := tx.Exec(ctx, s.db).ExecContext(ctx, query, int64(c.ID), c.Revoked, c.RevokedAt)
	if err != nil {
		return fmt.Errorf("update credential: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update credential rows: %w", err)
	}
	if rows == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := tx.Exec(ctx, s.db).QueryRowContext(ctx, `SELECT COUNT(*) FROM credentials`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count credentials: %w", err)
	}
	return count, nil
}

func (s *PostgresStore) ListByOwner(ctx context.Context, owner id.Principal) ([]*models.Credential, error) {
	query := `SELECT ` + credentialColumns + ` FROM credentials WHERE owner = $1 ORDER BY id`
	rows, err := tx.Exec(ctx, s.db).QueryContext(ctx, query, owner.String())
	if err != nil {
		return nil, fmt.Errorf("list credentials by owner: %w", err)
	}
	defer rows.Close()

	var out []*models.Credential
	for rows.Next() {
		c, err := scanCredential(rows)
		if err != nil {
			return nil, fmt.Errorf("scan credential: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate credentials: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCredential(row rowScanner) (*models.Credential, error) {
	var (
		c         models.Credential
		rawID     int64
		owner     string
		credType  int16
		hash      []byte
		revokedAt sql.NullTime
	)
	if err := row.Scan(&rawID, &owner, &credType, &hash, &c.Expiry, &c.Revoked, &c.CreatedAt, &revokedAt); err != nil {
		return nil, err
	}
	p, err := id.ParsePrincipal(owner)
	if err != nil {
		return nil, fmt.Errorf("stored owner: %w", err)
	}
	c.ID = id.CredentialID(rawID)
	c.Owner = p
	c.Type = id.CredentialType(credType)
	c.EncryptedHash = hash
	if revokedAt.Valid {
		t := revokedAt.Time
		c.RevokedAt = &t
	}
	return &c, nil
}

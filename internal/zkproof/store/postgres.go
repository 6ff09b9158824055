package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"privid/internal/zkproof/models"
	id "privid/pkg/domain"
	"privid/pkg/payload"
	"privid/pkg/platform/sentinel"
	"privid/pkg/platform/tx"
)

// PostgresStore persists proof records in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, p *models.Proof) (id.ProofID, error) {
	query := `
		INSERT INTO zk_proofs (credential_id, request_id, proof_type, proof_hash, prover, issued_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	var newID int64
	err := tx.Exec(ctx, s.db).QueryRowContext(ctx, query,
		int64(p.CredentialID),
		int64(p.RequestID),
		int16(p.ProofType),
		[]byte(p.ProofHash),
		p.Prover.String(),
		p.IssuedAt,
	).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("create proof: %w", err)
	}
	p.ID = id.ProofID(newID)
	return p.ID, nil
}

func (s *PostgresStore) FindByID(ctx context.Context, proofID id.ProofID) (*models.Proof, error) {
	query := `
		SELECT id, credential_id, request_id, proof_type, proof_hash, prover, issued_at
		FROM zk_proofs WHERE id = $1
	`
	var (
		p                    models.Proof
		rawID, credID, reqID int64
		proofType            int16
		hash                 []byte
		prover               string
	)
	err := tx.Exec(ctx, s.db).QueryRowContext(ctx, query, int64(proofID)).
		Scan(&rawID, &credID, &reqID, &proofType, &hash, &prover, &p.IssuedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find proof: %w", err)
	}
	principal, err := id.ParsePrincipal(prover)
	if err != nil {
		return nil, fmt.Errorf("decode prover: %w", err)
	}
	p.ID = id.ProofID(rawID)
	p.CredentialID = id.CredentialID(credID)
	p.RequestID = id.RequestID(reqID)
	p.ProofType = id.ProofType(proofType) //nolint:gosec // constrained by CHECK (1..3)
	p.ProofHash = payload.Opaque(hash)
	p.Prover = principal
	return &p, nil
}

func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := tx.Exec(ctx, s.db).QueryRowContext(ctx, `SELECT COUNT(*) FROM zk_proofs`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count proofs: %w", err)
	}
	return count, nil
}

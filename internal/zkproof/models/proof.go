package models

import (
	"time"

	id "privid/pkg/domain"
	dErrors "privid/pkg/domain-errors"
	"privid/pkg/payload"
	"privid/pkg/platform/validation"
)

// Proof attests that a verification request was resolved as verified.
// Proofs are immutable and stay valid after the credential is revoked.
type Proof struct {
	ID           id.ProofID
	CredentialID id.CredentialID
	RequestID    id.RequestID
	ProofType    id.ProofType
	ProofHash    payload.Opaque
	Prover       id.Principal
	IssuedAt     time.Time
}

// NewProof validates caller input. Lifecycle checks against the request and
// credential happen in the issuer.
func NewProof(prover id.Principal, credentialID id.CredentialID, requestID id.RequestID, proofType id.ProofType, hash payload.Opaque, now time.Time) (*Proof, error) {
	if prover.IsZero() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "prover is required")
	}
	if credentialID.IsZero() || requestID.IsZero() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "credential and request IDs are required")
	}
	if !proofType.IsValid() {
		return nil, dErrors.New(dErrors.CodeValidation, "unknown proof type")
	}
	if err := validation.CheckRequiredBytes("proof_hash", hash, validation.MaxProofHashBytes); err != nil {
		return nil, err
	}
	return &Proof{
		CredentialID: credentialID,
		RequestID:    requestID,
		ProofType:    proofType,
		ProofHash:    hash.Clone(),
		Prover:       prover,
		IssuedAt:     now,
	}, nil
}

func (p *Proof) Clone() *Proof {
	if p == nil {
		return nil
	}
	out := *p
	out.ProofHash = p.ProofHash.Clone()
	return &out
}

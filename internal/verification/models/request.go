package models

import (
	"time"

	id "privid/pkg/domain"
	dErrors "privid/pkg/domain-errors"
	"privid/pkg/payload"
	"privid/pkg/platform/validation"
)

// Status is the request lifecycle. Pending leaves exactly once.
type Status string

const (
	StatusPending  Status = "pending"
	StatusVerified Status = "verified"
	StatusRejected Status = "rejected"
)

func (s Status) IsValid() bool {
	return s == StatusPending || s == StatusVerified || s == StatusRejected
}

// Resolution records how a request left Pending.
type Resolution string

const (
	ResolutionNone     Resolution = ""
	ResolutionVerifier Resolution = "verifier"
	ResolutionExpired  Resolution = "expired"
)

// Request is a pending or resolved comparison of a credential against an
// encrypted threshold. Threshold, input proof and resolved score are opaque.
type Request struct {
	ID                 id.RequestID
	CredentialID       id.CredentialID
	Requester          id.Principal
	EncryptedThreshold payload.Opaque
	InputProof         payload.Opaque
	Status             Status
	ResolvedScore      payload.Opaque
	Resolver           id.Principal
	Resolution         Resolution
	CreatedAt          time.Time
	ResolvedAt         *time.Time
}

// NewRequest builds a Pending request. The input proof's structure is checked
// separately by a proofcheck.Checker.
func NewRequest(credentialID id.CredentialID, requester id.Principal, threshold, inputProof payload.Opaque, now time.Time) (*Request, error) {
	if credentialID.IsZero() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "credential ID is required")
	}
	if requester.IsZero() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "requester is required")
	}
	if err := validation.CheckRequiredBytes("encrypted_threshold", threshold, validation.MaxCiphertextBytes); err != nil {
		return nil, err
	}
	return &Request{
		CredentialID:       credentialID,
		Requester:          requester,
		EncryptedThreshold: threshold.Clone(),
		InputProof:         inputProof.Clone(),
		Status:             StatusPending,
		CreatedAt:          now,
	}, nil
}

func (r *Request) IsPending() bool {
	return r.Status == StatusPending
}

// Resolve records a verifier's outcome. It fails with RequestNotPending once
// the request has left Pending.
func (r *Request) Resolve(verifier id.Principal, score payload.Opaque, verified bool, now time.Time) error {
	if !r.IsPending() {
		return dErrors.New(dErrors.CodeRequestNotPending, "verification request is not pending")
	}
	r.Status = StatusRejected
	if verified {
		r.Status = StatusVerified
	}
	r.ResolvedScore = score.Clone()
	r.Resolver = verifier
	r.Resolution = ResolutionVerifier
	r.ResolvedAt = &now
	return nil
}

// Expire rejects a stale Pending request without a resolver or score.
func (r *Request) Expire(now time.Time) error {
	if !r.IsPending() {
		return dErrors.New(dErrors.CodeRequestNotPending, "verification request is not pending")
	}
	r.Status = StatusRejected
	r.Resolution = ResolutionExpired
	r.ResolvedAt = &now
	return nil
}

// Clone returns a deep copy.
func (r *Request) Clone() *Request {
	if r == nil {
		return nil
	}
	out := *r
	out.EncryptedThreshold = r.EncryptedThreshold.Clone()
	out.InputProof = r.InputProof.Clone()
	out.ResolvedScore = r.ResolvedScore.Clone()
	if r.ResolvedAt != nil {
		t := *r.ResolvedAt
		out.ResolvedAt = &t
	}
	return &out
}

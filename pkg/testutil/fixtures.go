// Package testutil provides shared test fixtures and builders for creating test data.
// This reduces boilerplate in tests and ensures consistent test data.
package testutil

import (
	"time"

	credentialmodels "privid/internal/credential/models"
	verificationmodels "privid/internal/verification/models"
	zkproofmodels "privid/internal/zkproof/models"
	id "privid/pkg/domain"
	"privid/pkg/payload"
)

// TestPrincipals holds fixed addresses for deterministic testing.
var TestPrincipals = struct {
	Admin    id.Principal
	Owner    id.Principal
	Verifier id.Principal
	Stranger id.Principal
}{
	Admin:    id.MustPrincipal("0xA000000000000000000000000000000000000001"),
	Owner:    id.MustPrincipal("0x1000000000000000000000000000000000000001"),
	Verifier: id.MustPrincipal("0x5000000000000000000000000000000000000001"),
	Stranger: id.MustPrincipal("0x9000000000000000000000000000000000000001"),
}

// TestNow is the fixed clock used by builders.
var TestNow = time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

// CredentialBuilder provides a fluent interface for building test credentials.
type CredentialBuilder struct {
	credential *credentialmodels.Credential
}

// NewCredentialBuilder creates a usable GovernmentID credential owned by
// TestPrincipals.Owner that expires a year after TestNow.
func NewCredentialBuilder() *CredentialBuilder {
	return &CredentialBuilder{
		credential: &credentialmodels.Credential{
			Owner:         TestPrincipals.Owner,
			Type:          id.CredentialTypeGovernmentID,
			EncryptedHash: payload.Opaque("encrypted-commitment"),
			Expiry:        TestNow.Add(365 * 24 * time.Hour),
			CreatedAt:     TestNow,
		},
	}
}

func (b *CredentialBuilder) WithID(credentialID id.CredentialID) *CredentialBuilder {
	b.credential.ID = credentialID
	return b
}

func (b *CredentialBuilder) WithOwner(owner id.Principal) *CredentialBuilder {
	b.credential.Owner = owner
	return b
}

func (b *CredentialBuilder) WithType(t id.CredentialType) *CredentialBuilder {
	b.credential.Type = t
	return b
}

func (b *CredentialBuilder) WithHash(hash []byte) *CredentialBuilder {
	b.credential.EncryptedHash = payload.Opaque(hash)
	return b
}

func (b *CredentialBuilder) WithExpiry(expiry time.Time) *CredentialBuilder {
	b.credential.Expiry = expiry
	return b
}

// Revoked marks the credential as revoked at TestNow.
func (b *CredentialBuilder) Revoked() *CredentialBuilder {
	at := TestNow
	b.credential.Revoked = true
	b.credential.RevokedAt = &at
	return b
}

func (b *CredentialBuilder) Build() *credentialmodels.Credential {
	return b.credential.Clone()
}

// RequestBuilder provides a fluent interface for building verification requests.
type RequestBuilder struct {
	request *verificationmodels.Request
}

// NewRequestBuilder creates a Pending request by TestPrincipals.Verifier.
func NewRequestBuilder(credentialID id.CredentialID) *RequestBuilder {
	return &RequestBuilder{
		request: &verificationmodels.Request{
			CredentialID:       credentialID,
			Requester:          TestPrincipals.Verifier,
			EncryptedThreshold: payload.Opaque("encrypted-threshold"),
			InputProof:         payload.Opaque("input-proof"),
			Status:             verificationmodels.StatusPending,
			CreatedAt:          TestNow,
		},
	}
}

func (b *RequestBuilder) WithID(requestID id.RequestID) *RequestBuilder {
	b.request.ID = requestID
	return b
}

func (b *RequestBuilder) WithRequester(requester id.Principal) *RequestBuilder {
	b.request.Requester = requester
	return b
}

func (b *RequestBuilder) WithCreatedAt(at time.Time) *RequestBuilder {
	b.request.CreatedAt = at
	return b
}

// Resolved moves the request out of Pending as if resolver had answered.
func (b *RequestBuilder) Resolved(resolver id.Principal, verified bool) *RequestBuilder {
	// Pending is guaranteed by the builder defaults, so Resolve cannot fail here.
	_ = b.request.Resolve(resolver, payload.Opaque("encrypted-score"), verified, TestNow)
	return b
}

func (b *RequestBuilder) Build() *verificationmodels.Request {
	return b.request.Clone()
}

// NewTestProof creates a ZeroKnowledge proof record for the given request.
func NewTestProof(credentialID id.CredentialID, requestID id.RequestID, prover id.Principal) *zkproofmodels.Proof {
	return &zkproofmodels.Proof{
		CredentialID: credentialID,
		RequestID:    requestID,
		ProofType:    id.ProofTypeZeroKnowledge,
		ProofHash:    payload.Opaque("proof-hash"),
		Prover:       prover,
		IssuedAt:     TestNow,
	}
}

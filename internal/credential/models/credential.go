package models

import (
	"time"

	id "privid/pkg/domain"
	dErrors "privid/pkg/domain-errors"
	"privid/pkg/payload"
	"privid/pkg/platform/validation"
)

// Credential is an opaque commitment to a holder's attestable data.
// Records are never deleted; revocation is a tombstone.
type Credential struct {
	ID            id.CredentialID
	Owner         id.Principal
	Type          id.CredentialType
	EncryptedHash payload.Opaque
	Expiry        time.Time
	Revoked       bool
	CreatedAt     time.Time
	RevokedAt     *time.Time
}

// NewCredential validates inputs and builds an unsaved credential.
// The ID is assigned by the store.
func NewCredential(owner id.Principal, credType id.CredentialType, hash payload.Opaque, expiry, now time.Time) (*Credential, error) {
	if owner.IsZero() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "owner is required")
	}
	if !credType.IsValid() {
		return nil, dErrors.New(dErrors.CodeValidation, "unknown credential type")
	}
	if err := validation.CheckRequiredBytes("encrypted_hash", hash, validation.MaxEncryptedHashBytes); err != nil {
		return nil, err
	}
	if id.IsExpired(expiry, now) {
		return nil, dErrors.New(dErrors.CodeInvalidExpiry, "expiry must be in the future")
	}
	return &Credential{
		Owner:         owner,
		Type:          credType,
		EncryptedHash: hash.Clone(),
		Expiry:        expiry,
		CreatedAt:     now,
	}, nil
}

// IsUsable reports whether the credential can back a new verification or proof.
func (c *Credential) IsUsable(now time.Time) bool {
	return !c.Revoked && !id.IsExpired(c.Expiry, now)
}

// CheckUsable is IsUsable with a reason attached.
func (c *Credential) CheckUsable(now time.Time) error {
	if c.Revoked {
		return dErrors.New(dErrors.CodeCredentialUnusable, "credential is revoked")
	}
	if id.IsExpired(c.Expiry, now) {
		return dErrors.New(dErrors.CodeCredentialUnusable, "credential is expired")
	}
	return nil
}

// Revoke sets the tombstone. Only the owner may revoke, and only once.
func (c *Credential) Revoke(caller id.Principal, now time.Time) error {
	if caller != c.Owner {
		return dErrors.New(dErrors.CodeNotOwner, "only the owner can revoke a credential")
	}
	if c.Revoked {
		return dErrors.New(dErrors.CodeAlreadyRevoked, "credential is already revoked")
	}
	c.Revoked = true
	c.RevokedAt = &now
	return nil
}

// Clone returns a deep copy so callers never share mutable state with a store.
func (c *Credential) Clone() *Credential {
	cp := *c
	cp.EncryptedHash = c.EncryptedHash.Clone()
	if c.RevokedAt != nil {
		t := *c.RevokedAt
		cp.RevokedAt = &t
	}
	return &cp
}

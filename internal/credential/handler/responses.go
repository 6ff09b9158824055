package handler

import (
	"time"

	"privid/internal/credential/models"
	id "privid/pkg/domain"
	"privid/pkg/payload"
)

type CredentialResponse struct {
	ID             string            `json:"id"`
	Owner          id.Principal      `json:"owner"`
	CredentialType id.CredentialType `json:"credential_type"`
	EncryptedHash  payload.Opaque    `json:"encrypted_hash"`
	Expiry         time.Time         `json:"expiry"`
	Revoked        bool              `json:"revoked"`
	Usable         bool              `json:"usable"`
	CreatedAt      time.Time         `json:"created_at"`
	RevokedAt      *time.Time        `json:"revoked_at,omitempty"`
}

type CredentialListResponse struct {
	Credentials []*CredentialResponse `json:"credentials"`
}

func toCredentialResponse(c *models.Credential, now time.Time) *CredentialResponse {
	return &CredentialResponse{
		ID:             c.ID.String(),
		Owner:          c.Owner,
		CredentialType: c.Type,
		EncryptedHash:  c.EncryptedHash,
		Expiry:         c.Expiry,
		Revoked:        c.Revoked,
		Usable:         c.IsUsable(now),
		CreatedAt:      c.CreatedAt,
		RevokedAt:      c.RevokedAt,
	}
}

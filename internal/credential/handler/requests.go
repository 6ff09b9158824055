package handler

import (
	"time"

	id "privid/pkg/domain"
	dErrors "privid/pkg/domain-errors"
	"privid/pkg/payload"
	"privid/pkg/platform/validation"
	validate "privid/pkg/validation"
)

// CreateCredentialRequest registers a credential for the authenticated caller.
// encrypted_hash is a multibase string.
type CreateCredentialRequest struct {
	CredentialType id.CredentialType `json:"credential_type" validate:"required"`
	EncryptedHash  payload.Opaque    `json:"encrypted_hash" validate:"required"`
	Expiry         time.Time         `json:"expiry" validate:"required"`
}

func (r *CreateCredentialRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if err := validate.Validate(r); err != nil {
		return err
	}
	if !r.CredentialType.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "unknown credential type")
	}
	return validation.CheckByteLength("encrypted_hash", r.EncryptedHash, validation.MaxEncryptedHashBytes)
}

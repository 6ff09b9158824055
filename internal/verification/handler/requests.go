package handler

import (
	id "privid/pkg/domain"
	dErrors "privid/pkg/domain-errors"
	"privid/pkg/payload"
	"privid/pkg/platform/validation"
	validate "privid/pkg/validation"
)

// RequestVerificationRequest opens a verification request. Payloads are
// multibase strings.
type RequestVerificationRequest struct {
	CredentialID       string         `json:"credential_id" validate:"required"`
	EncryptedThreshold payload.Opaque `json:"encrypted_threshold" validate:"required"`
	InputProof         payload.Opaque `json:"input_proof" validate:"required"`

	credentialID id.CredentialID
}

func (r *RequestVerificationRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if err := validate.Validate(r); err != nil {
		return err
	}
	credentialID, err := id.ParseCredentialID(r.CredentialID)
	if err != nil {
		return err
	}
	r.credentialID = credentialID
	return validation.CheckByteLength("encrypted_threshold", r.EncryptedThreshold, validation.MaxCiphertextBytes)
}

// ResolveVerificationRequest carries the verifier's encrypted score and outcome.
type ResolveVerificationRequest struct {
	EncryptedScore payload.Opaque `json:"encrypted_score" validate:"required"`
	Verified       *bool          `json:"verified" validate:"required"`
}

func (r *ResolveVerificationRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if err := validate.Validate(r); err != nil {
		return err
	}
	return validation.CheckByteLength("encrypted_score", r.EncryptedScore, validation.MaxCiphertextBytes)
}

package handler

import (
	"time"

	"privid/internal/verification/models"
	id "privid/pkg/domain"
	"privid/pkg/payload"
)

// RequestResponse never carries the input proof; threshold and score stay
// encrypted handles.
type RequestResponse struct {
	ID                 string         `json:"id"`
	CredentialID       string         `json:"credential_id"`
	Requester          id.Principal   `json:"requester"`
	EncryptedThreshold payload.Opaque `json:"encrypted_threshold"`
	Status             models.Status  `json:"status"`
	ResolvedScore      payload.Opaque `json:"resolved_score,omitempty"`
	Resolver           *id.Principal  `json:"resolver,omitempty"`
	Resolution         string         `json:"resolution,omitempty"`
	CreatedAt          time.Time      `json:"created_at"`
	ResolvedAt         *time.Time     `json:"resolved_at,omitempty"`
}

func toRequestResponse(r *models.Request) *RequestResponse {
	resp := &RequestResponse{
		ID:                 r.ID.String(),
		CredentialID:       r.CredentialID.String(),
		Requester:          r.Requester,
		EncryptedThreshold: r.EncryptedThreshold,
		Status:             r.Status,
		ResolvedScore:      r.ResolvedScore,
		Resolution:         string(r.Resolution),
		CreatedAt:          r.CreatedAt,
		ResolvedAt:         r.ResolvedAt,
	}
	if !r.Resolver.IsZero() {
		resolver := r.Resolver
		resp.Resolver = &resolver
	}
	return resp
}

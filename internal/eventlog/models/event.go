package models

import (
	"time"

	id "privid/pkg/domain"
)

// Type names a state transition recorded in the log.
type Type string

const (
	TypeCredentialCreated     Type = "CredentialCreated"
	TypeCredentialRevoked     Type = "CredentialRevoked"
	TypeVerificationRequested Type = "VerificationRequested"
	TypeVerificationCompleted Type = "VerificationCompleted"
	TypeZKProofGenerated      Type = "ZKProofGenerated"
	TypeReputationUpdated     Type = "ReputationUpdated"
	TypeVerifierAuthorized    Type = "VerifierAuthorized"
)

// Attribute keys shared by emitters and consumers.
const (
	AttrCredentialType   = "credential_type"
	AttrCredentialID     = "credential_id"
	AttrRequestID        = "request_id"
	AttrOutcome          = "verified"
	AttrScoreFingerprint = "score_fingerprint"
	AttrResolution       = "resolution"
	AttrProofType        = "proof_type"
	AttrRole             = "role"
	AttrScore            = "score"
	AttrDelta            = "delta"
	AttrAuthorized       = "authorized"
)

// Event is one append-only log entry. Attributes carry identifiers, enum
// names, booleans and fingerprints only; payload bytes never enter the log.
type Event struct {
	Seq        uint64            `json:"seq"`
	Type       Type              `json:"type"`
	EntityID   string            `json:"entity_id"`
	Principal  id.Principal      `json:"principal"`
	Attributes map[string]string `json:"attributes,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
}

// New builds an event with attributes given as alternating key/value pairs.
// A trailing key without a value is dropped.
func New(t Type, entityID string, principal id.Principal, kv ...string) *Event {
	e := &Event{Type: t, EntityID: entityID, Principal: principal}
	if len(kv) >= 2 {
		e.Attributes = make(map[string]string, len(kv)/2)
		for i := 0; i+1 < len(kv); i += 2 {
			e.Attributes[kv[i]] = kv[i+1]
		}
	}
	return e
}

// Attr returns the attribute value for key, or "" when absent.
func (e *Event) Attr(key string) string {
	if e.Attributes == nil {
		return ""
	}
	return e.Attributes[key]
}

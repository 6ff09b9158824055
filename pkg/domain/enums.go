package domain

import (
	"encoding/json"
	"strconv"

	dErrors "privid/pkg/domain-errors"
)

// CredentialType is the closed set of identity credential kinds.
type CredentialType uint8

const (
	CredentialTypeGovernmentID      CredentialType = 1
	CredentialTypeFinancial         CredentialType = 2
	CredentialTypeAddress           CredentialType = 3
	CredentialTypeProfessional      CredentialType = 4
	CredentialTypeDigitalReputation CredentialType = 5
	CredentialTypeBiometric         CredentialType = 6
)

var credentialTypeNames = map[CredentialType]string{
	CredentialTypeGovernmentID:      "government_id",
	CredentialTypeFinancial:         "financial",
	CredentialTypeAddress:           "address",
	CredentialTypeProfessional:      "professional",
	CredentialTypeDigitalReputation: "digital_reputation",
	CredentialTypeBiometric:         "biometric",
}

// IsValid returns true if the credential type is a known valid value.
func (t CredentialType) IsValid() bool {
	_, ok := credentialTypeNames[t]
	return ok
}

func (t CredentialType) String() string {
	if name, ok := credentialTypeNames[t]; ok {
		return name
	}
	return "unknown(" + strconv.Itoa(int(t)) + ")"
}

// ParseCredentialType accepts either the snake_case name or the numeric code.
func ParseCredentialType(s string) (CredentialType, error) {
	for t, name := range credentialTypeNames {
		if name == s {
			return t, nil
		}
	}
	if n, err := strconv.ParseUint(s, 10, 8); err == nil && CredentialType(n).IsValid() {
		return CredentialType(n), nil
	}
	return 0, dErrors.New(dErrors.CodeValidation, "unknown credential type")
}

func (t CredentialType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *CredentialType) UnmarshalJSON(data []byte) error {
	parsed, err := ParseCredentialType(unquote(data))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ProofType is the closed set of zero-knowledge proof record kinds.
type ProofType uint8

const (
	ProofTypeZeroKnowledge     ProofType = 1
	ProofTypeEncryptedProof    ProofType = 2
	ProofTypePrivacyPreserving ProofType = 3
)

var proofTypeNames = map[ProofType]string{
	ProofTypeZeroKnowledge:     "zero_knowledge",
	ProofTypeEncryptedProof:    "encrypted_proof",
	ProofTypePrivacyPreserving: "privacy_preserving",
}

// IsValid returns true if the proof type is a known valid value.
func (t ProofType) IsValid() bool {
	_, ok := proofTypeNames[t]
	return ok
}

func (t ProofType) String() string {
	if name, ok := proofTypeNames[t]; ok {
		return name
	}
	return "unknown(" + strconv.Itoa(int(t)) + ")"
}

// ParseProofType accepts either the snake_case name or the numeric code.
func ParseProofType(s string) (ProofType, error) {
	for t, name := range proofTypeNames {
		if name == s {
			return t, nil
		}
	}
	if n, err := strconv.ParseUint(s, 10, 8); err == nil && ProofType(n).IsValid() {
		return ProofType(n), nil
	}
	return 0, dErrors.New(dErrors.CodeValidation, "unknown proof type")
}

func (t ProofType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *ProofType) UnmarshalJSON(data []byte) error {
	parsed, err := ParseProofType(unquote(data))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// unquote strips JSON string quotes so names and bare numbers share one parser.
func unquote(data []byte) string {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return s
	}
	return string(data)
}

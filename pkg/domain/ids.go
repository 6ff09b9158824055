// Package domain provides type-safe identifiers to prevent mixing up IDs at compile time.
package domain

import (
	"strconv"

	"github.com/ethereum/go-ethereum/common"

	dErrors "privid/pkg/domain-errors"
)

// Principal is an authenticated, address-like caller identity.
type Principal common.Address

// Distinct numeric ID types - compiler prevents passing a RequestID where a
// CredentialID is expected. Zero is never assigned.
type (
	CredentialID uint64
	RequestID    uint64
	ProofID      uint64
)

// Parse functions - use at trust boundaries (handlers, API inputs).

// ParsePrincipal accepts a 0x-prefixed or bare 20-byte hex address.
// The zero address is rejected because it cannot own or resolve anything.
func ParsePrincipal(s string) (Principal, error) {
	if s == "" {
		return Principal{}, dErrors.New(dErrors.CodeBadRequest, "principal cannot be empty")
	}
	if !common.IsHexAddress(s) {
		return Principal{}, dErrors.New(dErrors.CodeBadRequest, "invalid principal address")
	}
	p := Principal(common.HexToAddress(s))
	if p.IsZero() {
		return Principal{}, dErrors.New(dErrors.CodeBadRequest, "zero address is not a valid principal")
	}
	return p, nil
}

// MustPrincipal parses s and panics on failure. Intended for tests and constants.
func MustPrincipal(s string) Principal {
	p, err := ParsePrincipal(s)
	if err != nil {
		panic(err)
	}
	return p
}

func ParseCredentialID(s string) (CredentialID, error) {
	v, err := parseUint(s, "credential ID")
	return CredentialID(v), err
}

func ParseRequestID(s string) (RequestID, error) {
	v, err := parseUint(s, "request ID")
	return RequestID(v), err
}

func ParseProofID(s string) (ProofID, error) {
	v, err := parseUint(s, "proof ID")
	return ProofID(v), err
}

// String methods - for logging and lock keys.

// String returns the EIP-55 checksummed form.
func (p Principal) String() string     { return common.Address(p).Hex() }
func (id CredentialID) String() string { return strconv.FormatUint(uint64(id), 10) }
func (id RequestID) String() string    { return strconv.FormatUint(uint64(id), 10) }
func (id ProofID) String() string      { return strconv.FormatUint(uint64(id), 10) }

// IsZero checks - used for service-layer validation.

func (p Principal) IsZero() bool     { return p == Principal{} }
func (id CredentialID) IsZero() bool { return id == 0 }
func (id RequestID) IsZero() bool    { return id == 0 }
func (id ProofID) IsZero() bool      { return id == 0 }

// MarshalText renders the checksummed address so principals can be used as
// JSON values and map keys.
func (p Principal) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText parses an address with the same rules as ParsePrincipal.
func (p *Principal) UnmarshalText(text []byte) error {
	parsed, err := ParsePrincipal(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// parseUint is the shared validation logic for numeric identifiers.
func parseUint(s, label string) (uint64, error) {
	if s == "" {
		return 0, dErrors.New(dErrors.CodeBadRequest, label+" cannot be empty")
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil || v == 0 {
		return 0, dErrors.New(dErrors.CodeBadRequest, "invalid "+label+" format")
	}
	return v, nil
}

// LockKey names the entity lock guarding a credential.
func (id CredentialID) LockKey() string { return "credential:" + id.String() }

// LockKey names the entity lock guarding a verification request.
func (id RequestID) LockKey() string { return "request:" + id.String() }

// LockKey names the entity lock guarding a principal's verifier record.
func (p Principal) LockKey() string { return "principal:" + p.String() }

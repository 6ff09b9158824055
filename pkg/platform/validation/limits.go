package validation

import (
	"fmt"

	dErrors "privid/pkg/domain-errors"
)

// HTTP body limits
const (
	// MaxBodySize is the maximum allowed request body size (64 KB).
	// Sufficient for JSON APIs while preventing memory exhaustion attacks.
	MaxBodySize = 64 * 1024
)

// Opaque payload limits (decoded bytes)
const (
	// MaxEncryptedHashBytes bounds a credential's encrypted commitment.
	MaxEncryptedHashBytes = 8 * 1024

	// MaxCiphertextBytes bounds an encrypted threshold or score handle.
	MaxCiphertextBytes = 8 * 1024

	// MaxProofHashBytes bounds a ZK proof record's hash.
	MaxProofHashBytes = 4 * 1024
)

// Paging limits
const (
	// DefaultPageSize is used when a list request does not specify a limit.
	DefaultPageSize = 100

	// MaxPageSize is the largest page an event or listing request may ask for.
	MaxPageSize = 500
)

// CheckRequiredBytes validates that an opaque payload is present and within max bytes.
func CheckRequiredBytes(fieldName string, value []byte, max int) error {
	if len(value) == 0 {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("%s is required", fieldName))
	}
	return CheckByteLength(fieldName, value, max)
}

// CheckByteLength validates that an opaque payload does not exceed max bytes.
func CheckByteLength(fieldName string, value []byte, max int) error {
	if len(value) > max {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("%s exceeds max length of %d bytes", fieldName, max))
	}
	return nil
}

// CheckStringLength validates that a string does not exceed the maximum length.
func CheckStringLength(fieldName, value string, max int) error {
	if len(value) > max {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("%s exceeds max length of %d", fieldName, max))
	}
	return nil
}

// ClampPageSize applies the default and maximum page size to a requested limit.
func ClampPageSize(limit int) int {
	switch {
	case limit <= 0:
		return DefaultPageSize
	case limit > MaxPageSize:
		return MaxPageSize
	default:
		return limit
	}
}

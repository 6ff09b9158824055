package domainerrors

import "errors"

// Code represents a domain error category independent of transport layer.
// These codes describe what went wrong in business logic terms, not HTTP terms.
type Code string

const (
	CodeNotFound           Code = "not_found"
	CodeBadRequest         Code = "bad_request"
	CodeValidation         Code = "validation_failed"
	CodeInternal           Code = "internal_error"
	CodeUnauthorized       Code = "unauthorized"
	CodeTimeout            Code = "timeout"
	CodeInvariantViolation Code = "invariant_violation"

	// Authorization: caller lacks the required relationship to the entity.
	CodeNotOwner              Code = "not_owner"
	CodeNotAdmin              Code = "not_admin"
	CodeVerifierNotAuthorized Code = "verifier_not_authorized"
	CodeNotRequester          Code = "not_requester"

	// State: entity is not in the lifecycle state the operation requires.
	CodeAlreadyRevoked     Code = "already_revoked"
	CodeRequestNotPending  Code = "request_not_pending"
	CodeRequestNotVerified Code = "request_not_verified"
	CodeCredentialUnusable Code = "credential_unusable"

	// Validation: caller input failed structural checks.
	CodeInvalidExpiry  Code = "invalid_expiry"
	CodeMalformedProof Code = "malformed_proof"

	// Lookup: referenced entity does not exist.
	CodeCredentialNotFound Code = "credential_not_found"
	CodeRequestNotFound    Code = "request_not_found"
	CodeProofNotFound      Code = "proof_not_found"
)

// Category groups codes by the kind of failure they describe.
type Category string

const (
	CategoryAuthorization Category = "authorization"
	CategoryState         Category = "state"
	CategoryValidation    Category = "validation"
	CategoryLookup        Category = "lookup"
	CategoryInternal      Category = "internal"
)

// Category reports which failure family a code belongs to.
func (c Code) Category() Category {
	switch c {
	case CodeNotOwner, CodeNotAdmin, CodeVerifierNotAuthorized, CodeNotRequester, CodeUnauthorized:
		return CategoryAuthorization
	case CodeAlreadyRevoked, CodeRequestNotPending, CodeRequestNotVerified, CodeCredentialUnusable:
		return CategoryState
	case CodeInvalidExpiry, CodeMalformedProof, CodeValidation, CodeBadRequest, CodeInvariantViolation:
		return CategoryValidation
	case CodeNotFound, CodeCredentialNotFound, CodeRequestNotFound, CodeProofNotFound:
		return CategoryLookup
	default:
		return CategoryInternal
	}
}

// Error wraps domain or infrastructure failures with a stable code.
// It is transport-agnostic and can be used across service, store, and other layers.
type Error struct {
	Code    Code
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return string(e.Code)
}

// Unwrap implements error unwrapping for error chains.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is enables errors.Is() to match errors by code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New creates a new domain error with the given code and message.
func New(code Code, msg string) error {
	return &Error{Code: code, Message: msg}
}

// Wrap creates a new domain error wrapping an existing error.
// If the wrapped error is already a domain error, the original code is preserved.
func Wrap(err error, code Code, msg string) error {
	var existing *Error
	if errors.As(err, &existing) {
		return &Error{Code: existing.Code, Message: msg, Err: err}
	}
	return &Error{Code: code, Message: msg, Err: err}
}

// HasCode checks if an error is a domain error with the given code.
func HasCode(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// CodeOf returns the domain code carried by err, or CodeInternal when err is
// not a domain error.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

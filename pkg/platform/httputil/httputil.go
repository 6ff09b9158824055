package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	id "privid/pkg/domain"
	dErrors "privid/pkg/domain-errors"
	"privid/pkg/requestcontext"
)

func WriteJSON(w http.ResponseWriter, status int, response any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Errors after WriteHeader cannot change the status code, so we ignore encoding errors.
	// The response body may be incomplete, but headers are already sent.
	_ = json.NewEncoder(w).Encode(response)
}

// ErrorResponse is the JSON body for every failed request.
type ErrorResponse struct {
	Error       string `json:"error"`
	Category    string `json:"category"`
	Description string `json:"error_description,omitempty"`
}

// WriteError centralizes domain error translation to HTTP responses.
// It translates transport-agnostic domain errors into HTTP status codes and error responses.
// Internal failures never expose their message.
func WriteError(w http.ResponseWriter, err error) {
	var domainErr *dErrors.Error
	if errors.As(err, &domainErr) {
		code := domainErr.Code
		response := ErrorResponse{
			Error:    string(code),
			Category: string(code.Category()),
		}
		if code.Category() != dErrors.CategoryInternal && domainErr.Message != "" {
			response.Description = domainErr.Message
		}
		WriteJSON(w, DomainCodeToHTTPStatus(code), response)
		return
	}

	// Fallback for unexpected errors
	WriteJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:    string(dErrors.CodeInternal),
		Category: string(dErrors.CategoryInternal),
	})
}

// DomainCodeToHTTPStatus translates domain error codes to HTTP status codes.
func DomainCodeToHTTPStatus(code dErrors.Code) int {
	switch code {
	case dErrors.CodeUnauthorized:
		return http.StatusUnauthorized
	case dErrors.CodeTimeout:
		return http.StatusGatewayTimeout
	}
	switch code.Category() {
	case dErrors.CategoryAuthorization:
		return http.StatusForbidden
	case dErrors.CategoryState:
		return http.StatusConflict
	case dErrors.CategoryValidation:
		return http.StatusBadRequest
	case dErrors.CategoryLookup:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// RequirePrincipal extracts the authenticated caller from context.
// A missing principal behind the auth middleware is a wiring bug, so it is
// reported as internal rather than unauthorized.
func RequirePrincipal(ctx context.Context, logger *slog.Logger) (id.Principal, error) {
	principal, ok := requestcontext.Principal(ctx)
	if !ok {
		if logger != nil {
			logger.ErrorContext(ctx, "principal missing from context despite auth middleware",
				"request_id", requestcontext.RequestID(ctx))
		}
		return id.Principal{}, dErrors.New(dErrors.CodeInternal, "authentication context error")
	}
	return principal, nil
}

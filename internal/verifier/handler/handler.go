package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"privid/internal/verifier/models"
	id "privid/pkg/domain"
	dErrors "privid/pkg/domain-errors"
	"privid/pkg/platform/httputil"
	"privid/pkg/requestcontext"
)

// Service defines the registry operations exposed over HTTP.
type Service interface {
	AuthorizeVerifier(ctx context.Context, caller, verifier id.Principal, isAuthorized bool) (*models.Verifier, error)
	GetVerifier(ctx context.Context, verifier id.Principal) (*models.View, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Put("/v1/verifiers/{address}", h.HandleAuthorizeVerifier)
	r.Get("/v1/verifiers/{address}", h.HandleGetVerifier)
}

// AuthorizeVerifierRequest sets the verifier's authorization flag.
type AuthorizeVerifierRequest struct {
	Authorized *bool `json:"authorized"`
}

func (r *AuthorizeVerifierRequest) Validate() error {
	if r == nil || r.Authorized == nil {
		return dErrors.New(dErrors.CodeValidation, "authorized is required")
	}
	return nil
}

type VerifierResponse struct {
	Address    id.Principal `json:"address"`
	Authorized bool         `json:"authorized"`
	Reputation int          `json:"reputation"`
	UpdatedAt  *time.Time   `json:"updated_at,omitempty"`
}

// HandleAuthorizeVerifier toggles a verifier. Administrator only.
func (h *Handler) HandleAuthorizeVerifier(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	caller, err := httputil.RequirePrincipal(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	verifier, err := id.ParsePrincipal(chi.URLParam(r, "address"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[AuthorizeVerifierRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	if _, err := h.service.AuthorizeVerifier(ctx, caller, verifier, *req.Authorized); err != nil {
		h.logger.WarnContext(ctx, "authorize verifier failed", "error", err, "request_id", requestID, "verifier", verifier)
		httputil.WriteError(w, err)
		return
	}

	h.writeView(w, r, verifier)
}

// HandleGetVerifier reports authorization and reputation for any address.
func (h *Handler) HandleGetVerifier(w http.ResponseWriter, r *http.Request) {
	verifier, err := id.ParsePrincipal(chi.URLParam(r, "address"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.writeView(w, r, verifier)
}

func (h *Handler) writeView(w http.ResponseWriter, r *http.Request, verifier id.Principal) {
	view, err := h.service.GetVerifier(r.Context(), verifier)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, &VerifierResponse{
		Address:    view.Principal,
		Authorized: view.Authorized,
		Reputation: view.Reputation,
		UpdatedAt:  view.UpdatedAt,
	})
}

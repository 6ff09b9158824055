package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"privid/internal/credential/models"
	id "privid/pkg/domain"
	"privid/pkg/payload"
	"privid/pkg/platform/httputil"
	"privid/pkg/requestcontext"
)

// Service defines the credential operations exposed over HTTP.
type Service interface {
	CreateCredential(ctx context.Context, owner id.Principal, credType id.CredentialType, hash payload.Opaque, expiry time.Time) (*models.Credential, error)
	RevokeCredential(ctx context.Context, caller id.Principal, credentialID id.CredentialID) (*models.Credential, error)
	GetCredentialInfo(ctx context.Context, credentialID id.CredentialID) (*models.Credential, error)
	ListByOwner(ctx context.Context, owner id.Principal) ([]*models.Credential, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/v1/credentials", h.HandleCreateCredential)
	r.Get("/v1/credentials", h.HandleListCredentials)
	r.Get("/v1/credentials/{id}", h.HandleGetCredential)
	r.Post("/v1/credentials/{id}/revoke", h.HandleRevokeCredential)
}

// HandleCreateCredential registers a credential owned by the caller.
func (h *Handler) HandleCreateCredential(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	caller, err := httputil.RequirePrincipal(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[CreateCredentialRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	c, err := h.service.CreateCredential(ctx, caller, req.CredentialType, req.EncryptedHash, req.Expiry)
	if err != nil {
		h.logger.ErrorContext(ctx, "create credential failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, toCredentialResponse(c, requestcontext.Now(ctx)))
}

// HandleRevokeCredential tombstones one of the caller's credentials.
func (h *Handler) HandleRevokeCredential(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	caller, err := httputil.RequirePrincipal(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	credentialID, err := id.ParseCredentialID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	c, err := h.service.RevokeCredential(ctx, caller, credentialID)
	if err != nil {
		h.logger.WarnContext(ctx, "revoke credential failed", "error", err, "request_id", requestID, "credential_id", credentialID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toCredentialResponse(c, requestcontext.Now(ctx)))
}

func (h *Handler) HandleGetCredential(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	credentialID, err := id.ParseCredentialID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	c, err := h.service.GetCredentialInfo(ctx, credentialID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toCredentialResponse(c, requestcontext.Now(ctx)))
}

// HandleListCredentials lists the caller's own credentials.
func (h *Handler) HandleListCredentials(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	caller, err := httputil.RequirePrincipal(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	list, err := h.service.ListByOwner(ctx, caller)
	if err != nil {
		h.logger.ErrorContext(ctx, "list credentials failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}

	now := requestcontext.Now(ctx)
	resp := &CredentialListResponse{Credentials: make([]*CredentialResponse, 0, len(list))}
	for _, c := range list {
		resp.Credentials = append(resp.Credentials, toCredentialResponse(c, now))
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"privid/internal/verification/models"
	id "privid/pkg/domain"
	"privid/pkg/payload"
	"privid/pkg/platform/httputil"
	"privid/pkg/requestcontext"
)

// Service defines the verification operations exposed over HTTP.
type Service interface {
	RequestVerification(ctx context.Context, requester id.Principal, credentialID id.CredentialID, threshold, inputProof payload.Opaque) (*models.Request, error)
	ResolveVerification(ctx context.Context, verifier id.Principal, requestID id.RequestID, score payload.Opaque, verified bool) (*models.Request, error)
	GetVerificationRequestInfo(ctx context.Context, requestID id.RequestID) (*models.Request, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/v1/verifications", h.HandleRequestVerification)
	r.Post("/v1/verifications/{id}/resolve", h.HandleResolveVerification)
	r.Get("/v1/verifications/{id}", h.HandleGetVerification)
}

// HandleRequestVerification opens a request on behalf of the caller.
func (h *Handler) HandleRequestVerification(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	caller, err := httputil.RequirePrincipal(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[RequestVerificationRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	created, err := h.service.RequestVerification(ctx, caller, req.credentialID, req.EncryptedThreshold, req.InputProof)
	if err != nil {
		h.logger.WarnContext(ctx, "request verification failed", "error", err, "request_id", requestID, "credential_id", req.credentialID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, toRequestResponse(created))
}

// HandleResolveVerification records the calling verifier's outcome.
func (h *Handler) HandleResolveVerification(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	caller, err := httputil.RequirePrincipal(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	verificationID, err := id.ParseRequestID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[ResolveVerificationRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	resolved, err := h.service.ResolveVerification(ctx, caller, verificationID, req.EncryptedScore, *req.Verified)
	if err != nil {
		h.logger.WarnContext(ctx, "resolve verification failed", "error", err, "request_id", requestID, "verification_id", verificationID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toRequestResponse(resolved))
}

func (h *Handler) HandleGetVerification(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	verificationID, err := id.ParseRequestID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	got, err := h.service.GetVerificationRequestInfo(ctx, verificationID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toRequestResponse(got))
}

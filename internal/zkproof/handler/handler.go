package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"privid/internal/zkproof/models"
	id "privid/pkg/domain"
	dErrors "privid/pkg/domain-errors"
	"privid/pkg/payload"
	"privid/pkg/platform/httputil"
	"privid/pkg/platform/validation"
	"privid/pkg/requestcontext"
	validate "privid/pkg/validation"
)

// Service defines the proof operations exposed over HTTP.
type Service interface {
	GenerateZKProof(ctx context.Context, prover id.Principal, credentialID id.CredentialID, requestID id.RequestID, proofType id.ProofType, hash payload.Opaque) (*models.Proof, error)
	GetZKProofInfo(ctx context.Context, proofID id.ProofID) (*models.Proof, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/v1/proofs", h.HandleGenerateProof)
	r.Get("/v1/proofs/{id}", h.HandleGetProof)
}

type GenerateProofRequest struct {
	CredentialID string         `json:"credential_id" validate:"required"`
	RequestID    string         `json:"request_id" validate:"required"`
	ProofType    id.ProofType   `json:"proof_type" validate:"required"`
	ProofHash    payload.Opaque `json:"proof_hash" validate:"required"`

	credentialID id.CredentialID
	requestID    id.RequestID
}

func (r *GenerateProofRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if err := validate.Validate(r); err != nil {
		return err
	}
	var err error
	if r.credentialID, err = id.ParseCredentialID(r.CredentialID); err != nil {
		return err
	}
	if r.requestID, err = id.ParseRequestID(r.RequestID); err != nil {
		return err
	}
	return validation.CheckByteLength("proof_hash", r.ProofHash, validation.MaxProofHashBytes)
}

type ProofResponse struct {
	ID           string         `json:"id"`
	CredentialID string         `json:"credential_id"`
	RequestID    string         `json:"request_id"`
	ProofType    id.ProofType   `json:"proof_type"`
	ProofHash    payload.Opaque `json:"proof_hash"`
	Prover       id.Principal   `json:"prover"`
	IssuedAt     time.Time      `json:"issued_at"`
}

func toProofResponse(p *models.Proof) *ProofResponse {
	return &ProofResponse{
		ID:           p.ID.String(),
		CredentialID: p.CredentialID.String(),
		RequestID:    p.RequestID.String(),
		ProofType:    p.ProofType,
		ProofHash:    p.ProofHash,
		Prover:       p.Prover,
		IssuedAt:     p.IssuedAt,
	}
}

// HandleGenerateProof issues a proof with the caller as prover.
func (h *Handler) HandleGenerateProof(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	caller, err := httputil.RequirePrincipal(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[GenerateProofRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	p, err := h.service.GenerateZKProof(ctx, caller, req.credentialID, req.requestID, req.ProofType, req.ProofHash)
	if err != nil {
		h.logger.WarnContext(ctx, "generate proof failed", "error", err, "request_id", requestID, "verification_id", req.requestID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, toProofResponse(p))
}

func (h *Handler) HandleGetProof(w http.ResponseWriter, r *http.Request) {
	proofID, err := id.ParseProofID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	p, err := h.service.GetZKProofInfo(r.Context(), proofID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toProofResponse(p))
}

package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	id "privid/pkg/domain"
	"privid/pkg/platform/httputil"
	"privid/pkg/requestcontext"
)

// Service is the read side of the reputation ledger.
type Service interface {
	GetUserReputation(ctx context.Context, p id.Principal) (int, error)
	GetVerifierReputation(ctx context.Context, p id.Principal) (int, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/v1/reputation/{address}", h.HandleGetReputation)
}

type ReputationResponse struct {
	Address       id.Principal `json:"address"`
	UserScore     int          `json:"user_score"`
	VerifierScore int          `json:"verifier_score"`
}

// HandleGetReputation returns both role scores for an address.
func (h *Handler) HandleGetReputation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	p, err := id.ParsePrincipal(chi.URLParam(r, "address"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	user, err := h.service.GetUserReputation(ctx, p)
	if err != nil {
		h.logger.ErrorContext(ctx, "get user reputation failed", "error", err, "request_id", requestcontext.RequestID(ctx))
		httputil.WriteError(w, err)
		return
	}
	verifier, err := h.service.GetVerifierReputation(ctx, p)
	if err != nil {
		h.logger.ErrorContext(ctx, "get verifier reputation failed", "error", err, "request_id", requestcontext.RequestID(ctx))
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, &ReputationResponse{Address: p, UserScore: user, VerifierScore: verifier})
}

package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"privid/internal/eventlog/models"
	dErrors "privid/pkg/domain-errors"
	"privid/pkg/platform/httputil"
	"privid/pkg/requestcontext"
)

// Service is the read side of the event log.
type Service interface {
	List(ctx context.Context, after uint64, limit int) ([]models.Event, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/v1/events", h.HandleListEvents)
}

// EventsResponse is one page of the log. Next is the cursor for the following
// page and equals the request's after when the page is empty.
type EventsResponse struct {
	Events []models.Event `json:"events"`
	Next   uint64         `json:"next"`
}

// HandleListEvents tails the log for indexers: GET /v1/events?after=&limit=.
func (h *Handler) HandleListEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	after, err := parseUintParam(r, "after")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	limit, err := parseUintParam(r, "limit")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	events, err := h.service.List(ctx, after, int(min(limit, 1<<20)))
	if err != nil {
		h.logger.ErrorContext(ctx, "list events failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}

	next := after
	if len(events) > 0 {
		next = events[len(events)-1].Seq
	}
	httputil.WriteJSON(w, http.StatusOK, &EventsResponse{Events: events, Next: next})
}

func parseUintParam(r *http.Request, name string) (uint64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, dErrors.New(dErrors.CodeBadRequest, "invalid "+name+" parameter")
	}
	return v, nil
}

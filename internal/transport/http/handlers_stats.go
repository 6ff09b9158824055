package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"privid/internal/engine"
	"privid/pkg/platform/httputil"
	"privid/pkg/requestcontext"
)

// StatsSource reports the engine counters.
type StatsSource interface {
	Stats(ctx context.Context) (*engine.Stats, error)
}

type statsHandler struct {
	source StatsSource
	logger *slog.Logger
}

func newStatsHandler(source StatsSource, logger *slog.Logger) *statsHandler {
	return &statsHandler{source: source, logger: logger}
}

func (h *statsHandler) Register(r chi.Router) {
	r.Get("/v1/stats", h.handleStats)
}

func (h *statsHandler) handleStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	stats, err := h.source.Stats(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to read stats",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, stats)
}

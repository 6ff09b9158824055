package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	credentialhandler "privid/internal/credential/handler"
	"privid/internal/engine"
	eventhandler "privid/internal/eventlog/handler"
	"privid/internal/platform/health"
	"privid/internal/platform/metrics"
	"privid/internal/platform/middleware"
	reputationhandler "privid/internal/reputation/handler"
	verificationhandler "privid/internal/verification/handler"
	verifierhandler "privid/internal/verifier/handler"
	zkproofhandler "privid/internal/zkproof/handler"
)

// RequestTimeout bounds every API request.
const RequestTimeout = 30 * time.Second

// MaxRequestBytes bounds API request bodies. Payload fields are capped far
// lower; this stops oversized bodies before decoding.
const MaxRequestBytes = 256 * 1024

// Deps are the collaborators the router mounts.
type Deps struct {
	Engine         *engine.Engine
	Tokens         middleware.TokenValidator
	Health         *health.Handler
	Metrics        *metrics.Metrics
	TrustedProxies *middleware.TrustedProxies
	Logger         *slog.Logger
	// Traced wraps the whole router in otelhttp server spans.
	Traced bool
}

// NewRouter wires all public endpoints with middleware. Ops endpoints are
// unauthenticated; everything under /v1 requires a bearer token.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(d.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.ClientMetadata(d.TrustedProxies))
	r.Use(middleware.Logger(d.Logger))
	if d.Metrics != nil {
		r.Use(middleware.Instrument(d.Metrics))
	}

	if d.Health != nil {
		d.Health.Register(r)
	}
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(RequestTimeout))
		r.Use(middleware.BodyLimit(MaxRequestBytes))
		r.Use(middleware.ContentTypeJSON)
		r.Use(middleware.RequireAuth(d.Tokens, d.Logger))

		e := d.Engine
		credentialhandler.New(e.Credentials, d.Logger).Register(r)
		verifierhandler.New(e.Verifiers, d.Logger).Register(r)
		reputationhandler.New(e.Reputation, d.Logger).Register(r)
		verificationhandler.New(e.Verifications, d.Logger).Register(r)
		zkproofhandler.New(e.Proofs, d.Logger).Register(r)
		eventhandler.New(e.Events, d.Logger).Register(r)
		newStatsHandler(e, d.Logger).Register(r)
	})

	if d.Traced {
		return otelhttp.NewHandler(r, "privid.http",
			otelhttp.WithSpanNameFormatter(func(_ string, req *http.Request) string {
				return req.Method + " " + req.URL.Path
			}),
		)
	}
	return r
}

package engine

import (
	"log/slog"

	"privid/internal/platform/tracer"
	reputationmodels "privid/internal/reputation/models"
	reputationservice "privid/internal/reputation/service"
	"privid/internal/verification/proofcheck"
)

type config struct {
	logger  *slog.Logger
	tracer  tracer.Tracer
	policy  *reputationmodels.Policy
	cache   reputationservice.Cache
	checker proofcheck.Checker
	metrics bool
}

// Option configures an Engine.
type Option func(*config)

// WithLogger is handed to every component.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithTracer traces verification and proof operations.
func WithTracer(t tracer.Tracer) Option {
	return func(c *config) {
		c.tracer = t
	}
}

// WithReputationPolicy overrides the default outcome deltas.
func WithReputationPolicy(p reputationmodels.Policy) Option {
	return func(c *config) {
		c.policy = &p
	}
}

// WithReputationCache puts a read-through cache in front of the ledger.
func WithReputationCache(cache reputationservice.Cache) Option {
	return func(c *config) {
		c.cache = cache
	}
}

// WithProofChecker sets the structural check applied to input proofs.
func WithProofChecker(checker proofcheck.Checker) Option {
	return func(c *config) {
		c.checker = checker
	}
}

// WithMetrics enables Prometheus counters in every component.
func WithMetrics() Option {
	return func(c *config) {
		c.metrics = true
	}
}

package service

import (
	"log/slog"

	reputationmetrics "privid/internal/reputation/metrics"
	"privid/internal/reputation/models"
)

type serviceConfig struct {
	logger  *slog.Logger
	metrics *reputationmetrics.Metrics
	policy  *models.Policy
	cache   Cache
}

// Option configures the ledger.
type Option func(c *serviceConfig)

func WithLogger(logger *slog.Logger) Option {
	return func(c *serviceConfig) {
		c.logger = logger
	}
}

func WithMetrics(m *reputationmetrics.Metrics) Option {
	return func(c *serviceConfig) {
		c.metrics = m
	}
}

// WithPolicy overrides the default outcome deltas.
func WithPolicy(p models.Policy) Option {
	return func(c *serviceConfig) {
		c.policy = &p
	}
}

// WithCache enables read-through caching of scores.
func WithCache(cache Cache) Option {
	return func(c *serviceConfig) {
		c.cache = cache
	}
}

package service

import (
	"log/slog"

	verifiermetrics "privid/internal/verifier/metrics"
	"privid/pkg/platform/tx"
)

type serviceConfig struct {
	logger     *slog.Logger
	metrics    *verifiermetrics.Metrics
	tx         tx.Transactor
	reputation ReputationReader
}

// Option configures a service.
type Option func(c *serviceConfig)

func WithLogger(logger *slog.Logger) Option {
	return func(c *serviceConfig) {
		c.logger = logger
	}
}

func WithMetrics(m *verifiermetrics.Metrics) Option {
	return func(c *serviceConfig) {
		c.metrics = m
	}
}

// WithTransactor shares a transactor with the other engine services.
func WithTransactor(t tx.Transactor) Option {
	return func(c *serviceConfig) {
		c.tx = t
	}
}

// WithReputation lets GetVerifier include the verifier's ledger score.
func WithReputation(r ReputationReader) Option {
	return func(c *serviceConfig) {
		c.reputation = r
	}
}

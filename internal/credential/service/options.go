package service

import (
	"log/slog"

	credentialmetrics "privid/internal/credential/metrics"
	"privid/pkg/platform/tx"
)

// serviceConfig holds optional dependencies for the service.
type serviceConfig struct {
	logger  *slog.Logger
	metrics *credentialmetrics.Metrics
	tx      tx.Transactor
}

// Option configures a service.
type Option func(c *serviceConfig)

func WithLogger(logger *slog.Logger) Option {
	return func(c *serviceConfig) {
		c.logger = logger
	}
}

func WithMetrics(m *credentialmetrics.Metrics) Option {
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

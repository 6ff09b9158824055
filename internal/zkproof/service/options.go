package service

import (
	"log/slog"

	"privid/internal/platform/tracer"
	zkproofmetrics "privid/internal/zkproof/metrics"
	"privid/pkg/platform/tx"
)

type serviceConfig struct {
	logger  *slog.Logger
	metrics *zkproofmetrics.Metrics
	tx      tx.Transactor
	tracer  tracer.Tracer
}

// Option configures a service.
type Option func(c *serviceConfig)

func WithLogger(logger *slog.Logger) Option {
	return func(c *serviceConfig) {
		c.logger = logger
	}
}

func WithMetrics(m *zkproofmetrics.Metrics) Option {
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

func WithTracer(t tracer.Tracer) Option {
	return func(c *serviceConfig) {
		c.tracer = t
	}
}

package service

import (
	"log/slog"

	"privid/internal/platform/tracer"
	verificationmetrics "privid/internal/verification/metrics"
	"privid/internal/verification/proofcheck"
	"privid/pkg/platform/tx"
)

type serviceConfig struct {
	logger  *slog.Logger
	metrics *verificationmetrics.Metrics
	tx      tx.Transactor
	checker proofcheck.Checker
	tracer  tracer.Tracer
}

// Option configures a service.
type Option func(c *serviceConfig)

func WithLogger(logger *slog.Logger) Option {
	return func(c *serviceConfig) {
		c.logger = logger
	}
}

func WithMetrics(m *verificationmetrics.Metrics) Option {
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

// WithProofChecker replaces the default opaque length check on input proofs.
func WithProofChecker(c proofcheck.Checker) Option {
	return func(cfg *serviceConfig) {
		cfg.checker = c
	}
}

func WithTracer(t tracer.Tracer) Option {
	return func(c *serviceConfig) {
		c.tracer = t
	}
}

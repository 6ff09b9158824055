// Package service appends and reads the engine's event log.
package service

import (
	"context"
	"log/slog"

	"privid/internal/eventlog/metrics"
	"privid/internal/eventlog/models"
	dErrors "privid/pkg/domain-errors"
	"privid/pkg/platform/validation"
	"privid/pkg/requestcontext"
)

// Store is the persistence contract for the event log.
type Store interface {
	Append(ctx context.Context, e *models.Event) error
	List(ctx context.Context, after uint64, limit int) ([]models.Event, error)
	LastSeq(ctx context.Context) (uint64, error)
}

// Log appends events on behalf of the domain services. Append is called
// inside the caller's transaction and must not wait on external I/O.
type Log struct {
	store   Store
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type serviceConfig struct {
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// Option configures a Log.
type Option func(c *serviceConfig)

func WithLogger(logger *slog.Logger) Option {
	return func(c *serviceConfig) {
		c.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *serviceConfig) {
		c.metrics = m
	}
}

// New creates an event log service over store.
func New(store Store, opts ...Option) *Log {
	cfg := &serviceConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	return &Log{store: store, logger: cfg.logger, metrics: cfg.metrics}
}

// Append stamps e with the request time when unset and persists it.
func (l *Log) Append(ctx context.Context, e *models.Event) error {
	if e.OccurredAt.IsZero() {
		e.OccurredAt = requestcontext.Now(ctx)
	}
	if err := l.store.Append(ctx, e); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to append event")
	}
	if l.metrics != nil {
		l.metrics.IncAppended(string(e.Type))
	}
	if l.logger != nil {
		l.logger.DebugContext(ctx, "event appended",
			"seq", e.Seq,
			"event_type", e.Type,
			"entity_id", e.EntityID,
		)
	}
	return nil
}

// List returns events after the given seq. limit is clamped to the page bounds.
func (l *Log) List(ctx context.Context, after uint64, limit int) ([]models.Event, error) {
	events, err := l.store.List(ctx, after, validation.ClampPageSize(limit))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list events")
	}
	if events == nil {
		events = []models.Event{}
	}
	return events, nil
}

// LastSeq returns the newest sequence number, zero for an empty log.
func (l *Log) LastSeq(ctx context.Context) (uint64, error) {
	seq, err := l.store.LastSeq(ctx)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read event log head")
	}
	return seq, nil
}

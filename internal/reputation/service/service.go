// Package service is the reputation ledger. Scores change only through
// bounded adjustments driven by verification outcomes.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	eventmodels "privid/internal/eventlog/models"
	reputationmetrics "privid/internal/reputation/metrics"
	"privid/internal/reputation/models"
	id "privid/pkg/domain"
	dErrors "privid/pkg/domain-errors"
	"privid/pkg/platform/sentinel"
	"privid/pkg/requestcontext"
)

// Store is the persistence contract for scores. Adjust must clamp atomically.
type Store interface {
	Adjust(ctx context.Context, role models.Role, p id.Principal, delta int, now time.Time) (int, error)
	Get(ctx context.Context, role models.Role, p id.Principal) (int, error)
}

// Cache is an optional score cache. Get returns sentinel.ErrNotFound on a miss.
type Cache interface {
	Get(ctx context.Context, role models.Role, p id.Principal) (int, error)
	Set(ctx context.Context, role models.Role, p id.Principal, score int) error
	Invalidate(ctx context.Context, role models.Role, p id.Principal) error
}

// EventAppender records state transitions in the event log.
type EventAppender interface {
	Append(ctx context.Context, e *eventmodels.Event) error
}

type Ledger struct {
	store   Store
	events  EventAppender
	policy  models.Policy
	cache   Cache
	logger  *slog.Logger
	metrics *reputationmetrics.Metrics
}

// New creates a ledger. The policy defaults to models.DefaultPolicy and is validated.
func New(store Store, events EventAppender, opts ...Option) (*Ledger, error) {
	if store == nil {
		return nil, errors.New("reputation store is required")
	}
	if events == nil {
		return nil, errors.New("event appender is required")
	}
	cfg := &serviceConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	policy := models.DefaultPolicy()
	if cfg.policy != nil {
		policy = *cfg.policy
	}
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	return &Ledger{
		store:   store,
		events:  events,
		policy:  policy,
		cache:   cfg.cache,
		logger:  cfg.logger,
		metrics: cfg.metrics,
	}, nil
}

// Policy returns the active outcome deltas.
func (l *Ledger) Policy() models.Policy {
	return l.policy
}

// Adjust applies a bounded delta and returns the new score. It runs inside
// the caller's transaction and emits ReputationUpdated.
func (l *Ledger) Adjust(ctx context.Context, role models.Role, p id.Principal, delta int) (int, error) {
	if !role.IsValid() {
		return 0, dErrors.New(dErrors.CodeValidation, "unknown reputation role")
	}
	if p.IsZero() {
		return 0, dErrors.New(dErrors.CodeBadRequest, "principal is required")
	}
	delta = models.ClampDelta(delta)
	score, err := l.store.Adjust(ctx, role, p, delta, requestcontext.Now(ctx))
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to adjust reputation")
	}
	if err := l.events.Append(ctx, eventmodels.New(eventmodels.TypeReputationUpdated, models.Key(role, p), p,
		eventmodels.AttrRole, string(role),
		eventmodels.AttrDelta, strconv.Itoa(delta),
		eventmodels.AttrScore, strconv.Itoa(score),
	)); err != nil {
		return 0, err
	}
	if l.metrics != nil {
		l.metrics.IncrementAdjustment(string(role))
	}
	return score, nil
}

// RecordOutcome applies the policy for one resolved request: the owner moves
// by the outcome delta and the verifier earns the resolution delta.
func (l *Ledger) RecordOutcome(ctx context.Context, owner, verifier id.Principal, verified bool) error {
	if _, err := l.Adjust(ctx, models.RoleUser, owner, l.policy.OwnerDelta(verified)); err != nil {
		return err
	}
	if _, err := l.Adjust(ctx, models.RoleVerifier, verifier, l.policy.VerifierResolved); err != nil {
		return err
	}
	return nil
}

// GetReputation returns the score for role and principal, zero when unknown.
func (l *Ledger) GetReputation(ctx context.Context, role models.Role, p id.Principal) (int, error) {
	if !role.IsValid() {
		return 0, dErrors.New(dErrors.CodeValidation, "unknown reputation role")
	}
	if l.cache != nil {
		score, err := l.cache.Get(ctx, role, p)
		switch {
		case err == nil:
			l.recordLookup("hit")
			return score, nil
		case errors.Is(err, sentinel.ErrNotFound):
			l.recordLookup("miss")
		default:
			l.recordLookup("error")
			l.warn(ctx, "reputation cache read failed", err)
		}
	}

	score, err := l.store.Get(ctx, role, p)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read reputation")
	}
	if l.cache != nil {
		if err := l.cache.Set(ctx, role, p, score); err != nil {
			l.warn(ctx, "reputation cache write failed", err)
		}
	}
	return score, nil
}

func (l *Ledger) GetUserReputation(ctx context.Context, p id.Principal) (int, error) {
	return l.GetReputation(ctx, models.RoleUser, p)
}

func (l *Ledger) GetVerifierReputation(ctx context.Context, p id.Principal) (int, error) {
	return l.GetReputation(ctx, models.RoleVerifier, p)
}

// ForgetOutcome drops cached scores touched by RecordOutcome. Call it after
// the resolving transaction commits; failures only delay freshness until TTL.
func (l *Ledger) ForgetOutcome(ctx context.Context, owner, verifier id.Principal) {
	if l.cache == nil {
		return
	}
	if err := l.cache.Invalidate(ctx, models.RoleUser, owner); err != nil {
		l.warn(ctx, "reputation cache invalidation failed", err)
	}
	if err := l.cache.Invalidate(ctx, models.RoleVerifier, verifier); err != nil {
		l.warn(ctx, "reputation cache invalidation failed", err)
	}
}

func (l *Ledger) recordLookup(result string) {
	if l.metrics != nil {
		l.metrics.RecordCacheLookup(result)
	}
}

func (l *Ledger) warn(ctx context.Context, msg string, err error) {
	if l.logger != nil {
		l.logger.WarnContext(ctx, msg, "error", err)
	}
}

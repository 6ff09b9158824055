// Package service is the verifier registry: which principals may resolve
// verification requests. Only the administrator changes authorization.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	eventmodels "privid/internal/eventlog/models"
	verifiermetrics "privid/internal/verifier/metrics"
	"privid/internal/verifier/models"
	id "privid/pkg/domain"
	dErrors "privid/pkg/domain-errors"
	"privid/pkg/platform/sentinel"
	"privid/pkg/platform/tx"
	"privid/pkg/requestcontext"
)

// Store is the persistence contract for verifier records.
type Store interface {
	Upsert(ctx context.Context, v *models.Verifier) error
	FindByPrincipal(ctx context.Context, p id.Principal) (*models.Verifier, error)
	FindByPrincipalForShare(ctx context.Context, p id.Principal) (*models.Verifier, error)
	CountAuthorized(ctx context.Context) (int, error)
}

// EventAppender records state transitions in the event log.
type EventAppender interface {
	Append(ctx context.Context, e *eventmodels.Event) error
}

// ReputationReader supplies a verifier's ledger score for views.
type ReputationReader interface {
	GetVerifierReputation(ctx context.Context, p id.Principal) (int, error)
}

type Service struct {
	store      Store
	events     EventAppender
	admin      id.Principal
	tx         tx.Transactor
	reputation ReputationReader
	logger     *slog.Logger
	metrics    *verifiermetrics.Metrics
}

// New creates a registry administered by admin. The administrator is not
// implicitly a verifier; it must authorize itself like anyone else.
func New(store Store, events EventAppender, admin id.Principal, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("verifier store is required")
	}
	if events == nil {
		return nil, errors.New("event appender is required")
	}
	if admin.IsZero() {
		return nil, errors.New("administrator principal is required")
	}
	cfg := &serviceConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.tx == nil {
		cfg.tx = tx.NewSharded()
	}
	return &Service{
		store:      store,
		events:     events,
		admin:      admin,
		tx:         cfg.tx,
		reputation: cfg.reputation,
		logger:     cfg.logger,
		metrics:    cfg.metrics,
	}, nil
}

// Admin returns the principal allowed to toggle authorization.
func (s *Service) Admin() id.Principal {
	return s.admin
}

// AuthorizeVerifier sets the verifier's flag. Setting the current value again
// is accepted and still recorded.
func (s *Service) AuthorizeVerifier(ctx context.Context, caller, verifier id.Principal, isAuthorized bool) (*models.Verifier, error) {
	if caller != s.admin {
		return nil, dErrors.New(dErrors.CodeNotAdmin, "only the administrator may change verifier authorization")
	}
	if verifier.IsZero() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "verifier address is required")
	}

	var updated *models.Verifier
	err := s.tx.RunInTx(ctx, []string{verifier.LockKey()}, func(txCtx context.Context) error {
		v := &models.Verifier{
			Principal:  verifier,
			Authorized: isAuthorized,
			UpdatedAt:  requestcontext.Now(txCtx),
		}
		if err := s.store.Upsert(txCtx, v); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update verifier")
		}
		if err := s.events.Append(txCtx, eventmodels.New(eventmodels.TypeVerifierAuthorized, verifier.String(), caller,
			eventmodels.AttrAuthorized, strconv.FormatBool(isAuthorized),
		)); err != nil {
			return err
		}
		updated = v
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.IncrementAuthorizationChange(isAuthorized)
	}
	s.log(ctx, "verifier authorization changed", "verifier", verifier, "authorized", isAuthorized)
	return updated, nil
}

// IsVerifierAuthorized is a pure read; unknown principals are not authorized.
func (s *Service) IsVerifierAuthorized(ctx context.Context, verifier id.Principal) (bool, error) {
	v, err := s.store.FindByPrincipal(ctx, verifier)
	if errors.Is(err, sentinel.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load verifier")
	}
	return v.Authorized, nil
}

// RequireAuthorized fails with VerifierNotAuthorized unless verifier may
// resolve requests. Call it inside a transaction holding verifier.LockKey()
// so a concurrent toggle cannot interleave.
func (s *Service) RequireAuthorized(ctx context.Context, verifier id.Principal) error {
	v, err := s.store.FindByPrincipalForShare(ctx, verifier)
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeVerifierNotAuthorized, "verifier is not authorized")
	}
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load verifier")
	}
	if !v.Authorized {
		return dErrors.New(dErrors.CodeVerifierNotAuthorized, "verifier is not authorized")
	}
	return nil
}

// GetVerifier returns the registry view including ledger reputation.
// Unknown principals produce an unauthorized view with no UpdatedAt.
func (s *Service) GetVerifier(ctx context.Context, verifier id.Principal) (*models.View, error) {
	view := &models.View{Principal: verifier}
	v, err := s.store.FindByPrincipal(ctx, verifier)
	switch {
	case err == nil:
		view.Authorized = v.Authorized
		updatedAt := v.UpdatedAt
		view.UpdatedAt = &updatedAt
	case errors.Is(err, sentinel.ErrNotFound):
	default:
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load verifier")
	}

	if s.reputation != nil {
		score, err := s.reputation.GetVerifierReputation(ctx, verifier)
		if err != nil {
			return nil, err
		}
		view.Reputation = score
	}
	return view, nil
}

func (s *Service) AuthorizedCount(ctx context.Context) (int, error) {
	n, err := s.store.CountAuthorized(ctx)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count verifiers")
	}
	return n, nil
}

func (s *Service) log(ctx context.Context, msg string, args ...any) {
	if s.logger == nil {
		return
	}
	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		args = append(args, "request_id", requestID)
	}
	s.logger.InfoContext(ctx, msg, args...)
}

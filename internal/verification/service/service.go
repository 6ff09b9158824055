// Package service runs the verification flow: a requester opens a request
// against a usable credential, and an authorized verifier resolves it exactly
// once with an encrypted score and a boolean outcome.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	credentialmodels "privid/internal/credential/models"
	eventmodels "privid/internal/eventlog/models"
	"privid/internal/platform/tracer"
	verificationmetrics "privid/internal/verification/metrics"
	"privid/internal/verification/models"
	"privid/internal/verification/proofcheck"
	id "privid/pkg/domain"
	dErrors "privid/pkg/domain-errors"
	"privid/pkg/payload"
	"privid/pkg/platform/sentinel"
	"privid/pkg/platform/tx"
	"privid/pkg/platform/validation"
	"privid/pkg/requestcontext"
)

// Store is the persistence contract for verification requests.
type Store interface {
	Create(ctx context.Context, r *models.Request) (id.RequestID, error)
	FindByID(ctx context.Context, requestID id.RequestID) (*models.Request, error)
	FindByIDForUpdate(ctx context.Context, requestID id.RequestID) (*models.Request, error)
	UpdateResolution(ctx context.Context, r *models.Request) error
	Count(ctx context.Context) (int, error)
	ListPendingBefore(ctx context.Context, cutoff time.Time, limit int) ([]id.RequestID, error)
}

// Credentials loads a credential for a state transition, locking its row
// inside a Postgres transaction.
type Credentials interface {
	Load(ctx context.Context, credentialID id.CredentialID) (*credentialmodels.Credential, error)
}

// Verifiers gates resolution on the registry.
type Verifiers interface {
	RequireAuthorized(ctx context.Context, verifier id.Principal) error
}

// Outcomes is the reputation side effect of a resolution.
type Outcomes interface {
	RecordOutcome(ctx context.Context, owner, verifier id.Principal, verified bool) error
	ForgetOutcome(ctx context.Context, owner, verifier id.Principal)
}

// EventAppender records state transitions in the event log.
type EventAppender interface {
	Append(ctx context.Context, e *eventmodels.Event) error
}

// sweepBatchSize bounds how many requests one ExpirePending call examines.
const sweepBatchSize = 500

type Service struct {
	store       Store
	credentials Credentials
	verifiers   Verifiers
	outcomes    Outcomes
	events      EventAppender
	tx          tx.Transactor
	checker     proofcheck.Checker
	tracer      tracer.Tracer
	logger      *slog.Logger
	metrics     *verificationmetrics.Metrics
}

// New wires the processor to its collaborators. All of them must share the
// transactor passed with WithTransactor for resolution to be atomic.
func New(store Store, credentials Credentials, verifiers Verifiers, outcomes Outcomes, events EventAppender, opts ...Option) (*Service, error) {
	switch {
	case store == nil:
		return nil, errors.New("verification store is required")
	case credentials == nil:
		return nil, errors.New("credential loader is required")
	case verifiers == nil:
		return nil, errors.New("verifier registry is required")
	case outcomes == nil:
		return nil, errors.New("reputation ledger is required")
	case events == nil:
		return nil, errors.New("event appender is required")
	}
	cfg := &serviceConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.tx == nil {
		cfg.tx = tx.NewSharded()
	}
	if cfg.checker == nil {
		cfg.checker = proofcheck.NewOpaque(proofcheck.MinOpaqueBytes, proofcheck.MaxOpaqueBytes)
	}
	if cfg.tracer == nil {
		cfg.tracer = tracer.NewNoop()
	}
	return &Service{
		store:       store,
		credentials: credentials,
		verifiers:   verifiers,
		outcomes:    outcomes,
		events:      events,
		tx:          cfg.tx,
		checker:     cfg.checker,
		tracer:      cfg.tracer,
		logger:      cfg.logger,
		metrics:     cfg.metrics,
	}, nil
}

// RequestVerification opens a Pending request against a usable credential.
// Input validation happens before any storage access.
func (s *Service) RequestVerification(ctx context.Context, requester id.Principal, credentialID id.CredentialID, threshold, inputProof payload.Opaque) (_ *models.Request, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanRequestVerification,
		tracer.String(tracer.AttrCredentialID, credentialID.String()),
	)
	defer func() { span.End(err) }()

	if err := s.checker.Check(inputProof); err != nil {
		return nil, err
	}
	if err := validation.CheckRequiredBytes("encrypted_threshold", threshold, validation.MaxCiphertextBytes); err != nil {
		return nil, err
	}

	var (
		created  *models.Request
		credType id.CredentialType
	)
	err = s.tx.RunInTx(ctx, []string{credentialID.LockKey()}, func(txCtx context.Context) error {
		now := requestcontext.Now(txCtx)
		c, err := s.credentials.Load(txCtx, credentialID)
		if err != nil {
			return err
		}
		if err := c.CheckUsable(now); err != nil {
			return err
		}
		r, err := models.NewRequest(credentialID, requester, threshold, inputProof, now)
		if err != nil {
			return err
		}
		if _, err := s.store.Create(txCtx, r); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create verification request")
		}
		if err := s.events.Append(txCtx, eventmodels.New(eventmodels.TypeVerificationRequested, r.ID.String(), requester,
			eventmodels.AttrCredentialID, credentialID.String(),
			eventmodels.AttrCredentialType, c.Type.String(),
		)); err != nil {
			return err
		}
		created, credType = r, c.Type
		return nil
	})
	if err != nil {
		return nil, err
	}

	span.SetAttributes(tracer.String(tracer.AttrRequestID, created.ID.String()))
	if s.metrics != nil {
		s.metrics.IncrementRequested(credType.String())
	}
	s.log(ctx, "verification requested",
		"verification_id", created.ID,
		"credential_id", credentialID,
		"requester", requester,
	)
	return created, nil
}

// ResolveVerification records the verifier's outcome. Concurrent resolutions
// of one request serialize on its entity lock; exactly one succeeds and the
// rest fail with RequestNotPending.
func (s *Service) ResolveVerification(ctx context.Context, verifier id.Principal, requestID id.RequestID, score payload.Opaque, verified bool) (_ *models.Request, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanResolveVerification,
		tracer.String(tracer.AttrRequestID, requestID.String()),
		tracer.Bool(tracer.AttrVerified, verified),
	)
	defer func() { span.End(err) }()

	if verifier.IsZero() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "verifier is required")
	}
	if err := validation.CheckRequiredBytes("encrypted_score", score, validation.MaxCiphertextBytes); err != nil {
		return nil, err
	}

	// Unauthorized callers learn nothing about which requests exist.
	if err := s.verifiers.RequireAuthorized(ctx, verifier); err != nil {
		return nil, err
	}
	// The credential ID never changes, so it can be read before taking locks.
	existing, err := s.store.FindByID(ctx, requestID)
	if err != nil {
		return nil, wrapRequestErr(err, "failed to load verification request")
	}
	locks := []string{requestID.LockKey(), existing.CredentialID.LockKey(), verifier.LockKey()}

	var (
		resolved *models.Request
		owner    id.Principal
	)
	err = s.tx.RunInTx(ctx, locks, func(txCtx context.Context) error {
		if err := s.verifiers.RequireAuthorized(txCtx, verifier); err != nil {
			return err
		}
		r, err := s.store.FindByIDForUpdate(txCtx, requestID)
		if err != nil {
			return wrapRequestErr(err, "failed to load verification request")
		}
		if err := r.Resolve(verifier, score, verified, requestcontext.Now(txCtx)); err != nil {
			return err
		}
		if err := s.store.UpdateResolution(txCtx, r); err != nil {
			return wrapRequestErr(err, "failed to resolve verification request")
		}
		c, err := s.credentials.Load(txCtx, r.CredentialID)
		if err != nil {
			return err
		}
		if err := s.outcomes.RecordOutcome(txCtx, c.Owner, verifier, verified); err != nil {
			return err
		}
		if err := s.events.Append(txCtx, eventmodels.New(eventmodels.TypeVerificationCompleted, r.ID.String(), verifier,
			eventmodels.AttrCredentialID, r.CredentialID.String(),
			eventmodels.AttrOutcome, strconv.FormatBool(verified),
			eventmodels.AttrScoreFingerprint, score.Fingerprint().Hex(),
			eventmodels.AttrResolution, string(models.ResolutionVerifier),
		)); err != nil {
			return err
		}
		resolved, owner = r, c.Owner
		return nil
	})
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeRequestNotPending) && s.metrics != nil {
			s.metrics.IncrementResolveConflict()
		}
		return nil, err
	}

	s.outcomes.ForgetOutcome(ctx, owner, verifier)
	if s.metrics != nil {
		s.metrics.IncrementResolved(string(resolved.Status), string(resolved.Resolution))
		s.metrics.ObserveTimeToResolve(resolved.ResolvedAt.Sub(resolved.CreatedAt))
	}
	s.log(ctx, "verification resolved",
		"verification_id", requestID,
		"verifier", verifier,
		"status", resolved.Status,
	)
	return resolved, nil
}

// ExpirePending rejects Pending requests created more than olderThan ago and
// returns how many it changed. It is idempotent and races safely with
// ResolveVerification: whichever takes the request lock first wins. Expiry
// does not touch reputation.
func (s *Service) ExpirePending(ctx context.Context, olderThan time.Duration) (expired int, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanExpirePending, tracer.Duration("older_than_ms", olderThan))
	defer func() {
		span.SetAttributes(tracer.Int64(tracer.AttrExpired, int64(expired)))
		span.End(err)
	}()

	if olderThan <= 0 {
		return 0, dErrors.New(dErrors.CodeValidation, "expiry age must be positive")
	}
	cutoff := requestcontext.Now(ctx).Add(-olderThan)
	ids, err := s.store.ListPendingBefore(ctx, cutoff, sweepBatchSize)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list pending requests")
	}

	for _, requestID := range ids {
		changed, err := s.expireOne(ctx, requestID)
		if err != nil {
			return expired, err
		}
		if changed {
			expired++
		}
	}
	if expired > 0 {
		s.log(ctx, "expired pending verification requests", "count", expired, "cutoff", cutoff)
	}
	return expired, nil
}

func (s *Service) expireOne(ctx context.Context, requestID id.RequestID) (bool, error) {
	changed := false
	err := s.tx.RunInTx(ctx, []string{requestID.LockKey()}, func(txCtx context.Context) error {
		r, err := s.store.FindByIDForUpdate(txCtx, requestID)
		if err != nil {
			return wrapRequestErr(err, "failed to load verification request")
		}
		if !r.IsPending() {
			return nil
		}
		if err := r.Expire(requestcontext.Now(txCtx)); err != nil {
			return err
		}
		if err := s.store.UpdateResolution(txCtx, r); err != nil {
			return wrapRequestErr(err, "failed to expire verification request")
		}
		// Expiry has no actor; the event is attributed to the requester whose request closed.
		if err := s.events.Append(txCtx, eventmodels.New(eventmodels.TypeVerificationCompleted, r.ID.String(), r.Requester,
			eventmodels.AttrCredentialID, r.CredentialID.String(),
			eventmodels.AttrOutcome, strconv.FormatBool(false),
			eventmodels.AttrResolution, string(models.ResolutionExpired),
		)); err != nil {
			return err
		}
		changed = true
		return nil
	})
	if err != nil {
		return false, err
	}
	if changed && s.metrics != nil {
		s.metrics.IncrementResolved(string(models.StatusRejected), string(models.ResolutionExpired))
	}
	return changed, nil
}

// GetVerificationRequestInfo is a pure read of one request.
func (s *Service) GetVerificationRequestInfo(ctx context.Context, requestID id.RequestID) (*models.Request, error) {
	r, err := s.store.FindByID(ctx, requestID)
	if err != nil {
		return nil, wrapRequestErr(err, "failed to load verification request")
	}
	return r, nil
}

// Load reads a request for a state transition elsewhere in the engine.
func (s *Service) Load(ctx context.Context, requestID id.RequestID) (*models.Request, error) {
	return s.GetVerificationRequestInfo(ctx, requestID)
}

func (s *Service) RequestCount(ctx context.Context) (int, error) {
	n, err := s.store.Count(ctx)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count verification requests")
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

func wrapRequestErr(err error, action string) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeRequestNotFound, "verification request not found")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.New(dErrors.CodeRequestNotPending, "verification request is not pending")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, action)
	}
}

// Package service issues ZK proof records for verified requests.
package service

import (
	"context"
	"errors"
	"log/slog"

	credentialmodels "privid/internal/credential/models"
	eventmodels "privid/internal/eventlog/models"
	"privid/internal/platform/tracer"
	verificationmodels "privid/internal/verification/models"
	zkproofmetrics "privid/internal/zkproof/metrics"
	"privid/internal/zkproof/models"
	id "privid/pkg/domain"
	dErrors "privid/pkg/domain-errors"
	"privid/pkg/payload"
	"privid/pkg/platform/sentinel"
	"privid/pkg/platform/tx"
	"privid/pkg/requestcontext"
)

// Store is the persistence contract for proof records.
type Store interface {
	Create(ctx context.Context, p *models.Proof) (id.ProofID, error)
	FindByID(ctx context.Context, proofID id.ProofID) (*models.Proof, error)
	Count(ctx context.Context) (int, error)
}

// Credentials loads a credential for a state transition.
type Credentials interface {
	Load(ctx context.Context, credentialID id.CredentialID) (*credentialmodels.Credential, error)
}

// Requests reads verification requests. Returns CodeRequestNotFound for unknown IDs.
type Requests interface {
	Load(ctx context.Context, requestID id.RequestID) (*verificationmodels.Request, error)
}

// EventAppender records state transitions in the event log.
type EventAppender interface {
	Append(ctx context.Context, e *eventmodels.Event) error
}

type Service struct {
	store       Store
	credentials Credentials
	requests    Requests
	events      EventAppender
	tx          tx.Transactor
	tracer      tracer.Tracer
	logger      *slog.Logger
	metrics     *zkproofmetrics.Metrics
}

func New(store Store, credentials Credentials, requests Requests, events EventAppender, opts ...Option) (*Service, error) {
	switch {
	case store == nil:
		return nil, errors.New("proof store is required")
	case credentials == nil:
		return nil, errors.New("credential loader is required")
	case requests == nil:
		return nil, errors.New("request loader is required")
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
	if cfg.tracer == nil {
		cfg.tracer = tracer.NewNoop()
	}
	return &Service{
		store:       store,
		credentials: credentials,
		requests:    requests,
		events:      events,
		tx:          cfg.tx,
		tracer:      cfg.tracer,
		logger:      cfg.logger,
		metrics:     cfg.metrics,
	}, nil
}

// GenerateZKProof issues a proof record for a Verified request.
//
// Checks, in order: the request exists and is Verified for this credential
// (RequestNotVerified), the prover is the request's requester or the
// credential's owner (NotRequester), and the credential is still usable now
// (CredentialUnusable). Proofs issued earlier stay valid after revocation.
func (s *Service) GenerateZKProof(ctx context.Context, prover id.Principal, credentialID id.CredentialID, requestID id.RequestID, proofType id.ProofType, hash payload.Opaque) (_ *models.Proof, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanGenerateProof,
		tracer.String(tracer.AttrCredentialID, credentialID.String()),
		tracer.String(tracer.AttrRequestID, requestID.String()),
		tracer.String(tracer.AttrProofType, proofType.String()),
	)
	defer func() { span.End(err) }()

	now := requestcontext.Now(ctx)
	proof, err := models.NewProof(prover, credentialID, requestID, proofType, hash, now)
	if err != nil {
		return nil, err
	}

	err = s.tx.RunInTx(ctx, []string{credentialID.LockKey(), requestID.LockKey()}, func(txCtx context.Context) error {
		r, err := s.requests.Load(txCtx, requestID)
		if err != nil {
			return err
		}
		if r.Status != verificationmodels.StatusVerified || r.CredentialID != credentialID {
			return dErrors.New(dErrors.CodeRequestNotVerified, "request is not verified for this credential")
		}
		c, err := s.credentials.Load(txCtx, credentialID)
		if err != nil {
			return err
		}
		if prover != r.Requester && prover != c.Owner {
			return dErrors.New(dErrors.CodeNotRequester, "only the requester or credential owner may generate a proof")
		}
		if err := c.CheckUsable(requestcontext.Now(txCtx)); err != nil {
			return err
		}
		if _, err := s.store.Create(txCtx, proof); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create proof")
		}
		return s.events.Append(txCtx, eventmodels.New(eventmodels.TypeZKProofGenerated, proof.ID.String(), prover,
			eventmodels.AttrCredentialID, credentialID.String(),
			eventmodels.AttrRequestID, requestID.String(),
			eventmodels.AttrProofType, proofType.String(),
		))
	})
	if err != nil {
		return nil, err
	}

	span.SetAttributes(tracer.String(tracer.AttrProofID, proof.ID.String()))
	if s.metrics != nil {
		s.metrics.IncrementIssued(proofType.String())
	}
	s.log(ctx, "zk proof generated",
		"proof_id", proof.ID,
		"credential_id", credentialID,
		"verification_id", requestID,
		"prover", prover,
	)
	return proof, nil
}

// GetZKProofInfo is a pure read of one proof record.
func (s *Service) GetZKProofInfo(ctx context.Context, proofID id.ProofID) (*models.Proof, error) {
	p, err := s.store.FindByID(ctx, proofID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeProofNotFound, "proof not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load proof")
	}
	return p, nil
}

func (s *Service) ProofCount(ctx context.Context) (int, error) {
	n, err := s.store.Count(ctx)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count proofs")
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

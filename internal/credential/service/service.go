// Package service owns credential records and their lifecycle.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	credentialmetrics "privid/internal/credential/metrics"
	"privid/internal/credential/models"
	eventmodels "privid/internal/eventlog/models"
	id "privid/pkg/domain"
	dErrors "privid/pkg/domain-errors"
	"privid/pkg/payload"
	"privid/pkg/platform/sentinel"
	"privid/pkg/platform/tx"
	"privid/pkg/requestcontext"
)

// Store is the persistence contract for credentials.
type Store interface {
	Create(ctx context.Context, c *models.Credential) (id.CredentialID, error)
	FindByID(ctx context.Context, credentialID id.CredentialID) (*models.Credential, error)
	FindByIDForUpdate(ctx context.Context, credentialID id.CredentialID) (*models.Credential, error)
	Update(ctx context.Context, c *models.Credential) error
	Count(ctx context.Context) (int, error)
	ListByOwner(ctx context.Context, owner id.Principal) ([]*models.Credential, error)
}

// EventAppender records state transitions in the event log.
type EventAppender interface {
	Append(ctx context.Context, e *eventmodels.Event) error
}

type Service struct {
	store   Store
	events  EventAppender
	tx      tx.Transactor
	logger  *slog.Logger
	metrics *credentialmetrics.Metrics
}

// New creates a credential service. Without WithTransactor it serializes on
// its own in-memory lock table.
func New(store Store, events EventAppender, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("credential store is required")
	}
	if events == nil {
		return nil, errors.New("event appender is required")
	}
	cfg := &serviceConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.tx == nil {
		cfg.tx = tx.NewSharded()
	}
	return &Service{
		store:   store,
		events:  events,
		tx:      cfg.tx,
		logger:  cfg.logger,
		metrics: cfg.metrics,
	}, nil
}

// CreateCredential registers a new credential for owner and returns it with its assigned ID.
func (s *Service) CreateCredential(ctx context.Context, owner id.Principal, credType id.CredentialType, hash payload.Opaque, expiry time.Time) (*models.Credential, error) {
	var created *models.Credential
	// A new record has no entity lock to take; the ID does not exist yet.
	err := s.tx.RunInTx(ctx, nil, func(txCtx context.Context) error {
		now := requestcontext.Now(txCtx)
		c, err := models.NewCredential(owner, credType, hash, expiry, now)
		if err != nil {
			return err
		}
		if _, err := s.store.Create(txCtx, c); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create credential")
		}
		if err := s.events.Append(txCtx, eventmodels.New(eventmodels.TypeCredentialCreated, c.ID.String(), owner,
			eventmodels.AttrCredentialType, c.Type.String(),
		)); err != nil {
			return err
		}
		created = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.IncrementCreated(created.Type.String())
	}
	s.log(ctx, "credential created",
		"credential_id", created.ID,
		"owner", created.Owner,
		"credential_type", created.Type,
	)
	return created, nil
}

// RevokeCredential tombstones the credential. Only the owner may revoke, once.
func (s *Service) RevokeCredential(ctx context.Context, caller id.Principal, credentialID id.CredentialID) (*models.Credential, error) {
	var revoked *models.Credential
	err := s.tx.RunInTx(ctx, []string{credentialID.LockKey()}, func(txCtx context.Context) error {
		c, err := s.Load(txCtx, credentialID)
		if err != nil {
			return err
		}
		if err := c.Revoke(caller, requestcontext.Now(txCtx)); err != nil {
			return err
		}
		if err := s.store.Update(txCtx, c); err != nil {
			return wrapCredentialErr(err, "failed to revoke credential")
		}
		if err := s.events.Append(txCtx, eventmodels.New(eventmodels.TypeCredentialRevoked, c.ID.String(), caller)); err != nil {
			return err
		}
		revoked = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.IncrementRevoked()
	}
	s.log(ctx, "credential revoked", "credential_id", credentialID, "owner", caller)
	return revoked, nil
}

// GetCredentialInfo is a pure read of one credential.
func (s *Service) GetCredentialInfo(ctx context.Context, credentialID id.CredentialID) (*models.Credential, error) {
	c, err := s.store.FindByID(ctx, credentialID)
	if err != nil {
		return nil, wrapCredentialErr(err, "failed to load credential")
	}
	return c, nil
}

// Load reads a credential for a state transition. Inside a Postgres
// transaction the row stays locked until commit.
func (s *Service) Load(ctx context.Context, credentialID id.CredentialID) (*models.Credential, error) {
	c, err := s.store.FindByIDForUpdate(ctx, credentialID)
	if err != nil {
		return nil, wrapCredentialErr(err, "failed to load credential")
	}
	return c, nil
}

// IsUsable reports exists && !revoked && now < expiry. Unknown IDs are not usable.
func (s *Service) IsUsable(ctx context.Context, credentialID id.CredentialID, now time.Time) (bool, error) {
	c, err := s.store.FindByID(ctx, credentialID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load credential")
	}
	return c.IsUsable(now), nil
}

func (s *Service) CredentialCount(ctx context.Context) (int, error) {
	n, err := s.store.Count(ctx)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count credentials")
	}
	return n, nil
}

func (s *Service) ListByOwner(ctx context.Context, owner id.Principal) ([]*models.Credential, error) {
	list, err := s.store.ListByOwner(ctx, owner)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list credentials")
	}
	return list, nil
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

func wrapCredentialErr(err error, action string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeCredentialNotFound, "credential not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, action)
}

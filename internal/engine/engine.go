// Package engine assembles the credential, verifier, reputation, verification,
// proof and event log components over one store set and one transactor.
package engine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	credentialmetrics "privid/internal/credential/metrics"
	credentialservice "privid/internal/credential/service"
	eventmetrics "privid/internal/eventlog/metrics"
	eventservice "privid/internal/eventlog/service"
	reputationmetrics "privid/internal/reputation/metrics"
	reputationservice "privid/internal/reputation/service"
	verificationmetrics "privid/internal/verification/metrics"
	verificationservice "privid/internal/verification/service"
	verifiermetrics "privid/internal/verifier/metrics"
	verifierservice "privid/internal/verifier/service"
	zkproofmetrics "privid/internal/zkproof/metrics"
	zkproofservice "privid/internal/zkproof/service"
	id "privid/pkg/domain"
	"privid/pkg/platform/tx"
)

// Engine is one independent instance of the verification system.
type Engine struct {
	Credentials   *credentialservice.Service
	Verifiers     *verifierservice.Service
	Reputation    *reputationservice.Ledger
	Verifications *verificationservice.Service
	Proofs        *zkproofservice.Service
	Events        *eventservice.Log

	stores Stores
}

// Stats are the supplemented counters exposed at /v1/stats.
type Stats struct {
	Credentials         int    `json:"credentials"`
	Requests            int    `json:"verification_requests"`
	Proofs              int    `json:"proofs"`
	AuthorizedVerifiers int    `json:"authorized_verifiers"`
	LastEventSeq        uint64 `json:"last_event_seq"`
}

// NewInMemory builds an engine over fresh in-memory stores and a sharded
// lock transactor.
func NewInMemory(admin id.Principal, opts ...Option) (*Engine, error) {
	return New(InMemoryStores(), tx.NewSharded(), admin, opts...)
}

// NewPostgres builds an engine over db. Schema migrations must already be applied.
func NewPostgres(db *sql.DB, admin id.Principal, opts ...Option) (*Engine, error) {
	if db == nil {
		return nil, errors.New("database is required")
	}
	return New(PostgresStores(db), tx.NewPostgres(db), admin, opts...)
}

// New wires the components. Every component shares transactor so that nested
// operations (resolution adjusting reputation, proofs loading requests) run
// inside a single boundary.
func New(stores Stores, transactor tx.Transactor, admin id.Principal, opts ...Option) (*Engine, error) {
	if !stores.complete() {
		return nil, errors.New("every store is required")
	}
	if transactor == nil {
		return nil, errors.New("transactor is required")
	}
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}

	var eventOpts []eventservice.Option
	credentialOpts := []credentialservice.Option{credentialservice.WithTransactor(transactor)}
	verifierOpts := []verifierservice.Option{verifierservice.WithTransactor(transactor)}
	var reputationOpts []reputationservice.Option
	verificationOpts := []verificationservice.Option{verificationservice.WithTransactor(transactor)}
	proofOpts := []zkproofservice.Option{zkproofservice.WithTransactor(transactor)}

	if cfg.logger != nil {
		eventOpts = append(eventOpts, eventservice.WithLogger(cfg.logger))
		credentialOpts = append(credentialOpts, credentialservice.WithLogger(cfg.logger))
		verifierOpts = append(verifierOpts, verifierservice.WithLogger(cfg.logger))
		reputationOpts = append(reputationOpts, reputationservice.WithLogger(cfg.logger))
		verificationOpts = append(verificationOpts, verificationservice.WithLogger(cfg.logger))
		proofOpts = append(proofOpts, zkproofservice.WithLogger(cfg.logger))
	}
	if cfg.metrics {
		eventOpts = append(eventOpts, eventservice.WithMetrics(eventmetrics.New()))
		credentialOpts = append(credentialOpts, credentialservice.WithMetrics(credentialmetrics.New()))
		verifierOpts = append(verifierOpts, verifierservice.WithMetrics(verifiermetrics.New()))
		reputationOpts = append(reputationOpts, reputationservice.WithMetrics(reputationmetrics.New()))
		verificationOpts = append(verificationOpts, verificationservice.WithMetrics(verificationmetrics.New()))
		proofOpts = append(proofOpts, zkproofservice.WithMetrics(zkproofmetrics.New()))
	}
	if cfg.tracer != nil {
		verificationOpts = append(verificationOpts, verificationservice.WithTracer(cfg.tracer))
		proofOpts = append(proofOpts, zkproofservice.WithTracer(cfg.tracer))
	}
	if cfg.policy != nil {
		reputationOpts = append(reputationOpts, reputationservice.WithPolicy(*cfg.policy))
	}
	if cfg.cache != nil {
		reputationOpts = append(reputationOpts, reputationservice.WithCache(cfg.cache))
	}
	if cfg.checker != nil {
		verificationOpts = append(verificationOpts, verificationservice.WithProofChecker(cfg.checker))
	}

	events := eventservice.New(stores.Events, eventOpts...)

	credentials, err := credentialservice.New(stores.Credentials, events, credentialOpts...)
	if err != nil {
		return nil, fmt.Errorf("credential service: %w", err)
	}
	ledger, err := reputationservice.New(stores.Reputation, events, reputationOpts...)
	if err != nil {
		return nil, fmt.Errorf("reputation ledger: %w", err)
	}
	verifierOpts = append(verifierOpts, verifierservice.WithReputation(ledger))
	verifiers, err := verifierservice.New(stores.Verifiers, events, admin, verifierOpts...)
	if err != nil {
		return nil, fmt.Errorf("verifier registry: %w", err)
	}
	verifications, err := verificationservice.New(stores.Requests, credentials, verifiers, ledger, events, verificationOpts...)
	if err != nil {
		return nil, fmt.Errorf("verification processor: %w", err)
	}
	proofs, err := zkproofservice.New(stores.Proofs, credentials, verifications, events, proofOpts...)
	if err != nil {
		return nil, fmt.Errorf("proof issuer: %w", err)
	}

	return &Engine{
		Credentials:   credentials,
		Verifiers:     verifiers,
		Reputation:    ledger,
		Verifications: verifications,
		Proofs:        proofs,
		Events:        events,
		stores:        stores,
	}, nil
}

// EventStore exposes the cursor-aware log for the relay worker.
func (e *Engine) EventStore() EventStore {
	return e.stores.Events
}

// Stats gathers the entity counters. Counts are read independently and may
// be mutually inconsistent under concurrent writes.
func (e *Engine) Stats(ctx context.Context) (*Stats, error) {
	var (
		st  Stats
		err error
	)
	if st.Credentials, err = e.Credentials.CredentialCount(ctx); err != nil {
		return nil, err
	}
	if st.Requests, err = e.Verifications.RequestCount(ctx); err != nil {
		return nil, err
	}
	if st.Proofs, err = e.Proofs.ProofCount(ctx); err != nil {
		return nil, err
	}
	if st.AuthorizedVerifiers, err = e.Verifiers.AuthorizedCount(ctx); err != nil {
		return nil, err
	}
	if st.LastEventSeq, err = e.Events.LastSeq(ctx); err != nil {
		return nil, err
	}
	return &st, nil
}

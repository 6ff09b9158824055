package engine

import (
	"context"
	"database/sql"
	"time"

	credentialservice "privid/internal/credential/service"
	credentialstore "privid/internal/credential/store"
	eventservice "privid/internal/eventlog/service"
	eventstore "privid/internal/eventlog/store"
	reputationservice "privid/internal/reputation/service"
	reputationstore "privid/internal/reputation/store"
	verificationservice "privid/internal/verification/service"
	verificationstore "privid/internal/verification/store"
	verifierservice "privid/internal/verifier/service"
	verifierstore "privid/internal/verifier/store"
	zkproofservice "privid/internal/zkproof/service"
	zkproofstore "privid/internal/zkproof/store"
)

// EventStore is the event log plus the per-sink cursors the relay keeps.
type EventStore interface {
	eventservice.Store
	Cursor(ctx context.Context, sink string) (uint64, error)
	SaveCursor(ctx context.Context, sink string, seq uint64, now time.Time) error
}

// Stores is the explicit set of persistence objects one engine runs on.
// Two engines built from two Stores values share nothing.
type Stores struct {
	Credentials credentialservice.Store
	Verifiers   verifierservice.Store
	Reputation  reputationservice.Store
	Requests    verificationservice.Store
	Proofs      zkproofservice.Store
	Events      EventStore
}

// InMemoryStores returns a fresh, empty in-memory store set.
func InMemoryStores() Stores {
	return Stores{
		Credentials: credentialstore.NewInMemory(),
		Verifiers:   verifierstore.NewInMemory(),
		Reputation:  reputationstore.NewInMemory(),
		Requests:    verificationstore.NewInMemory(),
		Proofs:      zkproofstore.NewInMemory(),
		Events:      eventstore.NewInMemory(),
	}
}

// PostgresStores returns a store set backed by db. Stores pick up the
// transaction from the context, so they must run under a tx.Postgres transactor.
func PostgresStores(db *sql.DB) Stores {
	return Stores{
		Credentials: credentialstore.NewPostgres(db),
		Verifiers:   verifierstore.NewPostgres(db),
		Reputation:  reputationstore.NewPostgres(db),
		Requests:    verificationstore.NewPostgres(db),
		Proofs:      zkproofstore.NewPostgres(db),
		Events:      eventstore.NewPostgres(db),
	}
}

func (s Stores) complete() bool {
	return s.Credentials != nil && s.Verifiers != nil && s.Reputation != nil &&
		s.Requests != nil && s.Proofs != nil && s.Events != nil
}

package tx

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	dErrors "privid/pkg/domain-errors"
)

var txRetries = promauto.NewCounter(prometheus.CounterOpts{
	Name: "privid_tx_retries_total",
	Help: "Total number of transactions retried after a serialization failure or deadlock",
})

const (
	// SQLSTATE codes that signal a transaction can be safely replayed.
	serializationFailure = "40001"
	deadlockDetected     = "40P01"

	defaultMaxRetries = 5
)

// Postgres runs each transaction in a database transaction. Entity keys are
// not used: Postgres stores take row locks with SELECT ... FOR UPDATE.
// Transient serialization failures and deadlocks are replayed with bounded
// exponential backoff.
type Postgres struct {
	db         *sql.DB
	timeout    time.Duration
	maxRetries uint64
}

// NewPostgres creates a transactor over db.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db, timeout: DefaultTimeout, maxRetries: defaultMaxRetries}
}

func (t *Postgres) RunInTx(ctx context.Context, _ []string, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	if _, ok := From(ctx); ok {
		return fn(ctx)
	}

	ctx, cancel := withDefaultTimeout(ctx, t.timeout)
	defer cancel()

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 10 * time.Millisecond
	policy.MaxInterval = 250 * time.Millisecond

	attempt := 0
	return backoff.Retry(func() error {
		if attempt > 0 {
			txRetries.Inc()
		}
		attempt++
		err := t.runOnce(ctx, fn)
		if err == nil || !IsRetryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}, backoff.WithContext(backoff.WithMaxRetries(policy, t.maxRetries), ctx))
}

func (t *Postgres) runOnce(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback() //nolint:errcheck // rollback after commit is no-op; error already captured
	}()

	if err := fn(WithTx(ctx, tx)); err != nil {
		return err
	}
	return tx.Commit()
}

// IsRetryable reports whether err is a Postgres serialization failure or deadlock.
func IsRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == serializationFailure || pgErr.Code == deadlockDetected
	}
	return false
}

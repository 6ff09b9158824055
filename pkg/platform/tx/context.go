// Package tx carries transaction boundaries through context and provides the
// two transactors the engine runs on: a sharded in-memory one and a Postgres one.
package tx

import (
	"context"
	"database/sql"
)

type txKey struct{}

type lockedKey struct{}

// WithTx attaches a database transaction to the context.
func WithTx(ctx context.Context, tx *sql.Tx) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// From returns the database transaction carried by ctx, if any.
func From(ctx context.Context) (*sql.Tx, bool) {
	tx, ok := ctx.Value(txKey{}).(*sql.Tx)
	return tx, ok && tx != nil
}

// InTx reports whether ctx is already inside a transactor boundary of either kind.
func InTx(ctx context.Context) bool {
	if _, ok := From(ctx); ok {
		return true
	}
	held, _ := ctx.Value(lockedKey{}).(bool)
	return held
}

func withLocksHeld(ctx context.Context) context.Context {
	return context.WithValue(ctx, lockedKey{}, true)
}

// Executor is the subset of *sql.DB and *sql.Tx used by Postgres stores.
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Exec returns the transaction carried by ctx, falling back to db.
func Exec(ctx context.Context, db *sql.DB) Executor {
	if tx, ok := From(ctx); ok {
		return tx
	}
	return db
}

package tx

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	dErrors "privid/pkg/domain-errors"
	platformsync "privid/pkg/platform/sync"
)

// Shard contention metrics for monitoring lock behavior
var (
	shardLockWaitDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "privid_shard_lock_wait_seconds",
		Help:    "Time spent waiting to acquire entity shard locks",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	})
	shardLockAcquisitions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "privid_shard_lock_acquisitions_total",
		Help: "Total number of entity shard lock acquisitions",
	})
)

// DefaultTimeout is the maximum duration for a transaction when the caller
// has not set a deadline.
const DefaultTimeout = 5 * time.Second

// Transactor runs fn as one serializable unit with respect to the named entity keys.
// Nested calls inside fn run on the outer boundary.
type Transactor interface {
	RunInTx(ctx context.Context, keys []string, fn func(ctx context.Context) error) error
}

// Sharded serializes in-memory mutations per entity key.
type Sharded struct {
	mu      *platformsync.ShardedMutex
	timeout time.Duration
}

// NewSharded creates an in-memory transactor with its own lock table.
func NewSharded() *Sharded {
	return &Sharded{mu: platformsync.NewShardedMutex(), timeout: DefaultTimeout}
}

// WithTimeout overrides the default transaction timeout.
func (t *Sharded) WithTimeout(d time.Duration) *Sharded {
	t.timeout = d
	return t
}

func (t *Sharded) RunInTx(ctx context.Context, keys []string, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	if InTx(ctx) {
		return fn(ctx)
	}

	ctx, cancel := withDefaultTimeout(ctx, t.timeout)
	defer cancel()

	// Record lock acquisition timing for contention monitoring
	lockStart := time.Now()
	unlock := t.mu.LockMany(keys...)
	shardLockWaitDuration.Observe(time.Since(lockStart).Seconds())
	shardLockAcquisitions.Inc()
	defer unlock()

	// Check again after acquiring lock
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	return fn(withLocksHeld(ctx))
}

func withDefaultTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

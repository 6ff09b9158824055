// Package sweeper periodically rejects verification requests that stayed
// Pending longer than a configured age.
package sweeper

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Expirer is the maintenance operation the sweeper drives.
type Expirer interface {
	ExpirePending(ctx context.Context, olderThan time.Duration) (int, error)
}

type Worker struct {
	expirer  Expirer
	ttl      time.Duration
	interval time.Duration
	logger   *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type Option func(*Worker)

// WithInterval sets the time between sweeps.
func WithInterval(interval time.Duration) Option {
	return func(w *Worker) {
		if interval > 0 {
			w.interval = interval
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(w *Worker) {
		w.logger = logger
	}
}

// New creates a sweeper expiring requests older than ttl.
func New(expirer Expirer, ttl time.Duration, opts ...Option) *Worker {
	ctx, cancel := context.WithCancel(context.Background())
	w := &Worker{
		expirer:  expirer,
		ttl:      ttl,
		interval: time.Minute,
		ctx:      ctx,
		cancel:   cancel,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *Worker) Start() {
	w.wg.Add(1)
	go w.run()
}

func (w *Worker) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			w.Sweep(w.ctx)
		}
	}
}

// Sweep runs one expiry pass and returns the number of requests expired.
func (w *Worker) Sweep(ctx context.Context) int {
	n, err := w.expirer.ExpirePending(ctx, w.ttl)
	if err != nil && w.logger != nil {
		w.logger.ErrorContext(ctx, "pending request sweep failed", "error", err, "expired", n)
	}
	return n
}

// Stop cancels the loop and waits for an in-flight sweep to finish.
func (w *Worker) Stop() {
	w.cancel()
	w.wg.Wait()
}

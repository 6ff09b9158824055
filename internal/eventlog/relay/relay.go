// Package relay forwards the event log to external sinks. Each sink keeps its
// own cursor, so delivery is at-least-once per sink and a slow sink never
// holds back the others.
//
// A cursor only moves across contiguous seqs. When a seq is missing, later
// events wait until it shows up or has stayed missing for the gap grace
// period, after which it is treated as a rolled-back append and skipped.
package relay

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"privid/internal/eventlog/metrics"
	"privid/internal/eventlog/models"
	"privid/pkg/platform/circuit"
)

// Store is the cursor-aware view of the event log the relay reads from.
type Store interface {
	List(ctx context.Context, after uint64, limit int) ([]models.Event, error)
	LastSeq(ctx context.Context) (uint64, error)
	Cursor(ctx context.Context, sink string) (uint64, error)
	SaveCursor(ctx context.Context, sink string, seq uint64, now time.Time) error
}

// Sink delivers a batch of events. A batch is either fully delivered or the
// call returns an error and the whole batch is retried on the next poll.
type Sink interface {
	Name() string
	Publish(ctx context.Context, events []models.Event) error
}

// Worker polls the event log and publishes new events to every sink.
type Worker struct {
	store        Store
	sinks        []Sink
	batchSize    int
	pollInterval time.Duration
	metrics      *metrics.Metrics
	logger       *slog.Logger
	breakerOpts  []circuit.Option
	breakers     map[string]*circuit.Breaker
	gapGrace     time.Duration
	now          func() time.Time

	gapMu sync.Mutex
	gaps  map[string]gap

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// gap is the first missing seq a sink is waiting on.
type gap struct {
	seq   uint64
	since time.Time
}

// DefaultGapGrace is how long a missing seq holds back later events.
const DefaultGapGrace = 5 * time.Second

// Option configures the Worker.
type Option func(*Worker)

// WithBatchSize sets the maximum number of events fetched per poll.
func WithBatchSize(size int) Option {
	return func(w *Worker) {
		if size > 0 {
			w.batchSize = size
		}
	}
}

// WithPollInterval sets the interval between polls.
func WithPollInterval(interval time.Duration) Option {
	return func(w *Worker) {
		if interval > 0 {
			w.pollInterval = interval
		}
	}
}

// WithCircuit suspends a sink after threshold consecutive failed batches and
// probes it again once cooldown has passed.
func WithCircuit(threshold int, cooldown time.Duration, opts ...circuit.Option) Option {
	return func(w *Worker) {
		w.breakerOpts = append(w.breakerOpts, circuit.WithFailureThreshold(threshold), circuit.WithCooldown(cooldown))
		w.breakerOpts = append(w.breakerOpts, opts...)
	}
}

// WithGapGrace sets how long a missing seq may hold back later events.
func WithGapGrace(d time.Duration) Option {
	return func(w *Worker) {
		if d > 0 {
			w.gapGrace = d
		}
	}
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(w *Worker) {
		if now != nil {
			w.now = now
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(w *Worker) {
		w.metrics = m
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(w *Worker) {
		w.logger = logger
	}
}

// New creates a relay worker for the given sinks.
func New(store Store, sinks []Sink, opts ...Option) *Worker {
	ctx, cancel := context.WithCancel(context.Background())
	w := &Worker{
		store:        store,
		sinks:        sinks,
		batchSize:    100,
		pollInterval: 2 * time.Second,
		gapGrace:     DefaultGapGrace,
		now:          time.Now,
		gaps:         make(map[string]gap),
		ctx:          ctx,
		cancel:       cancel,
	}
	for _, opt := range opts {
		opt(w)
	}
	w.breakers = make(map[string]*circuit.Breaker, len(sinks))
	for _, sink := range sinks {
		w.breakers[sink.Name()] = circuit.New(sink.Name(), w.breakerOpts...)
	}
	return w
}

// Start begins the polling loop in a background goroutine.
func (w *Worker) Start() {
	w.wg.Add(1)
	go w.run()
}

func (w *Worker) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			w.drain()
			return
		case <-ticker.C:
			if err := w.Poll(w.ctx); err != nil && w.logger != nil {
				w.logger.Error("event relay poll failed", "error", err)
			}
		}
	}
}

// Poll relays one batch to every sink concurrently. Sinks fail independently;
// the first error is returned after all sinks have been attempted.
func (w *Worker) Poll(ctx context.Context) error {
	var g errgroup.Group
	for _, sink := range w.sinks {
		g.Go(func() error {
			_, err := w.relay(ctx, sink)
			return err
		})
	}
	return g.Wait()
}

// relay publishes the next batch to sink and advances its cursor.
// It returns the number of events delivered. Suspended sinks are skipped.
func (w *Worker) relay(ctx context.Context, sink Sink) (int, error) {
	name := sink.Name()
	breaker := w.breakers[name]
	if !breaker.Allow() {
		return 0, nil
	}
	cursor, err := w.store.Cursor(ctx, name)
	if err != nil {
		w.fail(name)
		return 0, err
	}
	events, err := w.store.List(ctx, cursor, w.batchSize)
	if err != nil {
		w.fail(name)
		return 0, err
	}
	events = w.contiguous(ctx, name, cursor, events)
	if len(events) == 0 {
		w.updateLag(ctx, name, cursor)
		return 0, nil
	}
	if w.metrics != nil {
		w.metrics.ObserveBatchSize(len(events))
	}

	if err := sink.Publish(ctx, events); err != nil {
		w.fail(name)
		if w.logger != nil {
			w.logger.ErrorContext(ctx, "failed to publish events",
				"sink", name,
				"from_seq", events[0].Seq,
				"count", len(events),
				"error", err,
			)
		}
		if breaker.RecordFailure().Opened {
			w.suspended(ctx, name, true)
		}
		return 0, err
	}
	if breaker.RecordSuccess().Closed {
		w.suspended(ctx, name, false)
	}

	last := events[len(events)-1].Seq
	if err := w.store.SaveCursor(ctx, name, last, w.now()); err != nil {
		// Delivered but not recorded: the batch is sent again next poll.
		w.fail(name)
		return 0, err
	}
	if w.metrics != nil {
		w.metrics.AddPublished(name, len(events))
	}
	w.updateLag(ctx, name, last)
	return len(events), nil
}

// contiguous returns the leading events that follow cursor without a hole.
// A hole older than the gap grace period is skipped.
func (w *Worker) contiguous(ctx context.Context, sink string, cursor uint64, events []models.Event) []models.Event {
	w.gapMu.Lock()
	defer w.gapMu.Unlock()

	next := cursor + 1
	for i := range events {
		seq := events[i].Seq
		if seq == next {
			next++
			continue
		}
		g, waiting := w.gaps[sink]
		if !waiting || g.seq != next {
			w.gaps[sink] = gap{seq: next, since: w.now()}
			return events[:i]
		}
		if w.now().Sub(g.since) < w.gapGrace {
			return events[:i]
		}
		if w.logger != nil {
			w.logger.WarnContext(ctx, "skipping missing event seqs",
				"sink", sink,
				"from_seq", next,
				"to_seq", seq-1,
			)
		}
		delete(w.gaps, sink)
		next = seq + 1
	}
	delete(w.gaps, sink)
	return events
}

func (w *Worker) updateLag(ctx context.Context, sink string, cursor uint64) {
	if w.metrics == nil {
		return
	}
	head, err := w.store.LastSeq(ctx)
	if err != nil || head < cursor {
		return
	}
	w.metrics.SetLag(sink, head-cursor)
}

// Suspended reports whether sink's circuit is currently open.
func (w *Worker) Suspended(sink string) bool {
	b, ok := w.breakers[sink]
	return ok && b.State() == circuit.StateOpen
}

func (w *Worker) suspended(ctx context.Context, sink string, open bool) {
	if w.metrics != nil {
		w.metrics.SetSinkSuspended(sink, open)
	}
	if w.logger == nil {
		return
	}
	if open {
		w.logger.WarnContext(ctx, "event sink suspended", "sink", sink)
	} else {
		w.logger.InfoContext(ctx, "event sink resumed", "sink", sink)
	}
}

func (w *Worker) fail(sink string) {
	if w.metrics != nil {
		w.metrics.IncRelayFailure(sink)
	}
}

// drain relays what remains during shutdown, bounded by a short timeout.
func (w *Worker) drain() {
	if w.logger != nil {
		w.logger.Info("draining event relay")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for _, sink := range w.sinks {
		for {
			n, err := w.relay(ctx, sink)
			if err != nil {
				if w.logger != nil {
					w.logger.Error("event relay drain stopped", "sink", sink.Name(), "error", err)
				}
				break
			}
			if n == 0 {
				break
			}
		}
	}
}

// Stop cancels polling, drains, and waits for the loop to exit.
func (w *Worker) Stop(ctx context.Context) error {
	w.cancel()

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

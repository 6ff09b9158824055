package sweeper

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type countingExpirer struct {
	calls atomic.Int32
	ttl   atomic.Int64
	err   error
}

func (e *countingExpirer) ExpirePending(_ context.Context, olderThan time.Duration) (int, error) {
	e.calls.Add(1)
	e.ttl.Store(int64(olderThan))
	return 1, e.err
}

func TestSweepPassesTTL(t *testing.T) {
	e := &countingExpirer{}
	w := New(e, time.Hour)

	assert.Equal(t, 1, w.Sweep(context.Background()))
	assert.Equal(t, int64(time.Hour), e.ttl.Load())
}

func TestSweepSurvivesErrors(t *testing.T) {
	e := &countingExpirer{err: errors.New("db down")}
	w := New(e, time.Hour)
	assert.Equal(t, 1, w.Sweep(context.Background()))
}

func TestWorkerRunsUntilStopped(t *testing.T) {
	e := &countingExpirer{}
	w := New(e, time.Hour, WithInterval(10*time.Millisecond))
	w.Start()

	assert.Eventually(t, func() bool { return e.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	w.Stop()

	after := e.calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, after, e.calls.Load())
}

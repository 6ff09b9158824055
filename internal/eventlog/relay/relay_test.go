package relay

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"privid/internal/eventlog/models"
	"privid/internal/eventlog/store"
	id "privid/pkg/domain"
	"privid/pkg/platform/circuit"
)

var owner = id.MustPrincipal("0x00000000000000000000000000000000000000b0")

type recordingSink struct {
	name string

	mu        sync.Mutex
	delivered []uint64
	failNext  int
}

func (s *recordingSink) Name() string { return s.name }

func (s *recordingSink) Publish(_ context.Context, events []models.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failNext > 0 {
		s.failNext--
		return errors.New("broker unavailable")
	}
	for _, e := range events {
		s.delivered = append(s.delivered, e.Seq)
	}
	return nil
}

func (s *recordingSink) seqs() []uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]uint64(nil), s.delivered...)
}

func appendN(t *testing.T, s *store.InMemory, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		e := models.New(models.TypeCredentialCreated, "1", owner)
		e.OccurredAt = time.Now()
		require.NoError(t, s.Append(context.Background(), e))
	}
}

func TestPoll_DeliversInBatchesAndAdvancesCursor(t *testing.T) {
	s := store.NewInMemory()
	appendN(t, s, 5)
	sink := &recordingSink{name: "kafka"}
	w := New(s, []Sink{sink}, WithBatchSize(2))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, w.Poll(ctx))
	}
	assert.Equal(t, []uint64{1, 2, 3, 4, 5}, sink.seqs())

	cursor, err := s.Cursor(ctx, "kafka")
	require.NoError(t, err)
	assert.Equal(t, uint64(5), cursor)

	require.NoError(t, w.Poll(ctx))
	assert.Len(t, sink.seqs(), 5, "nothing new to deliver")
}

func TestPoll_FailedBatchIsRetried(t *testing.T) {
	s := store.NewInMemory()
	appendN(t, s, 3)
	sink := &recordingSink{name: "rabbitmq", failNext: 1}
	w := New(s, []Sink{sink})
	ctx := context.Background()

	require.Error(t, w.Poll(ctx))
	cursor, err := s.Cursor(ctx, "rabbitmq")
	require.NoError(t, err)
	assert.Zero(t, cursor)

	require.NoError(t, w.Poll(ctx))
	assert.Equal(t, []uint64{1, 2, 3}, sink.seqs())
}

func TestPoll_SinksProgressIndependently(t *testing.T) {
	s := store.NewInMemory()
	appendN(t, s, 2)
	healthy := &recordingSink{name: "kafka"}
	broken := &recordingSink{name: "rabbitmq", failNext: 10}
	w := New(s, []Sink{healthy, broken})
	ctx := context.Background()

	require.Error(t, w.Poll(ctx))
	assert.Equal(t, []uint64{1, 2}, healthy.seqs())
	assert.Empty(t, broken.seqs())
}

func TestStop_DrainsPendingEvents(t *testing.T) {
	s := store.NewInMemory()
	appendN(t, s, 4)
	sink := &recordingSink{name: "kafka"}
	w := New(s, []Sink{sink}, WithPollInterval(time.Hour), WithBatchSize(3))

	w.Start()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, w.Stop(ctx))

	assert.Equal(t, []uint64{1, 2, 3, 4}, sink.seqs())
}

func TestPoll_SuspendsFailingSinkUntilCooldown(t *testing.T) {
	s := store.NewInMemory()
	appendN(t, s, 2)
	sink := &recordingSink{name: "kafka", failNext: 2}
	now := time.Unix(0, 0)
	clock := func() time.Time { return now }
	w := New(s, []Sink{sink}, WithCircuit(2, time.Minute, circuit.WithClock(clock)))
	ctx := context.Background()

	require.Error(t, w.Poll(ctx))
	require.Error(t, w.Poll(ctx))
	assert.True(t, w.Suspended("kafka"))

	require.NoError(t, w.Poll(ctx), "suspended sinks are skipped")
	assert.Empty(t, sink.seqs())

	now = now.Add(time.Minute)
	require.NoError(t, w.Poll(ctx))
	assert.Equal(t, []uint64{1, 2}, sink.seqs())
	assert.False(t, w.Suspended("kafka"))
}

// reorderedStore exposes only committed events, so a seq can become visible
// after a higher one, as BIGSERIAL allocation allows.
type reorderedStore struct {
	mu        sync.Mutex
	committed map[uint64]models.Event
	cursors   map[string]uint64
}

func newReorderedStore() *reorderedStore {
	return &reorderedStore{committed: make(map[uint64]models.Event), cursors: make(map[string]uint64)}
}

func (s *reorderedStore) commit(seq uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.committed[seq] = models.Event{Seq: seq, Type: models.TypeCredentialCreated, EntityID: "1", Principal: owner}
}

func (s *reorderedStore) List(_ context.Context, after uint64, limit int) ([]models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Event
	for seq := after + 1; len(out) < limit && seq <= s.maxSeq(); seq++ {
		if e, ok := s.committed[seq]; ok {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *reorderedStore) maxSeq() uint64 {
	var m uint64
	for seq := range s.committed {
		m = max(m, seq)
	}
	return m
}

func (s *reorderedStore) LastSeq(context.Context) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.maxSeq(), nil
}

func (s *reorderedStore) Cursor(_ context.Context, sink string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursors[sink], nil
}

func (s *reorderedStore) SaveCursor(_ context.Context, sink string, seq uint64, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursors[sink] = max(s.cursors[sink], seq)
	return nil
}

func TestPoll_WaitsForLateCommittedSeq(t *testing.T) {
	s := newReorderedStore()
	s.commit(2)
	sink := &recordingSink{name: "kafka"}
	w := New(s, []Sink{sink})
	ctx := context.Background()

	require.NoError(t, w.Poll(ctx))
	assert.Empty(t, sink.seqs(), "seq 2 waits for seq 1")
	cursor, err := s.Cursor(ctx, "kafka")
	require.NoError(t, err)
	assert.Zero(t, cursor)

	s.commit(1)
	require.NoError(t, w.Poll(ctx))
	require.NoError(t, w.Poll(ctx))
	assert.Equal(t, []uint64{1, 2}, sink.seqs())
}

func TestPoll_SkipsRolledBackSeqAfterGrace(t *testing.T) {
	s := newReorderedStore()
	s.commit(1)
	s.commit(3)
	sink := &recordingSink{name: "kafka"}
	now := time.Unix(0, 0)
	w := New(s, []Sink{sink}, WithGapGrace(time.Minute), WithClock(func() time.Time { return now }))
	ctx := context.Background()

	require.NoError(t, w.Poll(ctx))
	assert.Equal(t, []uint64{1}, sink.seqs())

	now = now.Add(30 * time.Second)
	require.NoError(t, w.Poll(ctx))
	assert.Equal(t, []uint64{1}, sink.seqs(), "seq 2 may still commit")

	now = now.Add(30 * time.Second)
	require.NoError(t, w.Poll(ctx))
	assert.Equal(t, []uint64{1, 3}, sink.seqs())

	cursor, err := s.Cursor(ctx, "kafka")
	require.NoError(t, err)
	assert.Equal(t, uint64(3), cursor)
}

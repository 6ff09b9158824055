package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"privid/internal/eventlog/models"
)

// InMemory keeps the event log and relay cursors in process memory.
type InMemory struct {
	mu      sync.RWMutex
	events  []models.Event
	cursors map[string]uint64
}

// NewInMemory creates an empty in-memory event log.
func NewInMemory() *InMemory {
	return &InMemory{cursors: make(map[string]uint64)}
}

// Append assigns the next sequence number and stores a copy of e.
func (s *InMemory) Append(_ context.Context, e *models.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e.Seq = uint64(len(s.events)) + 1
	s.events = append(s.events, copyEvent(e))
	return nil
}

// List returns up to limit events with seq greater than after, oldest first.
func (s *InMemory) List(_ context.Context, after uint64, limit int) ([]models.Event, error) {
	if limit <= 0 {
		return nil, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	// seq n lives at index n-1
	start := sort.Search(len(s.events), func(i int) bool { return s.events[i].Seq > after })
	end := min(start+limit, len(s.events))
	out := make([]models.Event, 0, end-start)
	for _, e := range s.events[start:end] {
		out = append(out, copyEvent(&e))
	}
	return out, nil
}

// LastSeq returns the highest assigned sequence number.
func (s *InMemory) LastSeq(_ context.Context) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return uint64(len(s.events)), nil
}

// Cursor returns the last relayed seq for sink, zero when the sink is new.
func (s *InMemory) Cursor(_ context.Context, sink string) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cursors[sink], nil
}

// SaveCursor records seq as relayed for sink. Cursors never move backwards.
func (s *InMemory) SaveCursor(_ context.Context, sink string, seq uint64, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq > s.cursors[sink] {
		s.cursors[sink] = seq
	}
	return nil
}

func copyEvent(e *models.Event) models.Event {
	cp := *e
	if e.Attributes != nil {
		cp.Attributes = make(map[string]string, len(e.Attributes))
		for k, v := range e.Attributes {
			cp.Attributes[k] = v
		}
	}
	return cp
}

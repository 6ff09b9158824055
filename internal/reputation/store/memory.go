package store

import (
	"context"
	"sync"
	"time"

	"privid/internal/reputation/models"
	id "privid/pkg/domain"
)

type recordKey struct {
	role      models.Role
	principal id.Principal
}

// InMemory keeps reputation scores in process memory. Each adjustment is a
// single read-modify-write under the store mutex.
type InMemory struct {
	mu      sync.RWMutex
	records map[recordKey]models.Record
}

// NewInMemory creates an empty in-memory reputation store.
func NewInMemory() *InMemory {
	return &InMemory{records: make(map[recordKey]models.Record)}
}

// Adjust applies delta to the stored score, starting from zero for unknown principals.
func (s *InMemory) Adjust(_ context.Context, role models.Role, p id.Principal, delta int, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := recordKey{role: role, principal: p}
	rec := s.records[k]
	rec.Role, rec.Principal = role, p
	rec.Score = models.Apply(rec.Score, delta)
	rec.UpdatedAt = now
	s.records[k] = rec
	return rec.Score, nil
}

// Get returns the score, zero for unknown principals.
func (s *InMemory) Get(_ context.Context, role models.Role, p id.Principal) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.records[recordKey{role: role, principal: p}].Score, nil
}

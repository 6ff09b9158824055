package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"privid/internal/verification/models"
	id "privid/pkg/domain"
	"privid/pkg/platform/sentinel"
)

// InMemory stores verification requests in process memory, exchanging copies
// with callers.
type InMemory struct {
	mu       sync.RWMutex
	lastID   id.RequestID
	requests map[id.RequestID]*models.Request
}

// NewInMemory creates an empty in-memory request store.
func NewInMemory() *InMemory {
	return &InMemory{requests: make(map[id.RequestID]*models.Request)}
}

// Create assigns the next ID. IDs strictly increase and are never reused.
func (s *InMemory) Create(_ context.Context, r *models.Request) (id.RequestID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastID++
	r.ID = s.lastID
	s.requests[r.ID] = r.Clone()
	return r.ID, nil
}

func (s *InMemory) FindByID(_ context.Context, requestID id.RequestID) (*models.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.requests[requestID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return r.Clone(), nil
}

// FindByIDForUpdate is FindByID; the in-memory transactor already holds the entity lock.
func (s *InMemory) FindByIDForUpdate(ctx context.Context, requestID id.RequestID) (*models.Request, error) {
	return s.FindByID(ctx, requestID)
}

// UpdateResolution stores a terminal state. It returns sentinel.ErrConflict
// when the stored request has already left Pending.
func (s *InMemory) UpdateResolution(_ context.Context, r *models.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.requests[r.ID]
	if !ok {
		return fmt.Errorf("update request %s: %w", r.ID, sentinel.ErrNotFound)
	}
	if !stored.IsPending() {
		return fmt.Errorf("update request %s: %w", r.ID, sentinel.ErrConflict)
	}
	s.requests[r.ID] = r.Clone()
	return nil
}

func (s *InMemory) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.requests), nil
}

// ListPendingBefore returns up to limit Pending request IDs created before
// cutoff, oldest first.
func (s *InMemory) ListPendingBefore(_ context.Context, cutoff time.Time, limit int) ([]id.RequestID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []id.RequestID
	for _, r := range s.requests {
		if r.IsPending() && r.CreatedAt.Before(cutoff) {
			out = append(out, r.ID)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

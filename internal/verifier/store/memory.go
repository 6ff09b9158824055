package store

import (
	"context"
	"sync"

	"privid/internal/verifier/models"
	id "privid/pkg/domain"
	"privid/pkg/platform/sentinel"
)

// InMemory keeps verifier records in process memory.
type InMemory struct {
	mu        sync.RWMutex
	verifiers map[id.Principal]models.Verifier
}

// NewInMemory creates an empty in-memory verifier registry store.
func NewInMemory() *InMemory {
	return &InMemory{verifiers: make(map[id.Principal]models.Verifier)}
}

// Upsert writes the record, replacing any previous state for the principal.
func (s *InMemory) Upsert(_ context.Context, v *models.Verifier) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.verifiers[v.Principal] = *v
	return nil
}

func (s *InMemory) FindByPrincipal(_ context.Context, p id.Principal) (*models.Verifier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.verifiers[p]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &v, nil
}

// FindByPrincipalForShare is FindByPrincipal; the in-memory transactor already holds the principal lock.
func (s *InMemory) FindByPrincipalForShare(ctx context.Context, p id.Principal) (*models.Verifier, error) {
	return s.FindByPrincipal(ctx, p)
}

// CountAuthorized returns the number of currently authorized verifiers.
func (s *InMemory) CountAuthorized(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, v := range s.verifiers {
		if v.Authorized {
			n++
		}
	}
	return n, nil
}

package store

import (
	"context"
	"sync"

	"privid/internal/zkproof/models"
	id "privid/pkg/domain"
	"privid/pkg/platform/sentinel"
)

// InMemory stores proof records in process memory.
type InMemory struct {
	mu     sync.RWMutex
	lastID id.ProofID
	proofs map[id.ProofID]*models.Proof
}

func NewInMemory() *InMemory {
	return &InMemory{proofs: make(map[id.ProofID]*models.Proof)}
}

// Create assigns the next ID. IDs strictly increase and are never reused.
func (s *InMemory) Create(_ context.Context, p *models.Proof) (id.ProofID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastID++
	p.ID = s.lastID
	s.proofs[p.ID] = p.Clone()
	return p.ID, nil
}

func (s *InMemory) FindByID(_ context.Context, proofID id.ProofID) (*models.Proof, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.proofs[proofID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return p.Clone(), nil
}

func (s *InMemory) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.proofs), nil
}

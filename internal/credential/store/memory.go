package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"privid/internal/credential/models"
	id "privid/pkg/domain"
	"privid/pkg/platform/sentinel"
)

// InMemory stores credentials in process memory. Reads and writes exchange
// copies so no caller aliases a stored record.
type InMemory struct {
	mu          sync.RWMutex
	lastID      id.CredentialID
	credentials map[id.CredentialID]*models.Credential
}

// NewInMemory creates an empty in-memory credential store.
func NewInMemory() *InMemory {
	return &InMemory{credentials: make(map[id.CredentialID]*models.Credential)}
}

// Create assigns the next ID. IDs strictly increase and are never reused.
func (s *InMemory) Create(_ context.Context, c *models.Credential) (id.CredentialID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastID++
	c.ID = s.lastID
	s.credentials[c.ID] = c.Clone()
	return c.ID, nil
}

func (s *InMemory) FindByID(_ context.Context, credentialID id.CredentialID) (*models.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.credentials[credentialID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return c.Clone(), nil
}

// FindByIDForUpdate is FindByID; the in-memory transactor already holds the entity lock.
func (s *InMemory) FindByIDForUpdate(ctx context.Context, credentialID id.CredentialID) (*models.Credential, error) {
	return s.FindByID(ctx, credentialID)
}

func (s *InMemory) Update(_ context.Context, c *models.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.credentials[c.ID]; !ok {
		return fmt.Errorf("update credential %s: %w", c.ID, sentinel.ErrNotFound)
	}
	s.credentials[c.ID] = c.Clone()
	return nil
}

func (s *InMemory) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.credentials), nil
}

// ListByOwner returns the owner's credentials in ID order.
func (s *InMemory) ListByOwner(_ context.Context, owner id.Principal) ([]*models.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Credential
	for _, c := range s.credentials {
		if c.Owner == owner {
			out = append(out, c.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

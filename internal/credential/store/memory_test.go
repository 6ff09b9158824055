package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"privid/internal/credential/models"
	id "privid/pkg/domain"
	"privid/pkg/payload"
	"privid/pkg/platform/sentinel"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
	now   time.Time
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
	s.now = time.Now()
}

func (s *InMemoryStoreSuite) newCredential(owner id.Principal) *models.Credential {
	c, err := models.NewCredential(owner, id.CredentialTypeFinancial, payload.Opaque("h"), s.now.Add(time.Hour), s.now)
	s.Require().NoError(err)
	return c
}

func (s *InMemoryStoreSuite) TestCreateAssignsIncreasingIDs() {
	owner := id.MustPrincipal("0x3333333333333333333333333333333333333333")
	first, err := s.store.Create(s.ctx, s.newCredential(owner))
	s.Require().NoError(err)
	second, err := s.store.Create(s.ctx, s.newCredential(owner))
	s.Require().NoError(err)

	s.Equal(id.CredentialID(1), first)
	s.Equal(id.CredentialID(2), second)

	count, err := s.store.Count(s.ctx)
	s.Require().NoError(err)
	s.Equal(2, count)
}

func (s *InMemoryStoreSuite) TestFindReturnsCopies() {
	owner := id.MustPrincipal("0x3333333333333333333333333333333333333333")
	credID, err := s.store.Create(s.ctx, s.newCredential(owner))
	s.Require().NoError(err)

	c, err := s.store.FindByID(s.ctx, credID)
	s.Require().NoError(err)
	c.Revoked = true

	again, err := s.store.FindByID(s.ctx, credID)
	s.Require().NoError(err)
	s.False(again.Revoked, "mutating a returned record must not change the store")
}

func (s *InMemoryStoreSuite) TestNotFound() {
	_, err := s.store.FindByID(s.ctx, 42)
	s.True(errors.Is(err, sentinel.ErrNotFound))

	c := s.newCredential(id.MustPrincipal("0x3333333333333333333333333333333333333333"))
	c.ID = 42
	s.True(errors.Is(s.store.Update(s.ctx, c), sentinel.ErrNotFound))
}

func (s *InMemoryStoreSuite) TestListByOwner() {
	alice := id.MustPrincipal("0x4444444444444444444444444444444444444444")
	bob := id.MustPrincipal("0x5555555555555555555555555555555555555555")
	for _, owner := range []id.Principal{alice, bob, alice} {
		_, err := s.store.Create(s.ctx, s.newCredential(owner))
		s.Require().NoError(err)
	}

	list, err := s.store.ListByOwner(s.ctx, alice)
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	s.Equal(id.CredentialID(1), list[0].ID)
	s.Equal(id.CredentialID(3), list[1].ID)
}

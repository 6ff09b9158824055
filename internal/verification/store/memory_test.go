package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"privid/internal/verification/models"
	id "privid/pkg/domain"
	"privid/pkg/payload"
	"privid/pkg/platform/sentinel"
)

var requester = id.MustPrincipal("0x4000000000000000000000000000000000000001")

type InMemorySuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
	now   time.Time
}

func TestInMemorySuite(t *testing.T) {
	suite.Run(t, new(InMemorySuite))
}

func (s *InMemorySuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
	s.now = time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
}

func (s *InMemorySuite) create(createdAt time.Time) *models.Request {
	r, err := models.NewRequest(1, requester, payload.Opaque("threshold"), payload.Opaque("proof"), createdAt)
	s.Require().NoError(err)
	_, err = s.store.Create(s.ctx, r)
	s.Require().NoError(err)
	return r
}

func (s *InMemorySuite) TestCreateAssignsIncreasingIDs() {
	a := s.create(s.now)
	b := s.create(s.now)
	s.Equal(id.RequestID(1), a.ID)
	s.Equal(id.RequestID(2), b.ID)

	n, err := s.store.Count(s.ctx)
	s.Require().NoError(err)
	s.Equal(2, n)
}

func (s *InMemorySuite) TestFindUnknown() {
	_, err := s.store.FindByID(s.ctx, 99)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *InMemorySuite) TestUpdateResolutionOnlyFromPending() {
	r := s.create(s.now)
	s.Require().NoError(r.Resolve(requester, payload.Opaque("score"), true, s.now))
	s.Require().NoError(s.store.UpdateResolution(s.ctx, r))

	stale, err := models.NewRequest(1, requester, payload.Opaque("threshold"), payload.Opaque("proof"), s.now)
	s.Require().NoError(err)
	stale.ID = r.ID
	s.Require().NoError(stale.Expire(s.now))
	s.ErrorIs(s.store.UpdateResolution(s.ctx, stale), sentinel.ErrConflict)

	got, err := s.store.FindByID(s.ctx, r.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusVerified, got.Status)
}

func (s *InMemorySuite) TestListPendingBefore() {
	old := s.create(s.now.Add(-2 * time.Hour))
	resolved := s.create(s.now.Add(-2 * time.Hour))
	s.create(s.now)
	s.Require().NoError(resolved.Resolve(requester, payload.Opaque("s"), false, s.now))
	s.Require().NoError(s.store.UpdateResolution(s.ctx, resolved))

	ids, err := s.store.ListPendingBefore(s.ctx, s.now.Add(-time.Hour), 10)
	s.Require().NoError(err)
	s.Equal([]id.RequestID{old.ID}, ids)
}

package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"privid/internal/credential/metrics"
	"privid/internal/credential/store"
	eventmodels "privid/internal/eventlog/models"
	eventservice "privid/internal/eventlog/service"
	eventstore "privid/internal/eventlog/store"
	id "privid/pkg/domain"
	dErrors "privid/pkg/domain-errors"
	"privid/pkg/payload"
	"privid/pkg/requestcontext"
	"privid/pkg/testutil"
)

var (
	owner    = id.MustPrincipal("0xa000000000000000000000000000000000000001")
	stranger = id.MustPrincipal("0xa000000000000000000000000000000000000002")
)

type ServiceSuite struct {
	suite.Suite
	svc    *Service
	events *eventstore.InMemory
	ctx    context.Context
	now    time.Time
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.events = eventstore.NewInMemory()
	svc, err := New(store.NewInMemory(), eventservice.New(s.events), WithMetrics(metrics.New()))
	s.Require().NoError(err)
	s.svc = svc
	s.now = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
}

func (s *ServiceSuite) create() id.CredentialID {
	c, err := s.svc.CreateCredential(s.ctx, owner, id.CredentialTypeGovernmentID, payload.Opaque("commitment"), s.now.Add(365*24*time.Hour))
	s.Require().NoError(err)
	return c.ID
}

func (s *ServiceSuite) allEvents() []eventmodels.Event {
	events, err := s.events.List(context.Background(), 0, 1000)
	s.Require().NoError(err)
	return events
}

func (s *ServiceSuite) TestCreateCredential() {
	s.Run("assigns increasing ids and emits CredentialCreated", func() {
		first := s.create()
		second := s.create()
		s.Less(uint64(first), uint64(second))

		events := s.allEvents()
		s.Require().Len(events, 2)
		s.Equal(eventmodels.TypeCredentialCreated, events[0].Type)
		s.Equal(first.String(), events[0].EntityID)
		s.Equal(owner, events[0].Principal)
		s.Equal("government_id", events[0].Attr(eventmodels.AttrCredentialType))
		s.Equal(s.now, events[0].OccurredAt)
	})

	s.Run("rejects expiry at now without side effects", func() {
		before := len(s.allEvents())
		_, err := s.svc.CreateCredential(s.ctx, owner, id.CredentialTypeFinancial, payload.Opaque("h"), s.now)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidExpiry))
		s.Len(s.allEvents(), before)
	})

	s.Run("rejects unknown type", func() {
		_, err := s.svc.CreateCredential(s.ctx, owner, id.CredentialType(0), payload.Opaque("h"), s.now.Add(time.Hour))
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *ServiceSuite) TestRevokeCredential() {
	credID := s.create()

	_, err := s.svc.RevokeCredential(s.ctx, stranger, credID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotOwner))

	c, err := s.svc.RevokeCredential(s.ctx, owner, credID)
	s.Require().NoError(err)
	s.True(c.Revoked)

	_, err = s.svc.RevokeCredential(s.ctx, owner, credID)
	s.True(dErrors.HasCode(err, dErrors.CodeAlreadyRevoked))

	_, err = s.svc.RevokeCredential(s.ctx, owner, 999)
	s.True(dErrors.HasCode(err, dErrors.CodeCredentialNotFound))

	events := s.allEvents()
	s.Require().Len(events, 2)
	s.Equal(eventmodels.TypeCredentialRevoked, events[1].Type)

	info, err := s.svc.GetCredentialInfo(s.ctx, credID)
	s.Require().NoError(err)
	s.True(info.Revoked)
	s.Equal(s.now, *info.RevokedAt)
}

func (s *ServiceSuite) TestConcurrentRevokeSucceedsOnce() {
	credID := s.create()

	result := testutil.RunConcurrent(20, func(int) error {
		_, err := s.svc.RevokeCredential(s.ctx, owner, credID)
		return err
	})

	s.Equal(int32(1), result.Successes)
	s.Equal(int32(19), result.Conflicts)
}

func (s *ServiceSuite) TestIsUsable() {
	credID := s.create()

	usable, err := s.svc.IsUsable(s.ctx, credID, s.now)
	s.Require().NoError(err)
	s.True(usable)

	usable, err = s.svc.IsUsable(s.ctx, credID, s.now.Add(365*24*time.Hour))
	s.Require().NoError(err)
	s.False(usable, "unusable at expiry")

	usable, err = s.svc.IsUsable(s.ctx, 12345, s.now)
	s.Require().NoError(err)
	s.False(usable, "unknown ids are not usable")
}

func (s *ServiceSuite) TestGetCredentialInfoNotFound() {
	_, err := s.svc.GetCredentialInfo(s.ctx, 7)
	s.True(dErrors.HasCode(err, dErrors.CodeCredentialNotFound))
}

func (s *ServiceSuite) TestCountAndList() {
	s.create()
	s.create()
	_, err := s.svc.CreateCredential(s.ctx, stranger, id.CredentialTypeBiometric, payload.Opaque("x"), s.now.Add(time.Hour))
	s.Require().NoError(err)

	n, err := s.svc.CredentialCount(s.ctx)
	s.Require().NoError(err)
	s.Equal(3, n)

	mine, err := s.svc.ListByOwner(s.ctx, owner)
	s.Require().NoError(err)
	s.Len(mine, 2)
}

package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	eventmodels "privid/internal/eventlog/models"
	eventservice "privid/internal/eventlog/service"
	eventstore "privid/internal/eventlog/store"
	reputationservice "privid/internal/reputation/service"
	reputationstore "privid/internal/reputation/store"
	"privid/internal/verifier/metrics"
	"privid/internal/verifier/store"
	id "privid/pkg/domain"
	dErrors "privid/pkg/domain-errors"
	"privid/pkg/requestcontext"
)

var (
	admin    = id.MustPrincipal("0x1000000000000000000000000000000000000001")
	verifier = id.MustPrincipal("0x1000000000000000000000000000000000000002")
	intruder = id.MustPrincipal("0x1000000000000000000000000000000000000003")
)

type ServiceSuite struct {
	suite.Suite
	svc    *Service
	ledger *reputationservice.Ledger
	events *eventstore.InMemory
	ctx    context.Context
	now    time.Time
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.events = eventstore.NewInMemory()
	log := eventservice.New(s.events)
	ledger, err := reputationservice.New(reputationstore.NewInMemory(), log)
	s.Require().NoError(err)
	s.ledger = ledger
	svc, err := New(store.NewInMemory(), log, admin, WithMetrics(metrics.New()), WithReputation(ledger))
	s.Require().NoError(err)
	s.svc = svc
	s.now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
}

func (s *ServiceSuite) TestNewRequiresAdmin() {
	_, err := New(store.NewInMemory(), eventservice.New(eventstore.NewInMemory()), id.Principal{})
	s.Error(err)
}

func (s *ServiceSuite) TestUnknownVerifierIsNotAuthorized() {
	ok, err := s.svc.IsVerifierAuthorized(s.ctx, verifier)
	s.Require().NoError(err)
	s.False(ok)
	s.True(dErrors.HasCode(s.svc.RequireAuthorized(s.ctx, verifier), dErrors.CodeVerifierNotAuthorized))
}

func (s *ServiceSuite) TestAuthorizeToggles() {
	v, err := s.svc.AuthorizeVerifier(s.ctx, admin, verifier, true)
	s.Require().NoError(err)
	s.True(v.Authorized)
	s.Equal(s.now, v.UpdatedAt)
	s.NoError(s.svc.RequireAuthorized(s.ctx, verifier))

	_, err = s.svc.AuthorizeVerifier(s.ctx, admin, verifier, false)
	s.Require().NoError(err)
	ok, err := s.svc.IsVerifierAuthorized(s.ctx, verifier)
	s.Require().NoError(err)
	s.False(ok)

	events, err := s.events.List(context.Background(), 0, 10)
	s.Require().NoError(err)
	s.Require().Len(events, 2)
	s.Equal(eventmodels.TypeVerifierAuthorized, events[0].Type)
	s.Equal(verifier.String(), events[0].EntityID)
	s.Equal(admin, events[0].Principal)
	s.Equal("true", events[0].Attr(eventmodels.AttrAuthorized))
	s.Equal("false", events[1].Attr(eventmodels.AttrAuthorized))
}

func (s *ServiceSuite) TestNonAdminRejectedWithoutChange() {
	_, err := s.svc.AuthorizeVerifier(s.ctx, intruder, intruder, true)
	s.True(dErrors.HasCode(err, dErrors.CodeNotAdmin))

	ok, err := s.svc.IsVerifierAuthorized(s.ctx, intruder)
	s.Require().NoError(err)
	s.False(ok)

	events, err := s.events.List(context.Background(), 0, 10)
	s.Require().NoError(err)
	s.Empty(events)
}

func (s *ServiceSuite) TestAdminIsNotImplicitlyAVerifier() {
	ok, err := s.svc.IsVerifierAuthorized(s.ctx, admin)
	s.Require().NoError(err)
	s.False(ok)
}

func (s *ServiceSuite) TestGetVerifierIncludesReputation() {
	_, err := s.svc.AuthorizeVerifier(s.ctx, admin, verifier, true)
	s.Require().NoError(err)
	s.Require().NoError(s.ledger.RecordOutcome(s.ctx, intruder, verifier, true))

	view, err := s.svc.GetVerifier(s.ctx, verifier)
	s.Require().NoError(err)
	s.True(view.Authorized)
	s.Equal(2, view.Reputation)
	s.Require().NotNil(view.UpdatedAt)

	unknown, err := s.svc.GetVerifier(s.ctx, intruder)
	s.Require().NoError(err)
	s.False(unknown.Authorized)
	s.Nil(unknown.UpdatedAt)
}

func (s *ServiceSuite) TestAuthorizedCount() {
	_, err := s.svc.AuthorizeVerifier(s.ctx, admin, verifier, true)
	s.Require().NoError(err)
	_, err = s.svc.AuthorizeVerifier(s.ctx, admin, intruder, false)
	s.Require().NoError(err)

	n, err := s.svc.AuthorizedCount(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, n)
}

//go:build integration

package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	credentialstore "privid/internal/credential/store"
	"privid/internal/verification/models"
	"privid/internal/verification/store"
	id "privid/pkg/domain"
	"privid/pkg/payload"
	"privid/pkg/platform/sentinel"
	"privid/pkg/testutil"
	"privid/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres     *containers.PostgresContainer
	store        *store.PostgresStore
	ctx          context.Context
	credentialID id.CredentialID
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
	s.ctx = context.Background()
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateAll(s.ctx))

	credentials := credentialstore.NewPostgres(s.postgres.DB)
	credentialID, err := credentials.Create(s.ctx, testutil.NewCredentialBuilder().Build())
	s.Require().NoError(err)
	s.credentialID = credentialID
}

func (s *PostgresStoreSuite) TestPendingRoundTrip() {
	want := testutil.NewRequestBuilder(s.credentialID).Build()
	requestID, err := s.store.Create(s.ctx, want)
	s.Require().NoError(err)

	got, err := s.store.FindByID(s.ctx, requestID)
	s.Require().NoError(err)
	s.Equal(models.StatusPending, got.Status)
	s.Equal(want.Requester, got.Requester)
	s.Equal(want.EncryptedThreshold, got.EncryptedThreshold)
	s.Equal(want.InputProof, got.InputProof)
	s.True(got.Resolver.IsZero())
	s.Empty(got.ResolvedScore)
	s.Nil(got.ResolvedAt)
}

func (s *PostgresStoreSuite) TestUpdateResolution() {
	requestID, err := s.store.Create(s.ctx, testutil.NewRequestBuilder(s.credentialID).Build())
	s.Require().NoError(err)

	r, err := s.store.FindByID(s.ctx, requestID)
	s.Require().NoError(err)
	s.Require().NoError(r.Resolve(testutil.TestPrincipals.Verifier, payload.Opaque("score"), true, testutil.TestNow))
	s.Require().NoError(s.store.UpdateResolution(s.ctx, r))

	got, err := s.store.FindByID(s.ctx, requestID)
	s.Require().NoError(err)
	s.Equal(models.StatusVerified, got.Status)
	s.Equal(models.ResolutionVerifier, got.Resolution)
	s.Equal(testutil.TestPrincipals.Verifier, got.Resolver)
	s.Equal(payload.Opaque("score"), got.ResolvedScore)
}

func (s *PostgresStoreSuite) TestUnknownRequest() {
	_, err := s.store.FindByID(s.ctx, 7)
	s.True(errors.Is(err, sentinel.ErrNotFound))
}

func (s *PostgresStoreSuite) TestListPendingBefore() {
	old := testutil.NewRequestBuilder(s.credentialID).WithCreatedAt(testutil.TestNow.Add(-2 * time.Hour)).Build()
	fresh := testutil.NewRequestBuilder(s.credentialID).Build()
	resolved := testutil.NewRequestBuilder(s.credentialID).
		WithCreatedAt(testutil.TestNow.Add(-3 * time.Hour)).
		Resolved(testutil.TestPrincipals.Verifier, false).
		Build()

	oldID, err := s.store.Create(s.ctx, old)
	s.Require().NoError(err)
	_, err = s.store.Create(s.ctx, fresh)
	s.Require().NoError(err)
	_, err = s.store.Create(s.ctx, resolved)
	s.Require().NoError(err)

	ids, err := s.store.ListPendingBefore(s.ctx, testutil.TestNow.Add(-time.Hour), 10)
	s.Require().NoError(err)
	s.Equal([]id.RequestID{oldID}, ids)
}

//go:build integration

package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"privid/internal/credential/store"
	id "privid/pkg/domain"
	"privid/pkg/platform/sentinel"
	"privid/pkg/platform/tx"
	"privid/pkg/testutil"
	"privid/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
	ctx      context.Context
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
}

func (s *PostgresStoreSuite) TestCreateAssignsSequentialIDs() {
	first, err := s.store.Create(s.ctx, testutil.NewCredentialBuilder().Build())
	s.Require().NoError(err)
	second, err := s.store.Create(s.ctx, testutil.NewCredentialBuilder().Build())
	s.Require().NoError(err)

	s.Equal(id.CredentialID(1), first)
	s.Equal(id.CredentialID(2), second)

	count, err := s.store.Count(s.ctx)
	s.Require().NoError(err)
	s.Equal(2, count)
}

func (s *PostgresStoreSuite) TestRoundTrip() {
	want := testutil.NewCredentialBuilder().
		WithType(id.CredentialTypeBiometric).
		WithHash([]byte{0x00, 0xff, 0x10}).
		Build()
	credentialID, err := s.store.Create(s.ctx, want)
	s.Require().NoError(err)

	got, err := s.store.FindByID(s.ctx, credentialID)
	s.Require().NoError(err)
	s.Equal(credentialID, got.ID)
	s.Equal(want.Owner, got.Owner)
	s.Equal(want.Type, got.Type)
	s.Equal(want.EncryptedHash, got.EncryptedHash)
	s.True(want.Expiry.Equal(got.Expiry))
	s.False(got.Revoked)
	s.Nil(got.RevokedAt)
}

func (s *PostgresStoreSuite) TestUpdatePersistsRevocation() {
	credentialID, err := s.store.Create(s.ctx, testutil.NewCredentialBuilder().Build())
	s.Require().NoError(err)

	c, err := s.store.FindByID(s.ctx, credentialID)
	s.Require().NoError(err)
	s.Require().NoError(c.Revoke(testutil.TestPrincipals.Owner, testutil.TestNow.Add(time.Minute)))
	s.Require().NoError(s.store.Update(s.ctx, c))

	got, err := s.store.FindByID(s.ctx, credentialID)
	s.Require().NoError(err)
	s.True(got.Revoked)
	s.Require().NotNil(got.RevokedAt)
	s.True(got.RevokedAt.Equal(testutil.TestNow.Add(time.Minute)))
}

func (s *PostgresStoreSuite) TestMissingCredential() {
	_, err := s.store.FindByID(s.ctx, 42)
	s.True(errors.Is(err, sentinel.ErrNotFound))

	missing := testutil.NewCredentialBuilder().WithID(42).Build()
	err = s.store.Update(s.ctx, missing)
	s.True(errors.Is(err, sentinel.ErrNotFound))
}

func (s *PostgresStoreSuite) TestListByOwner() {
	for i := 0; i < 3; i++ {
		_, err := s.store.Create(s.ctx, testutil.NewCredentialBuilder().Build())
		s.Require().NoError(err)
	}
	_, err := s.store.Create(s.ctx, testutil.NewCredentialBuilder().WithOwner(testutil.TestPrincipals.Stranger).Build())
	s.Require().NoError(err)

	owned, err := s.store.ListByOwner(s.ctx, testutil.TestPrincipals.Owner)
	s.Require().NoError(err)
	s.Len(owned, 3)
	for i, c := range owned {
		s.Equal(id.CredentialID(i+1), c.ID)
	}
}

// Row locks serialize revocations, so exactly one of many racing revokers wins.
func (s *PostgresStoreSuite) TestConcurrentRevokeSingleWinner() {
	credentialID, err := s.store.Create(s.ctx, testutil.NewCredentialBuilder().Build())
	s.Require().NoError(err)

	transactor := tx.NewPostgres(s.postgres.DB)
	result := testutil.RunConcurrent(20, func(int) error {
		return transactor.RunInTx(s.ctx, []string{credentialID.LockKey()}, func(ctx context.Context) error {
			c, err := s.store.FindByIDForUpdate(ctx, credentialID)
			if err != nil {
				return err
			}
			if err := c.Revoke(testutil.TestPrincipals.Owner, testutil.TestNow); err != nil {
				return err
			}
			return s.store.Update(ctx, c)
		})
	})

	s.Equal(int32(1), result.Successes)
	s.Equal(int32(19), result.Conflicts)
	s.Equal(int32(0), result.Errors)
}

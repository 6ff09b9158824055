package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"privid/internal/verifier/models"
	id "privid/pkg/domain"
	"privid/pkg/platform/sentinel"
)

func TestInMemory_UpsertToggles(t *testing.T) {
	ctx := context.Background()
	s := NewInMemory()
	p := id.MustPrincipal("0xf000000000000000000000000000000000000001")

	_, err := s.FindByPrincipal(ctx, p)
	require.ErrorIs(t, err, sentinel.ErrNotFound)

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.Upsert(ctx, &models.Verifier{Principal: p, Authorized: true, UpdatedAt: now}))
	n, err := s.CountAuthorized(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, s.Upsert(ctx, &models.Verifier{Principal: p, Authorized: false, UpdatedAt: now.Add(time.Minute)}))
	v, err := s.FindByPrincipalForShare(ctx, p)
	require.NoError(t, err)
	assert.False(t, v.Authorized)
	assert.Equal(t, now.Add(time.Minute), v.UpdatedAt)

	n, err = s.CountAuthorized(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestInMemory_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewInMemory()
	p := id.MustPrincipal("0xf000000000000000000000000000000000000002")
	require.NoError(t, s.Upsert(ctx, &models.Verifier{Principal: p, Authorized: true}))

	v, err := s.FindByPrincipal(ctx, p)
	require.NoError(t, err)
	v.Authorized = false

	again, err := s.FindByPrincipal(ctx, p)
	require.NoError(t, err)
	assert.True(t, again.Authorized)
}

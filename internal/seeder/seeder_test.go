package seeder

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"privid/internal/engine"
	"privid/internal/verification/proofcheck"
	"privid/pkg/payload"
)

var admin = DemoPrincipal("admin")

func newSeeder(t *testing.T, opts ...Option) (*Seeder, *engine.Engine) {
	t.Helper()
	e, err := engine.NewInMemory(admin)
	require.NoError(t, err)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(e.Credentials, e.Verifiers, e.Verifications, e.Proofs, logger, opts...), e
}

func TestDemoPrincipal_Stable(t *testing.T) {
	assert.Equal(t, DemoPrincipal("alice"), DemoPrincipal("alice"))
	assert.NotEqual(t, DemoPrincipal("alice"), DemoPrincipal("bob"))
	assert.False(t, DemoPrincipal("alice").IsZero())
}

func TestSeedAll(t *testing.T) {
	proof := payload.Opaque(strings.Repeat("p", proofcheck.MinOpaqueBytes))
	s, e := newSeeder(t, WithInputProof(proof))
	ctx := context.Background()

	summary, err := s.SeedAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, &Summary{Verifiers: 2, Credentials: 5, Requests: 3, Proofs: 1}, summary)

	stats, err := e.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, stats.Credentials)
	assert.Equal(t, 3, stats.Requests)
	assert.Equal(t, 1, stats.Proofs)
	assert.Equal(t, 2, stats.AuthorizedVerifiers)
	assert.NotZero(t, stats.LastEventSeq)

	score, err := e.Reputation.GetUserReputation(ctx, DemoPrincipal("alice"))
	require.NoError(t, err)
	assert.Equal(t, 5, score, "one verified and one rejected outcome")
}

func TestSeedAll_WithoutInputProofSkipsRequests(t *testing.T) {
	s, e := newSeeder(t)
	ctx := context.Background()

	summary, err := s.SeedAll(ctx)
	require.NoError(t, err)
	assert.Zero(t, summary.Requests)

	stats, err := e.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, stats.Credentials)
	assert.Zero(t, stats.Requests)
}

package tx

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "privid/pkg/domain-errors"
	"privid/pkg/testutil"
)

func TestSharded_RunInTx(t *testing.T) {
	t.Run("serializes work on the same key", func(t *testing.T) {
		tr := NewSharded()
		counter := 0
		result := testutil.RunConcurrent(100, func(int) error {
			return tr.RunInTx(context.Background(), []string{"credential:1"}, func(context.Context) error {
				counter++
				return nil
			})
		})
		assert.Equal(t, int32(100), result.Successes)
		assert.Equal(t, 100, counter)
	})

	t.Run("nested call runs on the outer boundary", func(t *testing.T) {
		tr := NewSharded()
		err := tr.RunInTx(context.Background(), []string{"credential:1"}, func(ctx context.Context) error {
			assert.True(t, InTx(ctx))
			return tr.RunInTx(ctx, []string{"credential:1", "request:1"}, func(context.Context) error {
				return nil
			})
		})
		require.NoError(t, err)
	})

	t.Run("propagates fn error", func(t *testing.T) {
		tr := NewSharded()
		boom := errors.New("boom")
		err := tr.RunInTx(context.Background(), nil, func(context.Context) error { return boom })
		assert.ErrorIs(t, err, boom)
	})

	t.Run("cancelled context is rejected with timeout code", func(t *testing.T) {
		tr := NewSharded()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		called := false
		err := tr.RunInTx(ctx, []string{"request:1"}, func(context.Context) error {
			called = true
			return nil
		})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeTimeout))
		assert.False(t, called)
	})

	t.Run("applies default deadline", func(t *testing.T) {
		tr := NewSharded().WithTimeout(time.Second)
		err := tr.RunInTx(context.Background(), nil, func(ctx context.Context) error {
			_, ok := ctx.Deadline()
			assert.True(t, ok)
			return nil
		})
		require.NoError(t, err)
	})
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(&pgconn.PgError{Code: "40001"}))
	assert.True(t, IsRetryable(fmt.Errorf("wrapped: %w", &pgconn.PgError{Code: "40P01"})))
	assert.False(t, IsRetryable(&pgconn.PgError{Code: "23505"}))
	assert.False(t, IsRetryable(errors.New("plain")))
}

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	_, ok := From(ctx)
	assert.False(t, ok)
	assert.False(t, InTx(ctx))
	assert.True(t, InTx(withLocksHeld(ctx)))
}

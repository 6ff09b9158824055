package requestcontext

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	id "privid/pkg/domain"
)

func TestRequestContext(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, RequestID(ctx))
	assert.Empty(t, ClientIP(ctx))
	_, ok := Principal(ctx)
	assert.False(t, ok)

	p := id.MustPrincipal("0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed")
	ctx = WithRequestID(ctx, "req-1")
	ctx = WithClientIP(ctx, "10.0.0.1")
	ctx = WithPrincipal(ctx, p)

	assert.Equal(t, "req-1", RequestID(ctx))
	assert.Equal(t, "10.0.0.1", ClientIP(ctx))
	got, ok := Principal(ctx)
	assert.True(t, ok)
	assert.Equal(t, p, got)
}

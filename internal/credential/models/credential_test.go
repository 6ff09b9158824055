package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "privid/pkg/domain"
	dErrors "privid/pkg/domain-errors"
	"privid/pkg/payload"
)

var (
	owner    = id.MustPrincipal("0x1111111111111111111111111111111111111111")
	stranger = id.MustPrincipal("0x2222222222222222222222222222222222222222")
	now      = time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	hash     = payload.Opaque("commitment")
)

func TestNewCredential(t *testing.T) {
	tests := []struct {
		name     string
		owner    id.Principal
		credType id.CredentialType
		hash     payload.Opaque
		expiry   time.Time
		wantCode dErrors.Code
	}{
		{"valid", owner, id.CredentialTypeGovernmentID, hash, now.Add(time.Hour), ""},
		{"zero owner", id.Principal{}, id.CredentialTypeGovernmentID, hash, now.Add(time.Hour), dErrors.CodeBadRequest},
		{"unknown type", owner, id.CredentialType(9), hash, now.Add(time.Hour), dErrors.CodeValidation},
		{"empty hash", owner, id.CredentialTypeFinancial, nil, now.Add(time.Hour), dErrors.CodeValidation},
		{"expiry equals now", owner, id.CredentialTypeFinancial, hash, now, dErrors.CodeInvalidExpiry},
		{"expiry in the past", owner, id.CredentialTypeFinancial, hash, now.Add(-time.Second), dErrors.CodeInvalidExpiry},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewCredential(tt.owner, tt.credType, tt.hash, tt.expiry, now)
			if tt.wantCode != "" {
				require.Error(t, err)
				assert.True(t, dErrors.HasCode(err, tt.wantCode), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, now, c.CreatedAt)
			assert.False(t, c.Revoked)
			assert.True(t, c.IsUsable(now))
		})
	}
}

func TestCredential_UsableBoundary(t *testing.T) {
	c, err := NewCredential(owner, id.CredentialTypeAddress, hash, now.Add(time.Minute), now)
	require.NoError(t, err)

	assert.True(t, c.IsUsable(now.Add(time.Minute-time.Nanosecond)))
	assert.False(t, c.IsUsable(now.Add(time.Minute)), "unusable at the expiry instant")
	assert.True(t, dErrors.HasCode(c.CheckUsable(now.Add(time.Minute)), dErrors.CodeCredentialUnusable))
}

func TestCredential_Revoke(t *testing.T) {
	c, err := NewCredential(owner, id.CredentialTypeBiometric, hash, now.Add(time.Hour), now)
	require.NoError(t, err)

	err = c.Revoke(stranger, now)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotOwner))
	assert.False(t, c.Revoked)

	require.NoError(t, c.Revoke(owner, now))
	assert.True(t, c.Revoked)
	require.NotNil(t, c.RevokedAt)
	assert.False(t, c.IsUsable(now))

	err = c.Revoke(owner, now.Add(time.Second))
	assert.True(t, dErrors.HasCode(err, dErrors.CodeAlreadyRevoked))
	assert.Equal(t, now, *c.RevokedAt, "revocation time is set once")
}

func TestCredential_CloneIsDeep(t *testing.T) {
	c, err := NewCredential(owner, id.CredentialTypeProfessional, hash, now.Add(time.Hour), now)
	require.NoError(t, err)
	require.NoError(t, c.Revoke(owner, now))

	cp := c.Clone()
	cp.EncryptedHash[0] = 'X'
	*cp.RevokedAt = now.Add(time.Hour)

	assert.Equal(t, byte('c'), c.EncryptedHash[0])
	assert.Equal(t, now, *c.RevokedAt)
}

package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "privid/pkg/domain-errors"
)

func TestCredentialType(t *testing.T) {
	t.Run("closed set", func(t *testing.T) {
		for n := 1; n <= 6; n++ {
			assert.True(t, CredentialType(n).IsValid(), n)
		}
		assert.False(t, CredentialType(0).IsValid())
		assert.False(t, CredentialType(7).IsValid())
	})

	t.Run("parses name or number", func(t *testing.T) {
		byName, err := ParseCredentialType("financial")
		require.NoError(t, err)
		byNumber, err := ParseCredentialType("2")
		require.NoError(t, err)
		assert.Equal(t, CredentialTypeFinancial, byName)
		assert.Equal(t, byName, byNumber)

		_, err = ParseCredentialType("passport")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("json accepts numbers and strings", func(t *testing.T) {
		var v struct {
			A CredentialType `json:"a"`
			B CredentialType `json:"b"`
		}
		require.NoError(t, json.Unmarshal([]byte(`{"a":6,"b":"government_id"}`), &v))
		assert.Equal(t, CredentialTypeBiometric, v.A)
		assert.Equal(t, CredentialTypeGovernmentID, v.B)

		out, err := json.Marshal(v.A)
		require.NoError(t, err)
		assert.Equal(t, `"biometric"`, string(out))

		require.Error(t, json.Unmarshal([]byte(`{"a":9}`), &v))
	})
}

func TestProofType(t *testing.T) {
	assert.True(t, ProofTypePrivacyPreserving.IsValid())
	assert.False(t, ProofType(4).IsValid())
	assert.Equal(t, "encrypted_proof", ProofTypeEncryptedProof.String())

	pt, err := ParseProofType("1")
	require.NoError(t, err)
	assert.Equal(t, ProofTypeZeroKnowledge, pt)
}

func TestIsExpired(t *testing.T) {
	expiry := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)

	assert.True(t, IsExpired(expiry, expiry), "boundary is expired")
	assert.True(t, IsExpired(expiry, expiry.Add(time.Second)))
	assert.False(t, IsExpired(expiry, expiry.Add(-time.Nanosecond)))
}

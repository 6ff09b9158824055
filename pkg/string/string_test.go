package string

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToSnakeCase(t *testing.T) {
	cases := map[string]string{
		"EncryptedHash":      "encrypted_hash",
		"CredentialID":       "credential_id",
		"inputProof":         "input_proof",
		"Verifier":           "verifier",
		"EncryptedThreshold": "encrypted_threshold",
	}
	for in, want := range cases {
		assert.Equal(t, want, ToSnakeCase(in), in)
	}
}

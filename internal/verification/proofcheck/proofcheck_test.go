package proofcheck

import (
	"bytes"
	"testing"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "privid/pkg/domain-errors"
	"privid/pkg/payload"
)

func TestNew(t *testing.T) {
	c, err := New("")
	require.NoError(t, err)
	assert.IsType(t, &Opaque{}, c)

	c, err = New(" Groth16 ")
	require.NoError(t, err)
	assert.IsType(t, &Groth16{}, c)

	_, err = New("plonk")
	assert.Error(t, err)
}

func TestOpaqueBounds(t *testing.T) {
	c := NewOpaque(MinOpaqueBytes, MaxOpaqueBytes)
	tests := []struct {
		name string
		size int
		ok   bool
	}{
		{"empty", 0, false},
		{"short", MinOpaqueBytes - 1, false},
		{"minimum", MinOpaqueBytes, true},
		{"maximum", MaxOpaqueBytes, true},
		{"oversized", MaxOpaqueBytes + 1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := c.Check(make(payload.Opaque, tt.size))
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.True(t, dErrors.HasCode(err, dErrors.CodeMalformedProof))
		})
	}
}

// cubeCircuit proves knowledge of X with X³ = Y.
type cubeCircuit struct {
	X frontend.Variable
	Y frontend.Variable `gnark:",public"`
}

func (c *cubeCircuit) Define(api frontend.API) error {
	api.AssertIsEqual(api.Mul(c.X, c.X, c.X), c.Y)
	return nil
}

func realProof(t *testing.T) payload.Opaque {
	t.Helper()
	ccs, err := frontend.Compile(ecc.BN254.ScalarField(), r1cs.NewBuilder, &cubeCircuit{})
	require.NoError(t, err)
	pk, _, err := groth16.Setup(ccs)
	require.NoError(t, err)
	w, err := frontend.NewWitness(&cubeCircuit{X: 3, Y: 27}, ecc.BN254.ScalarField())
	require.NoError(t, err)
	proof, err := groth16.Prove(ccs, pk, w)
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = proof.WriteTo(&buf)
	require.NoError(t, err)
	return payload.Opaque(buf.Bytes())
}

func TestGroth16(t *testing.T) {
	c := NewGroth16()
	valid := realProof(t)

	assert.NoError(t, c.Check(valid))

	t.Run("truncated", func(t *testing.T) {
		err := c.Check(valid[:len(valid)-1])
		assert.True(t, dErrors.HasCode(err, dErrors.CodeMalformedProof))
	})
	t.Run("trailing bytes", func(t *testing.T) {
		err := c.Check(append(valid.Clone(), 0x00))
		assert.True(t, dErrors.HasCode(err, dErrors.CodeMalformedProof))
	})
	t.Run("garbage", func(t *testing.T) {
		err := c.Check(bytes.Repeat([]byte{0xff}, len(valid)))
		assert.True(t, dErrors.HasCode(err, dErrors.CodeMalformedProof))
	})
	t.Run("empty", func(t *testing.T) {
		assert.True(t, dErrors.HasCode(c.Check(nil), dErrors.CodeMalformedProof))
	})
}

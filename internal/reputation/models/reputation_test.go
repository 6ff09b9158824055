package models

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "privid/pkg/domain-errors"
)

func TestApply_Clamps(t *testing.T) {
	tests := []struct {
		name         string
		score, delta int
		want         int
	}{
		{"within bounds", 50, 10, 60},
		{"floor", 3, -5, 0},
		{"ceiling", 95, 10, 100},
		{"delta clamped up", 50, 1000, 75},
		{"delta clamped down", 50, -1000, 25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Apply(tt.score, tt.delta))
		})
	}
}

// Any sequence of adjustments keeps the score in [0, 100].
func TestApply_BoundsUnderRandomSequences(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for run := 0; run < 200; run++ {
		score := 0
		for step := 0; step < 500; step++ {
			score = Apply(score, rng.IntN(201)-100)
			require.GreaterOrEqual(t, score, MinScore)
			require.LessOrEqual(t, score, MaxScore)
		}
	}
}

func TestPolicy(t *testing.T) {
	p := DefaultPolicy()
	require.NoError(t, p.Validate())
	assert.Equal(t, 10, p.OwnerDelta(true))
	assert.Equal(t, -5, p.OwnerDelta(false))

	p.OwnerVerified = 26
	err := p.Validate()
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestParseRole(t *testing.T) {
	r, err := ParseRole("verifier")
	require.NoError(t, err)
	assert.Equal(t, RoleVerifier, r)

	_, err = ParseRole("admin")
	assert.Error(t, err)
}

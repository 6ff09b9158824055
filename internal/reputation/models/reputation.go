package models

import (
	"fmt"
	"time"

	id "privid/pkg/domain"
	dErrors "privid/pkg/domain-errors"
)

const (
	MinScore = 0
	MaxScore = 100
	// MaxDelta bounds a single adjustment in either direction.
	MaxDelta = 25
)

// Role separates a principal's standing as a credential holder from its
// standing as a verifier.
type Role string

const (
	RoleUser     Role = "user"
	RoleVerifier Role = "verifier"
)

func (r Role) IsValid() bool {
	return r == RoleUser || r == RoleVerifier
}

func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.IsValid() {
		return "", dErrors.New(dErrors.CodeValidation, "role must be user or verifier")
	}
	return r, nil
}

// Record is one principal's score in one role.
type Record struct {
	Role      Role
	Principal id.Principal
	Score     int
	UpdatedAt time.Time
}

// Key identifies a record in caches and event entity IDs.
func Key(role Role, p id.Principal) string {
	return string(role) + ":" + p.String()
}

// ClampDelta limits delta to [-MaxDelta, MaxDelta].
func ClampDelta(delta int) int {
	return max(-MaxDelta, min(MaxDelta, delta))
}

// ClampScore limits score to [MinScore, MaxScore].
func ClampScore(score int) int {
	return max(MinScore, min(MaxScore, score))
}

// Apply returns the score after a bounded adjustment.
func Apply(score, delta int) int {
	return ClampScore(score + ClampDelta(delta))
}

// Policy maps verification outcomes to reputation deltas.
//
// Verified: owner +OwnerVerified, verifier +VerifierResolved.
// Rejected: owner +OwnerRejected (normally negative), verifier +VerifierResolved.
// Requests expired by the sweep change nothing.
type Policy struct {
	OwnerVerified    int
	OwnerRejected    int
	VerifierResolved int
}

// DefaultPolicy is +10 / -5 for the owner and +2 for the verifier.
func DefaultPolicy() Policy {
	return Policy{OwnerVerified: 10, OwnerRejected: -5, VerifierResolved: 2}
}

// Validate requires every delta to lie within ±MaxDelta so configuration
// cannot rely on silent clamping.
func (p Policy) Validate() error {
	for name, d := range map[string]int{
		"owner verified delta":    p.OwnerVerified,
		"owner rejected delta":    p.OwnerRejected,
		"verifier resolved delta": p.VerifierResolved,
	} {
		if d < -MaxDelta || d > MaxDelta {
			return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("%s %d outside ±%d", name, d, MaxDelta))
		}
	}
	return nil
}

// OwnerDelta returns the owner's adjustment for an outcome.
func (p Policy) OwnerDelta(verified bool) int {
	if verified {
		return p.OwnerVerified
	}
	return p.OwnerRejected
}

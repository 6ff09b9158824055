// Package proofcheck validates the structure of a verification request's
// input proof. Nothing here verifies a proof; it only rejects payloads that
// cannot be one.
package proofcheck

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"

	dErrors "privid/pkg/domain-errors"
	"privid/pkg/payload"
)

// Checker rejects structurally invalid input proofs with CodeMalformedProof.
type Checker interface {
	Check(proof payload.Opaque) error
}

// Format names a Checker for configuration.
type Format string

const (
	FormatOpaque  Format = "opaque"
	FormatGroth16 Format = "groth16"
)

const (
	// MinOpaqueBytes is the size of the proof buffer wallets send today.
	MinOpaqueBytes = 64
	MaxOpaqueBytes = 4096
)

// New returns the checker for format. An empty format selects FormatOpaque.
func New(format string) (Checker, error) {
	switch Format(strings.ToLower(strings.TrimSpace(format))) {
	case "", FormatOpaque:
		return NewOpaque(MinOpaqueBytes, MaxOpaqueBytes), nil
	case FormatGroth16:
		return NewGroth16(), nil
	default:
		return nil, fmt.Errorf("unknown proof format %q", format)
	}
}

// Opaque accepts any payload whose length lies in [min, max].
type Opaque struct {
	min, max int
}

func NewOpaque(minBytes, maxBytes int) *Opaque {
	return &Opaque{min: minBytes, max: maxBytes}
}

func (c *Opaque) Check(proof payload.Opaque) error {
	if n := len(proof); n < c.min || n > c.max {
		return dErrors.New(dErrors.CodeMalformedProof,
			fmt.Sprintf("input proof must be between %d and %d bytes, got %d", c.min, c.max, n))
	}
	return nil
}

// Groth16 accepts payloads that decode completely as a BN254 Groth16 proof in
// gnark's compressed encoding. Curve points are checked, pairings are not.
type Groth16 struct {
	curve ecc.ID
}

func NewGroth16() *Groth16 {
	return &Groth16{curve: ecc.BN254}
}

func (c *Groth16) Check(proof payload.Opaque) error {
	if len(proof) == 0 || len(proof) > MaxOpaqueBytes {
		return dErrors.New(dErrors.CodeMalformedProof, "input proof is empty or too large")
	}
	p := groth16.NewProof(c.curve)
	n, err := p.ReadFrom(bytes.NewReader(proof))
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeMalformedProof, "input proof is not a groth16 proof")
	}
	if n != int64(len(proof)) {
		return dErrors.New(dErrors.CodeMalformedProof,
			fmt.Sprintf("input proof has %d trailing bytes", int64(len(proof))-n))
	}
	return nil
}

// Package payload holds opaque encrypted byte strings. The engine never
// interprets their contents; it only stores, compares and fingerprints them.
package payload

import (
	"encoding/json"

	"github.com/ethereum/go-ethereum/common"
	"github.com/multiformats/go-multibase"
	"golang.org/x/crypto/sha3"

	dErrors "privid/pkg/domain-errors"
)

// Opaque is an encrypted handle, commitment or proof blob.
// On the wire it is a multibase string; any multibase prefix is accepted on
// input and base64 ('m') is always produced on output.
type Opaque []byte

// Decode parses a multibase string into an Opaque.
func Decode(s string) (Opaque, error) {
	if s == "" {
		return nil, nil
	}
	_, data, err := multibase.Decode(s)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "payload is not a valid multibase string")
	}
	return Opaque(data), nil
}

// String renders the payload as a base64 multibase string.
func (o Opaque) String() string {
	if len(o) == 0 {
		return ""
	}
	encoded, _ := multibase.Encode(multibase.Base64, o) //nolint:errcheck // Base64 is a known encoding
	return encoded
}

func (o Opaque) IsEmpty() bool { return len(o) == 0 }

// Clone returns a copy that does not alias o.
func (o Opaque) Clone() Opaque {
	if o == nil {
		return nil
	}
	out := make(Opaque, len(o))
	copy(out, o)
	return out
}

// Fingerprint returns the Keccak-256 digest of the payload. Events carry the
// fingerprint instead of the payload itself.
func (o Opaque) Fingerprint() common.Hash {
	h := sha3.NewLegacyKeccak256()
	h.Write(o)
	return common.BytesToHash(h.Sum(nil))
}

func (o Opaque) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.String())
}

func (o *Opaque) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return dErrors.Wrap(err, dErrors.CodeBadRequest, "payload must be a multibase string")
	}
	decoded, err := Decode(s)
	if err != nil {
		return err
	}
	*o = decoded
	return nil
}

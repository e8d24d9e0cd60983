// Package derive computes deterministic record addresses.
//
// An address is the SHA-256 hash of
//
//	tag || reporter || hash || bump || owner || "ProgramDerivedAddress"
//
// where tag is a namespace constant,
// bump is a single disambiguating byte,
// and owner is the 32-byte identity of the registry doing the deriving.
// The tag comes first,
// so addresses derived under different tags never coincide
// even when the identity and hash bytes are the same.
//
// Some candidate addresses are reserved:
// by default,
// those that are valid ed25519 public keys,
// since somebody might hold the matching private key.
// Derive searches bump values from 0 upward
// and returns the first candidate that is not reserved.
package derive

import (
	"crypto/sha256"

	"filippo.io/edwards25519"
	"github.com/pkg/errors"
)

// Size is the length of identities, hashes, and addresses.
const Size = 32

// MaxTagLen is the longest namespace tag Derive accepts.
const MaxTagLen = 32

const marker = "ProgramDerivedAddress"

var (
	// ErrAddressSpaceExhausted means that every bump value produced a reserved address.
	ErrAddressSpaceExhausted = errors.New("address space exhausted")

	// ErrTagTooLong means the namespace tag exceeds MaxTagLen bytes.
	ErrTagTooLong = errors.New("namespace tag too long")
)

// Deriver derives addresses on behalf of one owner.
// It holds no mutable state and is safe for concurrent use.
type Deriver struct {
	// Owner is the identity of the registry the addresses belong to.
	Owner [Size]byte

	// Reserved reports whether a candidate address is unusable.
	// If nil, OnCurve is used.
	Reserved func([Size]byte) bool
}

// New produces a Deriver for the given owner using the default reserved-address rule.
func New(owner [Size]byte) *Deriver {
	return &Deriver{Owner: owner}
}

// Derive computes the address for (tag, reporter, hash),
// together with the bump that produced it.
func (d *Deriver) Derive(tag []byte, reporter, hash [Size]byte) ([Size]byte, uint8, error) {
	if len(tag) > MaxTagLen {
		return [Size]byte{}, 0, errors.Wrapf(ErrTagTooLong, "tag has %d bytes, max %d", len(tag), MaxTagLen)
	}

	reserved := d.Reserved
	if reserved == nil {
		reserved = OnCurve
	}

	for bump := 0; bump <= 255; bump++ {
		addr := d.Candidate(tag, reporter, hash, uint8(bump))
		if !reserved(addr) {
			return addr, uint8(bump), nil
		}
	}
	return [Size]byte{}, 0, ErrAddressSpaceExhausted
}

// Candidate computes the address for (tag, reporter, hash) with a specific bump,
// without checking whether it is reserved.
func (d *Deriver) Candidate(tag []byte, reporter, hash [Size]byte, bump uint8) [Size]byte {
	h := sha256.New()
	h.Write(tag)
	h.Write(reporter[:])
	h.Write(hash[:])
	h.Write([]byte{bump})
	h.Write(d.Owner[:])
	h.Write([]byte(marker))

	var out [Size]byte
	copy(out[:], h.Sum(nil))
	return out
}

// OnCurve tells whether addr is the encoding of a point on the ed25519 curve.
func OnCurve(addr [Size]byte) bool {
	_, err := new(edwards25519.Point).SetBytes(addr[:])
	return err == nil
}

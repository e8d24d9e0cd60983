package reportanchor

import (
	"bytes"
	"crypto/sha256"
	"database/sql/driver"
	"encoding/hex"
	"fmt"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
)

type (
	// Identity is the public identifier of a participant:
	// a reporter or an analyzed wallet.
	// Reporter identities are ed25519 public keys.
	Identity [32]byte

	// Digest is the SHA-256 fingerprint of an off-system report.
	Digest [sha256.Size]byte

	// Address is the storage location of a record in a Store.
	Address [32]byte
)

// Zero is the zero value of an Address.
var Zero Address

// String renders the identity in base58.
func (id Identity) String() string {
	return base58.Encode(id[:])
}

// IsZero tells whether id is all zero bytes.
func (id Identity) IsZero() bool {
	return id == Identity{}
}

// MarshalText implements encoding.TextMarshaler.
func (id Identity) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *Identity) UnmarshalText(text []byte) error {
	parsed, err := IdentityFromString(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// IdentityFromString parses a base58-encoded identity.
func IdentityFromString(s string) (Identity, error) {
	var out Identity
	b, err := base58.Decode(s)
	if err != nil {
		return out, errors.Wrapf(err, "decoding base58 identity %s", s)
	}
	if len(b) != len(out) {
		return out, fmt.Errorf("identity %s has length %d, want %d", s, len(b), len(out))
	}
	copy(out[:], b)
	return out, nil
}

func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// IsZero tells whether d is all zero bytes.
func (d Digest) IsZero() bool {
	return d == Digest{}
}

// MarshalText implements encoding.TextMarshaler.
func (d Digest) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Digest) UnmarshalText(text []byte) error {
	parsed, err := DigestFromHex(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// DigestFromHex parses a hex-encoded digest.
func DigestFromHex(s string) (Digest, error) {
	var out Digest
	if len(s) != 2*len(out) {
		return out, fmt.Errorf("digest %q has length %d, want %d", s, len(s), 2*len(out))
	}
	_, err := hex.Decode(out[:], []byte(s))
	return out, errors.Wrapf(err, "decoding hex digest %s", s)
}

// String renders the address in base58.
func (a Address) String() string {
	return base58.Encode(a[:])
}

// Hex renders the address in lowercase hex.
// Backends use it for object names and file paths,
// where it sorts the same way the raw bytes do.
func (a Address) Hex() string {
	return hex.EncodeToString(a[:])
}

// Less tells whether a sorts before other.
func (a Address) Less(other Address) bool {
	return bytes.Compare(a[:], other[:]) < 0
}

// MarshalText implements encoding.TextMarshaler.
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := AddressFromString(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Value implements driver.Valuer.
func (a Address) Value() (driver.Value, error) {
	return a[:], nil
}

// Scan implements sql.Scanner.
func (a *Address) Scan(src interface{}) error {
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("cannot scan %T into an address", src)
	}
	if len(b) != len(a) {
		return fmt.Errorf("scanned address has length %d, want %d", len(b), len(a))
	}
	copy(a[:], b)
	return nil
}

// AddressFromString parses a base58-encoded address.
func AddressFromString(s string) (Address, error) {
	var out Address
	b, err := base58.Decode(s)
	if err != nil {
		return out, errors.Wrapf(err, "decoding base58 address %s", s)
	}
	if len(b) != len(out) {
		return out, fmt.Errorf("address %s has length %d, want %d", s, len(b), len(out))
	}
	copy(out[:], b)
	return out, nil
}

// AddressFromHex parses a hex-encoded address,
// as produced by Address.Hex.
func AddressFromHex(s string) (Address, error) {
	var out Address
	if len(s) != 2*len(out) {
		return out, errors.New("wrong length")
	}
	_, err := hex.Decode(out[:], []byte(s))
	return out, err
}

// AddressFromBytes copies b into an Address.
func AddressFromBytes(b []byte) Address {
	var out Address
	copy(out[:], b)
	return out
}

package reportanchor

import (
	"github.com/pkg/errors"

	"github.com/bobg/reportanchor/derive"
)

var (
	// ErrNotFound is the error returned
	// when a Getter tries to access an unoccupied address,
	// and by Registry.Verify when nothing was anchored for a reporter/hash pair.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateReport is returned by Registry.Anchor
	// when the reporter has already anchored the same report hash.
	ErrDuplicateReport = errors.New("report hash already anchored by this reporter")

	// ErrInvalidHash is returned by Registry.Anchor for a report hash
	// that cannot be the digest of any report.
	ErrInvalidHash = errors.New("invalid report hash")

	// ErrUnauthenticated is returned by Registry.AnchorSigned
	// when the request signature does not verify against the reporter identity.
	ErrUnauthenticated = errors.New("reporter signature does not verify")

	// ErrCorruptRecord is returned when the bytes at a derived address
	// do not decode as the record that should live there.
	ErrCorruptRecord = errors.New("corrupt record")

	// ErrEmit is wrapped in the error Registry.Anchor returns
	// when the record was stored but the anchored event could not be emitted.
	// The record returned alongside it is valid.
	ErrEmit = errors.New("record anchored, event not emitted")

	// ErrAddressSpaceExhausted is returned when no bump value
	// yields a usable address.
	ErrAddressSpaceExhausted = derive.ErrAddressSpaceExhausted
)

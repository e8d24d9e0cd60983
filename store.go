package reportanchor

import (
	"context"
)

// Getter is a read-only Store (qv).
type Getter interface {
	// Get gets the record stored at addr.
	// It returns ErrNotFound if there is none.
	Get(ctx context.Context, addr Address) ([]byte, error)

	// ListAddrs calls a function for each occupied address in the store in lexicographic order,
	// beginning with the first address _after_ the specified one.
	//
	// The calls reflect at least the set of addresses
	// known at the moment ListAddrs was called.
	// It is unspecified whether later changes,
	// that happen concurrently with ListAddrs,
	// are reflected.
	//
	// If the callback function returns an error,
	// ListAddrs exits with that error.
	ListAddrs(ctx context.Context, start Address, f func(Address) error) error
}

// Store is an opaque key-value store of fixed-size records.
// Nothing in a Store is ever updated or deleted:
// an address, once occupied, keeps the same bytes forever.
type Store interface {
	Getter

	// Create stores data at addr if nothing is stored there yet.
	// It returns true iff the data had to be added.
	// When it returns false the existing record is left untouched.
	//
	// Create must be atomic with respect to concurrent callers:
	// when several race to create the same address,
	// exactly one of them sees true,
	// and no reader ever observes a partially written record.
	Create(ctx context.Context, addr Address, data []byte) (added bool, err error)
}

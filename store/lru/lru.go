// Package lru implements a record store that acts as a least-recently-used cache for a nested record store.
package lru

import (
	"context"

	lru "github.com/hashicorp/golang-lru"

	"github.com/bobg/reportanchor"
	"github.com/bobg/reportanchor/store"
)

var _ reportanchor.Store = &Store{}

// Store implements a memory-based least-recently-used cache for a record store.
// Records never change once created,
// so a cached record never goes stale.
// Writes pass through to the underlying store.
// Absence is not cached,
// since another writer may fill an address at any time.
type Store struct {
	c *lru.Cache // Address->[]byte
	s reportanchor.Store
}

// New produces a new Store backed by `s` and caching up to `size` records.
func New(s reportanchor.Store, size int) (*Store, error) {
	c, err := lru.New(size)
	return &Store{s: s, c: c}, err
}

// Get gets the record at `addr`.
func (s *Store) Get(ctx context.Context, addr reportanchor.Address) ([]byte, error) {
	if got, ok := s.c.Get(addr); ok {
		return append([]byte(nil), got.([]byte)...), nil
	}
	data, err := s.s.Get(ctx, addr)
	if err != nil {
		return nil, err
	}
	s.c.Add(addr, append([]byte(nil), data...))
	return data, nil
}

// Create stores a record if the address is not yet occupied.
// Only a record this call actually added is cached;
// when the address was already taken,
// the bytes in the nested store may differ from data.
func (s *Store) Create(ctx context.Context, addr reportanchor.Address, data []byte) (bool, error) {
	added, err := s.s.Create(ctx, addr, data)
	if err != nil {
		return false, err
	}
	if added {
		s.c.Add(addr, append([]byte(nil), data...))
	}
	return added, nil
}

// ListAddrs produces all occupied addresses in the store, in lexicographic order.
func (s *Store) ListAddrs(ctx context.Context, start reportanchor.Address, f func(reportanchor.Address) error) error {
	return s.s.ListAddrs(ctx, start, f)
}

func init() {
	store.Register("lru", func(ctx context.Context, conf map[string]interface{}) (reportanchor.Store, error) {
		size, err := store.IntParam(conf, "size")
		if err != nil {
			return nil, err
		}
		nestedStore, err := store.CreateNested(ctx, conf)
		if err != nil {
			return nil, err
		}
		return New(nestedStore, size)
	})
}

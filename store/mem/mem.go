// Package mem implements an in-memory record store.
package mem

import (
	"context"
	"sort"
	"sync"

	"github.com/bobg/reportanchor"
	"github.com/bobg/reportanchor/store"
)

var _ reportanchor.Store = &Store{}

// Store is a memory-based implementation of a record store.
type Store struct {
	mu      sync.Mutex
	records map[reportanchor.Address][]byte
}

// New produces a new Store.
func New() *Store {
	return &Store{
		records: make(map[reportanchor.Address][]byte),
	}
}

// Get gets the record at `addr`.
func (s *Store) Get(_ context.Context, addr reportanchor.Address) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if data, ok := s.records[addr]; ok {
		return append([]byte(nil), data...), nil
	}
	return nil, reportanchor.ErrNotFound
}

// Create stores a record if the address is not yet occupied.
func (s *Store) Create(_ context.Context, addr reportanchor.Address, data []byte) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[addr]; ok {
		return false, nil
	}
	s.records[addr] = append([]byte(nil), data...)
	return true, nil
}

// ListAddrs produces all occupied addresses in the store, in lexicographic order.
func (s *Store) ListAddrs(ctx context.Context, start reportanchor.Address, f func(reportanchor.Address) error) error {
	s.mu.Lock()
	addrs := make([]reportanchor.Address, 0, len(s.records))
	for addr := range s.records {
		addrs = append(addrs, addr)
	}
	s.mu.Unlock()

	sort.Slice(addrs, func(i, j int) bool { return addrs[i].Less(addrs[j]) })
	index := sort.Search(len(addrs), func(n int) bool {
		return start.Less(addrs[n])
	})

	for i := index; i < len(addrs); i++ {
		err := f(addrs[i])
		if err != nil {
			return err
		}
	}
	return nil
}

func init() {
	store.Register("mem", func(context.Context, map[string]interface{}) (reportanchor.Store, error) {
		return New(), nil
	})
}

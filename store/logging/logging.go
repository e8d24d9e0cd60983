// Package logging implements a store that delegates everything to a nested store,
// logging operations as they happen.
package logging

import (
	"context"
	"log"

	"github.com/bobg/reportanchor"
	"github.com/bobg/reportanchor/store"
)

var _ reportanchor.Store = &Store{}

// Store wraps a nested store and logs each operation.
type Store struct {
	s      reportanchor.Store
	logger *log.Logger
}

// New produces a Store that logs to the standard logger.
func New(s reportanchor.Store) *Store {
	return NewWithLogger(s, log.Default())
}

// NewWithLogger produces a Store that logs to l.
func NewWithLogger(s reportanchor.Store, l *log.Logger) *Store {
	return &Store{s: s, logger: l}
}

func (s *Store) Get(ctx context.Context, addr reportanchor.Address) ([]byte, error) {
	data, err := s.s.Get(ctx, addr)
	if err != nil {
		s.logger.Printf("ERROR Get %s: %s", addr, err)
	} else {
		s.logger.Printf("Get %s", addr)
	}
	return data, err
}

func (s *Store) ListAddrs(ctx context.Context, start reportanchor.Address, f func(reportanchor.Address) error) error {
	s.logger.Printf("ListAddrs, start=%s", start)
	return s.s.ListAddrs(ctx, start, func(addr reportanchor.Address) error {
		err := f(addr)
		if err != nil {
			s.logger.Printf("  ERROR in ListAddrs: %s: %s", addr, err)
		} else {
			s.logger.Printf("  ListAddrs: %s", addr)
		}
		return err
	})
}

func (s *Store) Create(ctx context.Context, addr reportanchor.Address, data []byte) (bool, error) {
	added, err := s.s.Create(ctx, addr, data)
	if err != nil {
		s.logger.Printf("ERROR in Create %s: %s", addr, err)
	} else {
		s.logger.Printf("Create %s, added=%v", addr, added)
	}
	return added, err
}

func init() {
	store.Register("logging", func(ctx context.Context, conf map[string]interface{}) (reportanchor.Store, error) {
		nestedStore, err := store.CreateNested(ctx, conf)
		if err != nil {
			return nil, err
		}
		return New(nestedStore), nil
	})
}

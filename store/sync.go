package store

import (
	"context"
	"sort"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/bobg/reportanchor"
)

// Sync synchronizes two or more stores.
// It runs ListAddrs on all input stores.
// When an address is found to be occupied in some but not all stores,
// its record is created in the stores where it's missing.
//
// Records are never overwritten,
// so if two stores disagree about the bytes at some address
// (which should not happen)
// each keeps its own.
func Sync(ctx context.Context, stores []reportanchor.Store) error {
	if len(stores) < 2 {
		return nil
	}

	type tuple struct {
		s    reportanchor.Store
		ch   <-chan reportanchor.Address
		addr *reportanchor.Address
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	eg, ctx2 := errgroup.WithContext(ctx)

	tuples := make([]*tuple, 0, len(stores))
	for _, s := range stores {
		s := s
		ch := make(chan reportanchor.Address)
		eg.Go(func() error {
			defer close(ch)
			return s.ListAddrs(ctx2, reportanchor.Zero, func(addr reportanchor.Address) error {
				select {
				case <-ctx2.Done():
					return ctx2.Err()
				case ch <- addr:
				}
				return nil
			})
		})
		tuples = append(tuples, &tuple{s: s, ch: ch})
	}

	err := func() error {
		advance := tuples
		for {
			for _, tup := range advance {
				select {
				case <-ctx2.Done():
					return ctx2.Err()
				case addr, ok := <-tup.ch:
					if ok {
						tup.addr = &addr
					} else {
						tup.addr = nil
					}
				}
			}

			sort.Slice(tuples, func(i, j int) bool {
				ai := tuples[i].addr
				aj := tuples[j].addr
				if ai != nil {
					if aj != nil {
						return ai.Less(*aj)
					}
					return true
				}
				return false
			})

			if tuples[0].addr == nil {
				// We've reached the end of input on all channels.
				return nil
			}

			addr := *(tuples[0].addr)

			havers := []*tuple{tuples[0]}
			i := 1
			for i < len(tuples) && tuples[i].addr != nil && *(tuples[i].addr) == addr {
				havers = append(havers, tuples[i])
				i++
			}
			advance = havers

			if i == len(tuples) {
				continue
			}

			data, err := havers[0].s.Get(ctx, addr)
			if err != nil {
				return errors.Wrapf(err, "getting record at %s", addr)
			}

			for _, tup := range tuples[i:] {
				if _, err = tup.s.Create(ctx, addr, data); err != nil {
					return errors.Wrapf(err, "storing record at %s", addr)
				}
			}
		}
	}()

	// Unblock any listers still sending.
	cancel()
	waitErr := eg.Wait()

	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	if waitErr != nil && !errors.Is(waitErr, context.Canceled) {
		return errors.Wrap(waitErr, "listing addresses")
	}
	return err
}

// Package testutil holds conformance tests shared by the Store implementations.
package testutil

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/bobg/reportanchor"
)

// Addr produces a test address from a salt and a label.
func Addr(salt []byte, label string) reportanchor.Address {
	return reportanchor.Address(sha256.Sum256(append(append([]byte(nil), salt...), label...)))
}

// Salt produces random bytes for Addr,
// so tests against long-lived external stores do not collide with earlier runs.
func Salt(t *testing.T) []byte {
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		t.Fatal(err)
	}
	return salt
}

// CreateOnce checks the create-if-absent contract of a Store:
// a first Create adds the record,
// later ones report false and leave it alone,
// Get returns exactly what was stored,
// and concurrent creators of one address see exactly one success.
func CreateOnce(ctx context.Context, t *testing.T, store reportanchor.Store) {
	salt := Salt(t)

	var (
		addr   = Addr(salt, "create-once")
		first  = bytes.Repeat([]byte{1}, reportanchor.RecordSize)
		second = bytes.Repeat([]byte{2}, reportanchor.RecordSize)
	)

	_, err := store.Get(ctx, addr)
	if !errors.Is(err, reportanchor.ErrNotFound) {
		t.Fatalf("got error %v before create, want %v", err, reportanchor.ErrNotFound)
	}

	added, err := store.Create(ctx, addr, first)
	if err != nil {
		t.Fatal(err)
	}
	if !added {
		t.Fatal("first create reported not added")
	}

	added, err = store.Create(ctx, addr, second)
	if err != nil {
		t.Fatal(err)
	}
	if added {
		t.Error("second create reported added")
	}

	got, err := store.Get(ctx, addr)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(first, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}

	const n = 8

	var (
		racy  = Addr(salt, "concurrent")
		wg    sync.WaitGroup
		mu    sync.Mutex
		wins  []int
		errch = make(chan error, n)
	)
	for i := 0; i < n; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			data := bytes.Repeat([]byte{byte(i)}, reportanchor.RecordSize)
			added, err := store.Create(ctx, racy, data)
			if err != nil {
				errch <- err
				return
			}
			if added {
				mu.Lock()
				wins = append(wins, i)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	close(errch)
	for err := range errch {
		t.Fatal(err)
	}
	if len(wins) != 1 {
		t.Fatalf("got %d winning creators, want 1", len(wins))
	}

	got, err = store.Get(ctx, racy)
	if err != nil {
		t.Fatal(err)
	}
	if want := bytes.Repeat([]byte{byte(wins[0])}, reportanchor.RecordSize); !bytes.Equal(got, want) {
		t.Errorf("stored record is not the winner's (%d)", wins[0])
	}
}

// ListAddrs checks that a Store lists occupied addresses in order,
// starting after the given address.
// Addresses the test did not create are ignored.
func ListAddrs(ctx context.Context, t *testing.T, store reportanchor.Store) {
	var (
		salt = Salt(t)
		want []reportanchor.Address
		mine = make(map[reportanchor.Address]bool)
	)
	for i := 0; i < 10; i++ {
		addr := Addr(salt, fmt.Sprintf("list-%d", i))
		if _, err := store.Create(ctx, addr, addr[:]); err != nil {
			t.Fatal(err)
		}
		want = append(want, addr)
		mine[addr] = true
	}
	sort.Slice(want, func(i, j int) bool { return want[i].Less(want[j]) })

	only := func(addrs []reportanchor.Address) []reportanchor.Address {
		var out []reportanchor.Address
		for _, addr := range addrs {
			if mine[addr] {
				out = append(out, addr)
			}
		}
		return out
	}

	got := only(AllAddrs(ctx, t, store, reportanchor.Zero))
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}

	got = only(AllAddrs(ctx, t, store, want[4]))
	if diff := cmp.Diff(want[5:], got); diff != "" {
		t.Errorf("mismatch after %s (-want +got):\n%s", want[4], diff)
	}

	stop := errors.New("stop")
	var calls int
	err := store.ListAddrs(ctx, reportanchor.Zero, func(reportanchor.Address) error {
		calls++
		return stop
	})
	if !errors.Is(err, stop) {
		t.Errorf("got error %v from callback, want %v", err, stop)
	}
	if calls != 1 {
		t.Errorf("callback ran %d times after returning an error, want 1", calls)
	}
}

// AllAddrs collects the addresses ListAddrs produces after start.
func AllAddrs(ctx context.Context, t *testing.T, store reportanchor.Getter, start reportanchor.Address) []reportanchor.Address {
	var out []reportanchor.Address
	err := store.ListAddrs(ctx, start, func(addr reportanchor.Address) error {
		out = append(out, addr)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	return out
}

package lru

import (
	"context"
	"errors"
	"testing"

	"github.com/bobg/reportanchor"
	"github.com/bobg/reportanchor/store"
	"github.com/bobg/reportanchor/store/mem"
	"github.com/bobg/reportanchor/testutil"
)

func TestStore(t *testing.T) {
	s, err := New(mem.New(), 1000)
	if err != nil {
		t.Fatal(err)
	}
	testutil.CreateOnce(context.Background(), t, s)
}

func TestListAddrs(t *testing.T) {
	s, err := New(mem.New(), 1000)
	if err != nil {
		t.Fatal(err)
	}
	testutil.ListAddrs(context.Background(), t, s)
}

func TestRegistry(t *testing.T) {
	s, err := New(mem.New(), 2)
	if err != nil {
		t.Fatal(err)
	}
	testutil.Registry(context.Background(), t, s)
}

type countingStore struct {
	reportanchor.Store
	gets int
}

func (c *countingStore) Get(ctx context.Context, addr reportanchor.Address) ([]byte, error) {
	c.gets++
	return c.Store.Get(ctx, addr)
}

func TestCaching(t *testing.T) {
	var (
		ctx    = context.Background()
		nested = &countingStore{Store: mem.New()}
		addr   = testutil.Addr(nil, "cached")
		other  = testutil.Addr(nil, "created elsewhere")
	)

	s, err := New(nested, 10)
	if err != nil {
		t.Fatal(err)
	}

	if _, err = s.Create(ctx, addr, []byte("record")); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if _, err = s.Get(ctx, addr); err != nil {
			t.Fatal(err)
		}
	}
	if nested.gets != 0 {
		t.Errorf("got %d nested gets for a record created through the cache, want 0", nested.gets)
	}

	// A miss is not remembered.
	_, err = s.Get(ctx, other)
	if !errors.Is(err, reportanchor.ErrNotFound) {
		t.Fatalf("got error %v, want %v", err, reportanchor.ErrNotFound)
	}
	if _, err = nested.Create(ctx, other, []byte("theirs")); err != nil {
		t.Fatal(err)
	}
	got, err := s.Get(ctx, other)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "theirs" {
		t.Errorf("got %q, want %q", got, "theirs")
	}

	// A losing create must not poison the cache with the loser's bytes.
	added, err := s.Create(ctx, other, []byte("mine"))
	if err != nil {
		t.Fatal(err)
	}
	if added {
		t.Fatal("create of an occupied address reported added")
	}
	got, err = s.Get(ctx, other)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "theirs" {
		t.Errorf("got %q after losing create, want %q", got, "theirs")
	}
}

func TestFactory(t *testing.T) {
	ctx := context.Background()
	s, err := store.Create(ctx, "lru", map[string]interface{}{
		"size":   float64(5),
		"nested": map[string]interface{}{"type": "mem"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := s.(*Store); !ok {
		t.Errorf("got %T, want *Store", s)
	}
}

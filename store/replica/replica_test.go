package replica

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/bobg/reportanchor"
	"github.com/bobg/reportanchor/store"
	"github.com/bobg/reportanchor/store/mem"
	"github.com/bobg/reportanchor/testutil"
)

// notifyStore signals on created after each Create.
type notifyStore struct {
	*mem.Store
	created chan reportanchor.Address
	err     error
}

func (s *notifyStore) Create(ctx context.Context, addr reportanchor.Address, data []byte) (bool, error) {
	if s.err != nil {
		s.created <- addr
		return false, s.err
	}
	added, err := s.Store.Create(ctx, addr, data)
	s.created <- addr
	return added, err
}

func newNotifyStore() *notifyStore {
	return &notifyStore{Store: mem.New(), created: make(chan reportanchor.Address, 100)}
}

func waitFor(t *testing.T, s *notifyStore, want reportanchor.Address) {
	t.Helper()
	select {
	case got := <-s.created:
		if got != want {
			t.Fatalf("mirror created %s, want %s", got, want)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for mirror to create %s", want)
	}
}

func TestMirrors(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		primary = mem.New()
		m1      = newNotifyStore()
		m2      = newNotifyStore()
		s       = New(ctx, primary, []reportanchor.Store{m1, m2}, 1)
		addr    = testutil.Addr(nil, "mirrored")
		other   = testutil.Addr(nil, "primary only")
	)

	// Present in the primary before the replica sees it.
	if _, err := primary.Create(ctx, other, []byte("old")); err != nil {
		t.Fatal(err)
	}

	added, err := s.Create(ctx, addr, []byte("new"))
	if err != nil {
		t.Fatal(err)
	}
	if !added {
		t.Fatal("record not added")
	}
	waitFor(t, m1, addr)
	waitFor(t, m2, addr)

	added, err = s.Create(ctx, other, []byte("newer"))
	if err != nil {
		t.Fatal(err)
	}
	if added {
		t.Error("existing primary record reported as added")
	}

	for name, m := range map[string]*notifyStore{"m1": m1, "m2": m2} {
		got := testutil.AllAddrs(ctx, t, m, reportanchor.Zero)
		if diff := cmp.Diff([]reportanchor.Address{addr}, got); diff != "" {
			t.Errorf("%s mismatch (-want +got):\n%s", name, diff)
		}
	}

	data, err := s.Get(ctx, other)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "old" {
		t.Errorf("got %q, want old", data)
	}
}

func TestStore(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := New(ctx, mem.New(), []reportanchor.Store{mem.New()}, 10)
	testutil.CreateOnce(ctx, t, s)
	testutil.ListAddrs(ctx, t, s)
	testutil.Registry(ctx, t, s)
}

func TestMirrorFailure(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		boom = errors.New("boom")
		m    = newNotifyStore()
		s    = New(ctx, mem.New(), []reportanchor.Store{m}, 1)
		addr = testutil.Addr(nil, "doomed")
	)
	m.err = boom

	if _, err := s.Create(ctx, addr, []byte("x")); err != nil {
		t.Fatal(err)
	}
	waitFor(t, m, addr)

	deadline := time.Now().Add(5 * time.Second)
	for {
		_, err := s.Get(ctx, addr)
		if errors.Is(err, boom) {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("got error %v, want %v", err, boom)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestFactory(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	conf := map[string]interface{}{
		"primary":  map[string]interface{}{"type": "mem"},
		"mirrors":  []interface{}{map[string]interface{}{"type": "mem"}},
		"queuelen": float64(4),
	}
	s, err := store.Create(ctx, "replica", conf)
	if err != nil {
		t.Fatal(err)
	}
	r := s.(*Store)
	defer r.Close()
	if len(r.mirrors) != 1 {
		t.Errorf("got %d mirrors, want 1", len(r.mirrors))
	}
	testutil.CreateOnce(ctx, t, s)

	if _, err = store.Create(ctx, "replica", map[string]interface{}{}); err == nil {
		t.Error("created replica with no primary")
	}
}

// stallStore blocks every Create until ctx is done.
type stallStore struct {
	*mem.Store
}

func (s stallStore) Create(ctx context.Context, _ reportanchor.Address, _ []byte) (bool, error) {
	<-ctx.Done()
	return false, ctx.Err()
}

func TestCanceledWhileQueueFull(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		primary = mem.New()
		s       = New(ctx, primary, []reportanchor.Store{stallStore{Store: mem.New()}}, 1)
		reg     = reportanchor.NewRegistry(s, reportanchor.DefaultOwner)
		r, _    = testutil.Identity(t)
		hash    = reportanchor.Digest(testutil.Addr(nil, "third"))
	)

	// The first record occupies the stalled mirror, the second fills its queue.
	for _, label := range []string{"first", "second"} {
		if _, err := reg.Anchor(ctx, r, r, reportanchor.Digest(testutil.Addr(nil, label))); err != nil {
			t.Fatal(err)
		}
	}

	canceled, cancelNow := context.WithCancel(ctx)
	cancelNow()

	rep, err := reg.Anchor(canceled, r, r, hash)
	if err != nil {
		t.Fatalf("anchor with a full mirror queue: %s", err)
	}

	got, err := reg.Verify(ctx, r, hash)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(rep, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

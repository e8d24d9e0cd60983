package testutil

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/bobg/reportanchor"
)

// Identity produces a fresh random reporter identity and its private key.
func Identity(t *testing.T) (reportanchor.Identity, ed25519.PrivateKey) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	var id reportanchor.Identity
	copy(id[:], pub)
	return id, priv
}

// FixedClock always reports the same time.
func FixedClock(t time.Time) reportanchor.Clock {
	return reportanchor.ClockFunc(func() time.Time { return t })
}

// Registry runs the anchor/verify properties against a Registry backed by store.
func Registry(ctx context.Context, t *testing.T, store reportanchor.Store) {
	var (
		t0     = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
		reg    = reportanchor.NewRegistry(store, reportanchor.DefaultOwner, reportanchor.WithClock(FixedClock(t0)))
		r1, _  = Identity(t)
		r2, _  = Identity(t)
		wallet = reportanchor.Identity(sha256.Sum256([]byte("analyzed wallet")))
		hash   = reportanchor.Digest(sha256.Sum256([]byte("payload")))
	)

	want := reportanchor.Report{
		Reporter:       r1,
		AnalyzedWallet: wallet,
		ReportHash:     hash,
		CreatedAt:      t0.Unix(),
	}

	_, err := reg.Verify(ctx, r1, hash)
	if !errors.Is(err, reportanchor.ErrNotFound) {
		t.Fatalf("got error %v before anchoring, want %v", err, reportanchor.ErrNotFound)
	}

	got, err := reg.Anchor(ctx, r1, wallet, hash)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("anchored record mismatch (-want +got):\n%s", diff)
	}

	other := reportanchor.Identity(sha256.Sum256([]byte("some other wallet")))
	_, err = reg.Anchor(ctx, r1, other, hash)
	if !errors.Is(err, reportanchor.ErrDuplicateReport) {
		t.Errorf("got error %v re-anchoring, want %v", err, reportanchor.ErrDuplicateReport)
	}

	got, err = reg.Verify(ctx, r1, hash)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("verified record mismatch (-want +got):\n%s", diff)
	}

	_, err = reg.Verify(ctx, r2, hash)
	if !errors.Is(err, reportanchor.ErrNotFound) {
		t.Errorf("got error %v verifying another reporter, want %v", err, reportanchor.ErrNotFound)
	}

	got2, err := reg.Anchor(ctx, r2, wallet, hash)
	if err != nil {
		t.Fatal(err)
	}
	if got2.Reporter != r2 {
		t.Errorf("got reporter %s, want %s", got2.Reporter, r2)
	}

	a1, _, err := reg.Address(r1, hash)
	if err != nil {
		t.Fatal(err)
	}
	a2, _, err := reg.Address(r2, hash)
	if err != nil {
		t.Fatal(err)
	}
	if a1 == a2 {
		t.Error("two reporters share an address")
	}

	for _, r := range []reportanchor.Identity{r1, r2} {
		ok, err := reg.IsAnchored(ctx, r, hash)
		if err != nil {
			t.Fatal(err)
		}
		if !ok {
			t.Errorf("reporter %s not anchored", r)
		}
	}

	const n = 8

	var (
		r3, _ = Identity(t)
		wg    sync.WaitGroup
		mu    sync.Mutex
		wins  int
		dups  int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := reg.Anchor(ctx, r3, wallet, hash)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
			case errors.Is(err, reportanchor.ErrDuplicateReport):
				dups++
			default:
				t.Error(err)
			}
		}()
	}
	wg.Wait()
	if wins != 1 || dups != n-1 {
		t.Errorf("got %d successes and %d duplicates, want 1 and %d", wins, dups, n-1)
	}
}

package derive

import (
	"crypto/sha256"
	stderrs "errors"
	"testing"

	"filippo.io/edwards25519"
)

var (
	owner    = sha256.Sum256([]byte("owner"))
	reporter = sha256.Sum256([]byte("reporter"))
	hash     = sha256.Sum256([]byte("payload"))
	tag      = []byte("report")
)

func TestDeterministic(t *testing.T) {
	d := New(owner)

	a1, b1, err := d.Derive(tag, reporter, hash)
	if err != nil {
		t.Fatal(err)
	}
	a2, b2, err := New(owner).Derive(tag, reporter, hash)
	if err != nil {
		t.Fatal(err)
	}
	if a1 != a2 || b1 != b2 {
		t.Errorf("got (%x, %d) then (%x, %d)", a1, b1, a2, b2)
	}
	if OnCurve(a1) {
		t.Errorf("derived address %x is on the curve", a1)
	}
	if a1 != d.Candidate(tag, reporter, hash, b1) {
		t.Error("derived address does not match its candidate")
	}
}

func TestSeparation(t *testing.T) {
	d := New(owner)

	var (
		reporter2 = sha256.Sum256([]byte("reporter2"))
		hash2     = sha256.Sum256([]byte("payload2"))
	)

	cases := []struct {
		name     string
		tag      []byte
		reporter [Size]byte
		hash     [Size]byte
	}{
		{name: "base", tag: tag, reporter: reporter, hash: hash},
		{name: "reporter", tag: tag, reporter: reporter2, hash: hash},
		{name: "hash", tag: tag, reporter: reporter, hash: hash2},
		{name: "tag", tag: []byte("other"), reporter: reporter, hash: hash},
		{name: "swapped", tag: tag, reporter: hash, hash: reporter},
		{name: "empty tag", tag: nil, reporter: reporter, hash: hash},
	}

	seen := make(map[[Size]byte]string)
	for _, c := range cases {
		addr, _, err := d.Derive(c.tag, c.reporter, c.hash)
		if err != nil {
			t.Fatalf("%s: %s", c.name, err)
		}
		if prev, ok := seen[addr]; ok {
			t.Errorf("%s and %s derive the same address %x", prev, c.name, addr)
		}
		seen[addr] = c.name
	}
}

func TestOwnerSeparation(t *testing.T) {
	other := sha256.Sum256([]byte("other owner"))

	a1, _, err := New(owner).Derive(tag, reporter, hash)
	if err != nil {
		t.Fatal(err)
	}
	a2, _, err := New(other).Derive(tag, reporter, hash)
	if err != nil {
		t.Fatal(err)
	}
	if a1 == a2 {
		t.Error("different owners derived the same address")
	}
}

func TestBumpSearch(t *testing.T) {
	plain := New(owner)

	// Reserve the first three candidates.
	var reserved [][Size]byte
	for bump := uint8(0); bump < 3; bump++ {
		reserved = append(reserved, plain.Candidate(tag, reporter, hash, bump))
	}

	d := &Deriver{
		Owner: owner,
		Reserved: func(addr [Size]byte) bool {
			for _, r := range reserved {
				if r == addr {
					return true
				}
			}
			return false
		},
	}

	addr, bump, err := d.Derive(tag, reporter, hash)
	if err != nil {
		t.Fatal(err)
	}
	if bump != 3 {
		t.Errorf("got bump %d, want 3", bump)
	}
	if addr != plain.Candidate(tag, reporter, hash, 3) {
		t.Error("address does not match candidate for bump 3")
	}
}

func TestExhausted(t *testing.T) {
	var calls int
	d := &Deriver{
		Owner: owner,
		Reserved: func([Size]byte) bool {
			calls++
			return true
		},
	}

	_, _, err := d.Derive(tag, reporter, hash)
	if !stderrs.Is(err, ErrAddressSpaceExhausted) {
		t.Fatalf("got error %v, want %v", err, ErrAddressSpaceExhausted)
	}
	if calls != 256 {
		t.Errorf("checked %d candidates, want 256", calls)
	}
}

func TestTagTooLong(t *testing.T) {
	long := make([]byte, MaxTagLen+1)
	_, _, err := New(owner).Derive(long, reporter, hash)
	if !stderrs.Is(err, ErrTagTooLong) {
		t.Errorf("got error %v, want %v", err, ErrTagTooLong)
	}
}

func TestOnCurve(t *testing.T) {
	var base [Size]byte
	copy(base[:], edwards25519.NewGeneratorPoint().Bytes())
	if !OnCurve(base) {
		t.Error("generator point reported off the curve")
	}

	var on, off int
	for i := 0; i < 64; i++ {
		if OnCurve(sha256.Sum256([]byte{byte(i)})) {
			on++
		} else {
			off++
		}
	}
	if on == 0 || off == 0 {
		t.Errorf("got %d on-curve and %d off-curve hashes, want some of each", on, off)
	}
}

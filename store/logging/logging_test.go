package logging

import (
	"bytes"
	"context"
	"log"
	"strings"
	"testing"

	"github.com/bobg/reportanchor/store/mem"
	"github.com/bobg/reportanchor/testutil"
)

func TestStore(t *testing.T) {
	var buf bytes.Buffer
	testutil.CreateOnce(context.Background(), t, NewWithLogger(mem.New(), log.New(&buf, "", 0)))
}

func TestRegistry(t *testing.T) {
	var buf bytes.Buffer
	testutil.Registry(context.Background(), t, NewWithLogger(mem.New(), log.New(&buf, "", 0)))
}

func TestLogLines(t *testing.T) {
	var (
		ctx  = context.Background()
		buf  bytes.Buffer
		s    = NewWithLogger(mem.New(), log.New(&buf, "", 0))
		addr = testutil.Addr(nil, "logged")
	)

	if _, err := s.Get(ctx, addr); err == nil {
		t.Fatal("got no error for a missing record")
	}
	if _, err := s.Create(ctx, addr, []byte("x")); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Create(ctx, addr, []byte("x")); err != nil {
		t.Fatal(err)
	}

	want := []string{
		"ERROR Get " + addr.String() + ": not found",
		"Create " + addr.String() + ", added=true",
		"Create " + addr.String() + ", added=false",
	}
	got := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(got) != len(want) {
		t.Fatalf("got %d log lines, want %d:\n%s", len(got), len(want), buf.String())
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

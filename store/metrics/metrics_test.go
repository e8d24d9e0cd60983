package metrics

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/bobg/reportanchor/store/mem"
	rtestutil "github.com/bobg/reportanchor/testutil"
)

func TestStore(t *testing.T) {
	rtestutil.CreateOnce(context.Background(), t, New(mem.New(), prometheus.NewRegistry()))
}

func TestCounts(t *testing.T) {
	var (
		ctx  = context.Background()
		s    = New(mem.New(), prometheus.NewRegistry())
		addr = rtestutil.Addr(nil, "counted")
	)

	if _, err := s.Get(ctx, addr); err == nil {
		t.Fatal("got no error for a missing record")
	}
	for i := 0; i < 3; i++ {
		if _, err := s.Create(ctx, addr, []byte("x")); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := s.Get(ctx, addr); err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		c    prometheus.Collector
		want float64
	}{
		{c: s.creates.WithLabelValues(ResultAdded), want: 1},
		{c: s.creates.WithLabelValues(ResultDuplicate), want: 2},
		{c: s.creates.WithLabelValues(ResultError), want: 0},
		{c: s.gets.WithLabelValues(ResultFound), want: 1},
		{c: s.gets.WithLabelValues(ResultNotFound), want: 1},
	}
	for i, c := range cases {
		if got := testutil.ToFloat64(c.c); got != c.want {
			t.Errorf("case %d: got %v, want %v", i, got, c.want)
		}
	}
}

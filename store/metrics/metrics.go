// Package metrics implements a store that delegates everything to a nested store,
// recording Prometheus metrics as it goes.
package metrics

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bobg/reportanchor"
	"github.com/bobg/reportanchor/store"
)

var _ reportanchor.Store = &Store{}

// Outcomes used in the "result" label.
const (
	ResultAdded     = "added"
	ResultDuplicate = "duplicate"
	ResultFound     = "found"
	ResultNotFound  = "not_found"
	ResultError     = "error"
)

// Store wraps a nested store and counts its operations.
type Store struct {
	s reportanchor.Store

	creates  *prometheus.CounterVec
	gets     *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// New produces a Store whose metrics are registered with reg.
func New(s reportanchor.Store, reg prometheus.Registerer) *Store {
	f := promauto.With(reg)
	return &Store{
		s: s,
		creates: f.NewCounterVec(prometheus.CounterOpts{
			Name: "reportanchor_store_creates_total",
			Help: "Record create attempts, by result",
		}, []string{"result"}),
		gets: f.NewCounterVec(prometheus.CounterOpts{
			Name: "reportanchor_store_gets_total",
			Help: "Record reads, by result",
		}, []string{"result"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "reportanchor_store_op_duration_ms",
			Help:    "Latency of store operations in milliseconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50, 100},
		}, []string{"op"}),
	}
}

func (s *Store) observe(op string, start time.Time) {
	s.duration.WithLabelValues(op).Observe(float64(time.Since(start).Microseconds()) / 1000.0)
}

// Get implements reportanchor.Getter.
func (s *Store) Get(ctx context.Context, addr reportanchor.Address) ([]byte, error) {
	defer s.observe("get", time.Now())

	data, err := s.s.Get(ctx, addr)
	switch {
	case err == nil:
		s.gets.WithLabelValues(ResultFound).Inc()
	case errors.Is(err, reportanchor.ErrNotFound):
		s.gets.WithLabelValues(ResultNotFound).Inc()
	default:
		s.gets.WithLabelValues(ResultError).Inc()
	}
	return data, err
}

// Create implements reportanchor.Store.
func (s *Store) Create(ctx context.Context, addr reportanchor.Address, data []byte) (bool, error) {
	defer s.observe("create", time.Now())

	added, err := s.s.Create(ctx, addr, data)
	switch {
	case err != nil:
		s.creates.WithLabelValues(ResultError).Inc()
	case added:
		s.creates.WithLabelValues(ResultAdded).Inc()
	default:
		s.creates.WithLabelValues(ResultDuplicate).Inc()
	}
	return added, err
}

// ListAddrs implements reportanchor.Getter.
func (s *Store) ListAddrs(ctx context.Context, start reportanchor.Address, f func(reportanchor.Address) error) error {
	defer s.observe("list", time.Now())
	return s.s.ListAddrs(ctx, start, f)
}

func init() {
	store.Register("metrics", func(ctx context.Context, conf map[string]interface{}) (reportanchor.Store, error) {
		nestedStore, err := store.CreateNested(ctx, conf)
		if err != nil {
			return nil, err
		}
		return New(nestedStore, prometheus.DefaultRegisterer), nil
	})
}

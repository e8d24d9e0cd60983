// Package events implements sinks for registry events.
package events

import (
	"context"
	"log"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/bobg/reportanchor"
)

var (
	_ reportanchor.Sink = &LogSink{}
	_ reportanchor.Sink = Fanout{}
	_ reportanchor.Sink = &Recorder{}
)

// LogSink writes each event as a log line.
type LogSink struct {
	Logger *log.Logger // if nil, the standard logger is used
}

// Emit implements reportanchor.Sink.
func (s *LogSink) Emit(_ context.Context, e reportanchor.Event) error {
	l := s.Logger
	if l == nil {
		l = log.Default()
	}
	l.Printf("%s %s (bump %d): %s", e.Kind, e.Address, e.Bump, e.Report)
	return nil
}

// Fanout delivers each event to several sinks concurrently.
// It returns the first error any of them reports,
// after all have finished.
type Fanout []reportanchor.Sink

// Emit implements reportanchor.Sink.
func (f Fanout) Emit(ctx context.Context, e reportanchor.Event) error {
	var g errgroup.Group
	for _, s := range f {
		s := s
		g.Go(func() error {
			return s.Emit(ctx, e)
		})
	}
	return g.Wait()
}

// Recorder keeps every event it receives, in order.
type Recorder struct {
	mu     sync.Mutex
	events []reportanchor.Event
}

// Emit implements reportanchor.Sink.
func (r *Recorder) Emit(_ context.Context, e reportanchor.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []reportanchor.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]reportanchor.Event(nil), r.events...)
}

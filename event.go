package reportanchor

import "context"

// EventKind names what happened to a record.
type EventKind string

const (
	Anchored EventKind = "anchored"
	Verified EventKind = "verified"
)

// Event is emitted by a Registry for external auditing.
// It carries all four fields of the record plus where it lives.
type Event struct {
	Kind    EventKind `json:"kind"`
	Report  Report    `json:"report"`
	Address Address   `json:"address"`
	Bump    uint8     `json:"bump"`
}

// Sink receives events from a Registry.
type Sink interface {
	Emit(context.Context, Event) error
}

type nopSink struct{}

func (nopSink) Emit(context.Context, Event) error { return nil }

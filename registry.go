package reportanchor

import (
	"context"
	"crypto/sha256"
	stderrs "errors"
	"fmt"
	"log"

	"github.com/pkg/errors"

	"github.com/bobg/reportanchor/derive"
)

// ReportNamespace is the namespace tag for report addresses.
const ReportNamespace = "report"

// DefaultOwner is the owner identity used when none is configured.
var DefaultOwner = Identity(sha256.Sum256([]byte("privacy-report-anchor")))

// Registry anchors reports in a Store and reads them back.
// It holds no mutable state of its own:
// every guarantee about uniqueness comes from Store.Create.
type Registry struct {
	s     Store
	d     *derive.Deriver
	clock Clock
	sink  Sink
}

// Option configures a Registry.
type Option func(*Registry)

// WithClock sets the source of CreatedAt timestamps.
// The default is RealClock.
func WithClock(c Clock) Option {
	return func(r *Registry) { r.clock = c }
}

// WithSink sets where events go.
// By default they are discarded.
func WithSink(s Sink) Option {
	return func(r *Registry) { r.sink = s }
}

// WithDeriver replaces the Deriver built from the owner identity.
func WithDeriver(d *derive.Deriver) Option {
	return func(r *Registry) { r.d = d }
}

// NewRegistry produces a Registry storing records in s
// at addresses owned by owner.
func NewRegistry(s Store, owner Identity, opts ...Option) *Registry {
	r := &Registry{
		s:     s,
		d:     derive.New(owner),
		clock: RealClock,
		sink:  nopSink{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Address computes where the record for (reporter, reportHash) lives,
// whether or not it has been anchored.
func (r *Registry) Address(reporter Identity, reportHash Digest) (Address, uint8, error) {
	addr, bump, err := r.d.Derive([]byte(ReportNamespace), reporter, reportHash)
	return Address(addr), bump, err
}

// Anchor creates the record binding reportHash to reporter and analyzedWallet.
// The caller must already have authenticated reporter;
// see AnchorSigned.
//
// Each (reporter, reportHash) pair can be anchored once.
// A second attempt fails with ErrDuplicateReport and leaves the first record as it was.
//
// If the record is stored but the anchored event cannot be emitted,
// Anchor returns the stored record together with an error wrapping both ErrEmit and the sink's error.
func (r *Registry) Anchor(ctx context.Context, reporter, analyzedWallet Identity, reportHash Digest) (Report, error) {
	if reportHash.IsZero() {
		return Report{}, errors.Wrap(ErrInvalidHash, "all-zero digest")
	}

	addr, bump, err := r.Address(reporter, reportHash)
	if err != nil {
		return Report{}, errors.Wrapf(err, "deriving address for reporter %s, hash %s", reporter, reportHash)
	}

	rep := Report{
		Reporter:       reporter,
		AnalyzedWallet: analyzedWallet,
		ReportHash:     reportHash,
		CreatedAt:      r.clock.Now().Unix(),
	}
	data, err := rep.MarshalBinary()
	if err != nil {
		return Report{}, errors.Wrap(err, "encoding record")
	}

	added, err := r.s.Create(ctx, addr, data)
	if err != nil {
		return Report{}, errors.Wrapf(err, "creating record at %s", addr)
	}
	if !added {
		return Report{}, errors.Wrapf(ErrDuplicateReport, "address %s", addr)
	}

	if err = r.sink.Emit(ctx, Event{Kind: Anchored, Report: rep, Address: addr, Bump: bump}); err != nil {
		return rep, fmt.Errorf("%w for %s: %w", ErrEmit, addr, err)
	}
	return rep, nil
}

// Verify returns the record anchored for (reporter, reportHash),
// or ErrNotFound if there is none.
// It never modifies the store and needs no authentication.
// A failure to emit the verified event is logged, not returned.
func (r *Registry) Verify(ctx context.Context, reporter Identity, reportHash Digest) (Report, error) {
	addr, bump, err := r.Address(reporter, reportHash)
	if err != nil {
		return Report{}, errors.Wrapf(err, "deriving address for reporter %s, hash %s", reporter, reportHash)
	}

	data, err := r.s.Get(ctx, addr)
	if stderrs.Is(err, ErrNotFound) {
		return Report{}, ErrNotFound
	}
	if err != nil {
		return Report{}, errors.Wrapf(err, "reading record at %s", addr)
	}

	var rep Report
	if err = rep.UnmarshalBinary(data); err != nil {
		return Report{}, errors.Wrapf(err, "decoding record at %s", addr)
	}
	if rep.Reporter != reporter || rep.ReportHash != reportHash {
		return Report{}, errors.Wrapf(ErrCorruptRecord, "record at %s belongs to reporter %s, hash %s", addr, rep.Reporter, rep.ReportHash)
	}

	if err = r.sink.Emit(ctx, Event{Kind: Verified, Report: rep, Address: addr, Bump: bump}); err != nil {
		log.Printf("ERROR emitting verified event for %s: %s", addr, err)
	}
	return rep, nil
}

// IsAnchored tells whether a record exists for (reporter, reportHash).
func (r *Registry) IsAnchored(ctx context.Context, reporter Identity, reportHash Digest) (bool, error) {
	addr, _, err := r.Address(reporter, reportHash)
	if err != nil {
		return false, errors.Wrapf(err, "deriving address for reporter %s, hash %s", reporter, reportHash)
	}
	_, err = r.s.Get(ctx, addr)
	if stderrs.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrapf(err, "reading record at %s", addr)
	}
	return true, nil
}

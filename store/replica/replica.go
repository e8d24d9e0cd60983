// Package replica implements a record store that mirrors writes to other stores.
package replica

import (
	"context"
	"log"
	"reflect"
	"sync"

	"github.com/pkg/errors"

	"github.com/bobg/reportanchor"
	"github.com/bobg/reportanchor/store"
)

var _ reportanchor.Store = (*Store)(nil)

// Store is a record store that delegates to a primary store
// and copies newly created records to a set of mirrors.
//
// Only the primary decides whether a Create adds a record,
// so the create-once guarantee is exactly the primary's.
// Reads go only to the primary.
//
// Writes to the mirrors are asynchronous:
// a call to Create queues them but does not wait for them to finish.
// However, if any mirror write encounters an error,
// the whole Store is put into an error state and further operations will fail.
// Use store.Sync to repair a mirror that fell behind.
type Store struct {
	primary reportanchor.Store
	mirrors []mirrorChans
	cancel  context.CancelFunc

	mu  sync.Mutex // protects err
	err error      // the error from a mirror goroutine, if any
}

type record struct {
	addr reportanchor.Address
	data []byte
}

type mirrorChans struct {
	recs chan<- record
	errs <-chan error
}

// New produces a new Store.
// If there are any mirrors,
// goroutines are launched for them,
// and canceling the given context object causes those to exit,
// placing the Store in an error state.
//
// Normally, mirror writes do not block calls to Create,
// but the queue for each mirror has a fixed length given by n,
// which must be 1 or greater.
// If any mirror falls too far behind,
// Create will block until all requests can be queued.
func New(ctx context.Context, primary reportanchor.Store, mirrors []reportanchor.Store, n int) *Store {
	result := &Store{primary: primary}

	if len(mirrors) > 0 {
		ctx, result.cancel = context.WithCancel(ctx)

		selectCases := make([]reflect.SelectCase, 1+len(mirrors))

		for i, m := range mirrors {
			var (
				recs = make(chan record, n)
				errs = make(chan error, 1)
			)

			result.mirrors = append(result.mirrors, mirrorChans{recs: recs, errs: errs})

			selectCases[i].Dir = reflect.SelectRecv
			selectCases[i].Chan = reflect.ValueOf(errs)

			go runMirror(ctx, m, recs, errs)
		}

		selectCases[len(mirrors)].Dir = reflect.SelectRecv
		selectCases[len(mirrors)].Chan = reflect.ValueOf(ctx.Done())

		go func() {
			chosen, errval, ok := reflect.Select(selectCases)
			result.mu.Lock()
			defer result.mu.Unlock()
			if ok {
				result.err = errval.Interface().(error)
			} else if chosen == len(mirrors) {
				result.err = ctx.Err()
			}
			result.cancel()
		}()
	}

	return result
}

// Runs as a goroutine until ctx is canceled or an error occurs (which it writes to errs).
func runMirror(ctx context.Context, s reportanchor.Store, recs <-chan record, errs chan<- error) {
	defer close(errs)

	for {
		select {
		case <-ctx.Done():
			errs <- ctx.Err()
			return

		case rec := <-recs:
			if _, err := s.Create(ctx, rec.addr, rec.data); err != nil {
				errs <- errors.Wrapf(err, "mirroring %s", rec.addr)
				return
			}
		}
	}
}

// Create implements reportanchor.Store.
// The record is created in the primary store.
// If that adds it,
// a request to create it is queued for each mirror,
// and the result is (true, nil) even if ctx ends while a mirror queue is full.
// The skipped mirror writes are logged and left for store.Sync.
func (s *Store) Create(ctx context.Context, addr reportanchor.Address, data []byte) (bool, error) {
	if err := s.checkErr(); err != nil {
		return false, errors.Wrap(err, "in mirror goroutine")
	}

	added, err := s.primary.Create(ctx, addr, data)
	if err != nil || !added {
		return added, err
	}

	rec := record{addr: addr, data: append([]byte(nil), data...)}
	for i, m := range s.mirrors {
		select {
		case m.recs <- rec:
		case <-ctx.Done():
			// The record is committed in the primary,
			// so this is still a successful create.
			// The mirror catches up on the next store.Sync.
			log.Printf("replica: mirror %d queue full, not mirroring %s: %s", i, addr, ctx.Err())
		}
	}
	return true, nil
}

// Get implements reportanchor.Getter.
func (s *Store) Get(ctx context.Context, addr reportanchor.Address) ([]byte, error) {
	if err := s.checkErr(); err != nil {
		return nil, errors.Wrap(err, "in mirror goroutine")
	}
	return s.primary.Get(ctx, addr)
}

// ListAddrs implements reportanchor.Getter.
func (s *Store) ListAddrs(ctx context.Context, start reportanchor.Address, f func(reportanchor.Address) error) error {
	if err := s.checkErr(); err != nil {
		return errors.Wrap(err, "in mirror goroutine")
	}
	return s.primary.ListAddrs(ctx, start, f)
}

// Close stops the mirror goroutines.
// Records still queued are not written.
func (s *Store) Close() {
	if s.cancel != nil {
		s.cancel()
	}
}

func (s *Store) checkErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func init() {
	store.Register("replica", func(ctx context.Context, conf map[string]interface{}) (reportanchor.Store, error) {
		primaryConf, ok := conf["primary"].(map[string]interface{})
		if !ok {
			return nil, errors.New(`missing "primary" parameter`)
		}
		primary, err := createItem(ctx, primaryConf)
		if err != nil {
			return nil, errors.Wrap(err, "creating primary store")
		}

		var mirrors []reportanchor.Store
		items, _ := conf["mirrors"].([]interface{})
		for i, item := range items {
			nested, ok := item.(map[string]interface{})
			if !ok {
				return nil, errors.Errorf(`"mirrors" item %d is not an object`, i)
			}
			m, err := createItem(ctx, nested)
			if err != nil {
				return nil, errors.Wrapf(err, "creating mirror %d", i)
			}
			mirrors = append(mirrors, m)
		}

		queueLen := 10
		if _, ok := conf["queuelen"]; ok {
			queueLen, err = store.IntParam(conf, "queuelen")
			if err != nil {
				return nil, err
			}
			if queueLen < 1 {
				return nil, errors.Errorf("queue length %d, must be 1 or greater", queueLen)
			}
		}

		return New(ctx, primary, mirrors, queueLen), nil
	})
}

func createItem(ctx context.Context, conf map[string]interface{}) (reportanchor.Store, error) {
	typ, ok := conf["type"].(string)
	if !ok {
		return nil, errors.New(`missing "type"`)
	}
	return store.Create(ctx, typ, conf)
}

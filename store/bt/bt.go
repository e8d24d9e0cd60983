// Package bt implements a record store on Google Cloud Bigtable.
package bt

import (
	"context"
	"strings"

	"cloud.google.com/go/bigtable"
	"github.com/pkg/errors"
	"google.golang.org/api/option"

	"github.com/bobg/reportanchor"
	"github.com/bobg/reportanchor/store"
)

var _ reportanchor.Store = &Store{}

// Store is a Google Cloud Bigtable-backed implementation of a record store.
// The table must have a column family named by Family.
type Store struct {
	t *bigtable.Table
}

const (
	// Family is the column family holding records.
	Family = "rec"

	col       = "data"
	keyPrefix = "r:"
	keyLimit  = "r;" // first key after all keyPrefix keys
)

// New produces a new Store.
func New(t *bigtable.Table) *Store {
	return &Store{t: t}
}

// Get implements reportanchor.Getter.
func (s *Store) Get(ctx context.Context, addr reportanchor.Address) ([]byte, error) {
	row, err := s.t.ReadRow(ctx, recKey(addr), bigtable.RowFilter(bigtable.LatestNFilter(1)))
	if err != nil {
		return nil, errors.Wrapf(err, "reading row %s", addr)
	}
	items := row[Family]
	if len(items) == 0 {
		return nil, reportanchor.ErrNotFound
	}
	return items[0].Value, nil
}

// Create implements reportanchor.Store.
// It is a single conditional mutation,
// which Bigtable applies atomically:
// the record is written only if the row has no cells.
func (s *Store) Create(ctx context.Context, addr reportanchor.Address, data []byte) (bool, error) {
	mut := bigtable.NewMutation()
	mut.Set(Family, col, bigtable.Now(), data)

	cmut := bigtable.NewCondMutation(bigtable.LatestNFilter(1), nil, mut)

	var alreadyPresent bool
	err := s.t.Apply(ctx, recKey(addr), cmut, bigtable.GetCondMutationResult(&alreadyPresent))
	if err != nil {
		return false, errors.Wrapf(err, "applying conditional mutation for %s", addr)
	}
	return !alreadyPresent, nil
}

// ListAddrs implements reportanchor.Getter.
func (s *Store) ListAddrs(ctx context.Context, start reportanchor.Address, f func(reportanchor.Address) error) error {
	var innerErr error
	rowFn := func(row bigtable.Row) bool {
		key := row.Key()
		addr, err := addrFromKey(key)
		if err != nil {
			innerErr = errors.Wrapf(err, "extracting address from key %s", key)
			return false
		}
		err = f(addr)
		if err != nil {
			innerErr = err
			return false
		}
		return true
	}

	// Appending a zero byte makes the range start just after start itself.
	rng := bigtable.NewRange(recKey(start)+"\x00", keyLimit)

	err := s.t.ReadRows(ctx, rng, rowFn, bigtable.RowFilter(bigtable.StripValueFilter()))
	if err != nil {
		return errors.Wrap(err, "reading rows")
	}
	return innerErr
}

func recKey(addr reportanchor.Address) string {
	return keyPrefix + addr.Hex()
}

func addrFromKey(key string) (reportanchor.Address, error) {
	if !strings.HasPrefix(key, keyPrefix) {
		return reportanchor.Zero, errors.New("missing prefix")
	}
	return reportanchor.AddressFromHex(key[len(keyPrefix):])
}

func init() {
	store.Register("bt", func(ctx context.Context, conf map[string]interface{}) (reportanchor.Store, error) {
		project, ok := conf["project"].(string)
		if !ok {
			return nil, errors.New(`missing "project" parameter`)
		}
		instance, ok := conf["instance"].(string)
		if !ok {
			return nil, errors.New(`missing "instance" parameter`)
		}
		table, ok := conf["table"].(string)
		if !ok {
			return nil, errors.New(`missing "table" parameter`)
		}

		var options []option.ClientOption

		creds, ok := conf["creds"].(string)
		if !ok {
			return nil, errors.New(`missing "creds" parameter`)
		}
		options = append(options, option.WithCredentialsFile(creds))
		c, err := bigtable.NewClient(ctx, project, instance, options...)
		if err != nil {
			return nil, errors.Wrap(err, "creating bigtable client")
		}
		return New(c.Open(table)), nil
	})
}

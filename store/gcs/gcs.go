// Package gcs implements a record store on Google Cloud Storage.
package gcs

import (
	"context"
	stderrs "errors"
	"io"
	"net/http"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/pkg/errors"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/bobg/reportanchor"
	"github.com/bobg/reportanchor/store"
)

var _ reportanchor.Store = &Store{}

// Store is a Google Cloud Storage-based implementation of a record store.
type Store struct {
	bucket *storage.BucketHandle
}

// New produces a new Store.
func New(bucket *storage.BucketHandle) *Store {
	return &Store{bucket: bucket}
}

// Get gets the record at `addr`.
func (s *Store) Get(ctx context.Context, addr reportanchor.Address) ([]byte, error) {
	name := recObjName(addr)
	r, err := s.bucket.Object(name).NewReader(ctx)
	if stderrs.Is(err, storage.ErrObjectNotExist) {
		return nil, reportanchor.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "reading info of object %s", name)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	return data, errors.Wrapf(err, "reading contents of object %s", name)
}

// Create stores a record if the address is not yet occupied.
// The write carries a does-not-exist precondition,
// which Cloud Storage enforces atomically;
// a losing writer gets 412 Precondition Failed when it closes the object.
func (s *Store) Create(ctx context.Context, addr reportanchor.Address, data []byte) (bool, error) {
	var (
		name = recObjName(addr)
		obj  = s.bucket.Object(name).If(storage.Conditions{DoesNotExist: true})
		w    = obj.NewWriter(ctx)
	)

	_, err := w.Write(data)
	if err != nil {
		w.Close()
		if isPreconditionFailed(err) {
			return false, nil
		}
		return false, errors.Wrapf(err, "writing object %s", name)
	}

	err = w.Close()
	if isPreconditionFailed(err) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrapf(err, "closing object %s", name)
	}
	return true, nil
}

func isPreconditionFailed(err error) bool {
	var e *googleapi.Error
	return stderrs.As(err, &e) && e.Code == http.StatusPreconditionFailed
}

// ListAddrs produces all occupied addresses in the store, in lexicographic order.
func (s *Store) ListAddrs(ctx context.Context, start reportanchor.Address, f func(reportanchor.Address) error) error {
	// Google Cloud Storage iterators have no API for starting in the middle of a bucket.
	// But they can filter by object-name prefix.
	// So we take (the hex encoding of) `start` and repeatedly compute prefixes for the objects we want.
	// If `start` is e67a, for example, the sequence of generated prefixes is:
	//   e67b e67c e67d e67e e67f
	//   e68 e69 e6a e6b e6c e6d e6e e6f
	//   e7 e8 e9 ea eb ec ed ee ef
	//   f
	return eachHexPrefix(start.Hex(), false, func(prefix string) error {
		return s.listAddrs(ctx, prefix, f)
	})
}

func (s *Store) listAddrs(ctx context.Context, prefix string, f func(reportanchor.Address) error) error {
	iter := s.bucket.Objects(ctx, &storage.Query{Prefix: recPrefix + prefix})
	for {
		obj, err := iter.Next()
		if stderrs.Is(err, iterator.Done) {
			return nil
		}
		if err != nil {
			return errors.Wrap(err, "iterating over record objects")
		}
		addr, err := addrFromRecObjName(obj.Name)
		if err != nil {
			continue
		}
		err = f(addr)
		if err != nil {
			return err
		}
	}
}

func eachHexPrefix(prefix string, incl bool, f func(string) error) error {
	prefix = strings.ToLower(prefix)
	for len(prefix) > 0 {
		end := hexval(prefix[len(prefix)-1:][0])
		if !incl {
			end++
		}
		prefix = prefix[:len(prefix)-1]
		for c := end; c < 16; c++ {
			err := f(prefix + string(hexdigit(c)))
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func hexval(b byte) int {
	switch {
	case '0' <= b && b <= '9':
		return int(b - '0')
	case 'a' <= b && b <= 'f':
		return int(10 + b - 'a')
	case 'A' <= b && b <= 'F':
		return int(10 + b - 'A')
	}
	return 0
}

func hexdigit(n int) byte {
	if n < 10 {
		return byte(n + '0')
	}
	return byte(n - 10 + 'a')
}

const recPrefix = "r:"

func recObjName(addr reportanchor.Address) string {
	return recPrefix + addr.Hex()
}

func addrFromRecObjName(name string) (reportanchor.Address, error) {
	return reportanchor.AddressFromHex(strings.TrimPrefix(name, recPrefix))
}

func init() {
	store.Register("gcs", func(ctx context.Context, conf map[string]interface{}) (reportanchor.Store, error) {
		var options []option.ClientOption
		creds, ok := conf["creds"].(string)
		if !ok {
			return nil, errors.New(`missing "creds" parameter`)
		}
		bucketName, ok := conf["bucket"].(string)
		if !ok {
			return nil, errors.New(`missing "bucket" parameter`)
		}
		options = append(options, option.WithCredentialsFile(creds))
		c, err := storage.NewClient(ctx, options...)
		if err != nil {
			return nil, errors.Wrap(err, "creating cloud storage client")
		}
		return New(c.Bucket(bucketName)), nil
	})
}

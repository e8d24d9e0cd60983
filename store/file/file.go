// Package file implements a record store as a file hierarchy.
package file

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/pkg/errors"

	"github.com/bobg/reportanchor"
	"github.com/bobg/reportanchor/store"
)

var _ reportanchor.Store = &Store{}

// Store is a file-based implementation of a record store.
type Store struct {
	root string
}

// New produces a new Store storing data beneath `root`.
func New(root string) *Store {
	return &Store{root: root}
}

func (s *Store) recroot() string {
	return filepath.Join(s.root, "records")
}

func (s *Store) recpath(addr reportanchor.Address) string {
	h := addr.Hex()
	return filepath.Join(s.recroot(), h[:2], h[:4], h)
}

// Get gets the record at `addr`.
func (s *Store) Get(_ context.Context, addr reportanchor.Address) ([]byte, error) {
	path := s.recpath(addr)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, reportanchor.ErrNotFound
	}
	return data, errors.Wrapf(err, "reading %s", path)
}

// Create stores a record if the address is not yet occupied.
// The record is written to a temporary file first
// and then hard-linked into place,
// which fails if the target exists.
// So readers see either nothing or the whole record.
func (s *Store) Create(_ context.Context, addr reportanchor.Address, data []byte) (bool, error) {
	var (
		path = s.recpath(addr)
		dir  = filepath.Dir(path)
	)

	err := os.MkdirAll(dir, 0755)
	if err != nil {
		return false, errors.Wrapf(err, "ensuring path %s exists", dir)
	}

	if _, err = os.Stat(path); err == nil {
		return false, nil
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return false, errors.Wrapf(err, "creating temp file in %s", dir)
	}
	defer os.Remove(tmp.Name())

	_, err = tmp.Write(data)
	if err != nil {
		tmp.Close()
		return false, errors.Wrapf(err, "writing data to %s", tmp.Name())
	}
	if err = tmp.Sync(); err != nil {
		tmp.Close()
		return false, errors.Wrapf(err, "syncing %s", tmp.Name())
	}
	if err = tmp.Close(); err != nil {
		return false, errors.Wrapf(err, "closing %s", tmp.Name())
	}

	err = os.Link(tmp.Name(), path)
	if os.IsExist(err) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrapf(err, "linking %s", path)
	}

	return true, nil
}

// ListAddrs produces all occupied addresses in the store, in lexicographic order.
func (s *Store) ListAddrs(ctx context.Context, start reportanchor.Address, f func(reportanchor.Address) error) error {
	err := os.MkdirAll(s.recroot(), 0755)
	if err != nil {
		return errors.Wrapf(err, "ensuring %s exists", s.recroot())
	}

	topLevel, err := os.ReadDir(s.recroot())
	if err != nil {
		return errors.Wrapf(err, "reading dir %s", s.recroot())
	}

	startHex := start.Hex()
	topIndex := sort.Search(len(topLevel), func(n int) bool {
		return topLevel[n].Name() >= startHex[:2]
	})
	for i := topIndex; i < len(topLevel); i++ {
		topInfo := topLevel[i]
		if !topInfo.IsDir() {
			continue
		}
		topName := topInfo.Name()
		if len(topName) != 2 {
			continue
		}
		if _, err = strconv.ParseInt(topName, 16, 64); err != nil {
			continue
		}

		midLevel, err := os.ReadDir(filepath.Join(s.recroot(), topName))
		if err != nil {
			return errors.Wrapf(err, "reading dir %s/%s", s.recroot(), topName)
		}
		midIndex := sort.Search(len(midLevel), func(n int) bool {
			return midLevel[n].Name() >= startHex[:4]
		})
		for j := midIndex; j < len(midLevel); j++ {
			midInfo := midLevel[j]
			if !midInfo.IsDir() {
				continue
			}
			midName := midInfo.Name()
			if len(midName) != 4 {
				continue
			}
			if _, err = strconv.ParseInt(midName, 16, 64); err != nil {
				continue
			}

			recInfos, err := os.ReadDir(filepath.Join(s.recroot(), topName, midName))
			if err != nil {
				return errors.Wrapf(err, "reading dir %s/%s/%s", s.recroot(), topName, midName)
			}

			index := sort.Search(len(recInfos), func(n int) bool {
				return recInfos[n].Name() > startHex
			})
			for k := index; k < len(recInfos); k++ {
				recInfo := recInfos[k]
				if recInfo.IsDir() {
					continue
				}

				addr, err := reportanchor.AddressFromHex(recInfo.Name())
				if err != nil {
					continue
				}

				err = f(addr)
				if err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func init() {
	store.Register("file", func(_ context.Context, conf map[string]interface{}) (reportanchor.Store, error) {
		root, ok := conf["root"].(string)
		if !ok {
			return nil, errors.New(`missing "root" parameter`)
		}
		return New(root), nil
	})
}

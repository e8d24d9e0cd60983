// Package redis implements a record store in Redis.
package redis

import (
	"context"
	stderrs "errors"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/bobg/reportanchor"
	"github.com/bobg/reportanchor/store"
)

var _ reportanchor.Store = &Store{}

// DefaultPrefix is the key prefix used when none is configured.
const DefaultPrefix = "reportanchor:record:"

// Store is a Redis-based record store.
// Each record is a plain string key holding the record bytes.
// Keys never expire.
type Store struct {
	client redis.UniversalClient
	prefix string
}

// New produces a new Store.
// Keys are the hex form of the address following prefix.
func New(client redis.UniversalClient, prefix string) *Store {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Store{client: client, prefix: prefix}
}

func (s *Store) key(addr reportanchor.Address) string {
	return s.prefix + addr.Hex()
}

// Get gets the record at `addr`.
func (s *Store) Get(ctx context.Context, addr reportanchor.Address) ([]byte, error) {
	data, err := s.client.Get(ctx, s.key(addr)).Bytes()
	if stderrs.Is(err, redis.Nil) {
		return nil, reportanchor.ErrNotFound
	}
	return data, errors.Wrapf(err, "getting key %s", s.key(addr))
}

// Create stores a record if the address is not yet occupied.
// It uses SETNX,
// which Redis executes atomically.
func (s *Store) Create(ctx context.Context, addr reportanchor.Address, data []byte) (bool, error) {
	added, err := s.client.SetNX(ctx, s.key(addr), data, 0).Result()
	return added, errors.Wrapf(err, "setting key %s", s.key(addr))
}

// ListAddrs produces all occupied addresses in the store, in lexicographic order.
// Redis has no ordered key listing,
// so this scans all keys with the store's prefix and sorts them.
func (s *Store) ListAddrs(ctx context.Context, start reportanchor.Address, f func(reportanchor.Address) error) error {
	var addrs []reportanchor.Address

	iter := s.client.Scan(ctx, 0, s.prefix+"*", 1000).Iterator()
	for iter.Next(ctx) {
		addr, err := reportanchor.AddressFromHex(strings.TrimPrefix(iter.Val(), s.prefix))
		if err != nil {
			continue
		}
		if start.Less(addr) {
			addrs = append(addrs, addr)
		}
	}
	if err := iter.Err(); err != nil {
		return errors.Wrap(err, "scanning keys")
	}

	sort.Slice(addrs, func(i, j int) bool { return addrs[i].Less(addrs[j]) })

	// SCAN may return a key more than once.
	var prev *reportanchor.Address
	for i := range addrs {
		addr := addrs[i]
		if prev != nil && *prev == addr {
			continue
		}
		prev = &addrs[i]
		if err := f(addr); err != nil {
			return err
		}
	}
	return nil
}

func init() {
	store.Register("redis", func(ctx context.Context, conf map[string]interface{}) (reportanchor.Store, error) {
		url, ok := conf["url"].(string)
		if !ok {
			return nil, errors.New(`missing "url" parameter`)
		}
		opts, err := redis.ParseURL(url)
		if err != nil {
			return nil, errors.Wrapf(err, "parsing redis URL %s", url)
		}
		client := redis.NewClient(opts)
		if err = client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, errors.Wrap(err, "pinging redis")
		}
		prefix, _ := conf["prefix"].(string)
		return New(client, prefix), nil
	})
}

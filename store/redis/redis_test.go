package redis

import (
	"context"
	"os"
	"testing"

	"github.com/redis/go-redis/v9"

	"github.com/bobg/reportanchor/testutil"
)

func TestStore(t *testing.T) {
	withStore(t, func(ctx context.Context, store *Store) {
		testutil.CreateOnce(ctx, t, store)
	})
}

func TestListAddrs(t *testing.T) {
	withStore(t, func(ctx context.Context, store *Store) {
		testutil.ListAddrs(ctx, t, store)
	})
}

func TestRegistry(t *testing.T) {
	withStore(t, func(ctx context.Context, store *Store) {
		testutil.Registry(ctx, t, store)
	})
}

const urlVar = "REPORTANCHOR_REDIS_TESTING_URL"

func withStore(t *testing.T, f func(context.Context, *Store)) {
	url := os.Getenv(urlVar)
	if url == "" {
		t.Skipf("to run %s, set %s to a Redis URL", t.Name(), urlVar)
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		t.Fatal(err)
	}
	client := redis.NewClient(opts)
	defer client.Close()

	ctx := context.Background()
	if err = client.Ping(ctx).Err(); err != nil {
		t.Fatal(err)
	}

	f(ctx, New(client, "reportanchor:test:"))
}

package sqlite3

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/bobg/reportanchor/testutil"
)

func TestStore(t *testing.T) {
	ctx := context.Background()
	testutil.CreateOnce(ctx, t, testStore(ctx, t))
}

func TestListAddrs(t *testing.T) {
	ctx := context.Background()
	testutil.ListAddrs(ctx, t, testStore(ctx, t))
}

func TestRegistry(t *testing.T) {
	ctx := context.Background()
	testutil.Registry(ctx, t, testStore(ctx, t))
}

func testStore(ctx context.Context, t *testing.T) *Store {
	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "records.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	db.SetMaxOpenConns(1)

	s, err := New(ctx, db)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

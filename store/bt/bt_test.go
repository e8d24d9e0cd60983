package bt

import (
	"context"
	"testing"

	"cloud.google.com/go/bigtable"
	"cloud.google.com/go/bigtable/bttest"
	"google.golang.org/api/option"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/bobg/reportanchor"
	"github.com/bobg/reportanchor/testutil"
)

const (
	testProject  = "test-project"
	testInstance = "test-instance"
	testTable    = "records"
)

func TestStore(t *testing.T) {
	ctx := context.Background()
	s := testStore(ctx, t)
	testutil.CreateOnce(ctx, t, s)
}

func TestListAddrs(t *testing.T) {
	ctx := context.Background()
	testutil.ListAddrs(ctx, t, testStore(ctx, t))
}

func TestRegistry(t *testing.T) {
	ctx := context.Background()
	testutil.Registry(ctx, t, testStore(ctx, t))
}

func TestKeys(t *testing.T) {
	addr := testutil.Addr(nil, "key")
	got, err := addrFromKey(recKey(addr))
	if err != nil {
		t.Fatal(err)
	}
	if got != addr {
		t.Errorf("got %s, want %s", got, addr)
	}
	if _, err = addrFromKey("x:" + addr.Hex()); err == nil {
		t.Error("accepted key without prefix")
	}
	if recKey(reportanchor.Address{0xff, 0xff}) >= keyLimit {
		t.Error("record key sorts after the range limit")
	}
}

func testStore(ctx context.Context, t *testing.T) *Store {
	srv, err := bttest.NewServer("localhost:0")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(srv.Close)

	conn, err := grpc.Dial(srv.Addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { conn.Close() })

	admin, err := bigtable.NewAdminClient(ctx, testProject, testInstance, option.WithGRPCConn(conn))
	if err != nil {
		t.Fatal(err)
	}
	if err = admin.CreateTable(ctx, testTable); err != nil {
		t.Fatal(err)
	}
	if err = admin.CreateColumnFamily(ctx, testTable, Family); err != nil {
		t.Fatal(err)
	}

	client, err := bigtable.NewClient(ctx, testProject, testInstance, option.WithGRPCConn(conn))
	if err != nil {
		t.Fatal(err)
	}
	return New(client.Open(testTable))
}

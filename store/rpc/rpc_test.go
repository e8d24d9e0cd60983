package rpc

import (
	"context"
	"errors"
	"net"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/bobg/reportanchor"
	"github.com/bobg/reportanchor/store/mem"
	"github.com/bobg/reportanchor/testutil"
)

func TestStore(t *testing.T) {
	ctx := context.Background()
	testutil.CreateOnce(ctx, t, testClient(ctx, t, mem.New()))
}

func TestListAddrs(t *testing.T) {
	ctx := context.Background()
	testutil.ListAddrs(ctx, t, testClient(ctx, t, mem.New()))
}

func TestRegistry(t *testing.T) {
	ctx := context.Background()
	testutil.Registry(ctx, t, testClient(ctx, t, mem.New()))
}

func TestBadAddress(t *testing.T) {
	ctx := context.Background()
	c := testClient(ctx, t, mem.New())

	err := c.cc.Invoke(ctx, getMethod, wrapperspb.Bytes([]byte("short")), new(wrapperspb.BytesValue))
	if code := status.Code(err); code != codes.InvalidArgument {
		t.Errorf("got code %s for a short address, want %s", code, codes.InvalidArgument)
	}

	err = c.cc.Invoke(ctx, createMethod, wrapperspb.Bytes([]byte("short")), new(wrapperspb.BoolValue))
	if code := status.Code(err); code != codes.InvalidArgument {
		t.Errorf("got code %s for a short create request, want %s", code, codes.InvalidArgument)
	}

	_, err = c.Get(ctx, testutil.Addr(nil, "absent"))
	if !errors.Is(err, reportanchor.ErrNotFound) {
		t.Errorf("got error %v, want %v", err, reportanchor.ErrNotFound)
	}
}

func testClient(ctx context.Context, t *testing.T, s reportanchor.Store) *Client {
	lis := bufconn.Listen(1 << 20)

	gs := grpc.NewServer()
	Register(gs, s)
	go gs.Serve(lis)
	t.Cleanup(gs.Stop)

	cc, err := grpc.DialContext(ctx, "bufnet",
		grpc.WithContextDialer(func(context.Context, string) (net.Conn, error) {
			return lis.Dial()
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { cc.Close() })

	return NewClient(cc)
}

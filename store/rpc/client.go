package rpc

import (
	"context"
	"crypto/tls"
	"io"

	"github.com/pkg/errors"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/bobg/reportanchor"
	"github.com/bobg/reportanchor/store"
)

var _ reportanchor.Store = &Client{}

// Client is a record store backed by a remote server.
type Client struct {
	cc    grpc.ClientConnInterface
	close func() error
}

// NewClient produces a Client that talks over cc.
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// Close closes the connection if the Client opened it itself.
func (c *Client) Close() error {
	if c.close == nil {
		return nil
	}
	return c.close()
}

// Get implements reportanchor.Getter.
func (c *Client) Get(ctx context.Context, addr reportanchor.Address) ([]byte, error) {
	resp := new(wrapperspb.BytesValue)
	err := c.cc.Invoke(ctx, getMethod, wrapperspb.Bytes(addr[:]), resp)
	if code := status.Code(err); code == codes.NotFound {
		return nil, reportanchor.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "getting %s", addr)
	}
	return resp.GetValue(), nil
}

// Create implements reportanchor.Store.
func (c *Client) Create(ctx context.Context, addr reportanchor.Address, data []byte) (bool, error) {
	req := make([]byte, 0, len(addr)+len(data))
	req = append(req, addr[:]...)
	req = append(req, data...)

	resp := new(wrapperspb.BoolValue)
	err := c.cc.Invoke(ctx, createMethod, wrapperspb.Bytes(req), resp)
	if err != nil {
		return false, errors.Wrapf(err, "creating %s", addr)
	}
	return resp.GetValue(), nil
}

// ListAddrs implements reportanchor.Getter.
func (c *Client) ListAddrs(ctx context.Context, start reportanchor.Address, f func(reportanchor.Address) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	stream, err := c.cc.NewStream(ctx, &serviceDesc.Streams[0], listAddrsMethod)
	if err != nil {
		return errors.Wrap(err, "opening stream")
	}
	if err = stream.SendMsg(wrapperspb.Bytes(start[:])); err != nil {
		return errors.Wrap(err, "sending request")
	}
	if err = stream.CloseSend(); err != nil {
		return errors.Wrap(err, "closing send side")
	}

	for {
		resp := new(wrapperspb.BytesValue)
		err = stream.RecvMsg(resp)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.Wrap(err, "receiving response")
		}
		if len(resp.GetValue()) != len(start) {
			return errors.Errorf("received address with %d bytes", len(resp.GetValue()))
		}
		err = f(reportanchor.AddressFromBytes(resp.GetValue()))
		if err != nil {
			return err
		}
	}
}

// Dial connects to a server at addr.
// Without TLS the connection is unencrypted.
func Dial(ctx context.Context, addr string, useTLS bool) (*Client, error) {
	creds := insecure.NewCredentials()
	if useTLS {
		creds = credentials.NewTLS(&tls.Config{MinVersion: tls.VersionTLS12})
	}
	cc, err := grpc.DialContext(ctx, addr, grpc.WithTransportCredentials(creds))
	if err != nil {
		return nil, errors.Wrapf(err, "connecting to %s", addr)
	}
	c := NewClient(cc)
	c.close = cc.Close
	return c, nil
}

func init() {
	store.Register("rpc", func(ctx context.Context, conf map[string]interface{}) (reportanchor.Store, error) {
		addr, ok := conf["addr"].(string)
		if !ok {
			return nil, errors.New(`missing "addr" parameter`)
		}
		useTLS, _ := conf["tls"].(bool)
		return Dial(ctx, addr, useTLS)
	})
}

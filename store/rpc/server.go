// Package rpc exposes a record store over gRPC,
// and implements a record store that is a gRPC client of such a server.
//
// Requests and responses are protobuf wrapper messages,
// so the service needs no generated code:
//
//	Get(BytesValue address) returns (BytesValue record)
//	Create(BytesValue address+record) returns (BoolValue added)
//	ListAddrs(BytesValue start) returns (stream BytesValue address)
package rpc

import (
	"context"

	"github.com/pkg/errors"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/bobg/reportanchor"
)

const serviceName = "reportanchor.Store"

const (
	getMethod       = "/" + serviceName + "/Get"
	createMethod    = "/" + serviceName + "/Create"
	listAddrsMethod = "/" + serviceName + "/ListAddrs"
)

var serviceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*reportanchor.Store)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Get", Handler: getHandler},
		{MethodName: "Create", Handler: createHandler},
	},
	Streams: []grpc.StreamDesc{
		{StreamName: "ListAddrs", Handler: listAddrsHandler, ServerStreams: true},
	},
	Metadata: "reportanchor/store",
}

// Register makes s available to clients of gs.
func Register(gs *grpc.Server, s reportanchor.Store) {
	gs.RegisterService(&serviceDesc, s)
}

func addrArg(b []byte) (reportanchor.Address, error) {
	if len(b) != len(reportanchor.Address{}) {
		return reportanchor.Address{}, status.Errorf(codes.InvalidArgument, "address has %d bytes", len(b))
	}
	return reportanchor.AddressFromBytes(b), nil
}

func getHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	req := new(wrapperspb.BytesValue)
	if err := dec(req); err != nil {
		return nil, err
	}
	handle := func(ctx context.Context, req interface{}) (interface{}, error) {
		addr, err := addrArg(req.(*wrapperspb.BytesValue).GetValue())
		if err != nil {
			return nil, err
		}
		data, err := srv.(reportanchor.Store).Get(ctx, addr)
		if err != nil {
			return nil, toStatus(err)
		}
		return wrapperspb.Bytes(data), nil
	}
	if interceptor == nil {
		return handle(ctx, req)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: getMethod}
	return interceptor(ctx, req, info, handle)
}

func createHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	req := new(wrapperspb.BytesValue)
	if err := dec(req); err != nil {
		return nil, err
	}
	handle := func(ctx context.Context, req interface{}) (interface{}, error) {
		b := req.(*wrapperspb.BytesValue).GetValue()
		n := len(reportanchor.Address{})
		if len(b) < n {
			return nil, status.Errorf(codes.InvalidArgument, "request has %d bytes", len(b))
		}
		added, err := srv.(reportanchor.Store).Create(ctx, reportanchor.AddressFromBytes(b[:n]), b[n:])
		if err != nil {
			return nil, toStatus(err)
		}
		return wrapperspb.Bool(added), nil
	}
	if interceptor == nil {
		return handle(ctx, req)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: createMethod}
	return interceptor(ctx, req, info, handle)
}

func listAddrsHandler(srv interface{}, stream grpc.ServerStream) error {
	req := new(wrapperspb.BytesValue)
	if err := stream.RecvMsg(req); err != nil {
		return err
	}
	start, err := addrArg(req.GetValue())
	if err != nil {
		return err
	}
	err = srv.(reportanchor.Store).ListAddrs(stream.Context(), start, func(addr reportanchor.Address) error {
		return stream.SendMsg(wrapperspb.Bytes(addr[:]))
	})
	return toStatus(err)
}

func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	if errors.Is(err, reportanchor.ErrNotFound) {
		return status.Error(codes.NotFound, err.Error())
	}
	return status.Error(codes.Unknown, err.Error())
}

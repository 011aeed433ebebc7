// Package grpcapi serves access decisions to door terminals over gRPC.
//
// Messages are google.protobuf.Struct so terminals need no generated
// stubs; the field names match the HTTP API.
package grpcapi

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/timestamppb"
)

const ServiceName = "portunus.v1.AccessControl"

const (
	evaluateMethod = "/" + ServiceName + "/Evaluate"
	nowMethod      = "/" + ServiceName + "/Now"
)

type AccessControlServer interface {
	// Evaluate takes {person_id | document_id, terminal_id, timestamp?} and
	// returns {allowed, reason, entry_id, person_id, terminal_id, decided_at}.
	Evaluate(context.Context, *structpb.Struct) (*structpb.Struct, error)
	// Now returns server time so terminals can keep their clocks in step.
	Now(context.Context, *emptypb.Empty) (*timestamppb.Timestamp, error)
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AccessControlServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Evaluate", Handler: evaluateHandler},
		{MethodName: "Now", Handler: nowHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "portunus/v1/access.proto",
}

func evaluateHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AccessControlServer).Evaluate(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: evaluateMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(AccessControlServer).Evaluate(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func nowHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AccessControlServer).Now(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: nowMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(AccessControlServer).Now(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

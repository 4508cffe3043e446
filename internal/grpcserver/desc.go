package grpcserver

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// serviceDesc describes ServiceName. Requests and responses are
// google.protobuf.Struct, so the default proto codec carries them without
// generated stubs.
var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*DashboardServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CountByStatus", Handler: unary("CountByStatus", DashboardServer.CountByStatus)},
		{MethodName: "PendingCount", Handler: unary("PendingCount", DashboardServer.PendingCount)},
		{MethodName: "HasApplied", Handler: unary("HasApplied", DashboardServer.HasApplied)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "jobmate/board/v1/dashboard.proto",
}

type rpc func(DashboardServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unary(method string, call rpc) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(DashboardServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/" + method}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(DashboardServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

package vorago

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "vorago.v1.VoragoService"

// Full method names.
const (
	CreateGameMethod = "/" + ServiceName + "/CreateGame"
	GetGameMethod    = "/" + ServiceName + "/GetGame"
	ExecuteMethod    = "/" + ServiceName + "/Execute"
	ListGamesMethod  = "/" + ServiceName + "/ListGames"
)

// VoragoServiceServer is the server API. Every message is a
// google.protobuf.Struct so clients need no generated code.
type VoragoServiceServer interface {
	CreateGame(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetGame(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Execute(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListGames(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryMethod func(VoragoServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(fullMethod string, call unaryMethod) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		server := srv.(VoragoServiceServer)
		if interceptor == nil {
			return call(server, ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(server, ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// ServiceDesc describes vorago.v1.VoragoService for grpc.Server.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*VoragoServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CreateGame", Handler: unaryHandler(CreateGameMethod, VoragoServiceServer.CreateGame)},
		{MethodName: "GetGame", Handler: unaryHandler(GetGameMethod, VoragoServiceServer.GetGame)},
		{MethodName: "Execute", Handler: unaryHandler(ExecuteMethod, VoragoServiceServer.Execute)},
		{MethodName: "ListGames", Handler: unaryHandler(ListGamesMethod, VoragoServiceServer.ListGames)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "vorago/v1/service.proto",
}

// RegisterVoragoServiceServer registers srv on s.
func RegisterVoragoServiceServer(s grpc.ServiceRegistrar, srv VoragoServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

package greeterv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	Greeter_SendMessage_FullMethodName        = "/greeter.v1.Greeter/SendMessage"
	Greeter_SendMessageStream_FullMethodName  = "/greeter.v1.Greeter/SendMessageStream"
	Greeter_ListMessages_FullMethodName       = "/greeter.v1.Greeter/ListMessages"
	Greeter_ListMessagesStream_FullMethodName = "/greeter.v1.Greeter/ListMessagesStream"
)

// GreeterClient is the client API for the Greeter service.
type GreeterClient interface {
	SendMessage(ctx context.Context, in *SendMessageRequest, opts ...grpc.CallOption) (*SendMessageResponse, error)
	SendMessageStream(ctx context.Context, opts ...grpc.CallOption) (grpc.BidiStreamingClient[SendMessageRequest, SendMessageResponse], error)
	ListMessages(ctx context.Context, in *ListMessagesRequest, opts ...grpc.CallOption) (*ListMessagesResponse, error)
	ListMessagesStream(ctx context.Context, in *ListMessagesRequest, opts ...grpc.CallOption) (grpc.ServerStreamingClient[SendMessageResponse], error)
}

type greeterClient struct {
	cc grpc.ClientConnInterface
}

func NewGreeterClient(cc grpc.ClientConnInterface) GreeterClient {
	return &greeterClient{cc}
}

func (c *greeterClient) SendMessage(ctx context.Context, in *SendMessageRequest, opts ...grpc.CallOption) (*SendMessageResponse, error) {
	cOpts := append([]grpc.CallOption{grpc.StaticMethod()}, opts...)
	out := new(SendMessageResponse)
	if err := c.cc.Invoke(ctx, Greeter_SendMessage_FullMethodName, in, out, cOpts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *greeterClient) SendMessageStream(ctx context.Context, opts ...grpc.CallOption) (grpc.BidiStreamingClient[SendMessageRequest, SendMessageResponse], error) {
	cOpts := append([]grpc.CallOption{grpc.StaticMethod()}, opts...)
	stream, err := c.cc.NewStream(ctx, &Greeter_ServiceDesc.Streams[0], Greeter_SendMessageStream_FullMethodName, cOpts...)
	if err != nil {
		return nil, err
	}
	return &grpc.GenericClientStream[SendMessageRequest, SendMessageResponse]{ClientStream: stream}, nil
}

// Greeter_SendMessageStreamClient is the client side of SendMessageStream.
type Greeter_SendMessageStreamClient = grpc.BidiStreamingClient[SendMessageRequest, SendMessageResponse]

func (c *greeterClient) ListMessages(ctx context.Context, in *ListMessagesRequest, opts ...grpc.CallOption) (*ListMessagesResponse, error) {
	cOpts := append([]grpc.CallOption{grpc.StaticMethod()}, opts...)
	out := new(ListMessagesResponse)
	if err := c.cc.Invoke(ctx, Greeter_ListMessages_FullMethodName, in, out, cOpts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *greeterClient) ListMessagesStream(ctx context.Context, in *ListMessagesRequest, opts ...grpc.CallOption) (grpc.ServerStreamingClient[SendMessageResponse], error) {
	cOpts := append([]grpc.CallOption{grpc.StaticMethod()}, opts...)
	stream, err := c.cc.NewStream(ctx, &Greeter_ServiceDesc.Streams[1], Greeter_ListMessagesStream_FullMethodName, cOpts...)
	if err != nil {
		return nil, err
	}
	x := &grpc.GenericClientStream[ListMessagesRequest, SendMessageResponse]{ClientStream: stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

// Greeter_ListMessagesStreamClient is the client side of ListMessagesStream.
type Greeter_ListMessagesStreamClient = grpc.ServerStreamingClient[SendMessageResponse]

// GreeterServer is the server API for the Greeter service. Implementations
// must embed UnimplementedGreeterServer.
type GreeterServer interface {
	SendMessage(context.Context, *SendMessageRequest) (*SendMessageResponse, error)
	SendMessageStream(grpc.BidiStreamingServer[SendMessageRequest, SendMessageResponse]) error
	ListMessages(context.Context, *ListMessagesRequest) (*ListMessagesResponse, error)
	ListMessagesStream(*ListMessagesRequest, grpc.ServerStreamingServer[SendMessageResponse]) error
	mustEmbedUnimplementedGreeterServer()
}

// UnimplementedGreeterServer must be embedded by value.
type UnimplementedGreeterServer struct{}

func (UnimplementedGreeterServer) SendMessage(context.Context, *SendMessageRequest) (*SendMessageResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method SendMessage not implemented")
}
func (UnimplementedGreeterServer) SendMessageStream(grpc.BidiStreamingServer[SendMessageRequest, SendMessageResponse]) error {
	return status.Errorf(codes.Unimplemented, "method SendMessageStream not implemented")
}
func (UnimplementedGreeterServer) ListMessages(context.Context, *ListMessagesRequest) (*ListMessagesResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ListMessages not implemented")
}
func (UnimplementedGreeterServer) ListMessagesStream(*ListMessagesRequest, grpc.ServerStreamingServer[SendMessageResponse]) error {
	return status.Errorf(codes.Unimplemented, "method ListMessagesStream not implemented")
}
func (UnimplementedGreeterServer) mustEmbedUnimplementedGreeterServer() {}
func (UnimplementedGreeterServer) testEmbeddedByValue()                 {}

// Greeter_SendMessageStreamServer is the server side of SendMessageStream.
type Greeter_SendMessageStreamServer = grpc.BidiStreamingServer[SendMessageRequest, SendMessageResponse]

// Greeter_ListMessagesStreamServer is the server side of ListMessagesStream.
type Greeter_ListMessagesStreamServer = grpc.ServerStreamingServer[SendMessageResponse]

func RegisterGreeterServer(s grpc.ServiceRegistrar, srv GreeterServer) {
	// A nil pointer embed panics here instead of on the first call.
	if t, ok := srv.(interface{ testEmbeddedByValue() }); ok {
		t.testEmbeddedByValue()
	}
	s.RegisterService(&Greeter_ServiceDesc, srv)
}

func _Greeter_SendMessage_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(SendMessageRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(GreeterServer).SendMessage(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: Greeter_SendMessage_FullMethodName,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(GreeterServer).SendMessage(ctx, req.(*SendMessageRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _Greeter_SendMessageStream_Handler(srv interface{}, stream grpc.ServerStream) error {
	return srv.(GreeterServer).SendMessageStream(&grpc.GenericServerStream[SendMessageRequest, SendMessageResponse]{ServerStream: stream})
}

func _Greeter_ListMessages_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(ListMessagesRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(GreeterServer).ListMessages(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: Greeter_ListMessages_FullMethodName,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(GreeterServer).ListMessages(ctx, req.(*ListMessagesRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _Greeter_ListMessagesStream_Handler(srv interface{}, stream grpc.ServerStream) error {
	m := new(ListMessagesRequest)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(GreeterServer).ListMessagesStream(m, &grpc.GenericServerStream[ListMessagesRequest, SendMessageResponse]{ServerStream: stream})
}

// Greeter_ServiceDesc is the grpc.ServiceDesc for the Greeter service.
var Greeter_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "greeter.v1.Greeter",
	HandlerType: (*GreeterServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "SendMessage",
			Handler:    _Greeter_SendMessage_Handler,
		},
		{
			MethodName: "ListMessages",
			Handler:    _Greeter_ListMessages_Handler,
		},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "SendMessageStream",
			Handler:       _Greeter_SendMessageStream_Handler,
			ServerStreams: true,
			ClientStreams: true,
		},
		{
			StreamName:    "ListMessagesStream",
			Handler:       _Greeter_ListMessagesStream_Handler,
			ServerStreams: true,
		},
	},
	Metadata: FileName,
}

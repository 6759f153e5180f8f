package grpcserver

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	greeterv1 "github.com/rzbill/greetd/api/greeter/v1"
	greetersvc "github.com/rzbill/greetd/internal/services/greeter"
)

type greeterSvc struct {
	greeterv1.UnimplementedGreeterServer
	svc *greetersvc.Service
}

func (g *greeterSvc) SendMessage(ctx context.Context, req *greeterv1.SendMessageRequest) (*greeterv1.SendMessageResponse, error) {
	return greeterv1.NewSendMessageResponse(g.svc.SendMessage(ctx, req.GetName())), nil
}

func (g *greeterSvc) SendMessageStream(stream grpc.BidiStreamingServer[greeterv1.SendMessageRequest, greeterv1.SendMessageResponse]) error {
	return g.svc.SendMessageStream(grpcInbound{stream: stream}, grpcSink{stream: stream})
}

func (g *greeterSvc) ListMessages(ctx context.Context, _ *greeterv1.ListMessagesRequest) (*greeterv1.ListMessagesResponse, error) {
	texts, err := g.svc.ListMessages(ctx)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return greeterv1.NewListMessagesResponse(texts), nil
}

func (g *greeterSvc) ListMessagesStream(_ *greeterv1.ListMessagesRequest, stream grpc.ServerStreamingServer[greeterv1.SendMessageResponse]) error {
	return g.svc.ListMessagesStream(grpcSink{stream: stream})
}

type grpcInbound struct {
	stream interface {
		Recv() (*greeterv1.SendMessageRequest, error)
	}
}

func (g grpcInbound) Recv() (string, error) {
	req, err := g.stream.Recv()
	if err != nil {
		return "", err
	}
	return req.GetName(), nil
}

type grpcSink struct {
	stream interface {
		Send(*greeterv1.SendMessageResponse) error
		Context() context.Context
	}
}

func (g grpcSink) Send(text string) error {
	return g.stream.Send(greeterv1.NewSendMessageResponse(text))
}
func (g grpcSink) Context() context.Context { return g.stream.Context() }
func (g grpcSink) Flush() error             { return nil }

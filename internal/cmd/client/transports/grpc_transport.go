// Package transports provides pluggable transport implementations for the CLI.
package transports

import (
	"context"
	"errors"
	"io"

	"google.golang.org/grpc"

	greeterv1 "github.com/rzbill/greetd/api/greeter/v1"
)

// GrpcTransport implements GreeterTransport over gRPC.
type GrpcTransport struct {
	dial func(ctx context.Context) (*grpc.ClientConn, error)
}

// NewGrpcTransport constructs a new GrpcTransport using the provided dialer.
func NewGrpcTransport(dial func(ctx context.Context) (*grpc.ClientConn, error)) *GrpcTransport {
	return &GrpcTransport{dial: dial}
}

func (t *GrpcTransport) withClient(ctx context.Context, fn func(cli greeterv1.GreeterClient) error) error {
	conn, err := t.dial(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()
	return fn(greeterv1.NewGreeterClient(conn))
}

// Send greets name via the unary RPC.
func (t *GrpcTransport) Send(ctx context.Context, name string) (string, error) {
	var out string
	err := t.withClient(ctx, func(cli greeterv1.GreeterClient) error {
		res, err := cli.SendMessage(ctx, greeterv1.NewSendMessageRequest(name))
		if err != nil {
			return err
		}
		out = res.GetMessage()
		return nil
	})
	return out, err
}

// Chat sends names over the bidirectional stream while receiving acks.
func (t *GrpcTransport) Chat(ctx context.Context, names <-chan string, onAck func(string) error) error {
	return t.withClient(ctx, func(cli greeterv1.GreeterClient) error {
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()
		stream, err := cli.SendMessageStream(ctx)
		if err != nil {
			return err
		}

		sendErr := make(chan error, 1)
		go func() {
			defer close(sendErr)
			for name := range names {
				if err := stream.Send(greeterv1.NewSendMessageRequest(name)); err != nil {
					// The real cause surfaces from Recv.
					return
				}
			}
			sendErr <- stream.CloseSend()
		}()

		for {
			res, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				return <-sendErr
			}
			if err != nil {
				return err
			}
			if err := onAck(res.GetMessage()); err != nil {
				return stopped(err)
			}
		}
	})
}

// List fetches the persisted greetings.
func (t *GrpcTransport) List(ctx context.Context) ([]string, error) {
	var out []string
	err := t.withClient(ctx, func(cli greeterv1.GreeterClient) error {
		res, err := cli.ListMessages(ctx, new(greeterv1.ListMessagesRequest))
		if err != nil {
			return err
		}
		out = res.GetMessages()
		return nil
	})
	return out, err
}

// Watch follows the live feed.
func (t *GrpcTransport) Watch(ctx context.Context, onMessage func(string) error) error {
	return t.withClient(ctx, func(cli greeterv1.GreeterClient) error {
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()
		stream, err := cli.ListMessagesStream(ctx, new(greeterv1.ListMessagesRequest))
		if err != nil {
			return err
		}
		for {
			res, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
			if err := onMessage(res.GetMessage()); err != nil {
				return stopped(err)
			}
		}
	})
}

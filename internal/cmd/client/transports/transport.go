package transports

import (
	"context"
	"errors"
)

// ErrStop may be returned from a callback to end a stream early without error.
var ErrStop = errors.New("transports: stop")

// GreeterTransport abstracts the transport used by the CLI (gRPC/HTTP).
type GreeterTransport interface {
	// Send greets one name and returns the acknowledgement.
	Send(ctx context.Context, name string) (string, error)
	// Chat streams names until the channel closes, invoking onAck for every
	// acknowledgement in order.
	Chat(ctx context.Context, names <-chan string, onAck func(string) error) error
	// List returns every persisted greeting.
	List(ctx context.Context) ([]string, error)
	// Watch follows live greetings until ctx ends or onMessage returns an error.
	Watch(ctx context.Context, onMessage func(string) error) error
}

func stopped(err error) error {
	if errors.Is(err, ErrStop) {
		return nil
	}
	return err
}
